package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
	"github.com/mmynk/messmonitor/pkg/api"
)

var errMembersOnly = errors.New("only members submit feedback")

// FeedbackStorage is what the feedback service needs from the store.
type FeedbackStorage interface {
	storage.FeedbackStore
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// FeedbackService implements the FeedbackService RPC interface.
type FeedbackService struct {
	store  FeedbackStorage
	now    func() time.Time
	logger *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(store FeedbackStorage, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{store: store, now: time.Now, logger: logger}
}

func validateFeedback(f *models.Feedback) error {
	if f.Subject == "" || f.Message == "" || f.BorderUID == "" {
		return invalidArgument("missing required fields for feedback")
	}
	if f.Rating < models.MinRating || f.Rating > models.MaxRating {
		return invalidArgument("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	if !f.Category.Valid() {
		return invalidArgument("invalid category %q", f.Category)
	}
	return nil
}

// SubmitFeedback stores feedback from the calling member.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, req *connect.Request[api.SubmitFeedbackRequest]) (*connect.Response[api.FeedbackResponse], error) {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("SubmitFeedback request received", "user_id", uid, "rating", msg.Rating)

	f := &models.Feedback{
		BorderUID: uid,
		Subject:   strings.TrimSpace(msg.Subject),
		Message:   strings.TrimSpace(msg.Message),
		Rating:    msg.Rating,
		Category:  msg.Category,
		Status:    models.FeedbackPending,
		CreatedAt: models.Today(s.now().UTC()),
	}
	if f.Category == "" {
		f.Category = models.CategoryOther
	}
	if err := validateFeedback(f); err != nil {
		return nil, err
	}

	author, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, "Failed to load feedback author", err, "user_id", uid)
	}
	if author.IsAdmin() {
		return nil, connect.NewError(connect.CodePermissionDenied, errMembersOnly)
	}
	f.BorderName = author.Name

	if err := s.store.AddFeedback(ctx, f); err != nil {
		return nil, storeError(s.logger, "Failed to add feedback", err)
	}

	s.logger.Info("Feedback submitted", "feedback_id", f.ID, "user_id", uid)
	return connect.NewResponse(&api.FeedbackResponse{Feedback: f}), nil
}

// ListFeedbacks returns all feedback to admins and the caller's own to members.
func (s *FeedbackService) ListFeedbacks(ctx context.Context, req *connect.Request[api.ListFeedbacksRequest]) (*connect.Response[api.ListFeedbacksResponse], error) {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListFeedbacks(ctx)
	if err != nil {
		return nil, storeError(s.logger, "Failed to list feedbacks", err)
	}
	if middleware.GetRole(ctx) == models.RoleAdmin {
		return connect.NewResponse(&api.ListFeedbacksResponse{Feedbacks: all}), nil
	}

	own := []models.Feedback{}
	for _, f := range all {
		if f.BorderUID == uid {
			own = append(own, f)
		}
	}
	return connect.NewResponse(&api.ListFeedbacksResponse{Feedbacks: own}), nil
}

// RespondFeedback moves a feedback forward and records the admin's reply.
// Admin only. A non-empty response stamps respondedAt; a response sent
// without a status resolves the feedback.
func (s *FeedbackService) RespondFeedback(ctx context.Context, req *connect.Request[api.RespondFeedbackRequest]) (*connect.Response[api.FeedbackResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("RespondFeedback request received", "feedback_id", msg.ID, "status", msg.Status)

	if msg.ID == "" {
		return nil, invalidArgument("id is required")
	}

	var upd models.FeedbackUpdate
	if msg.Status != "" {
		if !msg.Status.Valid() {
			return nil, invalidArgument("invalid status %q", msg.Status)
		}
		status := msg.Status
		upd.Status = &status
	}
	if response := strings.TrimSpace(msg.AdminResponse); response != "" {
		respondedAt := models.Today(s.now().UTC())
		upd.AdminResponse = &response
		upd.RespondedAt = &respondedAt
		if upd.Status == nil {
			resolved := models.FeedbackResolved
			upd.Status = &resolved
		}
	}
	if upd.Status == nil {
		return nil, invalidArgument("status or response is required")
	}

	f, err := s.store.UpdateFeedback(ctx, msg.ID, upd)
	if errors.Is(err, storage.ErrStatusRegression) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	if err != nil {
		return nil, storeError(s.logger, "Failed to update feedback", err, "feedback_id", msg.ID)
	}
	return connect.NewResponse(&api.FeedbackResponse{Feedback: f}), nil
}
