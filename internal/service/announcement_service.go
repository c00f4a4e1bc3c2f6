package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mmynk/messmonitor/internal/fanout"
	"github.com/mmynk/messmonitor/internal/metrics"
	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
	"github.com/mmynk/messmonitor/pkg/api"
)

var tracer = otel.Tracer("messmonitor/service")

// AnnouncementStorage is what announcement creation needs from the store.
type AnnouncementStorage interface {
	storage.AnnouncementStore
	AddNotification(ctx context.Context, n *models.Notification) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
	ListMembers(ctx context.Context) ([]models.User, error)
}

// AnnouncementService implements the AnnouncementService RPC interface.
type AnnouncementService struct {
	store   AnnouncementStorage
	limit   int
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *slog.Logger
}

// NewAnnouncementService creates a new announcement service. limit bounds
// concurrent notification writes during fan-out; m may be nil.
func NewAnnouncementService(store AnnouncementStorage, limit int, m *metrics.Metrics, logger *slog.Logger) *AnnouncementService {
	return &AnnouncementService{store: store, limit: limit, metrics: m, now: time.Now, logger: logger}
}

// ListAnnouncements returns every announcement, newest first.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, req *connect.Request[api.ListAnnouncementsRequest]) (*connect.Response[api.ListAnnouncementsResponse], error) {
	if _, err := middleware.RequireUser(ctx); err != nil {
		return nil, err
	}

	announcements, err := s.store.ListAnnouncements(ctx)
	if err != nil {
		return nil, storeError(s.logger, "Failed to list announcements", err)
	}
	return connect.NewResponse(&api.ListAnnouncementsResponse{Announcements: announcements}), nil
}

// CreateAnnouncement stores an announcement, then writes one notification per
// member. A failed notification never fails the announcement; the response
// reports which members were missed.
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, req *connect.Request[api.CreateAnnouncementRequest]) (*connect.Response[api.CreateAnnouncementResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	uid := middleware.GetUserID(ctx)
	msg := req.Msg
	s.logger.Info("CreateAnnouncement request received", "user_id", uid, "title", msg.Title)

	ctx, span := tracer.Start(ctx, "announcement.create")
	defer span.End()

	a := &models.Announcement{
		Title:     strings.TrimSpace(msg.Title),
		Content:   strings.TrimSpace(msg.Content),
		Priority:  msg.Priority,
		CreatedBy: uid,
		CreatedAt: models.Today(s.now().UTC()),
	}
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	if err := validateAnnouncement(a); err != nil {
		return nil, err
	}

	if author, err := s.store.GetUser(ctx, uid); err == nil {
		a.CreatedByName = author.Name
	} else {
		s.logger.Warn("Announcement author profile missing", "user_id", uid, "error", err)
	}

	if err := s.store.AddAnnouncement(ctx, a); err != nil {
		return nil, storeError(s.logger, "Failed to add announcement", err)
	}
	span.SetAttributes(attribute.String("announcement.id", a.ID))

	resp := &api.CreateAnnouncementResponse{Announcement: a}
	result := s.notifyMembers(ctx, a)
	resp.Notified = result.Succeeded()
	for _, o := range result.Failed() {
		resp.FailedRecipients = append(resp.FailedRecipients, o.Recipient)
	}

	s.logger.Info("Announcement created", "announcement_id", a.ID, "notified", resp.Notified, "failed", len(resp.FailedRecipients))
	return connect.NewResponse(resp), nil
}

func validateAnnouncement(a *models.Announcement) error {
	if a.Title == "" || a.Content == "" || a.CreatedBy == "" {
		return invalidArgument("missing required fields for announcement")
	}
	if !a.Priority.Valid() {
		return invalidArgument("invalid priority %q", a.Priority)
	}
	return nil
}

// notifyMembers fans the announcement out to every current member.
func (s *AnnouncementService) notifyMembers(ctx context.Context, a *models.Announcement) fanout.Result {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		s.logger.Error("Failed to list members for notifications", "announcement_id", a.ID, "error", err)
		return nil
	}

	recipients := make([]string, len(members))
	for i, m := range members {
		recipients[i] = m.UID
	}

	result := fanout.Broadcast(ctx, recipients, func(ctx context.Context, borderUID string) (string, error) {
		n := &models.Notification{
			Title:     models.AnnouncementNotificationTitle,
			Message:   a.Title,
			Type:      models.NotifyAnnouncement,
			CreatedAt: a.CreatedAt,
			CreatedBy: a.CreatedBy,
			BorderUID: borderUID,
		}
		if err := s.store.AddNotification(ctx, n); err != nil {
			return "", err
		}
		return n.ID, nil
	}, s.limit)

	for _, o := range result.Failed() {
		s.logger.Warn("Failed to create notification", "announcement_id", a.ID, "border_uid", o.Recipient, "error", o.Err)
	}
	if s.metrics != nil {
		s.metrics.NotificationsCreated.WithLabelValues("ok").Add(float64(result.Succeeded()))
		s.metrics.NotificationsCreated.WithLabelValues("failed").Add(float64(len(result.Failed())))
	}
	return result
}

// DeleteAnnouncement removes an announcement. Notifications already sent are
// kept. Admin only.
func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, req *connect.Request[api.DeleteAnnouncementRequest]) (*connect.Response[api.DeleteAnnouncementResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	id := req.Msg.ID
	s.logger.Info("DeleteAnnouncement request received", "announcement_id", id)

	if id == "" {
		return nil, invalidArgument("id is required")
	}
	if err := s.store.DeleteAnnouncement(ctx, id); err != nil {
		return nil, storeError(s.logger, "Failed to delete announcement", err, "announcement_id", id)
	}
	return connect.NewResponse(&api.DeleteAnnouncementResponse{}), nil
}
