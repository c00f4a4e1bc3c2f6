package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
	"github.com/mmynk/messmonitor/pkg/api"
)

// MemberService implements the MemberService RPC interface.
type MemberService struct {
	users  storage.UserStore
	now    func() time.Time
	logger *slog.Logger

	// finesMu serializes read-modify-write of a member's fine list.
	finesMu sync.Mutex
}

// NewMemberService creates a new member service.
func NewMemberService(users storage.UserStore, logger *slog.Logger) *MemberService {
	return &MemberService{users: users, now: time.Now, logger: logger}
}

// ListMembers returns every member. Admin only.
func (s *MemberService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	members, err := s.users.ListMembers(ctx)
	if err != nil {
		return nil, storeError(s.logger, "Failed to list members", err)
	}
	return connect.NewResponse(&api.ListMembersResponse{Members: members}), nil
}

// GetMember returns a profile. Members may only read their own.
func (s *MemberService) GetMember(ctx context.Context, req *connect.Request[api.GetMemberRequest]) (*connect.Response[api.GetMemberResponse], error) {
	uid, err := s.selfOrAdmin(ctx, req.Msg.UID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, "Failed to get member", err, "user_id", uid)
	}
	return connect.NewResponse(&api.GetMemberResponse{User: user}), nil
}

func (s *MemberService) selfOrAdmin(ctx context.Context, uid string) (string, error) {
	caller, err := middleware.RequireUser(ctx)
	if err != nil {
		return "", err
	}
	if uid == "" {
		return caller, nil
	}
	if uid != caller {
		if err := middleware.RequireAdmin(ctx); err != nil {
			return "", err
		}
	}
	return uid, nil
}

// UpdateMember applies a partial update to any member field. Admin only.
func (s *MemberService) UpdateMember(ctx context.Context, req *connect.Request[api.UpdateMemberRequest]) (*connect.Response[api.MemberResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	uid := req.Msg.UID
	upd := req.Msg.Update
	s.logger.Info("UpdateMember request received", "user_id", uid)

	if uid == "" {
		return nil, invalidArgument("uid is required")
	}
	if err := validateUserUpdate(upd); err != nil {
		return nil, err
	}
	upd.Fines = withFineIDs(upd.Fines)

	return s.update(ctx, uid, upd)
}

// withFineIDs returns a copy of fines in which every fine has an ID.
func withFineIDs(fines *[]models.Fine) *[]models.Fine {
	if fines == nil {
		return nil
	}
	out := make([]models.Fine, len(*fines))
	for i, f := range *fines {
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		out[i] = f
	}
	return &out
}

// UpdateOwnProfile lets the caller change their name, phone and department.
func (s *MemberService) UpdateOwnProfile(ctx context.Context, req *connect.Request[api.UpdateOwnProfileRequest]) (*connect.Response[api.MemberResponse], error) {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("UpdateOwnProfile request received", "user_id", uid)

	upd := models.UserUpdate{
		Name:       req.Msg.Name,
		Phone:      req.Msg.Phone,
		Department: req.Msg.Department,
	}
	if err := validateUserUpdate(upd); err != nil {
		return nil, err
	}
	return s.update(ctx, uid, upd)
}

func (s *MemberService) update(ctx context.Context, uid string, upd models.UserUpdate) (*connect.Response[api.MemberResponse], error) {
	if err := s.users.UpdateUser(ctx, uid, upd); err != nil {
		return nil, storeError(s.logger, "Failed to update member", err, "user_id", uid)
	}

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, "Failed to reload member", err, "user_id", uid)
	}
	return connect.NewResponse(&api.MemberResponse{User: user}), nil
}

func validateUserUpdate(upd models.UserUpdate) error {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return invalidArgument("name must not be empty")
	}
	if upd.MonthlyContribution != nil && *upd.MonthlyContribution < 0 {
		return invalidArgument("monthly contribution must not be negative")
	}
	if upd.Fines != nil {
		seen := make(map[string]bool, len(*upd.Fines))
		for _, f := range *upd.Fines {
			if err := validateFine(f); err != nil {
				return err
			}
			if f.ID != "" && seen[f.ID] {
				return invalidArgument("duplicate fine id %q", f.ID)
			}
			seen[f.ID] = true
		}
	}
	return nil
}

func validateFine(f models.Fine) error {
	if strings.TrimSpace(f.Reason) == "" {
		return invalidArgument("fine reason is required")
	}
	if f.Amount <= 0 {
		return invalidArgument("fine amount must be positive")
	}
	if !f.Status.Valid() {
		return invalidArgument("invalid fine status %q", f.Status)
	}
	return nil
}

// AddFine issues a fine to a member. Admin only.
func (s *MemberService) AddFine(ctx context.Context, req *connect.Request[api.AddFineRequest]) (*connect.Response[api.AddFineResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("AddFine request received", "user_id", msg.UID, "amount", msg.Amount)

	fine := models.Fine{
		ID:     uuid.New().String(),
		Date:   msg.Date,
		Reason: strings.TrimSpace(msg.Reason),
		Amount: msg.Amount,
		Status: msg.Status,
	}
	if fine.Date == "" {
		fine.Date = models.Today(s.now().UTC())
	}
	if fine.Status == "" {
		fine.Status = models.FinePending
	}
	if err := validateFine(fine); err != nil {
		return nil, err
	}

	user, err := s.modifyFines(ctx, msg.UID, func(fines []models.Fine) ([]models.Fine, error) {
		return append(fines, fine), nil
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddFineResponse{User: user, Fine: fine}), nil
}

// SetFineStatus marks a fine paid or pending. Admin only.
func (s *MemberService) SetFineStatus(ctx context.Context, req *connect.Request[api.SetFineStatusRequest]) (*connect.Response[api.MemberResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("SetFineStatus request received", "user_id", msg.UID, "fine_id", msg.FineID, "status", msg.Status)

	if !msg.Status.Valid() {
		return nil, invalidArgument("invalid fine status %q", msg.Status)
	}

	user, err := s.modifyFines(ctx, msg.UID, func(fines []models.Fine) ([]models.Fine, error) {
		for i := range fines {
			if fines[i].ID == msg.FineID {
				fines[i].Status = msg.Status
				return fines, nil
			}
		}
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.MemberResponse{User: user}), nil
}

// modifyFines rewrites a member's fine list and returns the updated member.
func (s *MemberService) modifyFines(ctx context.Context, uid string, modify func([]models.Fine) ([]models.Fine, error)) (*models.User, error) {
	if uid == "" {
		return nil, invalidArgument("uid is required")
	}

	s.finesMu.Lock()
	defer s.finesMu.Unlock()

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, "Failed to get member", err, "user_id", uid)
	}
	if user.IsAdmin() {
		return nil, invalidArgument("fines apply to members only")
	}

	fines, err := modify(append([]models.Fine(nil), user.Member.Fines...))
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateUser(ctx, uid, models.UserUpdate{Fines: &fines}); err != nil {
		return nil, storeError(s.logger, "Failed to update fines", err, "user_id", uid)
	}
	user.Member.Fines = fines
	return user, nil
}
