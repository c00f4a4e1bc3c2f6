package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/calculator"
	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/storage"
	"github.com/mmynk/messmonitor/pkg/api"
)

var errNotOwner = errors.New("notification belongs to another member")

// NotificationService implements the NotificationService RPC interface.
// Every call works on the caller's own notifications.
type NotificationService struct {
	notifications storage.NotificationStore
	logger        *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notifications storage.NotificationStore, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// ListNotifications returns the caller's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.notifications.ListNotificationsByMember(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, "Failed to list notifications", err, "user_id", uid)
	}
	return connect.NewResponse(&api.ListNotificationsResponse{
		Notifications: items,
		UnreadCount:   calculator.UnreadCount(items),
	}), nil
}

// MarkRead marks one of the caller's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, req *connect.Request[api.MarkReadRequest]) (*connect.Response[api.MarkReadResponse], error) {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	id := req.Msg.ID
	if id == "" {
		return nil, invalidArgument("id is required")
	}

	n, err := s.notifications.GetNotification(ctx, id)
	if err != nil {
		return nil, storeError(s.logger, "Failed to get notification", err, "notification_id", id)
	}
	if n.BorderUID != uid {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotOwner)
	}
	if n.IsRead {
		return connect.NewResponse(&api.MarkReadResponse{}), nil
	}

	if err := s.notifications.MarkNotificationRead(ctx, id); err != nil {
		return nil, storeError(s.logger, "Failed to mark notification read", err, "notification_id", id)
	}
	return connect.NewResponse(&api.MarkReadResponse{}), nil
}

// MarkAllRead marks every unread notification of the caller read.
func (s *NotificationService) MarkAllRead(ctx context.Context, req *connect.Request[api.MarkAllReadRequest]) (*connect.Response[api.MarkAllReadResponse], error) {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.notifications.ListNotificationsByMember(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, "Failed to list notifications", err, "user_id", uid)
	}

	updated := 0
	for _, n := range items {
		if n.IsRead {
			continue
		}
		if err := s.notifications.MarkNotificationRead(ctx, n.ID); err != nil {
			return nil, storeError(s.logger, "Failed to mark notification read", err, "notification_id", n.ID)
		}
		updated++
	}

	s.logger.Info("Notifications marked read", "user_id", uid, "updated", updated)
	return connect.NewResponse(&api.MarkAllReadResponse{Updated: updated}), nil
}
