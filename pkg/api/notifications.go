package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/models"
)

const NotificationServiceName = "NotificationService"

const (
	NotificationServiceListNotificationsProcedure = "/" + Package + "." + NotificationServiceName + "/ListNotifications"
	NotificationServiceMarkReadProcedure          = "/" + Package + "." + NotificationServiceName + "/MarkRead"
	NotificationServiceMarkAllReadProcedure       = "/" + Package + "." + NotificationServiceName + "/MarkAllRead"
)

type ListNotificationsRequest struct{}

type ListNotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
}

type MarkReadRequest struct {
	ID string `json:"id"`
}

type MarkReadResponse struct{}

type MarkAllReadRequest struct{}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

type NotificationServiceHandler interface {
	ListNotifications(context.Context, *connect.Request[ListNotificationsRequest]) (*connect.Response[ListNotificationsResponse], error)
	MarkRead(context.Context, *connect.Request[MarkReadRequest]) (*connect.Response[MarkReadResponse], error)
	MarkAllRead(context.Context, *connect.Request[MarkAllReadRequest]) (*connect.Response[MarkAllReadResponse], error)
}

func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(NotificationServiceName, opts)
	unary(s, NotificationServiceListNotificationsProcedure, svc.ListNotifications)
	unary(s, NotificationServiceMarkReadProcedure, svc.MarkRead)
	unary(s, NotificationServiceMarkAllReadProcedure, svc.MarkAllRead)
	return s.handler()
}

type NotificationServiceClient struct {
	listNotifications *connect.Client[ListNotificationsRequest, ListNotificationsResponse]
	markRead          *connect.Client[MarkReadRequest, MarkReadResponse]
	markAllRead       *connect.Client[MarkAllReadRequest, MarkAllReadResponse]
}

func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *NotificationServiceClient {
	return &NotificationServiceClient{
		listNotifications: newClient[ListNotificationsRequest, ListNotificationsResponse](httpClient, baseURL, NotificationServiceListNotificationsProcedure, opts),
		markRead:          newClient[MarkReadRequest, MarkReadResponse](httpClient, baseURL, NotificationServiceMarkReadProcedure, opts),
		markAllRead:       newClient[MarkAllReadRequest, MarkAllReadResponse](httpClient, baseURL, NotificationServiceMarkAllReadProcedure, opts),
	}
}

func (c *NotificationServiceClient) ListNotifications(ctx context.Context, req *connect.Request[ListNotificationsRequest]) (*connect.Response[ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

func (c *NotificationServiceClient) MarkRead(ctx context.Context, req *connect.Request[MarkReadRequest]) (*connect.Response[MarkReadResponse], error) {
	return c.markRead.CallUnary(ctx, req)
}

func (c *NotificationServiceClient) MarkAllRead(ctx context.Context, req *connect.Request[MarkAllReadRequest]) (*connect.Response[MarkAllReadResponse], error) {
	return c.markAllRead.CallUnary(ctx, req)
}
