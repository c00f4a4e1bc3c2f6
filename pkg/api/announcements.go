package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/models"
)

const AnnouncementServiceName = "AnnouncementService"

const (
	AnnouncementServiceListAnnouncementsProcedure  = "/" + Package + "." + AnnouncementServiceName + "/ListAnnouncements"
	AnnouncementServiceCreateAnnouncementProcedure = "/" + Package + "." + AnnouncementServiceName + "/CreateAnnouncement"
	AnnouncementServiceDeleteAnnouncementProcedure = "/" + Package + "." + AnnouncementServiceName + "/DeleteAnnouncement"
)

type ListAnnouncementsRequest struct{}

type ListAnnouncementsResponse struct {
	Announcements []models.Announcement `json:"announcements"`
}

type CreateAnnouncementRequest struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Priority models.Priority `json:"priority,omitempty"`
}

// CreateAnnouncementResponse reports the announcement and how its
// notification fan-out settled.
type CreateAnnouncementResponse struct {
	Announcement *models.Announcement `json:"announcement"`
	Notified     int                  `json:"notified"`

	// FailedRecipients lists members whose notification could not be written.
	FailedRecipients []string `json:"failedRecipients,omitempty"`
}

type DeleteAnnouncementRequest struct {
	ID string `json:"id"`
}

type DeleteAnnouncementResponse struct{}

type AnnouncementServiceHandler interface {
	ListAnnouncements(context.Context, *connect.Request[ListAnnouncementsRequest]) (*connect.Response[ListAnnouncementsResponse], error)
	CreateAnnouncement(context.Context, *connect.Request[CreateAnnouncementRequest]) (*connect.Response[CreateAnnouncementResponse], error)
	DeleteAnnouncement(context.Context, *connect.Request[DeleteAnnouncementRequest]) (*connect.Response[DeleteAnnouncementResponse], error)
}

func NewAnnouncementServiceHandler(svc AnnouncementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(AnnouncementServiceName, opts)
	unary(s, AnnouncementServiceListAnnouncementsProcedure, svc.ListAnnouncements)
	unary(s, AnnouncementServiceCreateAnnouncementProcedure, svc.CreateAnnouncement)
	unary(s, AnnouncementServiceDeleteAnnouncementProcedure, svc.DeleteAnnouncement)
	return s.handler()
}

type AnnouncementServiceClient struct {
	listAnnouncements  *connect.Client[ListAnnouncementsRequest, ListAnnouncementsResponse]
	createAnnouncement *connect.Client[CreateAnnouncementRequest, CreateAnnouncementResponse]
	deleteAnnouncement *connect.Client[DeleteAnnouncementRequest, DeleteAnnouncementResponse]
}

func NewAnnouncementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AnnouncementServiceClient {
	return &AnnouncementServiceClient{
		listAnnouncements:  newClient[ListAnnouncementsRequest, ListAnnouncementsResponse](httpClient, baseURL, AnnouncementServiceListAnnouncementsProcedure, opts),
		createAnnouncement: newClient[CreateAnnouncementRequest, CreateAnnouncementResponse](httpClient, baseURL, AnnouncementServiceCreateAnnouncementProcedure, opts),
		deleteAnnouncement: newClient[DeleteAnnouncementRequest, DeleteAnnouncementResponse](httpClient, baseURL, AnnouncementServiceDeleteAnnouncementProcedure, opts),
	}
}

func (c *AnnouncementServiceClient) ListAnnouncements(ctx context.Context, req *connect.Request[ListAnnouncementsRequest]) (*connect.Response[ListAnnouncementsResponse], error) {
	return c.listAnnouncements.CallUnary(ctx, req)
}

func (c *AnnouncementServiceClient) CreateAnnouncement(ctx context.Context, req *connect.Request[CreateAnnouncementRequest]) (*connect.Response[CreateAnnouncementResponse], error) {
	return c.createAnnouncement.CallUnary(ctx, req)
}

func (c *AnnouncementServiceClient) DeleteAnnouncement(ctx context.Context, req *connect.Request[DeleteAnnouncementRequest]) (*connect.Response[DeleteAnnouncementResponse], error) {
	return c.deleteAnnouncement.CallUnary(ctx, req)
}
