package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/models"
)

const FeedbackServiceName = "FeedbackService"

const (
	FeedbackServiceSubmitFeedbackProcedure  = "/" + Package + "." + FeedbackServiceName + "/SubmitFeedback"
	FeedbackServiceListFeedbacksProcedure   = "/" + Package + "." + FeedbackServiceName + "/ListFeedbacks"
	FeedbackServiceRespondFeedbackProcedure = "/" + Package + "." + FeedbackServiceName + "/RespondFeedback"
)

type SubmitFeedbackRequest struct {
	Subject  string                  `json:"subject"`
	Message  string                  `json:"message"`
	Rating   int                     `json:"rating"`
	Category models.FeedbackCategory `json:"category,omitempty"`
}

type FeedbackResponse struct {
	Feedback *models.Feedback `json:"feedback"`
}

type ListFeedbacksRequest struct{}

type ListFeedbacksResponse struct {
	Feedbacks []models.Feedback `json:"feedbacks"`
}

type RespondFeedbackRequest struct {
	ID            string                `json:"id"`
	Status        models.FeedbackStatus `json:"status,omitempty"`
	AdminResponse string                `json:"adminResponse,omitempty"`
}

type FeedbackServiceHandler interface {
	SubmitFeedback(context.Context, *connect.Request[SubmitFeedbackRequest]) (*connect.Response[FeedbackResponse], error)
	ListFeedbacks(context.Context, *connect.Request[ListFeedbacksRequest]) (*connect.Response[ListFeedbacksResponse], error)
	RespondFeedback(context.Context, *connect.Request[RespondFeedbackRequest]) (*connect.Response[FeedbackResponse], error)
}

func NewFeedbackServiceHandler(svc FeedbackServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(FeedbackServiceName, opts)
	unary(s, FeedbackServiceSubmitFeedbackProcedure, svc.SubmitFeedback)
	unary(s, FeedbackServiceListFeedbacksProcedure, svc.ListFeedbacks)
	unary(s, FeedbackServiceRespondFeedbackProcedure, svc.RespondFeedback)
	return s.handler()
}

type FeedbackServiceClient struct {
	submitFeedback  *connect.Client[SubmitFeedbackRequest, FeedbackResponse]
	listFeedbacks   *connect.Client[ListFeedbacksRequest, ListFeedbacksResponse]
	respondFeedback *connect.Client[RespondFeedbackRequest, FeedbackResponse]
}

func NewFeedbackServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *FeedbackServiceClient {
	return &FeedbackServiceClient{
		submitFeedback:  newClient[SubmitFeedbackRequest, FeedbackResponse](httpClient, baseURL, FeedbackServiceSubmitFeedbackProcedure, opts),
		listFeedbacks:   newClient[ListFeedbacksRequest, ListFeedbacksResponse](httpClient, baseURL, FeedbackServiceListFeedbacksProcedure, opts),
		respondFeedback: newClient[RespondFeedbackRequest, FeedbackResponse](httpClient, baseURL, FeedbackServiceRespondFeedbackProcedure, opts),
	}
}

func (c *FeedbackServiceClient) SubmitFeedback(ctx context.Context, req *connect.Request[SubmitFeedbackRequest]) (*connect.Response[FeedbackResponse], error) {
	return c.submitFeedback.CallUnary(ctx, req)
}

func (c *FeedbackServiceClient) ListFeedbacks(ctx context.Context, req *connect.Request[ListFeedbacksRequest]) (*connect.Response[ListFeedbacksResponse], error) {
	return c.listFeedbacks.CallUnary(ctx, req)
}

func (c *FeedbackServiceClient) RespondFeedback(ctx context.Context, req *connect.Request[RespondFeedbackRequest]) (*connect.Response[FeedbackResponse], error) {
	return c.respondFeedback.CallUnary(ctx, req)
}
