package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/dashboard"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/session"
)

const DashboardServiceName = "DashboardService"

const (
	DashboardServiceGetStatisticsProcedure  = "/" + Package + "." + DashboardServiceName + "/GetStatistics"
	DashboardServiceWatchDashboardProcedure = "/" + Package + "." + DashboardServiceName + "/WatchDashboard"
)

type GetStatisticsRequest struct{}

type GetStatisticsResponse struct {
	Statistics models.Statistics `json:"statistics"`
}

type WatchDashboardRequest struct{}

// WatchDashboardResponse is one reconciled dashboard pushed on the stream.
type WatchDashboardResponse struct {
	View  session.View    `json:"view"`
	State dashboard.State `json:"state"`
}

type DashboardServiceHandler interface {
	GetStatistics(context.Context, *connect.Request[GetStatisticsRequest]) (*connect.Response[GetStatisticsResponse], error)
	WatchDashboard(context.Context, *connect.Request[WatchDashboardRequest], *connect.ServerStream[WatchDashboardResponse]) error
}

func NewDashboardServiceHandler(svc DashboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(DashboardServiceName, opts)
	unary(s, DashboardServiceGetStatisticsProcedure, svc.GetStatistics)
	serverStream(s, DashboardServiceWatchDashboardProcedure, svc.WatchDashboard)
	return s.handler()
}

type DashboardServiceClient struct {
	getStatistics  *connect.Client[GetStatisticsRequest, GetStatisticsResponse]
	watchDashboard *connect.Client[WatchDashboardRequest, WatchDashboardResponse]
}

func NewDashboardServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DashboardServiceClient {
	return &DashboardServiceClient{
		getStatistics:  newClient[GetStatisticsRequest, GetStatisticsResponse](httpClient, baseURL, DashboardServiceGetStatisticsProcedure, opts),
		watchDashboard: newClient[WatchDashboardRequest, WatchDashboardResponse](httpClient, baseURL, DashboardServiceWatchDashboardProcedure, opts),
	}
}

func (c *DashboardServiceClient) GetStatistics(ctx context.Context, req *connect.Request[GetStatisticsRequest]) (*connect.Response[GetStatisticsResponse], error) {
	return c.getStatistics.CallUnary(ctx, req)
}

func (c *DashboardServiceClient) WatchDashboard(ctx context.Context, req *connect.Request[WatchDashboardRequest]) (*connect.ServerStreamForClient[WatchDashboardResponse], error) {
	return c.watchDashboard.CallServerStream(ctx, req)
}
