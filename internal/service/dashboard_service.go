package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/calculator"
	"github.com/mmynk/messmonitor/internal/dashboard"
	"github.com/mmynk/messmonitor/internal/metrics"
	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/session"
	"github.com/mmynk/messmonitor/pkg/api"
)

// DashboardStorage is what dashboards read from the store.
type DashboardStorage interface {
	dashboard.Source
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// DashboardService implements the DashboardService RPC interface.
type DashboardService struct {
	store   DashboardStorage
	policy  calculator.DuesPolicy
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDashboardService creates a new dashboard service. m may be nil.
func NewDashboardService(store DashboardStorage, policy calculator.DuesPolicy, m *metrics.Metrics, logger *slog.Logger) *DashboardService {
	return &DashboardService{store: store, policy: policy, metrics: m, logger: logger}
}

func (s *DashboardService) options() []dashboard.Option {
	opts := []dashboard.Option{
		dashboard.WithDuesPolicy(s.policy),
		dashboard.WithLogger(s.logger),
	}
	if s.metrics != nil {
		opts = append(opts, dashboard.WithMetrics(s.metrics))
	}
	return opts
}

// GetStatistics computes the admin statistics once from fresh reads.
func (s *DashboardService) GetStatistics(ctx context.Context, req *connect.Request[api.GetStatisticsRequest]) (*connect.Response[api.GetStatisticsResponse], error) {
	if err := middleware.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	state, err := dashboard.Load(ctx, s.store, dashboard.KindAdmin, "", s.options()...)
	if err != nil {
		s.logger.Error("Failed to compute statistics", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.GetStatisticsResponse{Statistics: *state.Statistics}), nil
}

// WatchDashboard streams the caller's dashboard: the admin view for admins,
// the own-profile view for members. A new state is sent after every change
// to any collection the view depends on, until the client disconnects.
func (s *DashboardService) WatchDashboard(ctx context.Context, req *connect.Request[api.WatchDashboardRequest], stream *connect.ServerStream[api.WatchDashboardResponse]) error {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return err
	}

	user, err := s.store.GetUser(ctx, uid)
	if err != nil {
		return storeError(s.logger, "Failed to load dashboard user", err, "user_id", uid)
	}

	gate := session.NewGate()
	if _, err := gate.SignIn(user); err != nil {
		return connect.NewError(connect.CodeUnauthenticated, err)
	}

	var view *dashboard.View
	switch gate.View() {
	case session.ViewAdminDashboard:
		view = dashboard.NewAdminView(s.store, s.options()...)
	case session.ViewMemberProfile:
		view = dashboard.NewMemberView(s.store, uid, s.options()...)
	default:
		return connect.NewError(connect.CodeUnauthenticated, session.ErrNoUser)
	}

	if s.metrics != nil {
		s.metrics.ActiveViews.Inc()
		defer s.metrics.ActiveViews.Dec()
	}
	s.logger.Info("Dashboard stream opened", "user_id", uid, "view", gate.View())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sendErr error
	err = view.Run(ctx, func(state dashboard.State) {
		if sendErr != nil {
			return
		}
		if err := stream.Send(&api.WatchDashboardResponse{View: gate.View(), State: state}); err != nil {
			sendErr = err
			cancel()
		}
	})
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Dashboard stream closed", "user_id", uid, "send_error", sendErr)
	return nil
}
