package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/mmynk/messmonitor/internal/auth"
	"github.com/mmynk/messmonitor/internal/calculator"
	"github.com/mmynk/messmonitor/internal/metrics"
	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage/sqlite"
	"github.com/mmynk/messmonitor/pkg/api"
)

const testAdminKey = "mess-admin-key"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// testEnv is a running server backed by a temp SQLite database.
type testEnv struct {
	store   *sqlite.SQLiteStore
	metrics *metrics.Metrics
	url     string
}

// clients holds one client per service, all sending the same token.
type clients struct {
	auth          *api.AuthServiceClient
	members       *api.MemberServiceClient
	funds         *api.FundServiceClient
	announcements *api.AnnouncementServiceClient
	notifications *api.NotificationServiceClient
	feedback      *api.FeedbackServiceClient
	dashboard     *api.DashboardServiceClient
}

// setupTestServer creates a test server with the admin key configured and no
// registration limit.
func setupTestServer(t *testing.T) (*testEnv, func()) {
	return setupTestServerWithLimiter(t, nil)
}

func setupTestServerWithLimiter(t *testing.T, limiter *rate.Limiter) (*testEnv, func()) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.SetSecrets(context.Background(), &models.Secrets{AdminKey: testAdminKey}); err != nil {
		t.Fatalf("failed to seed secrets: %v", err)
	}

	m := metrics.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	services := Services{
		Auth:          NewAuthService(authenticator, jwtManager, store, store, limiter, discard),
		Members:       NewMemberService(store, discard),
		Funds:         NewFundService(store, discard),
		Announcements: NewAnnouncementService(store, 4, m, discard),
		Notifications: NewNotificationService(store, discard),
		Feedback:      NewFeedbackService(store, discard),
		Dashboard:     NewDashboardService(store, calculator.DuesPolicy{PerMember: calculator.DefaultDuesPerMember}, m, discard),
	}

	interceptors := connect.WithInterceptors(
		middleware.NewAuthInterceptor(jwtManager, api.PublicProcedures...),
		middleware.LoggingInterceptor(),
	)
	mux := http.NewServeMux()
	services.Mount(mux, interceptors)
	server := httptest.NewServer(mux)

	cleanup := func() {
		server.Close()
		store.Close()
	}
	return &testEnv{store: store, metrics: m, url: server.URL}, cleanup
}

// as returns clients authenticated with token. An empty token sends none.
func (e *testEnv) as(token string) *clients {
	var opts []connect.ClientOption
	if token != "" {
		opts = append(opts, connect.WithInterceptors(middleware.BearerToken(token)))
	}
	return &clients{
		auth:          api.NewAuthServiceClient(http.DefaultClient, e.url, opts...),
		members:       api.NewMemberServiceClient(http.DefaultClient, e.url, opts...),
		funds:         api.NewFundServiceClient(http.DefaultClient, e.url, opts...),
		announcements: api.NewAnnouncementServiceClient(http.DefaultClient, e.url, opts...),
		notifications: api.NewNotificationServiceClient(http.DefaultClient, e.url, opts...),
		feedback:      api.NewFeedbackServiceClient(http.DefaultClient, e.url, opts...),
		dashboard:     api.NewDashboardServiceClient(http.DefaultClient, e.url, opts...),
	}
}

// register creates an account and returns its user and token.
func (e *testEnv) register(t *testing.T, name string, role models.Role) (*models.User, string) {
	t.Helper()
	req := &api.RegisterRequest{
		Email:    name + "@mess.test",
		Password: "password123",
		Name:     name,
		Role:     role,
	}
	if role == models.RoleAdmin {
		req.AdminKey = testAdminKey
	}
	resp, err := e.as("").auth.Register(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("Register %s failed: %v", name, err)
	}
	return resp.Msg.User, resp.Msg.Token
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}
