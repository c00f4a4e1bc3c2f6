package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"

	"github.com/mmynk/messmonitor/internal/auth"
	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/session"
	"github.com/mmynk/messmonitor/internal/storage"
	"github.com/mmynk/messmonitor/pkg/api"
)

var (
	// ErrInvalidAdminKey is returned for an admin registration whose secret
	// does not match config/secrets, or when no secret is configured.
	ErrInvalidAdminKey = errors.New("invalid admin secret key")

	ErrRateLimited = errors.New("too many registrations, try again later")
)

// NewRegisterLimiter allows perMinute registrations per minute with the given burst.
func NewRegisterLimiter(perMinute float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perMinute/60), burst)
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	secrets       storage.ConfigStore
	limiter       *rate.Limiter
	now           func() time.Time
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service. A nil limiter
// disables registration rate limiting.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, secrets storage.ConfigStore, limiter *rate.Limiter, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		secrets:       secrets,
		limiter:       limiter,
		now:           time.Now,
		logger:        logger,
	}
}

// Register creates a credential and a profile. Admin registration must
// present the configured admin key; it is checked before anything is written.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.AuthResponse], error) {
	msg := req.Msg
	s.logger.Info("Register request", "email", msg.Email, "role", msg.Role)

	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Warn("Registration rate limited", "email", msg.Email)
		return nil, connect.NewError(connect.CodeResourceExhausted, ErrRateLimited)
	}

	name := strings.TrimSpace(msg.Name)
	if strings.TrimSpace(msg.Email) == "" {
		return nil, invalidArgument("email is required")
	}
	if name == "" {
		return nil, invalidArgument("name is required")
	}
	role := msg.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, invalidArgument("invalid role %q", msg.Role)
	}
	if err := s.authenticator.ValidateCredential(msg.Password); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if role == models.RoleAdmin {
		if err := s.checkAdminKey(ctx, msg.AdminKey); err != nil {
			return nil, err
		}
	}

	cred, err := s.authenticator.Register(ctx, msg.Email, msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "email", msg.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	var user *models.User
	if role == models.RoleAdmin {
		user = models.NewAdmin(cred.UID, name, cred.Email, msg.Phone)
	} else {
		user = models.NewMember(cred.UID, name, cred.Email, msg.Phone, models.Today(s.now().UTC()))
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		s.logger.Error("Failed to create profile, removing account", "user_id", cred.UID, "error", err)
		if delErr := s.authenticator.Delete(ctx, cred.UID); delErr != nil {
			s.logger.Error("Failed to remove orphan account", "user_id", cred.UID, "error", delErr)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered successfully", "user_id", user.UID, "role", user.Role())
	return connect.NewResponse(resp), nil
}

func (s *AuthService) checkAdminKey(ctx context.Context, key string) error {
	secrets, err := s.secrets.GetSecrets(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("Failed to read admin secret", "error", err)
		}
		return connect.NewError(connect.CodePermissionDenied, ErrInvalidAdminKey)
	}
	if secrets.AdminKey == "" || subtle.ConstantTimeCompare([]byte(secrets.AdminKey), []byte(key)) != 1 {
		s.logger.Warn("Admin registration with wrong secret")
		return connect.NewError(connect.CodePermissionDenied, ErrInvalidAdminKey)
	}
	return nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.AuthResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	cred, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	user, err := s.users.GetUser(ctx, cred.UID)
	if err != nil {
		return nil, storeError(s.logger, "Failed to load profile", err, "user_id", cred.UID)
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in", "user_id", user.UID)
	return connect.NewResponse(resp), nil
}

func (s *AuthService) issue(user *models.User) (*api.AuthResponse, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.UID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return &api.AuthResponse{
		User:  user,
		Token: token,
		View:  session.Route(session.StateFor(user.Role())),
	}, nil
}

// Logout ends the session. Tokens are stateless, so the client discards its
// token; the call only records the sign-out.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	s.logger.Info("User logged out", "user_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the caller's profile and view.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	uid, err := middleware.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, storeError(s.logger, "Failed to load current user", err, "user_id", uid)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{
		User: user,
		View: session.Route(session.StateFor(user.Role())),
	}), nil
}
