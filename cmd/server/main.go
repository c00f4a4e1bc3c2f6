package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/messmonitor/internal/auth"
	"github.com/mmynk/messmonitor/internal/calculator"
	"github.com/mmynk/messmonitor/internal/config"
	"github.com/mmynk/messmonitor/internal/metrics"
	"github.com/mmynk/messmonitor/internal/middleware"
	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/service"
	"github.com/mmynk/messmonitor/internal/storage/sqlite"
	"github.com/mmynk/messmonitor/pkg/api"
	"github.com/mmynk/messmonitor/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)
	logger := slog.Default()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = auth.RandomSecret()
		if err != nil {
			slog.Error("Failed to generate JWT secret", "error", err)
			os.Exit(1)
		}
		slog.Warn("JWT_SECRET not set, using a random secret; sessions end on restart")
	}
	jwtManager := auth.NewJWTManager(jwtSecret, cfg.TokenTTL)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	if cfg.AdminKey != "" {
		if err := store.SetSecrets(context.Background(), &models.Secrets{AdminKey: cfg.AdminKey}); err != nil {
			slog.Error("Failed to store admin secret", "error", err)
			os.Exit(1)
		}
		slog.Info("Admin secret configured")
	}

	m := metrics.New()
	authenticator := auth.NewPasswordAuthenticator(store)
	limiter := service.NewRegisterLimiter(cfg.RegisterRatePerMinute, cfg.RegisterBurst)
	policy := calculator.DuesPolicy{PerMember: cfg.DuesPerMember}

	services := service.Services{
		Auth:          service.NewAuthService(authenticator, jwtManager, store, store, limiter, logger),
		Members:       service.NewMemberService(store, logger),
		Funds:         service.NewFundService(store, logger),
		Announcements: service.NewAnnouncementService(store, cfg.FanoutConcurrency, m, logger),
		Notifications: service.NewNotificationService(store, logger),
		Feedback:      service.NewFeedbackService(store, logger),
		Dashboard:     service.NewDashboardService(store, policy, m, logger),
	}

	mux := http.NewServeMux()

	// Register Connect services
	interceptors := connect.WithInterceptors(
		middleware.NewAuthInterceptor(jwtManager, api.PublicProcedures...),
		middleware.LoggingInterceptor(),
	)
	services.Mount(mux, interceptors)
	mux.Handle("/metrics", m.Handler())

	// Serve static files from frontend/static
	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/"+api.Package+".") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))

		// Unknown paths fall back to the login page
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})

	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming)
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	addr := cfg.Addr()
	slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
