package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/events"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/featureflags"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/handler"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/infrastructure/logger"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/infrastructure/redis"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/observability/metrics"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/observability/tracing"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/repository"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/audit"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/auth"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/middleware"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/ratelimit"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/worker"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/config"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting SmartRent360 server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "smartrent360-backend", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to PostgreSQL and apply schema
	pool, err := database.NewConnectionPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Connect to Redis. The cache is optional: without it stats queries
	// hit the database on every call.
	var cache *redis.Client
	if c, err := redis.NewClient(cfg.RedisURL); err != nil {
		log.Warn("redis unavailable, stats caching disabled", slog.String("error", err.Error()))
	} else {
		cache = c
		defer cache.Close()
	}

	// 6. Initialize repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	propertyRepo := repository.NewPostgresPropertyRepository(db, log)
	requestRepo := repository.NewPostgresRequestRepository(db, log)
	commissionRepo := repository.NewPostgresCommissionRepository(db, log)
	statsRepo := repository.NewPostgresStatsRepository(db, log)

	// 7. Initialize services
	broker := events.NewBroker(log)
	userService := service.NewUserService(userRepo, broker, log)
	propertyService := service.NewPropertyService(propertyRepo, userRepo, broker, log)
	requestService := service.NewRequestService(requestRepo, userRepo, propertyRepo, broker, log)
	commissionService := service.NewCommissionService(commissionRepo, userRepo, propertyRepo, log)
	adminService := service.NewAdminService(statsRepo, cache, cfg.StatsCacheTTL, log)

	// 8. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 9. Initialize handlers
	userHandler := handler.NewUserHandler(userService, tokenManager, auditLogger, log)
	propertyHandler := handler.NewPropertyHandler(propertyService, auditLogger, log)
	requestHandler := handler.NewRequestHandler(requestService, auditLogger, log)
	commissionHandler := handler.NewCommissionHandler(commissionService, log)
	adminHandler := handler.NewAdminHandler(adminService, log)
	healthHandler := handler.NewHealthHandler(pool, cache, log)
	eventsHandler := handler.NewEventsHandler(broker, tokenManager, log, cfg.CORSAllowedOrigins)

	authenticate := middleware.Authenticate(tokenManager, log)
	rateLimit := middleware.RateLimit(rateLimiter, log)
	adminOnly := middleware.RequireRoles(log, domain.RoleAdmin)

	authed := func(h http.HandlerFunc) http.Handler {
		return authenticate(rateLimit(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authenticate(rateLimit(adminOnly(h)))
	}
	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(h)
	}

	// 10. Setup HTTP routes
	prefix := "/api/" + cfg.APIVersion
	mux := http.NewServeMux()

	mux.Handle("POST "+prefix+"/users/register", public(userHandler.Register))
	mux.Handle("POST "+prefix+"/users/login", strictLimit(rateLimiter, log, public(userHandler.Login)))

	mux.Handle("GET "+prefix+"/users/pending/verification", admin(userHandler.PendingVerification))
	mux.Handle("GET "+prefix+"/users/{id}", authed(userHandler.GetByID))
	mux.Handle("PATCH "+prefix+"/users/{id}/verify", admin(userHandler.Verify))
	mux.Handle("GET "+prefix+"/users/{id}/properties", authed(propertyHandler.ListByOwner))

	mux.Handle("GET "+prefix+"/properties", public(propertyHandler.List))
	mux.Handle("GET "+prefix+"/properties/pending/verification", admin(propertyHandler.PendingVerification))
	mux.Handle("GET "+prefix+"/properties/{id}", public(propertyHandler.GetByID))
	mux.Handle("POST "+prefix+"/properties", authed(propertyHandler.Create))
	mux.Handle("PATCH "+prefix+"/properties/{id}", authed(propertyHandler.Update))
	mux.Handle("PATCH "+prefix+"/properties/{id}/verify", admin(propertyHandler.Verify))
	mux.Handle("POST "+prefix+"/properties/{id}/media", authed(propertyHandler.AddMedia))

	mux.Handle("POST "+prefix+"/requests", authed(requestHandler.Create))
	mux.Handle("GET "+prefix+"/requests", authed(requestHandler.List))
	mux.Handle("GET "+prefix+"/requests/{id}", authed(requestHandler.GetByID))
	mux.Handle("PATCH "+prefix+"/requests/{id}/connect", admin(requestHandler.Connect))
	mux.Handle("PATCH "+prefix+"/requests/{id}/complete", admin(requestHandler.Complete))

	mux.Handle("POST "+prefix+"/commissions", authed(commissionHandler.Create))
	mux.Handle("GET "+prefix+"/commissions", authed(commissionHandler.List))
	mux.Handle("GET "+prefix+"/commissions/{id}", authed(commissionHandler.GetByID))

	mux.Handle("GET "+prefix+"/admin/stats", admin(adminHandler.Stats))

	// Event feed validates its own token; browsers cannot set the
	// Authorization header on WebSocket connections.
	mux.Handle("GET /ws/events", eventsHandler)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> tracing -> metrics -> CORS -> routes
	rootHandler := withRequestID(
		otelhttp.NewHandler(
			metrics.HTTPMetricsMiddleware(handlerWithCORS),
			"smartrent360",
		),
		log,
	)

	// 11. Start stats warmer when enabled. It refreshes the dashboard
	// aggregate in the background so admin loads are always cache hits.
	if featureflags.Enabled("stats_warmer") {
		statsWarmer := worker.NewStatsWarmer(adminService, log, cfg.StatsCacheTTL)
		go statsWarmer.Start(ctx)
	}

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("api_version", cfg.APIVersion),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	log.Info("server stopped")
}

// strictLimit applies a tight per-address budget in front of the login route
// to slow down credential stuffing.
func strictLimit(limiter *ratelimit.Limiter, log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.AllowStrict(r.RemoteAddr, 10, time.Minute) {
			log.Warn("login rate limit exceeded", slog.String("remote_addr", r.RemoteAddr))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "error",
				"message": "Too many login attempts",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
