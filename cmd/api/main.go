package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crestmont/internal/config"
	"crestmont/internal/database"
	"crestmont/internal/handlers"
	"crestmont/internal/metrics"
	"crestmont/internal/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second

	activationSweepInterval = 1 * time.Hour
	dbStatsInterval         = 30 * time.Second
)

func main() {
	// Initialize structured logging
	log.SetPrefix("[API] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate critical configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Starting %s v%s", cfg.App.Name, cfg.App.Version)
	log.Printf("Environment: debug=%v, port=%s, host=%s", cfg.App.Debug, cfg.App.Port, cfg.App.Host)

	// Initialize database
	log.Println("Initializing database connection...")
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		log.Println("Closing database connections...")
		if sqlDB, err := database.GetDB().DB(); err == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				log.Printf("Error closing database: %v", closeErr)
			}
		}
	}()

	// Create service instances
	log.Println("Initializing services...")
	db := database.GetDB()
	emitterSvc := services.NewEmitterService(db)
	healthSvc := services.NewHealthService()
	authSvc := services.NewAuthService(db)
	investmentSvc := services.NewInvestmentService(db, emitterSvc)
	transactionSvc := services.NewTransactionService(db, emitterSvc)
	progressSvc := services.NewProgressService(db)

	// Create HTTP handlers
	healthHandler := handlers.NewHealthHandler(healthSvc)
	authHandler := handlers.NewAuthHandler(authSvc)
	investmentHandler := handlers.NewInvestmentHandler(investmentSvc)
	transactionHandler := handlers.NewTransactionHandler(transactionSvc)
	progressHandler := handlers.NewProgressHandler(progressSvc)
	notificationHandler := handlers.NewNotificationHandler(emitterSvc)

	// Mount routes
	log.Println("Mounting HTTP handlers...")
	router := mux.NewRouter()
	router.Use(handlers.RequestIDMiddleware)

	router.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handlers.JWTAuthMiddleware(db))

	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)

	api.HandleFunc("/investments", investmentHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/investments", investmentHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/investments/{id:[0-9]+}", investmentHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/investments/{id:[0-9]+}", investmentHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/investments/{id:[0-9]+}", investmentHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/transactions", transactionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/transactions", transactionHandler.Record).Methods(http.MethodPost)

	api.HandleFunc("/progress", progressHandler.Mine).Methods(http.MethodGet)
	api.HandleFunc("/progress/all", progressHandler.All).Methods(http.MethodGet)

	api.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", notificationHandler.ReadAll).Methods(http.MethodPost)

	// Route /metrics to Prometheus and everything else to the router
	rootHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			promhttp.Handler().ServeHTTP(w, r)
			return
		}
		router.ServeHTTP(w, r)
	})

	// Setup middleware chain: Security -> CORS -> Logging -> Prometheus -> Handler
	handler := setupSecurityHeaders(setupCORS(requestLogging(metrics.PrometheusMiddleware(rootHandler)), cfg), cfg)

	// Background workers: the activation sweep keeps PENDING investments from
	// lingering past their start date even when nobody lists them, and the
	// stats ticker feeds pool gauges.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go activationSweep(workerCtx, investmentSvc)
	go collectDBStats(workerCtx)

	// Create HTTP server with timeouts
	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     log.New(os.Stderr, "[HTTP] ", log.LstdFlags),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server failed to start: %v", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	// Graceful shutdown
	stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during graceful shutdown: %v", err)
		if err == context.DeadlineExceeded {
			log.Println("Shutdown timeout exceeded, forcing close...")
			httpServer.Close()
		}
	}

	log.Println("Server shutdown complete")
}

// activationSweep periodically activates investments whose start date has
// passed. Listing investments performs the same transition lazily; the sweep
// covers quiet periods.
func activationSweep(ctx context.Context, investments *services.InvestmentService) {
	ticker := time.NewTicker(activationSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			activated, err := investments.ActivateDue(time.Now())
			if err != nil {
				log.Printf("[SWEEP] Activation sweep failed: %v", err)
				continue
			}
			if activated > 0 {
				log.Printf("[SWEEP] Activated %d due investments", activated)
			}
		}
	}
}

// collectDBStats feeds connection pool stats into the Prometheus gauges
func collectDBStats(ctx context.Context) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if stats, err := database.GetStats(); err == nil {
				metrics.UpdateDBConnections(stats.OpenConnections, stats.Idle)
			}
		}
	}
}

// validateConfig validates critical configuration values
func validateConfig(cfg *config.Config) error {
	if cfg.Auth.SecretKey == "" || cfg.Auth.SecretKey == "your-secret-key-change-in-production" {
		return fmt.Errorf("SECRET_KEY must be set and changed from default value")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters for security")
	}
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	return nil
}

// setupSecurityHeaders adds security headers to responses
func setupSecurityHeaders(handler http.Handler, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// Remove server identification
		w.Header().Set("Server", "")

		// HSTS (only in production with HTTPS)
		if !cfg.App.Debug && r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		handler.ServeHTTP(w, r)
	})
}

// setupCORS configures CORS based on environment
func setupCORS(handler http.Handler, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// In production, validate against allowed origins
		if !cfg.App.Debug && len(cfg.CORS.AllowedOrigins) > 0 && cfg.CORS.AllowedOrigins[0] != "*" {
			allowed := false
			for _, allowedOrigin := range cfg.CORS.AllowedOrigins {
				if origin == allowedOrigin {
					allowed = true
					break
				}
			}
			if !allowed && origin != "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		}

		// Set CORS headers
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if cfg.App.Debug {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.CORS.AllowedMethods, ", "))
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.CORS.AllowedHeaders, ", "))
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", cfg.CORS.MaxAge))
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogging logs all incoming requests and their responses
func requestLogging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health checks to reduce noise
		if r.URL.Path == "/health" {
			handler.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log.Printf("[REQUEST] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		handler.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		statusText := "OK"
		if wrapped.statusCode >= 400 {
			statusText = "ERROR"
		}
		log.Printf("[RESPONSE] %s %s -> %d %s (%v)", r.Method, r.URL.Path, wrapped.statusCode, statusText, duration)
	})
}
