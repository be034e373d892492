package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Business metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status"}, // success, failure
	)

	investmentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "investments_created_total",
			Help: "Total number of investments created",
		},
	)

	investmentsActivatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "investments_activated_total",
			Help: "Total number of investments auto-activated on their start date",
		},
	)

	transactionsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_recorded_total",
			Help: "Total number of transactions recorded",
		},
		[]string{"type"}, // PAYMENT, DEPOSIT, WITHDRAWAL, PROFIT
	)

	notificationsEmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_emitted_total",
			Help: "Total number of notifications emitted",
		},
	)
)

// PrometheusMiddleware creates a middleware that records Prometheus metrics
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip metrics endpoint itself
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		// Wrap response writer to capture status code and size
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Handle request
		next.ServeHTTP(wrapped, r)

		// Record metrics
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, statusCode).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, statusCode).Observe(duration)
		httpResponseSize.WithLabelValues(r.Method, r.URL.Path).Observe(float64(wrapped.size))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// RecordAuthAttempt records an authentication attempt
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}

// RecordInvestmentCreated records a new investment
func RecordInvestmentCreated() {
	investmentsCreatedTotal.Inc()
}

// RecordInvestmentActivated records a PENDING -> ACTIVE transition
func RecordInvestmentActivated() {
	investmentsActivatedTotal.Inc()
}

// RecordTransaction records a recorded transaction by type
func RecordTransaction(transactionType string) {
	transactionsRecordedTotal.WithLabelValues(transactionType).Inc()
}

// RecordNotificationEmitted records an emitted notification
func RecordNotificationEmitted() {
	notificationsEmittedTotal.Inc()
}

// UpdateDBConnections updates database connection metrics
func UpdateDBConnections(active, idle int) {
	dbConnectionsActive.Set(float64(active))
	dbConnectionsIdle.Set(float64(idle))
}
