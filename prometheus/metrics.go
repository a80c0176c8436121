package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notes_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notes_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Note operation counter
	NoteOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_note_operations_total",
			Help: "Total number of note operations",
		},
		[]string{"operation"}, // operation can be "list", "create", "get", "update", "delete"
	)

	// Tenant operation counter
	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"}, // operation can be "upgrade", "resolve", etc.
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "missing_token", "invalid_token", "profile_not_found" etc.
	)

	// Note-specific error counter
	NoteErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_note_errors_total",
			Help: "Total number of note operation errors",
		},
		[]string{"type"}, // type can be "missing_title", "not_found", "db_error" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notes_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notes_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notes_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notes_info",
			Help: "Information about the notes service",
		},
		[]string{"version"},
	)

	// Notes per tenant
	NotesPerTenantGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notes_per_tenant",
			Help: "Number of notes per tenant",
		},
		[]string{"tenant_id", "tenant_slug"},
	)

	// Pro tenants
	ProTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notes_pro_tenants",
			Help: "Number of tenants on the pro plan",
		},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(NoteOperationCounter)
	prometheus.MustRegister(TenantOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(NoteErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)
	prometheus.MustRegister(NotesPerTenantGauge)
	prometheus.MustRegister(ProTenantsGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// IncreaseActiveTokens increments the active tokens gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// DecreaseActiveTokens decrements the active tokens gauge
func DecreaseActiveTokens() {
	ActiveTokensGauge.Dec()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordNoteError records a note operation error by type
func RecordNoteError(errorType string) {
	NoteErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordNoteOperation records a note operation
func RecordNoteOperation(operation string) {
	NoteOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordTenantOperation records a tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// UpdateNotesPerTenant updates the notes per tenant gauge
func UpdateNotesPerTenant(tenantID uint, tenantSlug string, count int) {
	NotesPerTenantGauge.With(prometheus.Labels{
		"tenant_id":   strconv.FormatUint(uint64(tenantID), 10),
		"tenant_slug": tenantSlug,
	}).Set(float64(count))
}

// UpdateProTenants updates the pro tenants gauge
func UpdateProTenants(count int) {
	ProTenantsGauge.Set(float64(count))
}
