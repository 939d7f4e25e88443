package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	paymentsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_confirmed_total",
			Help: "Total number of confirmed payments by product type",
		},
		[]string{"product_type"},
	)

	webhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Total number of payment webhooks by outcome",
		},
		[]string{"event", "result"},
	)

	subscriptionsActivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Total number of subscriptions activated",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)

	crmFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_failures_total",
			Help: "Total number of swallowed CRM bookkeeping failures",
		},
		[]string{"step"},
	)

	referralAttributions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_attributions_total",
			Help: "Total number of referral signups by result",
		},
		[]string{"result"},
	)

	remindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total number of event reminders enqueued by slot",
		},
		[]string{"slot"},
	)

	outboxTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_tasks_total",
			Help: "Total number of processed outbox tasks by result",
		},
		[]string{"kind", "result"},
	)

	outboxBacklog = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outbox_tasks_by_status",
			Help: "Current number of outbox tasks by status",
		},
		[]string{"status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão da rota do chi (/events/{eventId}/...) para não
// explodir a cardinalidade com ids.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func RecordPaymentConfirmed(productType string) {
	paymentsConfirmed.WithLabelValues(productType).Inc()
}

func RecordWebhook(event, result string) {
	webhooksReceived.WithLabelValues(event, result).Inc()
}

func RecordSubscriptionActivation() {
	subscriptionsActivated.Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// RecordCRMFailures conta cada passo de CRM que falhou e foi engolido.
func RecordCRMFailures(steps []string) {
	for _, step := range steps {
		crmFailures.WithLabelValues(step).Inc()
	}
}

func RecordReferralAttribution(result string) {
	referralAttributions.WithLabelValues(result).Inc()
}

func RecordRemindersSent(bySlot map[int]int) {
	for slot, n := range bySlot {
		remindersSent.WithLabelValues(strconv.Itoa(slot)).Add(float64(n))
	}
}

func RecordOutboxTask(kind, result string) {
	outboxTasks.WithLabelValues(kind, result).Inc()
}

func RecordTwoHourReminders(n int) {
	remindersSent.WithLabelValues("2h").Add(float64(n))
}

// SetOutboxBacklog zera os status ausentes para o gauge não ficar com valor velho.
func SetOutboxBacklog(byStatus map[string]int) {
	for _, status := range []string{"pending", "dispatched", "done", "dead"} {
		outboxBacklog.WithLabelValues(status).Set(float64(byStatus[status]))
	}
}
