package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_http_requests_total",
			Help: "Total number of HTTP requests processed by the invite service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invite_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	invitationsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_invitations_created_total",
			Help: "Total number of invitations recorded locally.",
		},
	)
	invitationTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_invitation_transitions_total",
			Help: "Total number of committed terminal invitation transitions.",
		},
		[]string{"status"},
	)
	gatewayAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_gateway_attempts_total",
			Help: "Total number of notification gateway delivery attempts.",
		},
		[]string{"outcome"},
	)
	compensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_compensations_total",
			Help: "Total number of compensating rollbacks after gateway exhaustion.",
		},
		[]string{"operation"},
	)
	resyncRequiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_resync_required_total",
			Help: "Total number of acceptances recorded without a conversation id.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "invite_ws_active_connections",
			Help: "Number of active websocket relay connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_ws_events_total",
			Help: "Total number of websocket relay events.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		invitationsCreatedTotal,
		invitationTransitionsTotal,
		gatewayAttemptsTotal,
		compensationsTotal,
		resyncRequiredTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncInvitationCreated() {
	invitationsCreatedTotal.Inc()
}

func IncTransition(status string) {
	invitationTransitionsTotal.WithLabelValues(status).Inc()
}

func IncGatewayAttempt(outcome string) {
	gatewayAttemptsTotal.WithLabelValues(outcome).Inc()
}

func IncCompensation(operation string) {
	compensationsTotal.WithLabelValues(operation).Inc()
}

func IncResyncRequired() {
	resyncRequiredTotal.Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
