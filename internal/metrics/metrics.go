// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Invitation outcomes.
const (
	OutcomeIssued    = "issued"
	OutcomeAccepted  = "accepted"
	OutcomeDeclined  = "declined"
	OutcomeExpired   = "expired"
	OutcomeCancelled = "cancelled"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

var (
	invitations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_invitations_total",
		Help: "Board invitations by lifecycle outcome.",
	}, []string{"outcome"})

	emails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_emails_total",
		Help: "Notification emails by kind and delivery result.",
	}, []string{"kind", "result"})

	duplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_duplications_total",
		Help: "Board duplication attempts by result.",
	}, []string{"result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func InvitationOutcome(outcome string) {
	invitations.WithLabelValues(outcome).Inc()
}

func EmailDelivery(kind, result string) {
	emails.WithLabelValues(kind, result).Inc()
}

func Duplication(result string) {
	duplications.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
