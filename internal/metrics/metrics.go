package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MatchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nikoh_match_requests_total",
		Help: "Match request transitions by resulting status",
	}, []string{"status"})
	ChatsOpenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nikoh_chats_opened_total",
		Help: "Chats opened by accepted requests",
	})
	MessagesPostedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nikoh_chat_messages_total",
		Help: "Chat messages stored",
	})
	EntitlementsGrantedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nikoh_entitlements_granted_total",
		Help: "Entitlements granted by tariff",
	}, []string{"tariff"})
	PaymentsReviewedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nikoh_payments_reviewed_total",
		Help: "Payment reviews by outcome",
	}, []string{"status"})
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nikoh_notifications_total",
		Help: "Outbox delivery attempts by kind and resulting status",
	}, []string{"kind", "status"})
	RetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nikoh_conflict_retries_total",
		Help: "Transactions retried after a persistence conflict",
	}, []string{"action"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		MatchRequestsTotal, ChatsOpenedTotal, MessagesPostedTotal,
		EntitlementsGrantedTotal, PaymentsReviewedTotal, NotificationsTotal, RetriesTotal,
		HTTPRequestsTotal, HTTPRequestDuration,
	)
}

// Middleware records request counts and latency per route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		labels := prometheus.Labels{"method": c.Method(), "path": path, "status": strconv.Itoa(status)}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
		return err
	}
}
