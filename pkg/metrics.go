package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP-level metrics, observed by the delivery middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarket_http_requests_total",
		Help: "HTTP requests processed, by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookmarket_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Domain counters, incremented by the services.
var (
	OffersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarket_offers_created_total",
		Help: "Offers created against sell posts.",
	})

	OffersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarket_offers_accepted_total",
		Help: "Offers accepted by sellers or buyers.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarket_messages_sent_total",
		Help: "Conversation messages appended.",
	})

	ReviewsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookmarket_reviews_created_total",
		Help: "Seller reviews created.",
	})
)
