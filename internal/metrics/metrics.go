package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placement_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "placement_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	JobFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placement_job_fetch_total",
		Help: "External job-search calls by outcome.",
	}, []string{"outcome"})

	AssistantRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placement_assistant_requests_total",
		Help: "Assistant queries by outcome.",
	}, []string{"outcome"})

	ResumeReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "placement_resume_reviews_total",
		Help: "Resume reviews by verdict.",
	}, []string{"verdict"})

	Applications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "placement_applications_total",
		Help: "Applications submitted.",
	})
)
