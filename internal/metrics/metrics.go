package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitlink_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitlink_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	XPAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "habitlink_xp_awarded_total",
			Help: "Total XP written to the ledger",
		},
	)
	LevelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "habitlink_level_ups_total",
			Help: "Awards that moved a user to a higher level",
		},
	)
	FriendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitlink_friend_requests_total",
			Help: "Friend request attempts by outcome code",
		},
		[]string{"result"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitlink_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"resource"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(XPAwarded)
	prometheus.MustRegister(LevelUps)
	prometheus.MustRegister(FriendRequests)
	prometheus.MustRegister(RateLimited)
}

// Outcome turns an error code into a low-cardinality label value.
func Outcome(code string) string {
	if code == "" {
		return "ok"
	}
	return code
}
