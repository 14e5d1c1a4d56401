package ratelimit

import "github.com/prometheus/client_golang/prometheus"

var decisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "ratelimit_decisions_total", Help: "Rate/abuse gate decisions"},
	[]string{"outcome", "role"},
)

func init() { prometheus.MustRegister(decisionsTotal) }
