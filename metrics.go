package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statsOutcomeOK       = "ok"
	statsOutcomeNotFound = "not_found"
	statsOutcomeInvalid  = "invalid"
	statsOutcomeError    = "error"
)

var (
	statsRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fit_track",
		Subsystem: "stats",
		Name:      "requests_total",
		Help:      "Stats computations by outcome.",
	}, []string{"outcome"})
	statsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fit_track",
		Subsystem: "stats",
		Name:      "duration_seconds",
		Help:      "Time spent loading inputs and computing /stats.",
		Buckets:   prometheus.DefBuckets,
	})
	logWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fit_track",
		Subsystem: "logs",
		Name:      "writes_total",
		Help:      "Daily log writes by kind (weight, workout, steps, water, nutrition, ...).",
	}, []string{"kind"})
	checkinsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fit_track",
		Subsystem: "push",
		Name:      "checkins_total",
		Help:      "Check-in notifications handed to the delivery worker, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(statsRequests, statsDuration, logWrites, checkinsPublished)
}

// recordStats counts one /stats request and observes its latency.
func recordStats(outcome string, started time.Time) {
	statsRequests.WithLabelValues(outcome).Inc()
	statsDuration.Observe(time.Since(started).Seconds())
}

// recordLogWrite counts a successful write to one of the daily logs.
func recordLogWrite(kind string) {
	logWrites.WithLabelValues(kind).Inc()
}
