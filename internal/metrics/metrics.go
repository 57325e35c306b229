package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchAttempts counts every POST sent to a knowledge-check endpoint.
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_check_fetch_attempts_total",
			Help: "Total number of knowledge-check fetch attempts",
		},
		[]string{"endpoint"},
	)

	// FetchFailures counts failed attempts by reason.
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_check_fetch_failures_total",
			Help: "Total number of failed knowledge-check fetch attempts",
		},
		[]string{"endpoint", "reason"},
	)

	// QuestionsDropped counts raw records rejected by the normalizer.
	QuestionsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_check_questions_dropped_total",
			Help: "Total number of malformed question records dropped",
		},
		[]string{"difficulty"},
	)
)
