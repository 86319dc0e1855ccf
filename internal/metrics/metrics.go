// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Inference sources.
const (
	SourceRules    = "rules"
	SourceFreeText = "free_text"
	SourceProfile  = "profile"
	SourceExtra    = "extra"
)

var (
	// tagsInferredTotal counts tags produced by the engine.
	// Labels: source (rules, free_text, profile, extra)
	tagsInferredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxon",
		Subsystem: "engine",
		Name:      "tags_inferred_total",
		Help:      "Total tags produced by the inference engine by source",
	}, []string{"source"})

	// catalogMutationsTotal counts curation operations.
	// Labels: op (promote, demote, replace, reset_scores), result (changed, noop, error)
	catalogMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxon",
		Subsystem: "catalog",
		Name:      "mutations_total",
		Help:      "Total catalog curation operations by outcome",
	}, []string{"op", "result"})

	// scoreBumpsTotal counts score board updates.
	// Labels: direction (up, down)
	scoreBumpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxon",
		Subsystem: "scores",
		Name:      "bumps_total",
		Help:      "Total tag score bumps by direction",
	}, []string{"direction"})

	// taggingEventsTotal counts recorded tagging events.
	// Labels: kind (habit, reward, product, profile)
	taggingEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxon",
		Subsystem: "scores",
		Name:      "tagging_events_total",
		Help:      "Total tagged entity create or edit events by kind",
	}, []string{"kind"})
)

// RecordInferred adds n tags produced by source.
func RecordInferred(source string, n int) {
	if n > 0 {
		tagsInferredTotal.WithLabelValues(source).Add(float64(n))
	}
}

// RecordMutation records the outcome of a curation operation.
func RecordMutation(op string, changed bool, err error) {
	result := "noop"
	switch {
	case err != nil:
		result = "error"
	case changed:
		result = "changed"
	}
	catalogMutationsTotal.WithLabelValues(op, result).Inc()
}

// RecordBumps records added and removed tag counts of one tagging event.
func RecordBumps(kind string, up, down int) {
	taggingEventsTotal.WithLabelValues(kind).Inc()
	if up > 0 {
		scoreBumpsTotal.WithLabelValues("up").Add(float64(up))
	}
	if down > 0 {
		scoreBumpsTotal.WithLabelValues("down").Add(float64(down))
	}
}
