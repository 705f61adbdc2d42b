package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	variantLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tutor_variant_search_latency_ms",
		Help:    "Latency of per-variant vector searches in milliseconds",
		Buckets: []float64{10, 25, 50, 75, 100, 150, 200, 300, 500, 800, 1200},
	}, []string{"variant"})

	variantResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tutor_variant_search_results",
		Help:    "Number of results returned per query variant",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	}, []string{"variant"})

	mergeLists = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tutor_merge_input_lists",
		Help:    "Number of variant result lists merged per question",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	cleaningReduction = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tutor_cleaning_reduction_percent",
		Help:    "Size reduction of one cleaning pass, in percent",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 30, 50, 75, 100},
	})

	ingestOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_ingest_outcome_total",
		Help: "Ingestion attempts by terminal state",
	}, []string{"state"})

	droppedPassages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_dropped_passages_total",
		Help: "Passages dropped during ingestion (duplicate or filtered)",
	}, []string{"reason"})

	askOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_ask_outcome_total",
		Help: "Answer attempts by outcome kind",
	}, []string{"kind"})

	intentClassified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_intent_classified_total",
		Help: "Questions classified by intent",
	}, []string{"intent"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(variantLatency, variantResults, mergeLists,
			cleaningReduction, ingestOutcome, droppedPassages, askOutcome, intentClassified)
	})
}

// ObserveVariantSearch records latency and result size for one variant.
func ObserveVariantSearch(variant string, start time.Time, results int) {
	ensureRegistered()
	dur := time.Since(start).Milliseconds()
	variantLatency.WithLabelValues(variant).Observe(float64(dur))
	variantResults.WithLabelValues(variant).Observe(float64(results))
}

// ObserveMerge records how many variant lists were merged.
func ObserveMerge(n int) {
	ensureRegistered()
	mergeLists.Observe(float64(n))
}

// ObserveCleaningReduction records the size reduction of a cleaning pass.
func ObserveCleaningReduction(percent float64) {
	ensureRegistered()
	if percent >= 0 {
		cleaningReduction.Observe(percent)
	}
}

// IncIngestOutcome counts one ingestion attempt by terminal state.
func IncIngestOutcome(state string) {
	ensureRegistered()
	ingestOutcome.WithLabelValues(state).Inc()
}

// AddDroppedPassages counts passages dropped for the given reason
// ("duplicate" or "filtered").
func AddDroppedPassages(reason string, n int) {
	ensureRegistered()
	if n > 0 {
		droppedPassages.WithLabelValues(reason).Add(float64(n))
	}
}

// IncAskOutcome counts one answer attempt by outcome kind.
func IncAskOutcome(kind string) {
	ensureRegistered()
	askOutcome.WithLabelValues(kind).Inc()
}

// IncIntent counts one classified question.
func IncIntent(intent string) {
	ensureRegistered()
	intentClassified.WithLabelValues(intent).Inc()
}

// Collectors exposes all collectors for registration with a custom
// registry; it does not auto-register.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		variantLatency, variantResults, mergeLists, cleaningReduction,
		ingestOutcome, droppedPassages, askOutcome, intentClassified,
	}
}
