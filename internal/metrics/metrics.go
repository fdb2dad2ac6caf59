// Package metrics exposes assembler activity as Prometheus collectors.
// A nil *Metrics records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contig outcomes
const (
	OutcomeReference  = "reference"
	OutcomeMate       = "mate"
	OutcomeUnanchored = "unanchored"
)

// Metrics groups every collector of the assembler. One instance may be
// shared by assemblers running in parallel.
type Metrics struct {
	evidence         *prometheus.CounterVec
	kmersInserted    *prometheus.CounterVec
	kmersEvicted     *prometheus.CounterVec
	subgraphsCreated *prometheus.CounterVec
	subgraphMerges   *prometheus.CounterVec
	timeouts         *prometheus.CounterVec
	safetyLimits     *prometheus.CounterVec
	contigs          *prometheus.CounterVec

	activeKmers     *prometheus.GaugeVec
	activeSubgraphs *prometheus.GaugeVec

	simplifierOperations prometheus.Histogram
	contigKmers          prometheus.Histogram
}

// New registers the assembler collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	direction := []string{"direction"}
	return &Metrics{
		evidence: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_evidence_total",
			Help: "Total evidence added to the de Bruijn graph",
		}, direction),
		kmersInserted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_kmers_inserted_total",
			Help: "Total k-mer observations inserted",
		}, direction),
		kmersEvicted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_kmers_evicted_total",
			Help: "Total k-mers removed by eviction",
		}, direction),
		subgraphsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_subgraphs_created_total",
			Help: "Total subgraphs started by a k-mer with no neighbours",
		}, direction),
		subgraphMerges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_subgraph_merges_total",
			Help: "Total subgraphs absorbed by merges",
		}, direction),
		timeouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_subgraph_timeouts_total",
			Help: "Total subgraphs skipped for exceeding the safety width",
		}, direction),
		safetyLimits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_safety_limit_total",
			Help: "Total subgraphs skipped for exhausting the simplifier budget",
		}, direction),
		contigs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assembly_contigs_total",
			Help: "Total contigs extracted by anchoring outcome",
		}, []string{"direction", "outcome"}),

		activeKmers: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "assembly_active_kmers",
			Help: "K-mers currently held in the graph",
		}, direction),
		activeSubgraphs: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "assembly_active_subgraphs",
			Help: "Subgraphs currently tracked",
		}, direction),

		simplifierOperations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "assembly_simplifier_operations",
			Help:    "Budgeted operations spent simplifying one subgraph",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~262k
		}),
		contigKmers: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "assembly_contig_kmers",
			Help:    "K-mers per anchored contig",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// Evidence records one piece of evidence and its k-mer observations
func (m *Metrics) Evidence(direction string, kmers int) {
	if m == nil {
		return
	}
	m.evidence.WithLabelValues(direction).Inc()
	m.kmersInserted.WithLabelValues(direction).Add(float64(kmers))
}

// Subgraphs records subgraphs created and absorbed
func (m *Metrics) Subgraphs(direction string, created, merged int) {
	if m == nil {
		return
	}
	m.subgraphsCreated.WithLabelValues(direction).Add(float64(created))
	m.subgraphMerges.WithLabelValues(direction).Add(float64(merged))
}

// Timeout records a subgraph wider than the safety width
func (m *Metrics) Timeout(direction string) {
	if m == nil {
		return
	}
	m.timeouts.WithLabelValues(direction).Inc()
}

// SafetyLimit records a subgraph that exhausted the simplifier budget
func (m *Metrics) SafetyLimit(direction string) {
	if m == nil {
		return
	}
	m.safetyLimits.WithLabelValues(direction).Inc()
}

// Simplified records the budget spent on one subgraph
func (m *Metrics) Simplified(operations int) {
	if m == nil {
		return
	}
	m.simplifierOperations.Observe(float64(operations))
}

// Contig records one extracted contig and its anchoring outcome
func (m *Metrics) Contig(direction, outcome string, kmers int) {
	if m == nil {
		return
	}
	m.contigs.WithLabelValues(direction, outcome).Inc()
	if outcome != OutcomeUnanchored {
		m.contigKmers.Observe(float64(kmers))
	}
}

// Evicted records k-mers removed by eviction
func (m *Metrics) Evicted(direction string, kmers int) {
	if m == nil {
		return
	}
	m.kmersEvicted.WithLabelValues(direction).Add(float64(kmers))
}

// Active adjusts the live k-mer and subgraph gauges by the given deltas
func (m *Metrics) Active(direction string, kmers, subgraphs int) {
	if m == nil {
		return
	}
	m.activeKmers.WithLabelValues(direction).Add(float64(kmers))
	m.activeSubgraphs.WithLabelValues(direction).Add(float64(subgraphs))
}
