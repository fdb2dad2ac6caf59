package assembly

import (
	"github.com/alexiswl/gridss/internal/export"
	"github.com/alexiswl/gridss/internal/metrics"
	"go.uber.org/zap"
)

// Option configures an Assembler
type Option func(*Assembler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithExporter sets where debug snapshots of subgraphs go
func WithExporter(e export.Exporter) Option {
	return func(a *Assembler) {
		if e != nil {
			a.exporter = e
		}
	}
}

// WithMetrics records assembler activity on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assembler) {
		a.metrics = m
	}
}
