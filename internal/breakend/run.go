package breakend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alexiswl/gridss/config"
	"github.com/alexiswl/gridss/internal/assembly"
	"github.com/alexiswl/gridss/internal/export"
	"github.com/alexiswl/gridss/internal/metrics"
	"github.com/alexiswl/gridss/internal/refdict"
	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Runner assembles partitions of evidence
type Runner struct {
	Config     config.Config
	Dictionary refdict.Dictionary
	Logger     *zap.Logger
	Metrics    *metrics.Metrics

	// NewExporter, when set, builds each partition's exporter in place of
	// the configured one
	NewExporter func() export.Exporter

	// Progress, when set, ticks once per read assembled
	Progress *pb.ProgressBar
}

type result struct {
	calls []assembly.Call
	err   error
}

// Run assembles every partition in its own goroutine and returns the calls
// ordered by reference, direction then position. The first partition to fail
// cancels the rest.
func (r *Runner) Run(ctx context.Context, parts []Partition) ([]assembly.Call, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]result, len(parts))
	var wg sync.WaitGroup
	for i := range parts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			calls, err := r.assemble(ctx, logger, parts[i])
			if err != nil {
				cancel()
			}
			results[i] = result{calls, err}
		}(i)
	}
	wg.Wait()

	var calls []assembly.Call
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("failed to assemble %s %s breakends: %w",
				r.name(parts[i].Key.Reference), parts[i].Key.Direction, res.err)
		}
		calls = append(calls, res.calls...)
	}
	sortCalls(calls)

	logger.Info("assembly complete",
		zap.String("partitions", humanize.Comma(int64(len(parts)))),
		zap.String("calls", humanize.Comma(int64(len(calls)))))
	return calls, nil
}

// assemble streams one partition through a fresh assembler. Each partition
// gets its own exporter so that export numbering follows its own stream.
func (r *Runner) assemble(ctx context.Context, logger *zap.Logger, p Partition) ([]assembly.Call, error) {
	a, err := assembly.New(
		r.Config.Params(p.Key.Direction),
		r.Config.Source(),
		r.Dictionary,
		assembly.WithLogger(logger),
		assembly.WithExporter(r.exporter()),
		assembly.WithMetrics(r.Metrics),
	)
	if err != nil {
		return nil, err
	}

	fragment := r.Config.Evidence.MaxConcordantFragmentSize
	var calls []assembly.Call
	for _, read := range p.Reads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// nothing starting at or after read can reach back further than a
		// fragment, so everything wholly before that is final
		calls = append(calls, a.Advance(read.Start()-fragment)...)
		if err := a.Add(read); err != nil {
			return nil, err
		}
		if r.Config.Assembly.Validate {
			if err := a.Validate(); err != nil {
				return nil, err
			}
		}
		if r.Progress != nil {
			r.Progress.Increment()
		}
	}

	if len(p.Reads) > 0 {
		logger.Debug("flushing partition",
			zap.String("reference", r.name(p.Key.Reference)),
			zap.Stringer("direction", p.Key.Direction),
			zap.String("state", a.StateSummary()))
	}
	calls = append(calls, a.Flush()...)
	if r.Config.Assembly.Validate {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	return calls, nil
}

// exporter builds a partition's exporter; NewExporter overrides the
// configured one
func (r *Runner) exporter() export.Exporter {
	if r.NewExporter != nil {
		return r.NewExporter()
	}
	return r.Config.Exporter()
}

func (r *Runner) name(reference int) string {
	if r.Dictionary == nil {
		return refdict.Indexed{}.SequenceName(reference)
	}
	return r.Dictionary.SequenceName(reference)
}

// sortCalls orders calls by reference, direction then position
func sortCalls(calls []assembly.Call) {
	sort.SliceStable(calls, func(i, j int) bool {
		a, b := calls[i], calls[j]
		if a.Reference != b.Reference {
			return a.Reference < b.Reference
		}
		if a.Direction != b.Direction {
			return a.Direction < b.Direction
		}
		return a.Position < b.Position
	})
}
