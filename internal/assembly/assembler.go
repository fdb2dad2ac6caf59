// Package assembly drives the incremental de Bruijn graph over a genome
// sorted evidence stream: it inserts evidence, assembles subgraphs once the
// cursor has passed them and evicts what can no longer change.
package assembly

import (
	"errors"
	"fmt"
	"math"

	"github.com/alexiswl/gridss/internal/debruijn"
	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/export"
	"github.com/alexiswl/gridss/internal/kmer"
	"github.com/alexiswl/gridss/internal/metrics"
	"github.com/alexiswl/gridss/internal/pathgraph"
	"github.com/alexiswl/gridss/internal/refdict"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	// ErrOutOfOrder is returned for evidence starting before the eviction
	// cursor
	ErrOutOfOrder = errors.New("assembly: evidence out of order")

	// ErrDirection is returned for evidence of the other breakend direction
	ErrDirection = errors.New("assembly: wrong breakend direction")

	// ErrReference is returned for evidence of another reference sequence
	ErrReference = errors.New("assembly: wrong reference sequence")

	// ErrInvalidParams is returned by New for unusable parameters
	ErrInvalidParams = errors.New("assembly: invalid parameters")
)

// widthLogThreshold is the subgraph width above which the widest subgraph
// seen so far is debug logged
const widthLogThreshold = 4096

// Params are the assembly settings of one Assembler
type Params struct {
	// K is the k-mer length
	K int

	// Direction of every breakend assembled
	Direction evidence.Direction

	// MaxSubgraphFragmentWidth is the widest subgraph assembled, in
	// multiples of the maximum concordant fragment size
	MaxSubgraphFragmentWidth float64

	// MaxBaseMismatchForCollapse is the edit budget for collapsing
	// alternative paths; zero disables collapse
	MaxBaseMismatchForCollapse int

	// CollapseBubblesOnly restricts collapse to paths that rejoin
	CollapseBubblesOnly bool

	// MaxCollapseOperations caps simplification work per subgraph; zero
	// means no cap
	MaxCollapseOperations int
}

// Check reports unusable parameters
func (p Params) Check() error {
	if err := kmer.ValidK(p.K); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if p.MaxSubgraphFragmentWidth <= 0 {
		return fmt.Errorf("%w: max subgraph fragment width %v must be positive", ErrInvalidParams, p.MaxSubgraphFragmentWidth)
	}
	if p.MaxBaseMismatchForCollapse < 0 {
		return fmt.Errorf("%w: negative mismatch budget %d", ErrInvalidParams, p.MaxBaseMismatchForCollapse)
	}
	if p.MaxCollapseOperations < 0 {
		return fmt.Errorf("%w: negative operation budget %d", ErrInvalidParams, p.MaxCollapseOperations)
	}
	return nil
}

// Assembler assembles the breakends of one direction on one reference
// sequence. It is not safe for concurrent use; run one per partition.
type Assembler struct {
	params      Params
	source      evidence.Source
	dict        refdict.Dictionary
	graph       *debruijn.Graph
	safetyWidth int

	reference    int
	hasReference bool
	cursor       int
	hasCursor    bool

	// widest subgraph width logged so far
	widest int

	logger   *zap.Logger
	exporter export.Exporter
	metrics  *metrics.Metrics
}

// New creates an empty assembler. A nil dictionary names references by
// index.
func New(params Params, source evidence.Source, dict refdict.Dictionary, opts ...Option) (*Assembler, error) {
	if err := params.Check(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: no evidence source", ErrInvalidParams)
	}
	if dict == nil {
		dict = refdict.Indexed{}
	}

	a := &Assembler{
		params:      params,
		source:      source,
		dict:        dict,
		graph:       debruijn.NewGraph(params.K),
		safetyWidth: int(params.MaxSubgraphFragmentWidth * float64(source.MaxConcordantFragmentSize())),
		widest:      widthLogThreshold,
		logger:      zap.NewNop(),
		exporter:    export.Nop{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(zap.String("direction", params.Direction.String()))
	return a, nil
}

// SafetyWidth is the widest subgraph that will be assembled
func (a *Assembler) SafetyWidth() int { return a.safetyWidth }

// Graph exposes the underlying de Bruijn graph
func (a *Assembler) Graph() *debruijn.Graph { return a.graph }

// Add inserts every k-mer of ev into the graph
func (a *Assembler) Add(ev evidence.Directed) error {
	if ev.Direction() != a.params.Direction {
		return fmt.Errorf("%w: %s evidence %s added to a %s assembler", ErrDirection, ev.Direction(), ev.ID(), a.params.Direction)
	}
	if a.hasReference && ev.ReferenceIndex() != a.reference {
		return fmt.Errorf("%w: evidence %s is on reference %d, not %d", ErrReference, ev.ID(), ev.ReferenceIndex(), a.reference)
	}
	if a.hasCursor && ev.Start() < a.cursor {
		return fmt.Errorf("%w: evidence %s starts at %d, before %d", ErrOutOfOrder, ev.ID(), ev.Start(), a.cursor)
	}

	obs, err := ev.Kmers(a.params.K)
	if err != nil {
		return fmt.Errorf("failed to kmerise evidence %s: %w", ev.ID(), err)
	}
	if !a.hasReference {
		a.reference, a.hasReference = ev.ReferenceIndex(), true
		a.logger = a.logger.With(zap.String("reference", a.dict.SequenceName(a.reference)))
	}

	created, merged, kmers := 0, 0, 0
	for _, o := range obs {
		_, change := a.graph.Add(o)
		if change.Created {
			kmers++
		}
		if change.NewSubgraph {
			created++
		}
		merged += change.Merged
	}

	dir := a.params.Direction.String()
	a.metrics.Evidence(dir, len(obs))
	a.metrics.Subgraphs(dir, created, merged)
	a.metrics.Active(dir, kmers, created-merged)
	return nil
}

// AssembleContigsBefore assembles every subgraph lying wholly before
// position and returns the anchored calls ordered by position. Subgraphs
// wider than the safety width, or too complex to simplify, are skipped and
// flagged for eviction.
func (a *Assembler) AssembleContigsBefore(position int) []Call {
	var calls []Call
	for _, s := range a.graph.Subgraphs() {
		if s.TimedOut {
			continue
		}
		if s.Width() > a.safetyWidth {
			a.timeout(s)
			continue
		}
		if !s.Before(position) {
			continue
		}
		calls = append(calls, a.assemble(s)...)
	}
	SortCalls(calls)
	return calls
}

// assemble simplifies one subgraph and resolves its contigs
func (a *Assembler) assemble(s debruijn.Subgraph) []Call {
	pg := pathgraph.Build(a.graph.Store(), s.Kmer, pathgraph.Options{MaxOperations: a.params.MaxCollapseOperations})
	exporting := a.exporter.Enabled(false)

	if s.Width() > a.widest {
		a.widest = s.Width()
		a.logger.Debug("widest subgraph so far", append(a.subgraphFields(s), zap.Int("paths", pg.Len()), a.spread(s))...)
	}

	outcome := pathgraph.Simplified
	if a.params.MaxBaseMismatchForCollapse > 0 {
		if exporting {
			a.export(s, export.Precollapse, pg)
		}
		outcome = pg.Collapse(a.params.MaxBaseMismatchForCollapse, a.params.CollapseBubblesOnly)
	}
	var contigs []pathgraph.Contig
	if outcome == pathgraph.Simplified {
		contigs, outcome = pg.Contigs()
	}
	a.metrics.Simplified(pg.Operations())

	if outcome == pathgraph.SafetyLimitExceeded {
		a.logger.Warn("subgraph exceeded the simplification budget, skipping",
			append(a.subgraphFields(s), zap.Int("operations", pg.Operations()))...)
		a.metrics.SafetyLimit(a.params.Direction.String())
		a.graph.MarkTimedOut(s)
		return nil
	}
	if exporting {
		a.export(s, export.Subgraph, pg)
	}

	var calls []Call
	for _, c := range contigs {
		if call, ok := a.resolve(c); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

// timeout flags a subgraph wider than the safety width
func (a *Assembler) timeout(s debruijn.Subgraph) {
	a.logger.Warn("subgraph exceeded maximum width, skipping", a.subgraphFields(s)...)
	a.metrics.Timeout(a.params.Direction.String())
	if a.exporter.Enabled(true) {
		pg := pathgraph.Build(a.graph.Store(), s.Kmer, pathgraph.Options{})
		s.TimedOut = true
		a.export(s, export.Precollapse, pg)
	}
	a.graph.MarkTimedOut(s)
}

// RemoveBefore evicts every subgraph lying wholly before position, and every
// timed out subgraph, then moves the cursor to position
func (a *Assembler) RemoveBefore(position int) {
	kmers, subgraphs := 0, 0
	for _, s := range a.graph.Subgraphs() {
		if !s.Before(position) && !s.TimedOut && s.Width() <= a.safetyWidth {
			continue
		}
		kmers += a.graph.Remove(s)
		subgraphs++
	}
	if !a.hasCursor || position > a.cursor {
		a.cursor, a.hasCursor = position, true
	}

	dir := a.params.Direction.String()
	a.metrics.Evicted(dir, kmers)
	a.metrics.Active(dir, -kmers, -subgraphs)
}

// Advance assembles everything before position then evicts it
func (a *Assembler) Advance(position int) []Call {
	calls := a.AssembleContigsBefore(position)
	a.RemoveBefore(position)
	return calls
}

// Flush assembles and evicts everything left
func (a *Assembler) Flush() []Call {
	return a.Advance(math.MaxInt)
}

// Validate checks the graph's internal consistency. It is expensive.
func (a *Assembler) Validate() error {
	return a.graph.Validate()
}

// ValidateWindow checks consistency and that every subgraph ends within
// [minExpected, maxExpected]
func (a *Assembler) ValidateWindow(minExpected, maxExpected int) error {
	return a.graph.ValidateWindow(minExpected, maxExpected)
}

// StateSummary describes the size and extent of the graph
func (a *Assembler) StateSummary() string {
	store, subgraphs := a.graph.Store(), a.graph.Subgraphs()
	summary := fmt.Sprintf("kmers=%s subgraphs=%s", humanize.Comma(int64(store.Len())), humanize.Comma(int64(len(subgraphs))))
	if store.Len() == 0 {
		return summary
	}

	lo, hi, widest, anchored := math.MaxInt, math.MinInt, 0, false
	for _, s := range subgraphs {
		if !s.Anchored {
			continue
		}
		anchored = true
		lo, hi = min(lo, s.MinAnchor), max(hi, s.MaxAnchor)
		widest = max(widest, s.Width())
	}
	if !anchored {
		return summary
	}
	return summary + fmt.Sprintf(" maxWidth=%s anchor=[%d,%d]", humanize.Comma(int64(widest)), lo, hi)
}

func (a *Assembler) export(s debruijn.Subgraph, stage export.Stage, pg *pathgraph.Graph) {
	if err := a.exporter.Export(a.snapshot(s, stage, pg)); err != nil {
		a.logger.Warn("failed to export subgraph", append(a.subgraphFields(s), zap.Error(err))...)
	}
}

func (a *Assembler) snapshot(s debruijn.Subgraph, stage export.Stage, pg *pathgraph.Graph) export.Snapshot {
	snap := export.Snapshot{
		Stage:     stage,
		Reference: a.dict.SequenceName(a.reference),
		Direction: a.params.Direction,
		MinAnchor: s.MinAnchor,
		MaxAnchor: s.MaxAnchor,
		TimedOut:  s.TimedOut,
		Edges:     pg.Edges(),
	}
	store := a.graph.Store()
	for _, n := range pg.Nodes() {
		node := export.Node{
			ID:       n.ID,
			Sequence: string(n.Sequence(pg.K())),
			Kmers:    len(n.Kmers),
			Weight:   n.Weight,
			Removed:  n.Removed,
		}
		if dn, ok := store.Lookup(n.First()); ok {
			node.Reference = dn.Reference()
		}
		snap.Nodes = append(snap.Nodes, node)
	}
	return snap
}

func (a *Assembler) subgraphFields(s debruijn.Subgraph) []zap.Field {
	return []zap.Field{
		zap.Int("min_anchor", s.MinAnchor),
		zap.Int("max_anchor", s.MaxAnchor),
		zap.Int("width", s.Width()),
		zap.Int("safety_width", a.safetyWidth),
	}
}

// fields describe a contig for debug logs
func (a *Assembler) fields(c pathgraph.Contig) []zap.Field {
	return []zap.Field{
		zap.Int("kmers", len(c.Kmers)),
		zap.Int("weight", c.Weight),
		zap.ByteString("bases", c.Sequence(a.params.K)),
	}
}

// spread finds the member k-mer with the widest positional range
func (a *Assembler) spread(s debruijn.Subgraph) zap.Field {
	store := a.graph.Store()
	var widest kmer.Kmer
	spread := -1
	for _, km := range a.graph.Members(s) {
		n, _ := store.Lookup(km)
		w := 0
		if lo, hi, ok := n.ReferenceRange(); ok {
			w = hi - lo
		}
		if lo, hi, ok := n.MateRange(); ok {
			w = max(w, hi-lo)
		}
		if w > spread {
			widest, spread = km, w
		}
	}
	return zap.String("max_spread_kmer", fmt.Sprintf("%s (%d)", kmer.String(widest, a.params.K), spread))
}
