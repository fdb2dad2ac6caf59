package assembly

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/export"
	"github.com/alexiswl/gridss/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	hap   = "AACCGTGAGTTCAAGC"
	snp   = "AACCGTGATTTCAAGC" // hap with G>T at offset 8
	fork  = "AACCGTGAGTTCAGGATCCT"
	other = "GACGGAATTAGA" // shares no k-mer neighbourhood with hap
)

var params = Params{
	K:                          4,
	Direction:                  evidence.Forward,
	MaxSubgraphFragmentWidth:   10,
	MaxBaseMismatchForCollapse: 1,
	MaxCollapseOperations:      10000,
}

func read(id, bases string, anchored, position int) *evidence.Read {
	return &evidence.Read{EvidenceID: evidence.ID(id), Bases: bases, AnchorBases: anchored, Position: position}
}

func newAssembler(t *testing.T, p Params, fragmentSize int, opts ...Option) *Assembler {
	t.Helper()
	a, err := New(p, evidence.FragmentSize(fragmentSize), nil, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func add(t *testing.T, a *Assembler, reads ...*evidence.Read) {
	t.Helper()
	for _, r := range reads {
		if err := a.Add(r); err != nil {
			t.Fatal(err)
		}
		if err := a.Validate(); err != nil {
			t.Fatalf("after %s: %v", r.EvidenceID, err)
		}
	}
}

func TestAssembler_UnbranchedRead(t *testing.T) {
	a := newAssembler(t, params, 1000)
	add(t, a, read("r1", hap[:12], 12, 100))

	subgraphs := a.Graph().Subgraphs()
	if len(subgraphs) != 1 || subgraphs[0].MinAnchor != 100 || subgraphs[0].MaxAnchor != 100 {
		t.Fatalf("subgraphs = %+v, want one spanning [100,100]", subgraphs)
	}
	if got := a.StateSummary(); got != "kmers=9 subgraphs=1 maxWidth=0 anchor=[100,100]" {
		t.Errorf("StateSummary() = %q", got)
	}

	if calls := a.AssembleContigsBefore(100); len(calls) != 0 {
		t.Fatalf("assembled %d calls before the subgraph ended", len(calls))
	}

	calls := a.AssembleContigsBefore(101)
	if len(calls) != 1 {
		t.Fatalf("assembled %d calls, want 1", len(calls))
	}
	c := calls[0]
	if c.Anchor != ReferenceAnchor || c.Position != 100 || c.Kmers != 9 || c.AnchorLength != 12 {
		t.Errorf("call = %+v, want a 9 k-mer reference call at 100 anchoring 12 bases", c)
	}
	if c.Bases != hap[:12] || c.Assembler != Name || len(c.Evidence) != 0 {
		t.Errorf("call = %+v", c)
	}
}

func TestAssembler_ShortAnchorJoinsLaterRead(t *testing.T) {
	a := newAssembler(t, params, 1000)

	// anchored by fewer than k bases: no reference k-mers at all
	add(t, a, read("short", hap, 3, 1000))
	if calls := a.Advance(400); len(calls) != 0 {
		t.Fatalf("Advance(400) = %+v, want nothing", calls)
	}
	if a.Graph().Store().Len() == 0 {
		t.Fatal("short anchored read evicted before the cursor reached it")
	}

	add(t, a, read("long", hap, 6, 1000))
	calls := a.Flush()
	if len(calls) != 1 {
		t.Fatalf("assembled %d calls, want 1", len(calls))
	}
	if want := []evidence.ID{"long", "short"}; !reflect.DeepEqual(calls[0].Evidence, want) {
		t.Errorf("evidence = %v, want %v", calls[0].Evidence, want)
	}
}

func TestAssembler_SoftClip(t *testing.T) {
	tests := []struct {
		name      string
		direction evidence.Direction
		bases     string
	}{
		{"forward", evidence.Forward, hap},
		{"backward", evidence.Backward, "CGAACTTGAGTGCCAA"}, // hap reversed
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params
			p.Direction = tt.direction
			a := newAssembler(t, p, 1000)
			for _, id := range []string{"sc1", "sc2"} {
				r := read(id, tt.bases, 6, 1000)
				r.Breakend = tt.direction
				add(t, a, r)
			}

			calls := a.Flush()
			if len(calls) != 1 {
				t.Fatalf("assembled %d calls, want 1", len(calls))
			}
			c := calls[0]
			if c.Bases != tt.bases || c.AnchorLength != 6 || c.Position != 1000 || c.Direction != tt.direction {
				t.Errorf("call = %+v", c)
			}
			if want := []evidence.ID{"sc1", "sc2"}; !reflect.DeepEqual(c.Evidence, want) {
				t.Errorf("evidence = %v, want %v", c.Evidence, want)
			}
			if a.Graph().Store().Len() != 0 {
				t.Errorf("%d k-mers left after Flush", a.Graph().Store().Len())
			}
		})
	}
}

func TestAssembler_Bubble(t *testing.T) {
	type want struct {
		anchor   Anchor
		position int
		bases    string
		evidence []evidence.ID
	}
	tests := []struct {
		name       string
		mismatches int
		want       []want
	}{
		{
			"collapsed into the better supported path",
			1,
			[]want{{ReferenceAnchor, 1000, hap, []evidence.ID{"a", "b", "c"}}},
		},
		{
			"both paths kept without a mismatch budget",
			0,
			[]want{
				{ReferenceAnchor, 1000, hap, []evidence.ID{"a", "b", "c"}},
				{MateAnchor, 5100, "TGATTTC", []evidence.ID{"c"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params
			p.MaxBaseMismatchForCollapse = tt.mismatches
			a := newAssembler(t, p, 1000)

			c := read("c", snp, 6, 1000)
			c.Mate = &evidence.Interval{Min: 5000, Max: 5100}
			add(t, a, read("a", hap, 6, 1000), read("b", hap, 6, 1000), c)

			var got []want
			for _, call := range a.Flush() {
				got = append(got, want{call.Anchor, call.Position, call.Bases, call.Evidence})
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calls = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAssembler_UnanchoredFork(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := params
	p.MaxBaseMismatchForCollapse = 0
	a := newAssembler(t, p, 1000, WithMetrics(metrics.New(reg)))
	add(t, a, read("a", hap, 6, 1000), read("b", fork, 6, 1000))

	calls := a.Flush()
	if len(calls) != 1 || calls[0].Bases != fork {
		t.Fatalf("calls = %+v, want only the anchored fork", calls)
	}

	expected := `
# HELP assembly_contigs_total Total contigs extracted by anchoring outcome
# TYPE assembly_contigs_total counter
assembly_contigs_total{direction="forward",outcome="reference"} 1
assembly_contigs_total{direction="forward",outcome="unanchored"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "assembly_contigs_total"); err != nil {
		t.Error(err)
	}
}

func TestAssembler_Timeout(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := &export.Recorder{}
	p := params
	p.MaxSubgraphFragmentWidth = 1
	a := newAssembler(t, p, 100, WithLogger(zap.New(core)), WithExporter(rec))
	add(t, a, read("a", hap, 6, 1000), read("b", hap, 6, 1200))

	if a.SafetyWidth() != 100 {
		t.Fatalf("SafetyWidth() = %d, want 100", a.SafetyWidth())
	}
	if calls := a.AssembleContigsBefore(5000); len(calls) != 0 {
		t.Errorf("assembled %d calls from a timed out subgraph", len(calls))
	}
	if n := logs.FilterMessage("subgraph exceeded maximum width, skipping").Len(); n != 1 {
		t.Errorf("logged %d width warnings, want 1", n)
	}
	snaps := rec.Snapshots()
	if len(snaps) != 1 || snaps[0].Snapshot.Stage != export.Precollapse || !snaps[0].Snapshot.TimedOut {
		t.Errorf("exported %+v, want one timed out precollapse snapshot", snaps)
	}

	// past the start but not the end of the subgraph
	a.RemoveBefore(1001)
	if a.Graph().Store().Len() != 0 || a.Graph().Tracker().Len() != 0 {
		t.Errorf("timed out subgraph survived eviction: %s", a.StateSummary())
	}
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestAssembler_SafetyLimit(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := params
	p.MaxCollapseOperations = 1
	a := newAssembler(t, p, 1000, WithLogger(zap.New(core)))
	add(t, a, read("a", hap, 6, 1000), read("b", snp, 6, 1000))

	if calls := a.AssembleContigsBefore(2000); len(calls) != 0 {
		t.Errorf("assembled %d calls over budget", len(calls))
	}
	if n := logs.FilterMessage("subgraph exceeded the simplification budget, skipping").Len(); n != 1 {
		t.Errorf("logged %d budget warnings, want 1", n)
	}

	// evicted even though the cursor has not reached it
	a.RemoveBefore(0)
	if a.Graph().Store().Len() != 0 {
		t.Errorf("%d k-mers survived eviction", a.Graph().Store().Len())
	}
}

func TestAssembler_Window(t *testing.T) {
	a := newAssembler(t, params, 1000)
	add(t, a, read("a", hap, 6, 100), read("x", other, 6, 300))

	for _, position := range []int{100, 200, 300} {
		for _, c := range a.AssembleContigsBefore(position) {
			if c.Position >= position {
				t.Errorf("AssembleContigsBefore(%d) returned a call at %d", position, c.Position)
			}
		}
	}

	first := 0
	for _, s := range a.Graph().Subgraphs() {
		if s.MaxAnchor < 200 {
			first += len(a.Graph().Members(s))
		}
	}
	before := a.Graph().Store().Len()
	a.RemoveBefore(200)
	if got, want := a.Graph().Store().Len(), before-first; got != want {
		t.Errorf("store holds %d k-mers after eviction, want %d", got, want)
	}
	if err := a.ValidateWindow(200, 300); err != nil {
		t.Error(err)
	}
	if calls := a.Flush(); len(calls) != 1 || calls[0].Position != 300 {
		t.Errorf("Flush() = %+v, want the call at 300", calls)
	}
}

func TestAssembler_Errors(t *testing.T) {
	a := newAssembler(t, params, 1000)
	add(t, a, read("a", hap, 6, 1000))
	a.RemoveBefore(900)

	backward := read("b", hap, 6, 1000)
	backward.Breakend = evidence.Backward
	elsewhere := read("c", hap, 6, 1000)
	elsewhere.Reference = 3

	tests := []struct {
		name string
		ev   evidence.Directed
		want error
	}{
		{"direction", backward, ErrDirection},
		{"reference", elsewhere, ErrReference},
		{"out of order", read("d", hap, 6, 899), ErrOutOfOrder},
		{"invalid", read("e", hap, 0, 1000), evidence.ErrInvalidEvidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.Add(tt.ev); !errors.Is(err, tt.want) {
				t.Errorf("Add() = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := New(Params{K: 40, MaxSubgraphFragmentWidth: 1}, evidence.FragmentSize(1), nil); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("New(K=40) = %v, want ErrInvalidParams", err)
	}
	if _, err := New(Params{K: 4}, evidence.FragmentSize(1), nil); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("New(width 0) = %v, want ErrInvalidParams", err)
	}
}

func TestAssembler_Deterministic(t *testing.T) {
	run := func() []Call {
		a := newAssembler(t, params, 1000)
		c := read("c", snp, 6, 1000)
		c.Mate = &evidence.Interval{Min: 1500, Max: 1600}
		add(t, a, read("a", hap, 6, 1000), read("b", fork, 6, 1000), c)
		return a.Flush()
	}
	first := run()
	for i := 0; i < 3; i++ {
		if got := run(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestAssembler_Export(t *testing.T) {
	rec := &export.Recorder{}
	a := newAssembler(t, params, 1000, WithExporter(rec))
	add(t, a, read("a", hap, 6, 1000), read("b", hap, 6, 1000), read("c", snp, 6, 1000))
	a.Flush()

	var stages []export.Stage
	for _, r := range rec.Snapshots() {
		stages = append(stages, r.Snapshot.Stage)
		if r.Sequence != 0 {
			t.Errorf("%s snapshot numbered %d, want 0", r.Snapshot.Stage, r.Sequence)
		}
	}
	if want := []export.Stage{export.Precollapse, export.Subgraph}; !reflect.DeepEqual(stages, want) {
		t.Errorf("exported stages %v, want %v", stages, want)
	}
	snaps := rec.Snapshots()
	if removed := snaps[1].Snapshot.Nodes[2].Removed; !removed {
		t.Errorf("collapsed branch not marked removed in %+v", snaps[1].Snapshot.Nodes)
	}
}
