package pathgraph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/alexiswl/gridss/internal/debruijn"
	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/kmer"
)

const (
	// reference haplotype used by most of the tests below
	hap = "AACCGTGAGTTCAAGC"

	// hap with an interior substitution (G>T at offset 8)
	snp = "AACCGTGATTTCAAGC"

	// hap with a substitution in its second to last base
	tip = "AACCGTGAGTTCAATC"

	// hap diverging after its first thirteen bases
	fork = "AACCGTGAGTTCAGGATCCT"
)

// graphOf inserts every k-mer of each read, one evidence per read
func graphOf(t *testing.T, reads ...string) *debruijn.Graph {
	t.Helper()
	g := debruijn.NewGraph(4)
	for i, read := range reads {
		for j := 0; j+4 <= len(read); j++ {
			g.Add(evidence.Observation{
				Kmer:     kmer.MustEncode(read[j : j+4]),
				Evidence: evidence.ID(fmt.Sprint("r", i)),
				Weight:   1,
			})
		}
	}
	if err := g.Validate(); err != nil {
		t.Fatal(err)
	}
	return g
}

func build(g *debruijn.Graph, opts Options) *Graph {
	return Build(g.Store(), g.Subgraphs()[0].Kmer, opts)
}

func sequences(t *testing.T, g *Graph) []string {
	t.Helper()
	contigs, outcome := g.Contigs()
	if outcome != Simplified {
		t.Fatalf("Contigs() outcome = %v", outcome)
	}
	var out []string
	for _, c := range contigs {
		out = append(out, string(c.Sequence(g.K())))
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		reads []string
		nodes []string
		edges [][2]int
	}{
		{
			"unbranched read",
			[]string{hap},
			[]string{hap},
			nil,
		},
		{
			"substitution bubble",
			[]string{hap, snp},
			[]string{"AACCGTGA", "TGAGTTC", "TGATTTC", "TTCAAGC"},
			[][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}},
		},
		{
			"pure cycle is broken at its smallest k-mer",
			[]string{"ACGTACGTAC"},
			[]string{"ACGTACG"},
			[][2]int{{0, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(graphOf(t, tt.reads...), Options{})
			var nodes []string
			for _, n := range g.Nodes() {
				nodes = append(nodes, string(n.Sequence(g.K())))
			}
			if !reflect.DeepEqual(nodes, tt.nodes) {
				t.Errorf("path nodes = %v, want %v", nodes, tt.nodes)
			}
			if !reflect.DeepEqual(g.Edges(), tt.edges) {
				t.Errorf("edges = %v, want %v", g.Edges(), tt.edges)
			}
		})
	}
}

func TestGraph_CollapseBubble(t *testing.T) {
	tests := []struct {
		name        string
		mismatches  int
		bubblesOnly bool
		contigs     []string
		merged      int
	}{
		{"one mismatch allowed", 1, true, []string{hap}, 4},
		{"leaves allowed too", 1, false, []string{hap}, 4},
		{"no mismatches allowed", 0, false, []string{hap, "TGATTTC"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// hap is seen twice so it carries more support
			g := build(graphOf(t, hap, hap, snp), Options{})
			if outcome := g.Collapse(tt.mismatches, tt.bubblesOnly); outcome != Simplified {
				t.Fatalf("Collapse() = %v", outcome)
			}
			if got := sequences(t, g); !reflect.DeepEqual(got, tt.contigs) {
				t.Errorf("contigs = %v, want %v", got, tt.contigs)
			}
			contigs, _ := g.Contigs()
			if len(contigs[0].Merged) != tt.merged {
				t.Errorf("%d k-mers merged into the best contig, want %d", len(contigs[0].Merged), tt.merged)
			}
		})
	}
}

func TestGraph_CollapseLeaf(t *testing.T) {
	tests := []struct {
		name        string
		reads       []string
		bubblesOnly bool
		contigs     []string
	}{
		{"near identical tip", []string{hap, hap, tip}, false, []string{hap}},
		{"tips kept when only bubbles collapse", []string{hap, hap, tip}, true, []string{hap, "CAATC"}},
		{"divergent fork is kept", []string{hap, fork}, false, []string{fork, "TCAAGC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(graphOf(t, tt.reads...), Options{})
			if outcome := g.Collapse(1, tt.bubblesOnly); outcome != Simplified {
				t.Fatalf("Collapse() = %v", outcome)
			}
			if got := sequences(t, g); !reflect.DeepEqual(got, tt.contigs) {
				t.Errorf("contigs = %v, want %v", got, tt.contigs)
			}
		})
	}
}

func TestGraph_CollapseContinuingBranches(t *testing.T) {
	// the substituted branch splits again after one k-mer, so neither
	// branch out of AACCGTGA is a leaf and they never rejoin together
	reads := []string{hap, hap, snp, "AACCGTGATCCC"}
	tests := []struct {
		name        string
		mismatches  int
		bubblesOnly bool
		removed     bool
	}{
		{"collapsed when any pair may collapse", 1, false, true},
		{"kept when only bubbles collapse", 1, true, false},
		{"kept without a mismatch budget", 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(graphOf(t, reads...), Options{})
			if outcome := g.Collapse(tt.mismatches, tt.bubblesOnly); outcome != Simplified {
				t.Fatalf("Collapse() = %v", outcome)
			}
			weak, ok := g.NodeOf(kmer.MustEncode("TGAT"))
			if !ok {
				t.Fatal("no path node for TGAT")
			}
			if weak.Removed != tt.removed {
				t.Errorf("TGAT removed = %v, want %v", weak.Removed, tt.removed)
			}
			strong, _ := g.NodeOf(kmer.MustEncode("TGAG"))
			merged := false
			for _, km := range strong.Merged {
				merged = merged || km == kmer.MustEncode("TGAT")
			}
			if merged != tt.removed {
				t.Errorf("TGAT merged into TGAGTTC = %v, want %v", merged, tt.removed)
			}
		})
	}
}

func TestGraph_CollapseDeterministic(t *testing.T) {
	var first [][]Contig
	for i := 0; i < 5; i++ {
		g := build(graphOf(t, hap, snp, tip, fork), Options{})
		g.Collapse(2, false)
		contigs, _ := g.Contigs()
		first = append(first, contigs)
	}
	for i := 1; i < len(first); i++ {
		if !reflect.DeepEqual(first[i], first[0]) {
			t.Fatalf("run %d produced %v, want %v", i, first[i], first[0])
		}
	}
}

func TestGraph_SafetyLimit(t *testing.T) {
	g := build(graphOf(t, hap, hap, snp), Options{MaxOperations: 1})
	if outcome := g.Collapse(1, true); outcome != SafetyLimitExceeded {
		t.Errorf("Collapse() = %v, want %v", outcome, SafetyLimitExceeded)
	}

	g = build(graphOf(t, hap), Options{MaxOperations: 1})
	if _, outcome := g.Contigs(); outcome != SafetyLimitExceeded {
		t.Errorf("Contigs() = %v, want %v", outcome, SafetyLimitExceeded)
	}
}

func TestGraph_ContigsTieBreak(t *testing.T) {
	// two equally supported branches: the smaller node id is extended first
	g := build(graphOf(t, hap, snp), Options{})
	if got, want := sequences(t, g), []string{hap, "TGATTTC"}; !reflect.DeepEqual(got, want) {
		t.Errorf("contigs = %v, want %v", got, want)
	}
}

func TestAligner_Within(t *testing.T) {
	tests := []struct {
		name  string
		q, t  string
		limit int
		want  bool
	}{
		{"identical", "ACGTAC", "ACGTAC", 0, true},
		{"one substitution", "ACGTAC", "ACTTAC", 1, true},
		{"one substitution over budget", "ACGTAC", "ACTTAC", 0, false},
		{"shifted overlap", "AGC", "GGA", 1, false},
		{"shifted overlap within budget", "AGC", "GGA", 2, true},
		{"rotation", "ACGTT", "CGTTA", 1, false},
		{"rotation as insertion and deletion", "ACGTT", "CGTTA", 2, true},
		{"unaligned ends", "TTTTACGT", "ACGTCCCC", 3, false},
		{"insertion", "ACGTAC", "ACGGTAC", 1, true},
		{"length alone exceeds budget", "ACG", "ACGTTT", 2, false},
		{"empty against short", "", "AC", 2, true},
	}
	al := newAligner()
	defer al.close()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := al.within([]byte(tt.q), []byte(tt.t), tt.limit); got != tt.want {
				t.Errorf("within(%s, %s, %d) = %v, want %v", tt.q, tt.t, tt.limit, got, tt.want)
			}
		})
	}
}

func TestBandedDistance(t *testing.T) {
	tests := []struct {
		q, t  string
		limit int
		want  int
	}{
		{"AGC", "GGA", 1, 2},
		{"AGC", "GGA", 5, 2},
		{"ACGTT", "CGTTA", 3, 2},
		{"TTTTACGT", "ACGTCCCC", 10, 6},
		{"TTTTACGT", "ACGTCCCC", 3, 4},
		{"ACGTAC", "ACGGTAC", 2, 1},
		{"GATTACA", "GATTACA", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.q+"/"+tt.t, func(t *testing.T) {
			if got := bandedDistance([]byte(tt.q), []byte(tt.t), tt.limit); got != tt.want {
				t.Errorf("bandedDistance() = %d, want %d", got, tt.want)
			}
		})
	}
}
