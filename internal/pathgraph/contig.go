package pathgraph

import (
	"github.com/alexiswl/gridss/internal/kmer"
)

// Contig is one assembled path through the simplified graph
type Contig struct {
	// Kmers are ordered along the path
	Kmers []kmer.Kmer

	// Merged are k-mers of collapsed alternatives folded into the path
	Merged []kmer.Kmer

	// Nodes are the path node IDs in order
	Nodes []int

	Weight int
}

// Contigs greedily covers the graph with paths. Each path is seeded at the
// heaviest unused node and extended backward then forward, one heaviest
// unused neighbour at a time, until every live node belongs to a contig.
func (g *Graph) Contigs() ([]Contig, Outcome) {
	used := make([]bool, len(g.nodes))
	var contigs []Contig
	for {
		seed := g.heaviest(g.unusedLive(used))
		if seed < 0 {
			return contigs, Simplified
		}
		used[seed] = true

		var back []int
		for cur := seed; ; {
			if !g.spend() {
				return nil, SafetyLimitExceeded
			}
			next := g.heaviest(g.unused(g.Predecessors(cur), used))
			if next < 0 {
				break
			}
			used[next] = true
			back = append(back, next)
			cur = next
		}

		path := make([]int, 0, len(back)+1)
		for i := len(back) - 1; i >= 0; i-- {
			path = append(path, back[i])
		}
		path = append(path, seed)

		for cur := seed; ; {
			if !g.spend() {
				return nil, SafetyLimitExceeded
			}
			next := g.heaviest(g.unused(g.Successors(cur), used))
			if next < 0 {
				break
			}
			used[next] = true
			path = append(path, next)
			cur = next
		}

		contigs = append(contigs, g.contig(path))
	}
}

func (g *Graph) contig(path []int) Contig {
	c := Contig{Nodes: path}
	for _, id := range path {
		n := g.nodes[id]
		c.Kmers = append(c.Kmers, n.Kmers...)
		c.Merged = append(c.Merged, n.Merged...)
		c.Weight += n.Weight
	}
	return c
}

func (g *Graph) unusedLive(used []bool) []int {
	var out []int
	for _, n := range g.nodes {
		if !n.Removed && !used[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

func (g *Graph) unused(ids []int, used []bool) []int {
	var out []int
	for _, id := range ids {
		if !used[id] {
			out = append(out, id)
		}
	}
	return out
}

// heaviest picks the node with the largest weight, ties to the smaller ID.
// It returns -1 for an empty candidate list.
func (g *Graph) heaviest(ids []int) int {
	best := -1
	for _, id := range ids {
		if best < 0 || g.nodes[id].Weight > g.nodes[best].Weight {
			best = id
		}
	}
	return best
}

// Sequence is the base sequence spelled by the contig
func (c Contig) Sequence(k int) []byte {
	return kmer.Sequence(k, c.Kmers)
}
