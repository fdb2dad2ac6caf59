// Package debruijn holds the incremental de Bruijn graph: a k-mer store whose
// nodes are grouped into connected subgraphs as k-mers are inserted.
package debruijn

import (
	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/kmer"
)

// Change describes what a single insertion did to the graph
type Change struct {
	// Created is set when the k-mer was not present before
	Created bool

	// NewSubgraph is set when the k-mer started a new component
	NewSubgraph bool

	// Merged is the number of components absorbed by the insertion
	Merged int
}

// Graph couples the k-mer store with subgraph tracking
type Graph struct {
	store   *Store
	tracker *Tracker
}

// NewGraph creates an empty graph over k-mers of length k
func NewGraph(k int) *Graph {
	return &Graph{
		store:   NewStore(k),
		tracker: NewTracker(),
	}
}

// K is the k-mer length
func (g *Graph) K() int { return g.store.k }

// Store exposes the k-mer store
func (g *Graph) Store() *Store { return g.store }

// Tracker exposes the subgraph tracker
func (g *Graph) Tracker() *Tracker { return g.tracker }

// Add inserts one observation. A new k-mer joins, starts or merges
// subgraphs according to its present neighbours; then the node's subgraph
// is widened to cover the node's positions.
func (g *Graph) Add(obs evidence.Observation) (*Node, Change) {
	n, created := g.store.Insert(obs.Kmer, obs)
	change := Change{Created: created}
	if created {
		change.NewSubgraph, change.Merged = g.assign(obs.Kmer, n)
	}
	if lo, hi, ok := n.Bounds(); ok {
		g.tracker.Widen(n.subgraph, lo, hi)
	}
	return n, change
}

// assign sets the subgraph of a newly created node
func (g *Graph) assign(km kmer.Kmer, n *Node) (created bool, merged int) {
	var roots []int
	for _, adj := range kmer.Adjacent(g.store.k, km) {
		if adj == km {
			continue // loops back to ourself
		}
		an, ok := g.store.Lookup(adj)
		if !ok {
			continue
		}
		r := g.tracker.Find(an.subgraph)
		if !containsInt(roots, r) {
			roots = append(roots, r)
		}
	}

	switch len(roots) {
	case 0:
		n.subgraph = g.tracker.New(km)
		return true, 0
	case 1:
		n.subgraph = roots[0]
		return false, 0
	default:
		n.subgraph = g.tracker.Union(roots...)
		return false, len(roots) - 1
	}
}

// SubgraphOf returns the subgraph containing km
func (g *Graph) SubgraphOf(km kmer.Kmer) (Subgraph, bool) {
	n, ok := g.store.Lookup(km)
	if !ok {
		return Subgraph{}, false
	}
	return g.tracker.Get(n.subgraph), true
}

// Subgraphs returns every active subgraph ordered by ID
func (g *Graph) Subgraphs() []Subgraph {
	return g.tracker.Active()
}

// Members returns every k-mer of the subgraph, in breadth-first order from
// its representative k-mer
func (g *Graph) Members(s Subgraph) []kmer.Kmer {
	return g.store.ReachableFrom(s.Kmer).All()
}

// Remove evicts a whole subgraph: every k-mer reachable from its
// representative leaves the store and the subgraph leaves the active set.
// It returns the number of k-mers removed.
func (g *Graph) Remove(s Subgraph) int {
	members := g.Members(s)
	for _, km := range members {
		g.store.Remove(km)
	}
	g.tracker.Release(s.ID)
	return len(members)
}

// MarkTimedOut flags the subgraph for eviction regardless of position
func (g *Graph) MarkTimedOut(s Subgraph) {
	g.tracker.MarkTimedOut(s.ID)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
