package debruijn

import (
	"errors"
	"fmt"

	"github.com/alexiswl/gridss/internal/kmer"
)

// ErrInconsistent is wrapped by every consistency violation
var ErrInconsistent = errors.New("inconsistent de Bruijn graph")

// Validate walks the whole graph checking that every active subgraph is a
// root and that every node resolves to an active subgraph whose interval
// covers the node's positions. It is expensive and meant for tests and
// debugging runs.
func (g *Graph) Validate() error {
	for id := range g.tracker.active {
		if !g.tracker.IsRoot(id) {
			return fmt.Errorf("%w: active subgraph %d is not a root", ErrInconsistent, id)
		}
		rep := g.tracker.arena[id].kmer
		if !g.store.Contains(rep) {
			return fmt.Errorf("%w: subgraph %d lost its representative %s", ErrInconsistent, id, kmer.String(rep, g.store.k))
		}
	}

	for km, n := range g.store.nodes {
		if n.subgraph == noSubgraph {
			return fmt.Errorf("%w: %s has no subgraph", ErrInconsistent, kmer.String(km, g.store.k))
		}
		root := g.tracker.Find(n.subgraph)
		if !g.tracker.IsActive(root) {
			return fmt.Errorf("%w: %s belongs to inactive subgraph %d", ErrInconsistent, kmer.String(km, g.store.k), root)
		}
		lo, hi, ok := n.Bounds()
		if !ok {
			continue
		}
		s := g.tracker.Get(root)
		if !s.Anchored || s.MinAnchor > lo || s.MaxAnchor < hi {
			return fmt.Errorf("%w: subgraph %d [%d,%d] does not contain %s [%d,%d]",
				ErrInconsistent, root, s.MinAnchor, s.MaxAnchor, kmer.String(km, g.store.k), lo, hi)
		}
	}
	return nil
}

// ValidateWindow runs Validate and additionally checks that every active
// subgraph ends within [minExpected, maxExpected]
func (g *Graph) ValidateWindow(minExpected, maxExpected int) error {
	if err := g.Validate(); err != nil {
		return err
	}
	for _, s := range g.tracker.Active() {
		if !s.Anchored {
			continue
		}
		if s.MaxAnchor < minExpected {
			return fmt.Errorf("%w: subgraph %d ends at %d, before %d", ErrInconsistent, s.ID, s.MaxAnchor, minExpected)
		}
		if s.MaxAnchor > maxExpected {
			return fmt.Errorf("%w: subgraph %d ends at %d, after %d", ErrInconsistent, s.ID, s.MaxAnchor, maxExpected)
		}
	}
	return nil
}
