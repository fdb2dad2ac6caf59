package debruijn

import (
	"sort"

	"github.com/alexiswl/gridss/internal/kmer"
)

// noSubgraph marks a node not yet assigned to a subgraph
const noSubgraph = -1

// Subgraph is a read-only snapshot of a connected component summary
type Subgraph struct {
	// ID is the arena index of the component's root
	ID int

	// MinAnchor and MaxAnchor bound every reference and mate position of
	// the member nodes. They are meaningless until Anchored is set.
	MinAnchor int
	MaxAnchor int
	Anchored  bool

	// Kmer is any member k-mer; every member is reachable from it
	Kmer kmer.Kmer

	// TimedOut is set once the component has been given up on
	TimedOut bool
}

// Width is the span of the bounding interval
func (s Subgraph) Width() int {
	if !s.Anchored {
		return 0
	}
	return s.MaxAnchor - s.MinAnchor
}

// Before reports whether the whole bounding interval lies left of position.
// A component with no positional information is before every position.
func (s Subgraph) Before(position int) bool {
	return !s.Anchored || s.MaxAnchor < position
}

type summary struct {
	parent    int
	minAnchor int
	maxAnchor int
	anchored  bool
	kmer      kmer.Kmer
	timedOut  bool

	// absorbed lists the slots resolving to this root, so that they can be
	// recycled together when the root is released
	absorbed []int
}

// Tracker is a union-find over connected components of the k-mer graph.
// Summaries live in a slab indexed by subgraph ID; nodes refer to them by
// index only. Only roots are active.
type Tracker struct {
	arena  []summary
	free   []int
	active map[int]struct{}
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{active: make(map[int]struct{})}
}

// New allocates a singleton subgraph represented by km, with an unset
// bounding interval
func (t *Tracker) New(km kmer.Kmer) int {
	var id int
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		id = len(t.arena)
		t.arena = append(t.arena, summary{})
	}
	t.arena[id] = summary{parent: id, kmer: km}
	t.active[id] = struct{}{}
	return id
}

// Find resolves id to its root, halving the path as it goes
func (t *Tracker) Find(id int) int {
	for t.arena[id].parent != id {
		t.arena[id].parent = t.arena[t.arena[id].parent].parent
		id = t.arena[id].parent
	}
	return id
}

// Union merges the subgraphs containing ids and returns the surviving root.
// The smallest root index survives; its interval becomes the union of all
// inputs. Merging a subgraph with itself is a no-op.
func (t *Tracker) Union(ids ...int) int {
	if len(ids) == 0 {
		return noSubgraph
	}
	survivor := t.Find(ids[0])
	roots := []int{survivor}
	for _, id := range ids[1:] {
		r := t.Find(id)
		if r < survivor {
			survivor = r
		}
		roots = append(roots, r)
	}

	s := &t.arena[survivor]
	for _, r := range roots {
		if r == survivor || t.arena[r].parent != r {
			continue // duplicate, or already absorbed earlier in this loop
		}
		o := &t.arena[r]
		o.parent = survivor
		if o.anchored {
			if s.anchored {
				s.minAnchor = min(s.minAnchor, o.minAnchor)
				s.maxAnchor = max(s.maxAnchor, o.maxAnchor)
			} else {
				s.minAnchor, s.maxAnchor, s.anchored = o.minAnchor, o.maxAnchor, true
			}
		}
		s.timedOut = s.timedOut || o.timedOut
		s.absorbed = append(s.absorbed, r)
		s.absorbed = append(s.absorbed, o.absorbed...)
		o.absorbed = nil
		delete(t.active, r)
	}
	return survivor
}

// Widen extends the bounding interval of id's subgraph to cover [lo, hi]
func (t *Tracker) Widen(id, lo, hi int) {
	s := &t.arena[t.Find(id)]
	if !s.anchored {
		s.minAnchor, s.maxAnchor, s.anchored = lo, hi, true
		return
	}
	s.minAnchor = min(s.minAnchor, lo)
	s.maxAnchor = max(s.maxAnchor, hi)
}

// MarkTimedOut flags id's subgraph for unconditional eviction
func (t *Tracker) MarkTimedOut(id int) {
	t.arena[t.Find(id)].timedOut = true
}

// Get returns a snapshot of id's subgraph
func (t *Tracker) Get(id int) Subgraph {
	root := t.Find(id)
	s := t.arena[root]
	return Subgraph{
		ID:        root,
		MinAnchor: s.minAnchor,
		MaxAnchor: s.maxAnchor,
		Anchored:  s.anchored,
		Kmer:      s.kmer,
		TimedOut:  s.timedOut,
	}
}

// IsActive reports whether id is an active root
func (t *Tracker) IsActive(id int) bool {
	_, ok := t.active[id]
	return ok
}

// IsRoot reports whether id is the root of its subgraph
func (t *Tracker) IsRoot(id int) bool {
	return id >= 0 && id < len(t.arena) && t.arena[id].parent == id
}

// Active returns snapshots of every active subgraph ordered by ID
func (t *Tracker) Active() []Subgraph {
	ids := make([]int, 0, len(t.active))
	for id := range t.active {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Subgraph, len(ids))
	for i, id := range ids {
		out[i] = t.Get(id)
	}
	return out
}

// Len is the number of active subgraphs
func (t *Tracker) Len() int { return len(t.active) }

// Release drops root's subgraph from the active set and recycles its slot
// and every slot absorbed into it. The caller must already have removed
// every member node.
func (t *Tracker) Release(root int) {
	root = t.Find(root)
	for _, id := range t.arena[root].absorbed {
		t.arena[id] = summary{parent: id}
		t.free = append(t.free, id)
	}
	t.arena[root] = summary{parent: root}
	t.free = append(t.free, root)
	delete(t.active, root)
}
