package debruijn

import (
	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/kmer"
)

// Store is the hash-indexed table of k-mer nodes. It owns every Node.
type Store struct {
	k     int
	nodes map[kmer.Kmer]*Node
}

// NewStore creates an empty store for k-mers of length k
func NewStore(k int) *Store {
	return &Store{
		k:     k,
		nodes: make(map[kmer.Kmer]*Node),
	}
}

// K is the k-mer length
func (s *Store) K() int { return s.k }

// Insert merges obs into the node for km, creating the node if needed.
// created reports whether km was absent beforehand.
func (s *Store) Insert(km kmer.Kmer, obs evidence.Observation) (n *Node, created bool) {
	n, ok := s.nodes[km]
	if !ok {
		n = newNode(noSubgraph)
		s.nodes[km] = n
	}
	n.add(obs)
	return n, !ok
}

// Remove deletes the node for km, if any
func (s *Store) Remove(km kmer.Kmer) {
	delete(s.nodes, km)
}

// Lookup returns the node for km
func (s *Store) Lookup(km kmer.Kmer) (*Node, bool) {
	n, ok := s.nodes[km]
	return n, ok
}

// Contains reports whether km is present
func (s *Store) Contains(km kmer.Kmer) bool {
	_, ok := s.nodes[km]
	return ok
}

// Len is the number of k-mers present
func (s *Store) Len() int { return len(s.nodes) }

// Kmers returns every present k-mer in no particular order
func (s *Store) Kmers() []kmer.Kmer {
	out := make([]kmer.Kmer, 0, len(s.nodes))
	for km := range s.nodes {
		out = append(out, km)
	}
	return out
}

// Successors returns the present successors of km, excluding km itself
func (s *Store) Successors(km kmer.Kmer) []kmer.Kmer {
	var out []kmer.Kmer
	for _, next := range kmer.Successors(s.k, km) {
		if next != km && s.Contains(next) {
			out = append(out, next)
		}
	}
	return out
}

// Predecessors returns the present predecessors of km, excluding km itself
func (s *Store) Predecessors(km kmer.Kmer) []kmer.Kmer {
	var out []kmer.Kmer
	for _, prev := range kmer.Predecessors(s.k, km) {
		if prev != km && s.Contains(prev) {
			out = append(out, prev)
		}
	}
	return out
}

// ReachableFrom starts a breadth-first walk over every k-mer connected to
// start through present k-mers. The walk is lazy: k-mers are discovered as
// Next is called. Mutating the store during a walk is not supported.
func (s *Store) ReachableFrom(start kmer.Kmer) *Walk {
	w := &Walk{store: s, seen: make(map[kmer.Kmer]struct{})}
	if s.Contains(start) {
		w.queue = append(w.queue, start)
		w.seen[start] = struct{}{}
	}
	return w
}

// Walk is a breadth-first traversal with an explicit queue. Repeat regions
// can connect many thousands of k-mers, so nothing here recurses.
type Walk struct {
	store *Store
	queue []kmer.Kmer
	head  int
	seen  map[kmer.Kmer]struct{}
}

// Next returns the next reachable k-mer; ok is false once exhausted
func (w *Walk) Next() (km kmer.Kmer, ok bool) {
	if w.head >= len(w.queue) {
		return 0, false
	}
	km = w.queue[w.head]
	w.head++
	for _, adj := range kmer.Adjacent(w.store.k, km) {
		if _, done := w.seen[adj]; done || !w.store.Contains(adj) {
			continue
		}
		w.seen[adj] = struct{}{}
		w.queue = append(w.queue, adj)
	}
	// release the consumed prefix once it dominates the buffer
	if w.head > 1024 && w.head*2 > len(w.queue) {
		w.queue = append(w.queue[:0], w.queue[w.head:]...)
		w.head = 0
	}
	return km, true
}

// All drains the walk
func (w *Walk) All() []kmer.Kmer {
	var out []kmer.Kmer
	for km, ok := w.Next(); ok; km, ok = w.Next() {
		out = append(out, km)
	}
	return out
}
