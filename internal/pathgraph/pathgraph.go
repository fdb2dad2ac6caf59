// Package pathgraph condenses a de Bruijn subgraph into maximal unbranched
// paths, collapses near-identical alternative paths and extracts contigs.
package pathgraph

import (
	"sort"

	"github.com/alexiswl/gridss/internal/debruijn"
	"github.com/alexiswl/gridss/internal/kmer"
)

// Outcome is the result of a bounded simplification step
type Outcome int

const (
	// Simplified means the step ran to completion
	Simplified Outcome = iota

	// SafetyLimitExceeded means the operation budget ran out first
	SafetyLimitExceeded
)

func (o Outcome) String() string {
	if o == SafetyLimitExceeded {
		return "safety-limit-exceeded"
	}
	return "simplified"
}

// Options bound the simplifier
type Options struct {
	// MaxOperations caps branch steps plus alignments for one subgraph.
	// Zero or less means no cap.
	MaxOperations int
}

// Node is a maximal chain of k-mers with a single way in and a single way
// out
type Node struct {
	ID    int
	Kmers []kmer.Kmer

	// Merged holds k-mers of collapsed alternatives attributed to this node
	Merged []kmer.Kmer

	Weight   int
	Evidence int
	Removed  bool

	succ []int
	pred []int
}

// First is the first k-mer of the chain
func (n *Node) First() kmer.Kmer { return n.Kmers[0] }

// Last is the last k-mer of the chain
func (n *Node) Last() kmer.Kmer { return n.Kmers[len(n.Kmers)-1] }

// Graph is the condensed view of one subgraph
type Graph struct {
	k     int
	store *debruijn.Store
	nodes []*Node
	index map[kmer.Kmer]int

	opts Options
	ops  int
}

// Build condenses every k-mer reachable from start. Path nodes are numbered
// in ascending order of their first k-mer.
func Build(store *debruijn.Store, start kmer.Kmer, opts Options) *Graph {
	members := store.ReachableFrom(start).All()
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

	g := &Graph{
		k:     store.K(),
		store: store,
		index: make(map[kmer.Kmer]int, len(members)),
		opts:  opts,
	}

	// km continues the chain of its predecessor when that link is the only
	// way out of the predecessor and the only way into km
	continues := func(km kmer.Kmer) bool {
		preds := store.Predecessors(km)
		return len(preds) == 1 && len(store.Successors(preds[0])) == 1
	}

	var chains [][]kmer.Kmer
	visited := make(map[kmer.Kmer]bool, len(members))
	extend := func(first kmer.Kmer) {
		chain := []kmer.Kmer{first}
		visited[first] = true
		for cur := first; ; {
			succ := store.Successors(cur)
			if len(succ) != 1 || visited[succ[0]] || !continues(succ[0]) {
				break
			}
			cur = succ[0]
			visited[cur] = true
			chain = append(chain, cur)
		}
		chains = append(chains, chain)
	}
	for _, km := range members {
		if !continues(km) {
			extend(km)
		}
	}
	// whatever is left lies on a pure cycle, broken at its smallest k-mer
	for _, km := range members {
		if !visited[km] {
			extend(km)
		}
	}

	sort.Slice(chains, func(i, j int) bool { return chains[i][0] < chains[j][0] })
	for id, chain := range chains {
		n := &Node{ID: id, Kmers: chain}
		seen := make(map[string]struct{})
		for _, km := range chain {
			g.index[km] = id
			dn, _ := store.Lookup(km)
			n.Weight += dn.Weight()
			for _, e := range dn.Evidence() {
				seen[string(e)] = struct{}{}
			}
		}
		n.Evidence = len(seen)
		g.nodes = append(g.nodes, n)
	}

	for _, n := range g.nodes {
		for _, next := range store.Successors(n.Last()) {
			to := g.index[next]
			n.succ = append(n.succ, to)
			g.nodes[to].pred = append(g.nodes[to].pred, n.ID)
		}
	}
	for _, n := range g.nodes {
		sort.Ints(n.succ)
		sort.Ints(n.pred)
	}
	return g
}

// K is the k-mer length
func (g *Graph) K() int { return g.k }

// Nodes returns every path node, removed ones included, ordered by ID
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the path node with the given ID
func (g *Graph) Node(id int) *Node { return g.nodes[id] }

// NodeOf returns the path node holding km
func (g *Graph) NodeOf(km kmer.Kmer) (*Node, bool) {
	id, ok := g.index[km]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// Len is the number of path nodes not removed by collapse
func (g *Graph) Len() int {
	n := 0
	for _, node := range g.nodes {
		if !node.Removed {
			n++
		}
	}
	return n
}

// Operations is the number of budgeted operations spent so far
func (g *Graph) Operations() int { return g.ops }

// Successors returns the IDs of live successors of id
func (g *Graph) Successors(id int) []int { return g.live(g.nodes[id].succ) }

// Predecessors returns the IDs of live predecessors of id
func (g *Graph) Predecessors(id int) []int { return g.live(g.nodes[id].pred) }

// Edges returns every live edge as from/to pairs
func (g *Graph) Edges() [][2]int {
	var out [][2]int
	for _, n := range g.nodes {
		if n.Removed {
			continue
		}
		for _, to := range g.Successors(n.ID) {
			out = append(out, [2]int{n.ID, to})
		}
	}
	return out
}

func (g *Graph) live(ids []int) []int {
	var out []int
	for _, id := range ids {
		if !g.nodes[id].Removed {
			out = append(out, id)
		}
	}
	return out
}

// spend charges one operation to the budget and reports whether it is
// still within bounds
func (g *Graph) spend() bool {
	g.ops++
	return g.opts.MaxOperations <= 0 || g.ops <= g.opts.MaxOperations
}

// Sequence is the base sequence spelled by the node's k-mers
func (n *Node) Sequence(k int) []byte {
	return kmer.Sequence(k, n.Kmers)
}
