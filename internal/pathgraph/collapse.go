package pathgraph

import (
	"github.com/alexiswl/gridss/internal/kmer"
)

// branch is one way out of a branching path node
type branch struct {
	// nodes are the path nodes private to the branch, moving away from
	// the branching node
	nodes []int

	// end is the node where the branch rejoins another path, or -1
	end int

	// leaf is set when the branch runs out of neighbours
	leaf bool
}

// Collapse merges alternative branches whose sequences differ by at most
// maxMismatch edits. Bubbles (branches leaving one node and rejoining at
// another) are always candidates; every other pair of branches is a
// candidate too unless bubblesOnly is set. The better supported branch survives and the other
// branch's path nodes are removed, their k-mers recorded as merged into the
// survivor. Collapse repeats until nothing changes or the operation budget
// runs out.
func (g *Graph) Collapse(maxMismatch int, bubblesOnly bool) Outcome {
	if maxMismatch <= 0 {
		return Simplified
	}
	al := newAligner()
	defer al.close()

	for {
		changed, ok := g.collapseOnce(al, maxMismatch, bubblesOnly)
		if !ok {
			return SafetyLimitExceeded
		}
		if !changed {
			return Simplified
		}
	}
}

// collapseOnce performs the first collapse found. ok is false once the
// budget is exhausted.
func (g *Graph) collapseOnce(al *aligner, maxMismatch int, bubblesOnly bool) (changed, ok bool) {
	directions := []bool{true}
	if !bubblesOnly {
		directions = append(directions, false)
	}

	for _, forward := range directions {
		for _, n := range g.nodes {
			if n.Removed {
				continue
			}
			out := g.neighbours(n.ID, forward)
			if len(out) < 2 {
				continue
			}

			branches := make([]branch, 0, len(out))
			for _, s := range out {
				br, ok := g.follow(n.ID, s, forward)
				if !ok {
					return false, false
				}
				branches = append(branches, br)
			}

			for i := range branches {
				for j := i + 1; j < len(branches); j++ {
					a, b := branches[i], branches[j]
					if len(a.nodes) == 0 || len(b.nodes) == 0 {
						continue
					}
					bubble := a.end >= 0 && a.end == b.end
					if !bubble && bubblesOnly {
						continue
					}
					if !g.spend() {
						return false, false
					}
					if !g.similar(al, a, b, forward, bubble, maxMismatch) {
						continue
					}
					if g.merge(a, b, bubble) {
						return true, true
					}
				}
			}
		}
	}
	return false, true
}

// neighbours returns live successors when forward is set, else live
// predecessors
func (g *Graph) neighbours(id int, forward bool) []int {
	if forward {
		return g.Successors(id)
	}
	return g.Predecessors(id)
}

// follow walks from the branching node through start until the branch
// rejoins, branches again or dead-ends
func (g *Graph) follow(from, start int, forward bool) (branch, bool) {
	br := branch{end: -1}
	for cur := start; ; {
		if !g.spend() {
			return br, false
		}
		if len(g.neighbours(cur, !forward)) > 1 {
			br.end = cur
			return br, true
		}
		br.nodes = append(br.nodes, cur)

		next := g.neighbours(cur, forward)
		if len(next) == 0 {
			br.leaf = true
			return br, true
		}
		if len(next) > 1 || next[0] == from || containsInt(br.nodes, next[0]) {
			return br, true
		}
		cur = next[0]
	}
}

// sequence is the bases a branch adds moving away from its branching node
func (g *Graph) sequence(br branch, forward bool) []byte {
	var seq []byte
	for _, id := range br.nodes {
		kmers := g.nodes[id].Kmers
		if forward {
			for _, km := range kmers {
				seq = append(seq, kmer.Last(km))
			}
			continue
		}
		for i := len(kmers) - 1; i >= 0; i-- {
			seq = append(seq, kmer.First(kmers[i], g.k))
		}
	}
	return seq
}

// similar reports whether two branches differ by at most limit edits.
// Bubble branches are compared end to end; a leaf is compared against the
// same length prefix of the other branch, with any overhang counted as
// edits. Branches that both continue are compared over their common length.
func (g *Graph) similar(al *aligner, a, b branch, forward, bubble bool, limit int) bool {
	sa, sb := g.sequence(a, forward), g.sequence(b, forward)
	if bubble {
		return al.within(sa, sb, limit)
	}
	if !a.leaf && !b.leaf {
		// both continue past what was followed: compare the common length
		n := min(len(sa), len(sb))
		return al.within(sa[:n], sb[:n], limit)
	}

	// compare the shorter leaf against the other branch
	if !a.leaf || (b.leaf && len(sb) < len(sa)) {
		sa, sb = sb, sa
	}
	overhang := 0
	if len(sa) > len(sb) {
		overhang = len(sa) - len(sb)
		sa = sa[:len(sb)]
	}
	return al.within(sa, sb[:len(sa)], limit-overhang)
}

// merge removes the losing branch. When only one of the pair is a leaf,
// the pair only collapses if the leaf loses so that a dead end never
// replaces a continuing path.
func (g *Graph) merge(a, b branch, bubble bool) bool {
	winner, loser := a, b
	if g.better(b, a) {
		winner, loser = b, a
	}
	if !bubble && winner.leaf && !loser.leaf {
		return false
	}

	survivor := g.nodes[winner.nodes[0]]
	for _, id := range loser.nodes {
		n := g.nodes[id]
		n.Removed = true
		survivor.Merged = append(survivor.Merged, n.Kmers...)
		survivor.Merged = append(survivor.Merged, n.Merged...)
	}
	return true
}

// better reports whether a should survive over b: more weight, then more
// distinct evidence, then the smaller first k-mer
func (g *Graph) better(a, b branch) bool {
	wa, wb := g.weight(a), g.weight(b)
	if wa != wb {
		return wa > wb
	}
	ea, eb := g.evidence(a), g.evidence(b)
	if ea != eb {
		return ea > eb
	}
	return g.nodes[a.nodes[0]].First() < g.nodes[b.nodes[0]].First()
}

func (g *Graph) weight(br branch) int {
	w := 0
	for _, id := range br.nodes {
		w += g.nodes[id].Weight
	}
	return w
}

func (g *Graph) evidence(br branch) int {
	seen := make(map[string]struct{})
	for _, id := range br.nodes {
		for _, km := range g.nodes[id].Kmers {
			if dn, ok := g.store.Lookup(km); ok {
				for _, e := range dn.Evidence() {
					seen[string(e)] = struct{}{}
				}
			}
		}
	}
	return len(seen)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
