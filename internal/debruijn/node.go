package debruijn

import (
	"sort"

	"github.com/alexiswl/gridss/internal/evidence"
)

// Node is the aggregate of every observation of one k-mer
type Node struct {
	// reference support per anchor position
	refSupport map[int]int

	minRef, maxRef   int
	minMate, maxMate int
	minPos, maxPos   int
	hasRef, hasMate  bool
	hasPos           bool

	evidence map[evidence.ID]struct{}
	weight   int

	// index of the owning subgraph in the tracker arena; may be stale
	// (non-root) until resolved through Tracker.Find
	subgraph int
}

func newNode(subgraph int) *Node {
	return &Node{
		evidence: make(map[evidence.ID]struct{}),
		subgraph: subgraph,
	}
}

// add merges an observation into the node
func (n *Node) add(obs evidence.Observation) {
	n.weight += obs.Weight
	n.evidence[obs.Evidence] = struct{}{}

	if obs.Reference {
		if n.refSupport == nil {
			n.refSupport = make(map[int]int)
		}
		n.refSupport[obs.ReferencePosition] += obs.Weight
		if !n.hasRef {
			n.minRef, n.maxRef, n.hasRef = obs.ReferencePosition, obs.ReferencePosition, true
		} else {
			n.minRef = min(n.minRef, obs.ReferencePosition)
			n.maxRef = max(n.maxRef, obs.ReferencePosition)
		}
	}

	if obs.Placed {
		if !n.hasPos {
			n.minPos, n.maxPos, n.hasPos = obs.Position, obs.Position, true
		} else {
			n.minPos = min(n.minPos, obs.Position)
			n.maxPos = max(n.maxPos, obs.Position)
		}
	}

	if obs.HasMate {
		if !n.hasMate {
			n.minMate, n.maxMate, n.hasMate = obs.MateMin, obs.MateMax, true
		} else {
			n.minMate = min(n.minMate, obs.MateMin)
			n.maxMate = max(n.maxMate, obs.MateMax)
		}
	}
}

// Reference reports whether any observation placed the k-mer on the reference
func (n *Node) Reference() bool { return n.hasRef }

// BestReferencePosition is the most supported reference position; ties go to
// the smaller position. ok is false for non-reference nodes.
func (n *Node) BestReferencePosition() (pos int, ok bool) {
	if !n.hasRef {
		return 0, false
	}
	best, support := 0, -1
	for p, s := range n.refSupport {
		if s > support || (s == support && p < best) {
			best, support = p, s
		}
	}
	return best, true
}

// ReferenceSupport returns the support behind each reference position
func (n *Node) ReferenceSupport() map[int]int {
	out := make(map[int]int, len(n.refSupport))
	for p, s := range n.refSupport {
		out[p] = s
	}
	return out
}

// ReferenceRange is the span of reference positions observed
func (n *Node) ReferenceRange() (lo, hi int, ok bool) {
	return n.minRef, n.maxRef, n.hasRef
}

// MateRange is the span of mate positions observed
func (n *Node) MateRange() (lo, hi int, ok bool) {
	return n.minMate, n.maxMate, n.hasMate
}

// PositionRange is the span of breakend positions implied by the anchors of
// the evidence placing this non-reference k-mer
func (n *Node) PositionRange() (lo, hi int, ok bool) {
	return n.minPos, n.maxPos, n.hasPos
}

// Bounds is the union of the reference, mate and breakend position ranges
func (n *Node) Bounds() (lo, hi int, ok bool) {
	ranges := [...]struct {
		lo, hi int
		ok     bool
	}{
		{n.minRef, n.maxRef, n.hasRef},
		{n.minMate, n.maxMate, n.hasMate},
		{n.minPos, n.maxPos, n.hasPos},
	}
	for _, r := range ranges {
		if !r.ok {
			continue
		}
		if !ok {
			lo, hi, ok = r.lo, r.hi, true
			continue
		}
		lo, hi = min(lo, r.lo), max(hi, r.hi)
	}
	return lo, hi, ok
}

// Weight is the total support of the node
func (n *Node) Weight() int { return n.weight }

// EvidenceCount is the number of distinct supporting evidence
func (n *Node) EvidenceCount() int { return len(n.evidence) }

// HasEvidence reports whether id supports the node
func (n *Node) HasEvidence(id evidence.ID) bool {
	_, ok := n.evidence[id]
	return ok
}

// Evidence returns the supporting evidence IDs in sorted order
func (n *Node) Evidence() []evidence.ID {
	ids := make([]evidence.ID, 0, len(n.evidence))
	for id := range n.evidence {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
