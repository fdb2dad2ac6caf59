package assembly

import (
	"sort"

	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/alexiswl/gridss/internal/kmer"
	"github.com/alexiswl/gridss/internal/metrics"
	"github.com/alexiswl/gridss/internal/pathgraph"
)

// anchoring is what the two contig scans found
type anchoring struct {
	refCount  int
	refAnchor int

	mateAnchor int
	hasMate    bool
}

// anchor scans the contig's leading reference k-mers, then its
// non-reference k-mers for mate positions
func (a *Assembler) anchor(c pathgraph.Contig) anchoring {
	store := a.graph.Store()
	forward := a.params.Direction == evidence.Forward

	var an anchoring
	support := make(map[int]int)
	for _, km := range c.Kmers {
		n, ok := store.Lookup(km)
		if !ok || !n.Reference() {
			break
		}
		an.refCount++
		for pos, s := range n.ReferenceSupport() {
			support[pos] += s
		}
	}
	best := -1
	for pos, s := range support {
		nearer := (forward && pos > an.refAnchor) || (!forward && pos < an.refAnchor)
		if s > best || (s == best && nearer) {
			an.refAnchor, best = pos, s
		}
	}

	for _, km := range c.Kmers {
		n, ok := store.Lookup(km)
		if !ok || n.Reference() {
			continue
		}
		lo, hi, ok := n.MateRange()
		if !ok {
			continue
		}
		mp := lo
		if forward {
			mp = hi
		}
		switch {
		case !an.hasMate:
			an.mateAnchor, an.hasMate = mp, true
		case forward:
			an.mateAnchor = max(an.mateAnchor, mp)
		default:
			an.mateAnchor = min(an.mateAnchor, mp)
		}
	}
	return an
}

// resolve turns a contig into a call. ok is false for unanchored contigs.
func (a *Assembler) resolve(c pathgraph.Contig) (call Call, ok bool) {
	an := a.anchor(c)
	dir := a.params.Direction.String()

	call = Call{
		Assembler:     Name,
		Reference:     a.reference,
		ReferenceName: a.dict.SequenceName(a.reference),
		Direction:     a.params.Direction,
		Kmers:         len(c.Kmers),
	}
	switch {
	case an.refCount > 0:
		call.Anchor = ReferenceAnchor
		call.Position = an.refAnchor
		call.AnchorLength = an.refCount + a.params.K - 1
	case an.hasMate:
		call.Anchor = MateAnchor
		call.Position = an.mateAnchor
	default:
		a.metrics.Contig(dir, metrics.OutcomeUnanchored, len(c.Kmers))
		a.logger.Debug("dropping unanchored contig", a.fields(c)...)
		return Call{}, false
	}

	bases := c.Sequence(a.params.K)
	if a.params.Direction == evidence.Backward {
		reverse(bases)
	}
	call.Bases = string(bases)
	call.Weight, call.Evidence = a.support(c)
	call.ID = callID(&call)

	a.metrics.Contig(dir, call.Anchor.String(), len(c.Kmers))
	return call, true
}

// support totals the contig's weight and collects the evidence behind its
// non-reference k-mers, including k-mers merged into it by collapse
func (a *Assembler) support(c pathgraph.Contig) (int, []evidence.ID) {
	store := a.graph.Store()
	weight := 0
	seen := make(map[evidence.ID]struct{})
	collect := func(kmers []kmer.Kmer, weigh bool) {
		for _, km := range kmers {
			n, ok := store.Lookup(km)
			if !ok {
				continue
			}
			if weigh {
				weight += n.Weight()
			}
			if n.Reference() {
				continue
			}
			for _, id := range n.Evidence() {
				seen[id] = struct{}{}
			}
		}
	}
	collect(c.Kmers, true)
	collect(c.Merged, false)

	ids := make([]evidence.ID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return weight, ids
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
