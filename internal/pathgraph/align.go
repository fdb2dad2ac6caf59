package pathgraph

import (
	"github.com/shenwei356/wfa"
)

// aligner decides whether alternative branches are close enough to collapse
type aligner struct {
	algn *wfa.Aligner
}

func newAligner() *aligner {
	return &aligner{algn: wfa.New(wfa.DefaultPenalties, &wfa.Options{GlobalAlignment: true})}
}

// within reports whether the edit distance between q and t is at most limit.
// The wfa alignment, with its unaligned ends counted, is an upper bound and
// settles most pairs; the rest are decided by a banded edit distance.
func (a *aligner) within(q, t []byte, limit int) bool {
	if limit < 0 {
		return false
	}
	if abs(len(q)-len(t)) > limit {
		return false
	}
	if len(q) == 0 || len(t) == 0 {
		return true // the length check already bounds the distance
	}
	if ub, ok := a.upperBound(q, t); ok && ub <= limit {
		return true
	}
	return bandedDistance(q, t, limit) <= limit
}

// upperBound is the edit count of the wfa alignment over the whole of q and
// t. Bases the aligner left unaligned at either end pair up as mismatches,
// the excess as gaps.
func (a *aligner) upperBound(q, t []byte) (int, bool) {
	res, err := a.algn.Align(q, t)
	if err != nil {
		return 0, false
	}
	defer wfa.RecycleAlignmentResult(res)

	// coordinates are 1-based and inclusive
	lead := max(res.QBegin-1, res.TBegin-1)
	trail := max(len(q)-res.QEnd, len(t)-res.TEnd)
	return int(res.AlignLen) - int(res.Matches) + lead + trail, true
}

func (a *aligner) close() {
	wfa.RecycleAligner(a.algn)
}

// bandedDistance is the Levenshtein distance between q and t, or limit+1
// once it is known to exceed limit. Only cells within limit of the
// diagonal are filled.
func bandedDistance(q, t []byte, limit int) int {
	capped := limit + 1
	if abs(len(q)-len(t)) > limit {
		return capped
	}

	prev := make([]int, len(t)+1)
	cur := make([]int, len(t)+1)
	for j := range prev {
		prev[j] = min(j, capped)
	}
	for i := 1; i <= len(q); i++ {
		lo, hi := max(1, i-limit), min(len(t), i+limit)
		cur[0] = min(i, capped)
		if lo > 1 {
			cur[lo-1] = capped
		}
		best := cur[0]
		if lo > 1 {
			best = capped
		}
		for j := lo; j <= hi; j++ {
			cost := 1
			if q[i-1] == t[j-1] {
				cost = 0
			}
			d := min(prev[j-1]+cost, prev[j]+1, cur[j-1]+1, capped)
			cur[j] = d
			best = min(best, d)
		}
		if hi < len(t) {
			cur[hi+1] = capped
		}
		if best >= capped {
			return capped
		}
		prev, cur = cur, prev
	}
	return min(prev[len(t)], capped)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
