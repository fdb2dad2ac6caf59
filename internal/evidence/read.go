package evidence

import (
	"fmt"
	"sort"

	"github.com/alexiswl/gridss/internal/kmer"
)

// Interval is an inclusive genomic interval
type Interval struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Read is soft clip, split read or discordant read pair evidence for a single
// breakend.
//
// Bases are in reference orientation. For a forward breakend the first
// AnchorBases bases are aligned to the reference; for a backward breakend the
// last AnchorBases are. Reads with no aligned bases (an unmapped read of a
// discordant pair) carry the breakend interval implied by their mate instead.
type Read struct {
	EvidenceID ID        `json:"id"`
	Reference  int       `json:"reference"`
	Breakend   Direction `json:"direction"`
	Bases      string    `json:"bases"`

	// AnchorBases is the count of bases aligned to the reference
	AnchorBases int `json:"anchorBases"`

	// Position is the reference position of the breakend anchor
	Position int `json:"position"`

	// Mate is the breakend interval implied by the mapped mate
	Mate *Interval `json:"mate,omitempty"`
}

// ID of the read
func (r *Read) ID() ID { return r.EvidenceID }

// Direction of the read's breakend
func (r *Read) Direction() Direction { return r.Breakend }

// ReferenceIndex of the read's anchor
func (r *Read) ReferenceIndex() int { return r.Reference }

// Start is the smaller of the anchor position and the mate interval start
func (r *Read) Start() int {
	switch {
	case r.AnchorBases > 0 && r.Mate != nil:
		return min(r.Position, r.Mate.Min)
	case r.Mate != nil:
		return r.Mate.Min
	}
	return r.Position
}

// Validate checks the read is internally consistent
func (r *Read) Validate() error {
	switch {
	case r.EvidenceID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidEvidence)
	case len(r.Bases) == 0:
		return fmt.Errorf("%w: %s has no bases", ErrInvalidEvidence, r.EvidenceID)
	case r.AnchorBases < 0 || r.AnchorBases > len(r.Bases):
		return fmt.Errorf("%w: %s anchors %d of %d bases", ErrInvalidEvidence, r.EvidenceID, r.AnchorBases, len(r.Bases))
	case r.AnchorBases == 0 && r.Mate == nil:
		return fmt.Errorf("%w: %s has neither an anchor nor a mate", ErrInvalidEvidence, r.EvidenceID)
	case r.Mate != nil && r.Mate.Min > r.Mate.Max:
		return fmt.Errorf("%w: %s mate interval [%d, %d]", ErrInvalidEvidence, r.EvidenceID, r.Mate.Min, r.Mate.Max)
	}
	return nil
}

// Kmers returns the read's k-mers from the anchored end outwards.
// Backward reads are traversed from their last base so that, in both
// directions, assembly proceeds from the anchor towards the breakend.
// K-mers spanning an ambiguous base are skipped.
func (r *Read) Kmers(k int) ([]Observation, error) {
	if err := kmer.ValidK(k); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	bases := []byte(r.Bases)
	if r.Breakend == Backward {
		for i, j := 0, len(bases)-1; i < j; i, j = i+1, j-1 {
			bases[i], bases[j] = bases[j], bases[i]
		}
	}

	var obs []Observation
	for i := 0; i+k <= len(bases); i++ {
		km, err := kmer.Encode(bases[i : i+k])
		if err != nil {
			continue
		}
		o := Observation{
			Kmer:     km,
			Evidence: r.EvidenceID,
			Weight:   1,
		}
		if i+k <= r.AnchorBases {
			o.Reference = true
			o.ReferencePosition = r.Position
		} else {
			if r.AnchorBases > 0 {
				o.Placed = true
				o.Position = r.Position
			}
			if r.Mate != nil {
				o.HasMate = true
				o.MateMin = r.Mate.Min
				o.MateMax = r.Mate.Max
			}
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// SortByStart orders reads by Start, keeping input order for ties
func SortByStart(reads []*Read) {
	sort.SliceStable(reads, func(i, j int) bool {
		return reads[i].Start() < reads[j].Start()
	})
}
