package assembly

import (
	"fmt"
	"sort"

	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/google/uuid"
)

// Name tags every call made by this assembler
const Name = "debruijn-s"

// callNamespace seeds the name-based call IDs
var callNamespace = uuid.MustParse("6f1c2a4e-3b9d-4e7a-9c41-2d8b7e0f5a13")

// Anchor is how a call is pinned to the genome
type Anchor int

const (
	// ReferenceAnchor calls start with bases aligned to the reference
	ReferenceAnchor Anchor = iota

	// MateAnchor calls are placed inexactly by their reads' mates
	MateAnchor
)

func (a Anchor) String() string {
	if a == MateAnchor {
		return "mate"
	}
	return "reference"
}

// MarshalText encodes the anchor kind by name
func (a Anchor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Call is one assembled breakend
type Call struct {
	ID            uuid.UUID          `json:"id"`
	Assembler     string             `json:"assembler"`
	Reference     int                `json:"reference"`
	ReferenceName string             `json:"referenceName"`
	Direction     evidence.Direction `json:"direction"`
	Anchor        Anchor             `json:"anchor"`

	// Position is the reference anchor position, or the mate-implied
	// breakend position of a mate anchored call
	Position int `json:"position"`

	// AnchorLength is the count of reference aligned bases at the anchored
	// end of the contig; zero for mate anchored calls
	AnchorLength int `json:"anchorLength,omitempty"`

	// Bases is the contig in reference orientation
	Bases string `json:"bases"`

	Kmers  int `json:"kmers"`
	Weight int `json:"weight"`

	// Evidence lists the evidence behind the non-reference k-mers
	Evidence []evidence.ID `json:"evidence"`
}

// callID is stable for identical calls across runs
func callID(c *Call) uuid.UUID {
	return uuid.NewSHA1(callNamespace, []byte(fmt.Sprintf("%d/%s/%s/%d/%s", c.Reference, c.Direction.Char(), c.Anchor, c.Position, c.Bases)))
}

// SortCalls orders calls by position, keeping input order for ties
func SortCalls(calls []Call) {
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Position < calls[j].Position
	})
}
