// Package evidence defines the directed breakend evidence consumed by the
// assembler and the per-k-mer observations derived from it.
package evidence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexiswl/gridss/internal/kmer"
)

// ErrInvalidEvidence is returned for evidence that cannot be kmerised
var ErrInvalidEvidence = errors.New("evidence: invalid evidence")

// Direction is the side of the anchor on which a breakend lies
type Direction int

const (
	// Forward breakends lie after (to the right of) their anchor
	Forward Direction = iota

	// Backward breakends lie before (to the left of) their anchor
	Backward
)

// String returns the direction's name
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Char is the single letter used in file names
func (d Direction) Char() string {
	if d == Backward {
		return "b"
	}
	return "f"
}

// ParseDirection accepts "f", "forward", "b" or "backward" (any case)
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "forward", "+":
		return Forward, nil
	case "b", "backward", "-":
		return Backward, nil
	}
	return Forward, fmt.Errorf("evidence: unknown breakend direction %q", s)
}

// MarshalText encodes the direction as "f" or "b"
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.Char()), nil
}

// UnmarshalText decodes the output of MarshalText or a long direction name
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ID is an opaque reference to one piece of evidence. Graph nodes hold sets
// of IDs, never evidence content.
type ID string

// Observation is one k-mer of one piece of evidence, annotated with what that
// evidence says about the k-mer's genomic position.
type Observation struct {
	Kmer     kmer.Kmer
	Evidence ID

	// Reference is set when the k-mer lies wholly within the bases aligned
	// to the reference; ReferencePosition is then the evidence's anchor.
	Reference         bool
	ReferencePosition int

	// HasMate is set for non-reference k-mers of evidence whose mate
	// constrains the breakend to [MateMin, MateMax].
	HasMate bool
	MateMin int
	MateMax int

	// Placed is set for non-reference k-mers of anchored evidence;
	// Position is then the breakend position the anchor implies.
	Placed   bool
	Position int

	// Weight is the support this observation adds to its node
	Weight int
}

// Directed is breakend evidence as delivered by the evidence source
type Directed interface {
	// ID uniquely identifies the evidence
	ID() ID

	// Direction of the breakend the evidence supports
	Direction() Direction

	// ReferenceIndex of the contig the evidence is anchored to
	ReferenceIndex() int

	// Start is the leftmost genomic position any observation of this
	// evidence can carry. Evidence is streamed in Start order.
	Start() int

	// Kmers returns the annotated k-mers of the evidence, oriented so that
	// the anchored end comes first.
	Kmers(k int) ([]Observation, error)
}

// Source exposes library statistics of the evidence source
type Source interface {
	// MaxConcordantFragmentSize is the largest fragment size considered
	// concordant for the library
	MaxConcordantFragmentSize() int
}

// FragmentSize is a fixed-statistic Source
type FragmentSize int

// MaxConcordantFragmentSize returns the fixed size
func (f FragmentSize) MaxConcordantFragmentSize() int {
	return int(f)
}
