// Package refdict names reference sequences by index for logs and debug
// exports.
package refdict

import (
	"fmt"
	"io"
	"strconv"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Dictionary maps a reference index to its sequence name
type Dictionary interface {
	SequenceName(index int) string
}

// Header is a Dictionary backed by a SAM header
type Header struct {
	header *sam.Header
}

// FromHeader wraps an existing SAM header
func FromHeader(h *sam.Header) *Header {
	return &Header{header: h}
}

// FromNames builds a dictionary from sequence names and lengths listed in
// reference index order. A missing length is stored as 1.
func FromNames(names []string, lengths []int) (*Header, error) {
	refs := make([]*sam.Reference, 0, len(names))
	for i, name := range names {
		length := 1
		if i < len(lengths) && lengths[i] > 0 {
			length = lengths[i]
		}
		ref, err := sam.NewReference(name, "", "", length, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create reference %s: %w", name, err)
		}
		refs = append(refs, ref)
	}
	h, err := sam.NewHeader(nil, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to create a SAM header: %w", err)
	}
	return FromHeader(h), nil
}

// ReadBAM reads the sequence dictionary from the header of a BAM stream
func ReadBAM(r io.Reader) (*Header, error) {
	br, err := bam.NewReader(r, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read BAM header: %w", err)
	}
	defer br.Close()
	return FromHeader(br.Header()), nil
}

// SequenceName returns the name of the reference at index, or the index
// itself when the header does not list it
func (h *Header) SequenceName(index int) string {
	if h != nil && h.header != nil {
		refs := h.header.Refs()
		if index >= 0 && index < len(refs) {
			return refs[index].Name()
		}
	}
	return strconv.Itoa(index)
}

// Len is the number of reference sequences
func (h *Header) Len() int {
	if h == nil || h.header == nil {
		return 0
	}
	return len(h.header.Refs())
}

// Indexed is the Dictionary used when no header is available: every
// reference is named by its index
type Indexed struct{}

// SequenceName returns the index as a string
func (Indexed) SequenceName(index int) string {
	return strconv.Itoa(index)
}
