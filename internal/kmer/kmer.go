// Package kmer is for the fixed-width 2-bit encoding of DNA k-mers and the
// one-base-shift adjacency that defines edges of the de Bruijn graph.
//
// Bases are packed A=0, C=1, G=2, T=3 with the first base in the most
// significant position, so k is at most 32.
package kmer

import (
	"errors"
	"fmt"

	"github.com/shenwei356/kmers"
)

// MaxK is the largest k that fits in a Kmer
const MaxK = 32

// ErrInvalidK is returned for k outside [1, MaxK]
var ErrInvalidK = errors.New("kmer: k must be between 1 and 32")

// ErrInvalidBase is returned for anything other than A, C, G or T
var ErrInvalidBase = errors.New("kmer: invalid base")

// IsBase reports whether b is an unambiguous nucleotide (either case)
func IsBase(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		return true
	}
	return false
}

// Kmer is a 2-bit packed k-mer. The length is not stored; callers carry k.
type Kmer uint64

// Alphabet is the base order of the encoding
var Alphabet = [4]byte{'A', 'C', 'G', 'T'}

// Encode packs a sequence of length 1..32 into a Kmer
func Encode(seq []byte) (Kmer, error) {
	if len(seq) == 0 || len(seq) > MaxK {
		return 0, ErrInvalidK
	}
	for _, b := range seq {
		if !IsBase(b) {
			return 0, fmt.Errorf("kmer: encoding %q: %w", seq, ErrInvalidBase)
		}
	}
	code, err := kmers.Encode(seq)
	if err != nil {
		return 0, fmt.Errorf("kmer: encoding %q: %w", seq, err)
	}
	return Kmer(code), nil
}

// MustEncode is Encode for literals in tests and tables
func MustEncode(seq string) Kmer {
	km, err := Encode([]byte(seq))
	if err != nil {
		panic(err)
	}
	return km
}

// Decode unpacks a Kmer of length k into its bases
func Decode(km Kmer, k int) []byte {
	return kmers.Decode(uint64(km), k)
}

// String returns the bases of a Kmer of length k
func String(km Kmer, k int) string {
	return string(Decode(km, k))
}

// Mask returns the bit mask covering a k-mer of length k
func Mask(k int) Kmer {
	if k >= MaxK {
		return ^Kmer(0)
	}
	return Kmer(1)<<(2*uint(k)) - 1
}

// ValidK checks k against the encoding limits
func ValidK(k int) error {
	if k < 1 || k > MaxK {
		return ErrInvalidK
	}
	return nil
}

// Last returns the final base of the k-mer
func Last(km Kmer) byte {
	return Alphabet[km&3]
}

// First returns the leading base of the k-mer
func First(km Kmer, k int) byte {
	return Alphabet[(km>>(2*uint(k-1)))&3]
}

// Next returns the successor of km obtained by dropping its first base and
// appending base code b (0..3)
func Next(k int, km Kmer, b int) Kmer {
	return ((km << 2) | Kmer(b)) & Mask(k)
}

// Prev returns the predecessor of km obtained by prepending base code b (0..3)
// and dropping its last base
func Prev(k int, km Kmer, b int) Kmer {
	return (km >> 2) | Kmer(b)<<(2*uint(k-1))
}

// Successors returns the four possible successors of km
func Successors(k int, km Kmer) [4]Kmer {
	var out [4]Kmer
	for b := 0; b < 4; b++ {
		out[b] = Next(k, km, b)
	}
	return out
}

// Predecessors returns the four possible predecessors of km
func Predecessors(k int, km Kmer) [4]Kmer {
	var out [4]Kmer
	for b := 0; b < 4; b++ {
		out[b] = Prev(k, km, b)
	}
	return out
}

// Adjacent returns every k-mer one base shift away from km in either
// direction. The result may contain km itself (homopolymers) and duplicates.
func Adjacent(k int, km Kmer) [8]Kmer {
	var out [8]Kmer
	succ, pred := Successors(k, km), Predecessors(k, km)
	copy(out[:4], succ[:])
	copy(out[4:], pred[:])
	return out
}

// Sequence assembles the bases spelt by an ordered run of overlapping k-mers:
// the full first k-mer then the last base of every following k-mer.
func Sequence(k int, path []Kmer) []byte {
	if len(path) == 0 {
		return nil
	}
	seq := make([]byte, 0, k+len(path)-1)
	seq = append(seq, Decode(path[0], k)...)
	for _, km := range path[1:] {
		seq = append(seq, Last(km))
	}
	return seq
}
