// Package breakend runs the assembler over a file of breakend evidence: one
// assembler per reference sequence and breakend direction, in parallel.
package breakend

import (
	"sort"

	"github.com/alexiswl/gridss/internal/evidence"
)

// Key identifies the evidence assembled together
type Key struct {
	Reference int
	Direction evidence.Direction
}

// Partition is the genome sorted evidence of one Key
type Partition struct {
	Key   Key
	Reads []*evidence.Read
}

// Split groups reads by reference and direction. Partitions are ordered by
// reference then direction; reads within each are sorted by Start.
func Split(reads []*evidence.Read) []Partition {
	index := make(map[Key]int)
	var parts []Partition
	for _, r := range reads {
		key := Key{Reference: r.Reference, Direction: r.Breakend}
		i, ok := index[key]
		if !ok {
			i = len(parts)
			index[key] = i
			parts = append(parts, Partition{Key: key})
		}
		parts[i].Reads = append(parts[i].Reads, r)
	}

	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Key.Reference != parts[j].Key.Reference {
			return parts[i].Key.Reference < parts[j].Key.Reference
		}
		return parts[i].Key.Direction < parts[j].Key.Direction
	})
	for _, p := range parts {
		evidence.SortByStart(p.Reads)
	}
	return parts
}
