// Package export writes debug snapshots of assembly subgraphs.
package export

import (
	"sync"

	"github.com/alexiswl/gridss/internal/evidence"
)

// Stage of the assembly a snapshot was taken at
type Stage string

const (
	// Precollapse is the condensed subgraph before any simplification
	Precollapse Stage = "precollapse"

	// Subgraph is the subgraph after simplification
	Subgraph Stage = "subgraph"
)

// Node is one condensed path node of a snapshot
type Node struct {
	ID        int
	Sequence  string
	Kmers     int
	Weight    int
	Reference bool
	Removed   bool
}

// Snapshot is a self-contained copy of one subgraph
type Snapshot struct {
	Stage     Stage
	Reference string
	Direction evidence.Direction
	MinAnchor int
	MaxAnchor int
	TimedOut  bool
	Nodes     []Node
	Edges     [][2]int
}

// Exporter receives snapshots from the assembler. Enabled is asked before a
// snapshot is built so that disabled exporters cost nothing.
type Exporter interface {
	Enabled(timedOut bool) bool
	Export(s Snapshot) error
}

// Nop discards everything
type Nop struct{}

// Enabled is always false
func (Nop) Enabled(bool) bool { return false }

// Export does nothing
func (Nop) Export(Snapshot) error { return nil }

// Recorded is a snapshot kept by a Recorder along with its sequence number
type Recorded struct {
	Sequence int
	Snapshot Snapshot
}

// Recorder keeps every snapshot in memory
type Recorder struct {
	mu        sync.Mutex
	sequence  int
	snapshots []Recorded
}

// Enabled is always true
func (r *Recorder) Enabled(bool) bool { return true }

// Export records s. The sequence number advances after each Subgraph stage
// snapshot so both stages of one subgraph share a number.
func (r *Recorder) Export(s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, Recorded{Sequence: r.sequence, Snapshot: s})
	if s.Stage == Subgraph {
		r.sequence++
	}
	return nil
}

// Snapshots returns everything recorded so far
func (r *Recorder) Snapshots() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.snapshots...)
}
