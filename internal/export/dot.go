package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/awalterschulze/gographviz"
	"github.com/klauspost/compress/zstd"
)

// binSize groups snapshot files into directories by position
const binSize = 100000

// Files writes snapshots as Graphviz DOT files under Directory
type Files struct {
	Directory string

	// All exports every subgraph; otherwise only timed out ones are
	// exported, and only when Timeouts is set
	All      bool
	Timeouts bool

	// Compress writes zstd compressed files
	Compress bool

	mu       sync.Mutex
	sequence int
}

// Enabled reports whether a subgraph in the given state is exported
func (f *Files) Enabled(timedOut bool) bool {
	return f.All || (f.Timeouts && timedOut)
}

// Export writes one snapshot to its own file
func (f *Files) Export(s Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(s, f.sequence)
	if s.Stage == Subgraph {
		f.sequence++
	}

	dot, err := DOT(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if !f.Compress {
		if _, err := out.WriteString(dot); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return out.Close()
	}

	zw, err := zstd.NewWriter(out, zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if _, err := zw.Write([]byte(dot)); err != nil {
		zw.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}

// path is <dir>/<ref>/<bin>/<f|b>_<ref>_<min>-<max>_<n>.<stage>.dot[.zst]
func (f *Files) path(s Snapshot, n int) string {
	bin := s.MinAnchor - s.MinAnchor%binSize
	name := fmt.Sprintf("%s_%s_%d-%d_%d.%s.dot", s.Direction.Char(), s.Reference, s.MinAnchor, s.MaxAnchor, n, s.Stage)
	if f.Compress {
		name += ".zst"
	}
	return filepath.Join(f.Directory, s.Reference, strconv.Itoa(bin), name)
}

// DOT renders a snapshot as a directed Graphviz graph. Reference nodes are
// boxes; nodes removed by collapse are dashed.
func DOT(s Snapshot) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr("G", "label", strconv.Quote(fmt.Sprintf("%s %s:%d-%d %s", s.Direction, s.Reference, s.MinAnchor, s.MaxAnchor, s.Stage))); err != nil {
		return "", err
	}

	for _, n := range s.Nodes {
		attrs := map[string]string{
			"label": strconv.Quote(fmt.Sprintf("%d: %s (%d k-mers, weight %d)", n.ID, n.Sequence, n.Kmers, n.Weight)),
			"shape": "ellipse",
		}
		if n.Reference {
			attrs["shape"] = "box"
		}
		if n.Removed {
			attrs["style"] = "dashed"
		}
		if err := g.AddNode("G", nodeName(n.ID), attrs); err != nil {
			return "", fmt.Errorf("failed to add node %d: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(nodeName(e[0]), nodeName(e[1]), true, nil); err != nil {
			return "", fmt.Errorf("failed to add edge %d->%d: %w", e[0], e[1], err)
		}
	}
	return g.String(), nil
}

func nodeName(id int) string {
	return "n" + strconv.Itoa(id)
}
