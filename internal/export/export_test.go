package export

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alexiswl/gridss/internal/evidence"
	"github.com/klauspost/compress/zstd"
)

func snapshot(stage Stage) Snapshot {
	return Snapshot{
		Stage:     stage,
		Reference: "chr1",
		Direction: evidence.Backward,
		MinAnchor: 250100,
		MaxAnchor: 250300,
		Nodes: []Node{
			{ID: 0, Sequence: "AACCG", Kmers: 2, Weight: 4, Reference: true},
			{ID: 1, Sequence: "CCGTA", Kmers: 2, Weight: 1, Removed: true},
		},
		Edges: [][2]int{{0, 1}},
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name     string
		e        Exporter
		timedOut bool
		want     bool
	}{
		{"nop", Nop{}, true, false},
		{"recorder", &Recorder{}, false, true},
		{"files off", &Files{}, true, false},
		{"files timeouts only", &Files{Timeouts: true}, false, false},
		{"files timed out", &Files{Timeouts: true}, true, true},
		{"files all", &Files{All: true}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Enabled(tt.timedOut); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.timedOut, got, tt.want)
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	for _, stage := range []Stage{Precollapse, Subgraph, Precollapse, Subgraph} {
		if err := r.Export(snapshot(stage)); err != nil {
			t.Fatal(err)
		}
	}
	var seqs []int
	for _, rec := range r.Snapshots() {
		seqs = append(seqs, rec.Sequence)
	}
	if want := []int{0, 0, 1, 1}; !reflect.DeepEqual(seqs, want) {
		t.Errorf("sequence numbers = %v, want %v", seqs, want)
	}
}

func TestDOT(t *testing.T) {
	dot, err := DOT(snapshot(Subgraph))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph G", "n0", "n1", "n0->n1", "AACCG", "dashed", "box"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestFiles_Export(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
		files    []string
	}{
		{
			"plain",
			false,
			[]string{
				"chr1/200000/b_chr1_250100-250300_0.precollapse.dot",
				"chr1/200000/b_chr1_250100-250300_0.subgraph.dot",
				"chr1/200000/b_chr1_250100-250300_1.subgraph.dot",
			},
		},
		{
			"compressed",
			true,
			[]string{
				"chr1/200000/b_chr1_250100-250300_0.precollapse.dot.zst",
				"chr1/200000/b_chr1_250100-250300_0.subgraph.dot.zst",
				"chr1/200000/b_chr1_250100-250300_1.subgraph.dot.zst",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			f := &Files{Directory: dir, All: true, Compress: tt.compress}
			for _, stage := range []Stage{Precollapse, Subgraph, Subgraph} {
				if err := f.Export(snapshot(stage)); err != nil {
					t.Fatal(err)
				}
			}

			for _, name := range tt.files {
				content := readExport(t, filepath.Join(dir, name), tt.compress)
				if !strings.Contains(content, "digraph G") {
					t.Errorf("%s does not hold a DOT graph:\n%s", name, content)
				}
			}
		})
	}
}

func readExport(t *testing.T, path string, compressed bool) string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		zr, err := zstd.NewReader(f)
		if err != nil {
			t.Fatal(err)
		}
		defer zr.Close()
		r = zr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
