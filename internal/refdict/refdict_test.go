package refdict

import (
	"bytes"
	"testing"

	"github.com/biogo/hts/bam"
)

func TestHeader_SequenceName(t *testing.T) {
	h, err := FromNames([]string{"chr1", "chr2"}, []int{1000})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		index int
		want  string
	}{
		{0, "chr1"},
		{1, "chr2"},
		{2, "2"},
		{-1, "-1"},
	}
	for _, tt := range tests {
		if got := h.SequenceName(tt.index); got != tt.want {
			t.Errorf("SequenceName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestReadBAM(t *testing.T) {
	h, err := FromNames([]string{"chrX", "chrY"}, []int{5000, 3000})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, h.header, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadBAM(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.SequenceName(1) != "chrY" {
		t.Errorf("SequenceName(1) = %q, want chrY", got.SequenceName(1))
	}

	if _, err := ReadBAM(bytes.NewReader([]byte("not a bam"))); err == nil {
		t.Error("expected an error for a non-BAM stream")
	}
}

func TestIndexed(t *testing.T) {
	if got := (Indexed{}).SequenceName(7); got != "7" {
		t.Errorf("SequenceName(7) = %q", got)
	}
}
