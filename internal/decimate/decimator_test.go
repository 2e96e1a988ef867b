package decimate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/TimelordUK/sigview/internal/chunk"
	"github.com/TimelordUK/sigview/internal/source"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want float64
		ok   bool
	}{
		{"1.5", 1.5, true},
		{"  -2 ", -2, true},
		{"3e2\r", 300, true},
		{"0", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"1,2", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLine(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFeedKeepsEveryNth(t *testing.T) {
	d := New(3)
	kept := d.Feed(chunk.Chunk{Text: "0\n1\n2\n3\n4\n5\n6\n", Final: true})
	if kept != 3 {
		t.Errorf("kept = %d, want 3", kept)
	}
	want := []float64{0, 3, 6}
	if got := d.Retained(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Retained = %v, want %v", got, want)
	}
}

func TestFeedGlobalIndexAcrossChunks(t *testing.T) {
	d := New(3)
	d.Feed(chunk.Chunk{Text: "0\n1\n"})
	d.Feed(chunk.Chunk{Text: "2\n3\n"})
	d.Feed(chunk.Chunk{Text: "4\n5\n6\n", Final: true})

	want := []float64{0, 3, 6}
	if got := d.Retained(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Retained = %v, want %v", got, want)
	}
	if c := d.Counts(); c.Parsed != 7 || c.Retained != 3 {
		t.Errorf("Counts = %+v", c)
	}
}

func TestFeedSkipsInvalidWithoutAdvancingIndex(t *testing.T) {
	d := New(2)
	d.Feed(chunk.Chunk{Text: "header\n10\n\nbad\n11\n12\n", Final: true})

	want := []float64{10, 12}
	if got := d.Retained(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Retained = %v, want %v", got, want)
	}
	c := d.Counts()
	if c.Parsed != 3 {
		t.Errorf("Parsed = %d, want 3", c.Parsed)
	}
	// header and bad; blank lines are not counted
	if c.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", c.Skipped)
	}
}

func TestFeedDropsBoundaryFragments(t *testing.T) {
	d := New(1)
	d.Feed(chunk.Chunk{Text: "1\n2\n3", EndsMidValue: true})
	d.Feed(chunk.Chunk{Text: "4\n5\n", StartsMidLine: true, StartsMidValue: true, Final: true})

	// "34" was split across the boundary; both halves are dropped
	want := []float64{1, 2, 5}
	if got := d.Retained(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Retained = %v, want %v", got, want)
	}
	if c := d.Counts(); c.Fragments != 2 || c.Skipped != 0 {
		t.Errorf("Counts = %+v", c)
	}
}

func TestFeedKeepsValuesBeforeLineEnding(t *testing.T) {
	tests := []struct {
		name   string
		chunks []chunk.Chunk
	}{
		{"before newline", []chunk.Chunk{
			{Text: "1\n2"},
			{Text: "\n3\n", StartsMidLine: true, Final: true},
		}},
		{"inside crlf", []chunk.Chunk{
			{Text: "1\r\n2\r"},
			{Text: "\n3\r\n", StartsMidLine: true, Final: true},
		}},
		{"before trailing space", []chunk.Chunk{
			{Text: "1 \n2"},
			{Text: " \n3 \n", StartsMidLine: true, Final: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(1)
			for _, c := range tt.chunks {
				d.Feed(c)
			}
			if got := fmt.Sprint(d.Retained()); got != "[1 2 3]" {
				t.Errorf("Retained = %s, want [1 2 3]", got)
			}
			if c := d.Counts(); c.Skipped != 0 || c.Fragments != 0 {
				t.Errorf("Counts = %+v", c)
			}
		})
	}
}

func TestFeedChunkInsideOneValue(t *testing.T) {
	d := New(1)
	// A chunk holding nothing but the middle of a long value
	kept := d.Feed(chunk.Chunk{Text: "999", StartsMidLine: true, StartsMidValue: true, EndsMidValue: true})
	if kept != 0 || len(d.Retained()) != 0 {
		t.Errorf("kept = %d, retained = %v", kept, d.Retained())
	}
}

func TestNewDefaultFactor(t *testing.T) {
	if New(0).Factor() != DefaultFactor {
		t.Errorf("Factor = %d, want %d", New(0).Factor(), DefaultFactor)
	}
}

func decimateWith(t *testing.T, data []byte, size, factor int) []float64 {
	t.Helper()
	r := chunk.NewReader(source.NewBytesSource("t.csv", data), size)
	d := New(factor)
	for {
		c, err := r.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return d.Retained()
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		d.Feed(c)
	}
}

// Single-digit values can never be cut by a boundary, so every chunk size
// must give the same result whatever the line ending.
func TestChunkSizeInvariance(t *testing.T) {
	endings := map[string]string{
		"lf":             "\n",
		"crlf":           "\r\n",
		"trailing space": " \n",
		"tab crlf":       "\t\r\n",
	}
	for name, eol := range endings {
		t.Run(name, func(t *testing.T) {
			var b strings.Builder
			for i := range 500 {
				fmt.Fprintf(&b, "%d%s", i%10, eol)
			}
			data := []byte(b.String())

			want := fmt.Sprint(decimateWith(t, data, 1_000_000, 7))
			for size := 1; size <= 17; size++ {
				if got := fmt.Sprint(decimateWith(t, data, size, 7)); got != want {
					t.Fatalf("chunk %d = %s, want %s", size, got, want)
				}
			}
		})
	}
}

func TestSplitValueDropped(t *testing.T) {
	// Boundary at 6 falls inside "200"; the others fall next to spaces
	got := decimateWith(t, []byte("100 \n200 \n30\n"), 3, 1)
	if fmt.Sprint(got) != "[100 30]" {
		t.Errorf("Retained = %v, want [100 30]", got)
	}
}
