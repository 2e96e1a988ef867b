package slice

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TimelordUK/sigview/internal/series"
)

var testPoints = []series.Point{
	{Time: 0, Amplitude: 1.5},
	{Time: 0.00025, Amplitude: -2},
	{Time: 0.0005, Amplitude: 1e-7},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testPoints); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "time,amplitude\n0,1.5\n0.00025,-2\n0.0005,1e-07\n"
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "time,amplitude\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestSliceWindow(t *testing.T) {
	dir := t.TempDir()
	s := NewSlicerIn(dir)

	info, err := s.SliceWindow("/data/run1.csv", testPoints, 0, 0.5)
	if err != nil {
		t.Fatalf("SliceWindow: %v", err)
	}
	want := filepath.Join(dir, "sigview-run1-0.000-0.500.csv")
	if info.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", info.OutputPath, want)
	}
	if info.Points != 3 || info.Start != 0 || info.End != 0.5 {
		t.Errorf("info = %+v", info)
	}

	data, err := os.ReadFile(info.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 4 {
		t.Errorf("wrote %d lines, want 4", lines)
	}
}

func TestSliceToBadDir(t *testing.T) {
	s := NewSlicer()
	if err := s.SliceTo(filepath.Join(t.TempDir(), "missing", "x.csv"), testPoints); err == nil {
		t.Error("expected error")
	}
}
