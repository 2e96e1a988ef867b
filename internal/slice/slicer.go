package slice

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TimelordUK/sigview/internal/series"
	"github.com/TimelordUK/sigview/pkg/tsformat"
)

// Info contains metadata about an exported window
type Info struct {
	SourceName string  // Name of the loaded file
	OutputPath string  // Written file
	Start      float64 // Window start in seconds
	End        float64 // Window end in seconds
	Points     int
}

// Slicer writes visible windows out as CSV files
type Slicer struct {
	outDir string
}

// NewSlicer creates a slicer writing into the temp directory
func NewSlicer() *Slicer {
	return &Slicer{
		outDir: os.TempDir(),
	}
}

// NewSlicerIn creates a slicer writing into dir
func NewSlicerIn(dir string) *Slicer {
	return &Slicer{outDir: dir}
}

// OutputPath returns the file name used for a window of sourceName
func (s *Slicer) OutputPath(sourceName string, start, end float64) string {
	base := strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName))
	return filepath.Join(s.outDir, fmt.Sprintf("sigview-%s-%s-%s.csv",
		base, tsformat.FormatTick(start), tsformat.FormatTick(end)))
}

// SliceWindow writes points to a new CSV file
func (s *Slicer) SliceWindow(sourceName string, points []series.Point, start, end float64) (*Info, error) {
	outPath := s.OutputPath(sourceName, start, end)
	if err := s.SliceTo(outPath, points); err != nil {
		return nil, err
	}

	return &Info{
		SourceName: sourceName,
		OutputPath: outPath,
		Start:      start,
		End:        end,
		Points:     len(points),
	}, nil
}

// SliceTo writes points to path, removing the file on failure
func (s *Slicer) SliceTo(path string, points []series.Point) error {
	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create slice file: %w", err)
	}

	if err := WriteCSV(outFile, points); err != nil {
		outFile.Close()
		os.Remove(path)
		return err
	}
	return outFile.Close()
}

// WriteCSV writes a time,amplitude header followed by one row per point
func WriteCSV(w io.Writer, points []series.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "amplitude"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range points {
		row := []string{
			strconv.FormatFloat(p.Time, 'f', -1, 64),
			strconv.FormatFloat(p.Amplitude, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write point %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
