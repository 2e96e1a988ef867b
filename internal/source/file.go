package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sigio "github.com/TimelordUK/sigview/internal/io"
)

var (
	// ErrNotCSV is returned for files without a .csv extension
	ErrNotCSV = errors.New("please select a valid CSV file")

	// ErrEmptyFile is returned for zero-byte files
	ErrEmptyFile = errors.New("the selected file is empty")
)

// FileSource provides a RawSource backed by a memory-mapped file
type FileSource struct {
	file *sigio.MappedFile
	path string
}

// Open validates and maps a sample file.
// Non-CSV names and empty files are rejected before any mapping.
func Open(path string) (*FileSource, error) {
	if err := CheckName(path); err != nil {
		return nil, err
	}

	file, err := sigio.OpenMapped(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}

	if file.Size() == 0 {
		file.Close()
		return nil, ErrEmptyFile
	}

	return &FileSource{
		file: file,
		path: path,
	}, nil
}

// CheckName reports whether path looks like a CSV file
func CheckName(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".csv") {
		return ErrNotCSV
	}
	return nil
}

// ReadAt reads len(p) bytes at offset
func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Size returns the file size
func (s *FileSource) Size() int64 {
	return s.file.Size()
}

// Name returns the base file name
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// Close closes the file source
func (s *FileSource) Close() error {
	return s.file.Close()
}
