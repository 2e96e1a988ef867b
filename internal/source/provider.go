package source

import (
	"bytes"
	"io"
)

// RawSource is the byte-addressable blob the pipeline scans.
// Implementations are read-only; the pipeline only keeps a read cursor.
type RawSource interface {
	// ReadAt reads len(p) bytes at offset
	ReadAt(p []byte, off int64) (int, error)

	// Size returns the total length in bytes
	Size() int64
}

// Named is implemented by sources that know their display name
type Named interface {
	Name() string
}

// BytesSource serves a RawSource from memory
type BytesSource struct {
	reader *bytes.Reader
	name   string
}

// NewBytesSource wraps data as a RawSource
func NewBytesSource(name string, data []byte) *BytesSource {
	return &BytesSource{
		reader: bytes.NewReader(data),
		name:   name,
	}
}

// ReadAt reads len(p) bytes at offset
func (s *BytesSource) ReadAt(p []byte, off int64) (int, error) {
	return s.reader.ReadAt(p, off)
}

// Size returns the data length
func (s *BytesSource) Size() int64 {
	return s.reader.Size()
}

// Name returns the source name
func (s *BytesSource) Name() string {
	return s.name
}

var _ io.ReaderAt = (*BytesSource)(nil)
