package io

import (
	"fmt"
	"os"

	"golang.org/x/exp/mmap"
)

// MappedFile provides memory-mapped read access to a sample file
type MappedFile struct {
	reader *mmap.ReaderAt
	size   int64
	path   string
}

// OpenMapped opens a file with memory mapping
func OpenMapped(path string) (*MappedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	// mmap refuses zero-length files; callers reject those before mapping.
	if info.Size() == 0 {
		return &MappedFile{path: path}, nil
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	return &MappedFile{
		reader: reader,
		size:   int64(reader.Len()),
		path:   path,
	}, nil
}

// ReadAt reads len(p) bytes at offset
func (m *MappedFile) ReadAt(p []byte, off int64) (int, error) {
	if m.reader == nil {
		return 0, fmt.Errorf("read %s: file is not mapped", m.path)
	}
	return m.reader.ReadAt(p, off)
}

// Size returns the file size
func (m *MappedFile) Size() int64 {
	return m.size
}

// Close closes the memory mapping
func (m *MappedFile) Close() error {
	if m.reader == nil {
		return nil
	}
	return m.reader.Close()
}
