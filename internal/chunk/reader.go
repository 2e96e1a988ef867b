package chunk

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/TimelordUK/sigview/internal/source"
)

// DefaultSize is the number of bytes requested per read
const DefaultSize = 1_000_000

// ErrRead wraps any failure of the underlying source
var ErrRead = errors.New("failed to read the file")

// Chunk is one contiguous slice of the source decoded as text
type Chunk struct {
	Text   string
	Offset int64

	// StartsMidLine is set when the byte before Offset is not a newline
	StartsMidLine bool

	// StartsMidValue is set when the boundary at Offset cuts a value in two:
	// both the byte before it and the first byte of Text are non-space
	StartsMidValue bool

	// EndsMidValue is set when the boundary at the end of Text cuts a value
	// in two. It is never set on the final chunk.
	EndsMidValue bool

	// Final marks the last chunk of the source
	Final bool
}

// Reader slices a RawSource into fixed-size chunks, strictly in order
type Reader struct {
	src    source.RawSource
	size   int
	offset int64
	buf    []byte

	// last byte of the previous chunk
	prev byte
	// previous chunk ended mid-value
	split bool
}

// NewReader creates a chunk reader; size <= 0 selects DefaultSize
func NewReader(src source.RawSource, size int) *Reader {
	if size <= 0 {
		size = DefaultSize
	}
	return &Reader{
		src:  src,
		size: size,
		prev: '\n',
	}
}

// Offset returns the current read cursor
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next returns the chunk at the current offset and advances the cursor.
// It returns io.EOF once the cursor reaches the end of the source.
func (r *Reader) Next(ctx context.Context) (Chunk, error) {
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}

	total := r.src.Size()
	if r.offset >= total {
		return Chunk{}, io.EOF
	}

	end := r.offset + int64(r.size)
	if end > total {
		end = total
	}
	n := int(end - r.offset)
	final := end >= total

	// One byte of lookahead shows whether the next chunk continues a value
	want := n
	if !final {
		want++
	}

	if cap(r.buf) < want {
		r.buf = make([]byte, want)
	}
	buf := r.buf[:want]

	read, err := r.src.ReadAt(buf, r.offset)
	// io.ReaderAt may report io.EOF alongside a full read at the end
	if err != nil && !(errors.Is(err, io.EOF) && read == want) {
		return Chunk{}, fmt.Errorf("%w: offset %d: %w", ErrRead, r.offset, err)
	}
	if read < want {
		return Chunk{}, fmt.Errorf("%w: offset %d: short read (%d of %d bytes)", ErrRead, r.offset, read, want)
	}

	c := Chunk{
		Text:           string(buf[:n]),
		Offset:         r.offset,
		StartsMidLine:  r.prev != '\n',
		StartsMidValue: r.split,
		EndsMidValue:   !final && !isSpace(buf[n-1]) && !isSpace(buf[n]),
		Final:          final,
	}

	r.prev = buf[n-1]
	r.split = c.EndsMidValue
	r.offset += int64(r.size)
	return c, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
