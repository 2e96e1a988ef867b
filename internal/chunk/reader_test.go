package chunk

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/TimelordUK/sigview/internal/source"
)

func readAll(t *testing.T, r *Reader) []Chunk {
	t.Helper()
	var chunks []Chunk
	for {
		c, err := r.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return chunks
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		chunks = append(chunks, c)
	}
}

func TestReaderChunks(t *testing.T) {
	tests := []struct {
		name string
		data string
		size int
		want []Chunk
	}{
		{
			name: "boundaries before newlines",
			data: "1\n22\n333\n",
			size: 4,
			want: []Chunk{
				{Text: "1\n22", Offset: 0},
				{Text: "\n333", Offset: 4, StartsMidLine: true},
				{Text: "\n", Offset: 8, StartsMidLine: true, Final: true},
			},
		},
		{
			name: "boundary inside a value",
			data: "12\n345\n",
			size: 4,
			want: []Chunk{
				{Text: "12\n3", Offset: 0, EndsMidValue: true},
				{Text: "45\n", Offset: 4, StartsMidLine: true, StartsMidValue: true, Final: true},
			},
		},
		{
			name: "boundary inside crlf",
			data: "12\r\n34\r\n",
			size: 3,
			want: []Chunk{
				{Text: "12\r", Offset: 0},
				{Text: "\n34", Offset: 3, StartsMidLine: true},
				{Text: "\r\n", Offset: 6, StartsMidLine: true, Final: true},
			},
		},
		{
			name: "aligned",
			data: "1\n2\n",
			size: 2,
			want: []Chunk{
				{Text: "1\n", Offset: 0},
				{Text: "2\n", Offset: 2, Final: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := readAll(t, NewReader(source.NewBytesSource("t.csv", []byte(tt.data)), tt.size))
			if len(chunks) != len(tt.want) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.want))
			}
			for i := range tt.want {
				if chunks[i] != tt.want[i] {
					t.Errorf("chunk %d = %+v, want %+v", i, chunks[i], tt.want[i])
				}
			}
		})
	}
}

func TestReaderClampsLastChunk(t *testing.T) {
	src := source.NewBytesSource("t.csv", []byte("12345"))
	chunks := readAll(t, NewReader(src, 3))
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Text != "123" || !chunks[0].EndsMidValue {
		t.Errorf("first chunk = %+v", chunks[0])
	}
	if chunks[1].Text != "45" || !chunks[1].Final || !chunks[1].StartsMidValue {
		t.Errorf("last chunk = %+v", chunks[1])
	}
	// Nothing follows the final chunk
	if chunks[1].EndsMidValue {
		t.Error("final chunk must not end mid-value")
	}
}

func TestReaderDefaultSize(t *testing.T) {
	src := source.NewBytesSource("t.csv", []byte("1\n"))
	r := NewReader(src, 0)
	if r.size != DefaultSize {
		t.Errorf("size = %d, want %d", r.size, DefaultSize)
	}
	chunks := readAll(t, r)
	if len(chunks) != 1 || !chunks[0].Final {
		t.Errorf("chunks = %+v", chunks)
	}
	if r.Offset() != DefaultSize {
		t.Errorf("Offset = %d, want %d", r.Offset(), DefaultSize)
	}
}

type failingSource struct {
	data   []byte
	failAt int64
}

func (f *failingSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= f.failAt {
		return 0, errors.New("device unplugged")
	}
	return copy(p, f.data[off:]), nil
}

func (f *failingSource) Size() int64 { return int64(len(f.data)) }

func TestReaderReadFailure(t *testing.T) {
	src := &failingSource{data: []byte("1\n2\n3\n4\n"), failAt: 4}
	r := NewReader(src, 4)

	if _, err := r.Next(context.Background()); err != nil {
		t.Fatalf("first chunk: %v", err)
	}
	_, err := r.Next(context.Background())
	if !errors.Is(err, ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
}

type shortSource struct{ size int64 }

func (s shortSource) ReadAt(p []byte, off int64) (int, error) { return len(p) / 2, nil }
func (s shortSource) Size() int64                            { return s.size }

func TestReaderShortRead(t *testing.T) {
	_, err := NewReader(shortSource{size: 10}, 4).Next(context.Background())
	if !errors.Is(err, ErrRead) {
		t.Fatalf("err = %v, want ErrRead", err)
	}
}

func TestReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReader(source.NewBytesSource("t.csv", []byte("1\n")), 2).Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
