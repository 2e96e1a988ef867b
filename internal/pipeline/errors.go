package pipeline

import (
	"errors"

	"github.com/TimelordUK/sigview/internal/chunk"
)

var (
	// ErrEmptySource is returned for a zero-length source, before any read
	ErrEmptySource = errors.New("the file is empty")

	// ErrInvalidFormat is returned when no numeric value survives the scan
	ErrInvalidFormat = errors.New("the file does not contain valid numerical data")

	// ErrReadFailure is returned when reading any chunk fails
	ErrReadFailure = chunk.ErrRead

	// ErrSuperseded is returned by Loader.Run when a newer load replaced
	// the run before it finished
	ErrSuperseded = errors.New("superseded by a newer load")
)

// UserMessage maps a pipeline error to a short message for display.
// Internal detail such as offsets or OS errors is never included.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptySource):
		return "Error: The file is empty."
	case errors.Is(err, ErrInvalidFormat):
		return "Error: The file does not contain valid numerical data."
	case errors.Is(err, ErrReadFailure):
		return "Error: Failed to read the file."
	case errors.Is(err, ErrSuperseded):
		return "Error: Another file was opened before this one finished loading."
	default:
		return "Error: Failed to process the file."
	}
}
