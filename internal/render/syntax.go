package render

import (
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultSyntaxTheme is the chroma style used for terminal output
const DefaultSyntaxTheme = "monokai"

// HighlightJSON writes data as ANSI-colored JSON.
// On any highlighting error the plain text is written instead.
func HighlightJSON(w io.Writer, data []byte, theme string) error {
	if theme == "" {
		theme = DefaultSyntaxTheme
	}
	if err := quick.Highlight(w, string(data), "json", "terminal16m", theme); err != nil {
		_, werr := w.Write(data)
		return werr
	}
	return nil
}
