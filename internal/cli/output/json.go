package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes indented JSON. HTML characters are left as is
// since descriptions and scripts routinely contain "<", ">" and "&&".
type JSONFormatter struct{}

// Format writes data followed by a newline.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
