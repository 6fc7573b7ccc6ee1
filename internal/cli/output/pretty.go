package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/tidwall/pretty"
)

// PrettyFormatter writes key-sorted JSON for humans. Arrays that fit in
// Width columns stay on one line.
type PrettyFormatter struct {
	Width int
}

// Format writes data followed by a newline.
func (f *PrettyFormatter) Format(w io.Writer, data any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return err
	}
	width := f.Width
	if width <= 0 {
		width = 80
	}
	_, err := w.Write(pretty.PrettyOptions(buf.Bytes(), &pretty.Options{
		Width:    width,
		Indent:   "  ",
		SortKeys: true,
	}))
	return err
}
