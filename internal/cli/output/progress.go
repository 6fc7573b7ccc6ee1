package output

import (
	"fmt"
	"io"
	"strings"
)

// barWidth is the number of cells in a download bar.
const barWidth = 30

// ProgressBar reports the progress of one module download. It is an
// io.Writer counting the bytes that pass through it and redraws only
// when the shown value changes, so piping stderr to a file stays small.
type ProgressBar struct {
	w     io.Writer
	name  string
	total int64
	done  int64
	shown string
}

// NewProgressBar creates a bar for a download of name. A total of zero
// or less means the size is unknown and only the byte count is shown.
func NewProgressBar(w io.Writer, name string, total int64) *ProgressBar {
	return &ProgressBar{w: w, name: name, total: total}
}

// Write counts len(b) bytes.
func (p *ProgressBar) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	p.draw()
	return len(b), nil
}

// Done returns the bytes counted so far.
func (p *ProgressBar) Done() int64 {
	return p.done
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	if p.total > 0 && p.done > p.total {
		p.total = p.done
	}
	p.shown = ""
	p.draw()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) draw() {
	line := p.line()
	if line == p.shown {
		return
	}
	p.shown = line
	fmt.Fprint(p.w, "\r"+line)
}

// line renders the bar. Sizes are rounded to whole KiB steps before
// comparison with the previous frame.
func (p *ProgressBar) line() string {
	if p.total <= 0 {
		return fmt.Sprintf("%s %s", p.name, formatBytes(p.done/1024*1024))
	}

	pct := int(p.done * 100 / p.total)
	pct = min(pct, 100)
	filled := barWidth * pct / 100
	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}
	return fmt.Sprintf("%s [%s] %3d%% of %s", p.name, bar, pct, formatBytes(p.total))
}

// formatBytes renders b with a binary unit.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
