package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	percentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	tailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Line carries everything needed to draw one bundle's row of the live frame.
type Line struct {
	Name     string
	Color    Color
	Progress int
	Msg      string
	Tail     string
}

// Frame renders the full multi-line frame for the given rows.
func Frame(lines []Line) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Color.Style().Bold(true).Render(line.Name))
		b.WriteByte(' ')
		b.WriteString(Bar(line.Progress, line.Color))
		b.WriteString(percentStyle.Render(fmt.Sprintf(" %3d%%", line.Progress)))
		if line.Msg != "" {
			b.WriteByte(' ')
			b.WriteString(line.Msg)
		}
		if line.Tail != "" {
			b.WriteByte(' ')
			b.WriteString(tailStyle.Render(line.Tail))
		}
	}
	return b.String()
}

// FrameWriter rewrites a multi-line frame in place: each write moves the
// cursor back over the previous frame and overwrites it. Safe for concurrent
// use.
type FrameWriter struct {
	mu    sync.Mutex
	w     io.Writer
	lines int
}

// NewFrameWriter wraps the output stream, usually stderr.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame replaces the previously written frame with frame.
func (fw *FrameWriter) WriteFrame(frame string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.rewind()
	lines := strings.Split(frame, "\n")
	for _, line := range lines {
		// \033[K clears any residue from a longer previous line.
		fmt.Fprintf(fw.w, "%s\033[K\n", line)
	}
	fw.lines = len(lines)
}

// WriteLine erases the current frame and prints line as durable scrollback;
// the next frame draws below it.
func (fw *FrameWriter) WriteLine(line string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.rewind()
	fmt.Fprint(fw.w, "\033[J")
	fmt.Fprintln(fw.w, line)
	fw.lines = 0
}

// Clear erases the last frame and leaves the cursor at its first line.
func (fw *FrameWriter) Clear() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.rewind()
	fmt.Fprint(fw.w, "\033[J")
	fw.lines = 0
}

func (fw *FrameWriter) rewind() {
	if fw.lines > 0 {
		fmt.Fprintf(fw.w, "\033[%dA\r", fw.lines)
	}
}
