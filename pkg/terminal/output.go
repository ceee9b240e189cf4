// Package terminal renders tripdesk views on a plain terminal: print and
// scroll, no full-screen UI.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/odvcencio/tripdesk/pkg/render"
)

// Writer provides styled, serialized terminal output.
type Writer struct {
	out   io.Writer
	mu    sync.Mutex
	color bool
	theme render.Theme

	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	successStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
}

// New creates a Writer on stdout, with colour when stdout is a terminal.
func New() *Writer {
	return NewWithOutput(os.Stdout, IsTerminal(os.Stdout))
}

// NewWithOutput creates a Writer on out. Without colour every style renders
// as plain text.
func NewWithOutput(out io.Writer, color bool) *Writer {
	r := lipgloss.NewRenderer(out)
	if color {
		r.SetColorProfile(termenv.EnvColorProfile())
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	theme := render.DefaultTheme()
	theme.Label = theme.Label.Renderer(r)
	theme.Value = theme.Value.Renderer(r)
	theme.Border = theme.Border.Renderer(r)
	theme.User = theme.User.Renderer(r)
	theme.Assistant = theme.Assistant.Renderer(r)
	theme.Error = theme.Error.Renderer(r)
	theme.Dim = theme.Dim.Renderer(r)

	return &Writer{
		out:   out,
		color: color,
		theme: theme,

		errorStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		warnStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),
		successStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}),
		infoStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),
		dimStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		headerStyle: r.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"}),
	}
}

// IsTerminal reports whether f is attached to a terminal and NO_COLOR is unset.
func IsTerminal(f *os.File) bool {
	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Color reports whether the writer emits ANSI styling.
func (w *Writer) Color() bool {
	return w.color
}

// Theme returns the render theme bound to this writer's colour profile.
func (w *Writer) Theme() render.Theme {
	return w.theme
}

// Println writes a formatted line.
func (w *Writer) Println(format string, args ...any) {
	w.line(fmt.Sprintf(format, args...))
}

// Error prints an error message in red.
func (w *Writer) Error(format string, args ...any) {
	w.line(w.errorStyle.Render("error: " + fmt.Sprintf(format, args...)))
}

// Warn prints a warning message in yellow.
func (w *Writer) Warn(format string, args ...any) {
	w.line(w.warnStyle.Render("warning: " + fmt.Sprintf(format, args...)))
}

// Success prints a success message in green.
func (w *Writer) Success(format string, args ...any) {
	w.line(w.successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Info prints an info message in blue.
func (w *Writer) Info(format string, args ...any) {
	w.line(w.infoStyle.Render(fmt.Sprintf(format, args...)))
}

// Dim prints secondary text.
func (w *Writer) Dim(format string, args ...any) {
	w.line(w.dimStyle.Render(fmt.Sprintf(format, args...)))
}

// Header prints a section header.
func (w *Writer) Header(title string) {
	w.line(w.headerStyle.Render(title))
}

// Divider prints a horizontal rule sized to the terminal.
func (w *Writer) Divider() {
	w.line(w.dimStyle.Render(strings.Repeat("─", min(Width(), 60))))
}

// Block writes pre-rendered, possibly multi-line text.
func (w *Writer) Block(text string) {
	w.line(strings.TrimRight(text, "\n"))
}

func (w *Writer) line(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, s)
}

// raw writes s without a newline while holding the output lock.
func (w *Writer) raw(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprint(w.out, s)
}

// Width returns the stdout terminal width, defaulting to 80.
func Width() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width == 0 {
		return 80
	}
	return width
}
