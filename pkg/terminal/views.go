package terminal

import (
	"strings"
	"sync"

	"github.com/odvcencio/tripdesk/pkg/render"
	"github.com/odvcencio/tripdesk/pkg/ui/toast"
)

// Button is the submit control. While disabled it shows its label on a spinner.
type Button struct {
	mu      sync.Mutex
	label   string
	enabled bool
	spinner *Spinner
}

// NewButton creates an enabled button.
func NewButton(w *Writer, label string) *Button {
	return &Button{label: label, enabled: true, spinner: NewSpinner(w, label)}
}

// Label returns the current label.
func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// SetLabel changes the label shown while busy and after.
func (b *Button) SetLabel(label string) {
	b.mu.Lock()
	b.label = label
	b.mu.Unlock()
	b.spinner.SetMessage(label)
}

// SetEnabled starts the busy spinner when disabled and stops it when enabled.
func (b *Button) SetEnabled(enabled bool) {
	b.mu.Lock()
	b.enabled = enabled
	b.mu.Unlock()
	if enabled {
		b.spinner.Stop()
	} else {
		b.spinner.Start()
	}
}

// Enabled reports whether the button accepts a submission.
func (b *Button) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// SummaryPanel prints a trip summary once revealed.
type SummaryPanel struct {
	w *Writer

	mu   sync.Mutex
	rows []render.SummaryRow
}

// NewSummaryPanel creates a hidden panel.
func NewSummaryPanel(w *Writer) *SummaryPanel {
	return &SummaryPanel{w: w}
}

// ShowSummary prints rows as a table, or aligned text without colour.
func (p *SummaryPanel) ShowSummary(rows []render.SummaryRow) {
	p.mu.Lock()
	p.rows = append([]render.SummaryRow(nil), rows...)
	p.mu.Unlock()

	p.w.Header("Trip Summary")
	if p.w.Color() {
		p.w.Block(p.w.Theme().SummaryTable(rows))
		return
	}
	p.w.Block(render.PlainSummary(rows))
}

// Rows returns the last summary shown, nil if none.
func (p *SummaryPanel) Rows() []render.SummaryRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows
}

// NoticePrinter prints each notice of a toast queue once, as it arrives.
type NoticePrinter struct {
	w *Writer

	mu   sync.Mutex
	seen map[string]struct{}
}

// AttachNotices prints new notices from m on w.
func AttachNotices(w *Writer, m *toast.Manager) *NoticePrinter {
	p := &NoticePrinter{w: w, seen: make(map[string]struct{})}
	m.SetOnChange(p.onChange)
	return p
}

func (p *NoticePrinter) onChange(notices []*toast.Notice) {
	p.mu.Lock()
	var fresh []*toast.Notice
	for _, n := range notices {
		if _, ok := p.seen[n.ID]; ok {
			continue
		}
		p.seen[n.ID] = struct{}{}
		fresh = append(fresh, n)
	}
	p.mu.Unlock()

	for _, n := range fresh {
		text := render.Sanitize(n.Message)
		if n.Title != "" {
			text = render.Sanitize(n.Title) + ": " + text
		}
		text = render.Truncate(text, Width())
		switch n.Level {
		case toast.LevelError:
			p.w.line(p.w.errorStyle.Render(text))
		case toast.LevelWarning:
			p.w.Warn("%s", text)
		case toast.LevelSuccess:
			p.w.Success("%s", text)
		default:
			p.w.Info("%s", text)
		}
	}
}

// Transcript prints chat messages as they are appended.
type Transcript struct {
	w *Writer
}

// NewTranscript creates a transcript on w.
func NewTranscript(w *Writer) *Transcript {
	return &Transcript{w: w}
}

// Append prints one message line.
func (t *Transcript) Append(el render.MessageElement) {
	t.w.line(t.w.Theme().Message(el))
}

// ScrollToLatest flushes buffered output so the newest line is on screen.
func (t *Transcript) ScrollToLatest() {
	if f, ok := t.w.out.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}

// Typing is the chat "thinking" indicator.
type Typing struct {
	spinner *Spinner
}

// NewTyping creates a hidden indicator.
func NewTyping(w *Writer) *Typing {
	return &Typing{spinner: NewSpinner(w, "thinking...")}
}

// ShowTyping starts the spinner.
func (t *Typing) ShowTyping() { t.spinner.Start() }

// HideTyping stops the spinner and clears its line.
func (t *Typing) HideTyping() { t.spinner.Stop() }

// LineInput holds the line most recently read from the terminal.
type LineInput struct {
	mu    sync.Mutex
	value string
}

// Set replaces the current value.
func (in *LineInput) Set(line string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.value = strings.TrimRight(line, "\r\n")
}

// Value returns the current value.
func (in *LineInput) Value() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

// Clear empties the input.
func (in *LineInput) Clear() {
	in.Set("")
}
