package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Sanitize strips ANSI escape sequences and control characters, keeping
// newlines and tabs, so backend or user text is shown literally.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Theme holds the terminal styles for summaries and transcript lines.
type Theme struct {
	Label     lipgloss.Style
	Value     lipgloss.Style
	Border    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Error     lipgloss.Style
	Dim       lipgloss.Style
}

// DefaultTheme uses adaptive colours that read on light and dark backgrounds.
func DefaultTheme() Theme {
	return Theme{
		Label: lipgloss.NewStyle().Bold(true).PaddingRight(1),
		Value: lipgloss.NewStyle().PaddingLeft(1),
		Border: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"}),
		User: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),
		Assistant: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// SummaryTable draws rows as a bordered two-column table.
func (t Theme) SummaryTable(rows []SummaryRow) string {
	if len(rows) == 0 {
		return ""
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.Border).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return t.Label
			}
			return t.Value
		})
	for _, row := range rows {
		tbl.Row(Sanitize(row.Label)+":", Sanitize(row.Value))
	}
	return tbl.String()
}

// PlainSummary aligns rows without colour or borders, for pipes and logs.
func PlainSummary(rows []SummaryRow) string {
	width := 0
	for _, row := range rows {
		if w := runewidth.StringWidth(row.Label) + 1; w > width {
			width = w
		}
	}
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(runewidth.FillRight(Sanitize(row.Label)+":", width))
		sb.WriteString(" ")
		sb.WriteString(Sanitize(row.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Message draws one transcript element in its role's style.
func (t Theme) Message(el MessageElement) string {
	text := Sanitize(el.Text)
	switch el.Class {
	case ClassUser:
		return t.User.Render("you ›") + " " + text
	case ClassError:
		return t.Error.Render("error:") + " " + text
	default:
		return t.Assistant.Render("assistant ›") + " " + text
	}
}

// Truncate shortens s to at most width terminal cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
