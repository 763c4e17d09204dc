// Package display provides terminal formatting for summarize output.
package display

import (
	"fmt"
	"io"
	"strings"

	"summymail/internal/session"

	"github.com/charmbracelet/lipgloss"
)

var (
	Muted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Bold     = lipgloss.NewStyle().Bold(true)
	Success  = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	Section  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	Box      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4CAF50")).Padding(0, 1)
)

// sectionHeaders are the reply lines styled as headings
var sectionHeaders = []string{"SUMMARY:", "ACTION ITEMS FOR", "PARTICIPANTS:"}

// Reply writes the model reply with its section headers highlighted.
func Reply(w io.Writer, reply string) {
	var b strings.Builder
	for i, line := range strings.Split(strings.TrimRight(reply, "\n"), "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		if isHeader(line) {
			b.WriteString(Section.Render(line))
			continue
		}
		b.WriteString(line)
	}
	fmt.Fprintln(w, Box.Render(b.String()))
}

// Checklist writes the to-do list for the action items.
func Checklist(w io.Writer, items []session.ActionItem) {
	fmt.Fprintln(w, Bold.Render("Action Items for Eduardo Mangarelli"))
	if len(items) == 0 {
		fmt.Fprintln(w, Muted.Render("  No specific action items identified"))
		return
	}
	for i, item := range items {
		box := "[ ]"
		text := item.Text
		if item.Done {
			box = Success.Render("[x]")
			text = Muted.Render(text)
		}
		fmt.Fprintf(w, "  %s %d. %s\n", box, i+1, text)
	}
}

// ErrorMsg writes a red X + message.
func ErrorMsg(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, ErrStyle.Render("✗")+" "+msg)
}

func isHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, h := range sectionHeaders {
		if strings.HasPrefix(trimmed, h) {
			return true
		}
	}
	return false
}
