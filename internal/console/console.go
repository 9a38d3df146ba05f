// Package console prints cargo-style status lines: a bold, right-aligned
// verb followed by the subject, plus warn/note/error prefixes. Everything
// goes to stderr so stdout stays clean for machine consumption.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// verbWidth right-aligns status verbs the way cargo does.
const verbWidth = 12

var (
	verbStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Width(verbWidth).Align(lipgloss.Right)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	noteStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// out is swappable for tests.
var out io.Writer = os.Stderr

// Status prints a progress line like `    Flushing demo v0.1.0`.
func Status(verb, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", verbStyle.Render(verb), fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func Warn(format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", warnStyle.Render("warning:"), fmt.Sprintf(format, args...))
}

// Note prints an informational line.
func Note(format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", noteStyle.Render("note:"), fmt.Sprintf(format, args...))
}

// Error prints an error line.
func Error(format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", errorStyle.Render("error:"), fmt.Sprintf(format, args...))
}
