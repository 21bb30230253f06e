// Package ui holds the terminal styling helpers shared by the CLI
// commands. Colors degrade to plain text on dumb terminals and when
// NO_COLOR is set.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var colorEnabled = os.Getenv("NO_COLOR") == "" &&
	termenv.EnvColorProfile() != termenv.Ascii

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func render(style lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return style.Render(s)
}

// RenderTitle renders a heading.
func RenderTitle(s string) string { return render(titleStyle, s) }

// RenderAccent renders highlighted text.
func RenderAccent(s string) string { return render(accentStyle, s) }

// RenderDim renders secondary text.
func RenderDim(s string) string { return render(dimStyle, s) }

// RenderOK renders a success marker.
func RenderOK(s string) string { return render(okStyle, s) }

// RenderWarn renders a warning marker.
func RenderWarn(s string) string { return render(warnStyle, s) }

// RenderError renders an error marker.
func RenderError(s string) string { return render(errorStyle, s) }
