package cli

import "github.com/charmbracelet/lipgloss"

// ANSI 256 palette shared by every renderer in this package.
var (
	colorRed    = lipgloss.Color("9")
	colorGreen  = lipgloss.Color("10")
	colorYellow = lipgloss.Color("11")
	colorBlue   = lipgloss.Color("12")
	colorCyan   = lipgloss.Color("14")
	colorGray   = lipgloss.Color("8")
)

var (
	styleError   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	stylePipe    = lipgloss.NewStyle().Foreground(colorBlue)
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorGray)
	styleAccent  = lipgloss.NewStyle().Foreground(colorCyan)
)

func render(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error returns text styled as an error label.
func Error(s string) string { return render(styleError, s) }

// Warning returns text styled as a warning label.
func Warning(s string) string { return render(styleWarning, s) }

// Note returns text styled as a note label.
func Note(s string) string { return render(styleNote, s) }

// Help returns text styled as a help label.
func Help(s string) string { return render(styleHelp, s) }

// Success returns text styled as a success message.
func Success(s string) string { return render(styleSuccess, s) }

// Pipe returns the gutter character used in diagnostics.
func Pipe(s string) string { return render(stylePipe, s) }

// Bold returns bold text, used for file paths and table headers.
func Bold(s string) string { return render(styleBold, s) }

// Dim returns de-emphasized text.
func Dim(s string) string { return render(styleDim, s) }

// Accent returns highlighted text, used for model and relation names.
func Accent(s string) string { return render(styleAccent, s) }
