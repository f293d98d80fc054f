package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// PanelKind selects the border color and title marker of a panel.
type PanelKind int

const (
	PanelInfo PanelKind = iota
	PanelSuccess
	PanelWarning
	PanelError
)

type panelStyle struct {
	marker string
	color  lipgloss.Color
}

var panelStyles = map[PanelKind]panelStyle{
	PanelInfo:    {"→", colorBlue},
	PanelSuccess: {"✓", colorGreen},
	PanelWarning: {"!", colorYellow},
	PanelError:   {"✗", colorRed},
}

// RenderPanel renders a titled block. With colors enabled it is drawn inside
// a rounded border; otherwise the title is a marked line above the content.
func RenderPanel(kind PanelKind, title, content string) string {
	ps := panelStyles[kind]
	heading := ps.marker + " " + title

	if !EnableColors() {
		if content == "" {
			return heading + "\n"
		}
		return heading + "\n" + content + "\n"
	}

	body := lipgloss.NewStyle().Bold(true).Foreground(ps.color).Render(heading)
	if content != "" {
		body += "\n\n" + content
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ps.color).
		Padding(0, 1).
		Render(body) + "\n"
}

// RenderBadge renders a short status label, e.g. OK or STALE.
func RenderBadge(kind PanelKind, text string) string {
	if !EnableColors() {
		return "[" + text + "]"
	}
	fg := lipgloss.Color("0")
	if kind == PanelError || kind == PanelInfo {
		fg = lipgloss.Color("15")
	}
	return lipgloss.NewStyle().
		Background(panelStyles[kind].color).
		Foreground(fg).
		Bold(true).
		Padding(0, 1).
		Render(text)
}
