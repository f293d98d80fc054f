package ui

import "github.com/gdamore/tcell/v2"

// Theme is the color scheme of the schema browser.
var Theme = struct {
	Primary   tcell.Color
	Accent    tcell.Color
	Text      tcell.Color
	TextDim   tcell.Color
	Header    tcell.Color
	Border    tcell.Color
	Selection tcell.Color
	Highlight tcell.Color
	Key       tcell.Color

	Background tcell.Color
}{
	Primary:   tcell.ColorBlue,
	Accent:    tcell.ColorAqua,
	Text:      tcell.ColorWhite,
	TextDim:   tcell.ColorGray,
	Header:    tcell.ColorYellow,
	Border:    tcell.ColorGray,
	Selection: tcell.ColorTeal,
	Highlight: tcell.ColorWhite,
	Key:       tcell.ColorGreen,

	Background: tcell.ColorDefault,
}

// tview color tags
const (
	tagLabel    = "[yellow]"
	tagMuted    = "[gray]"
	tagAccent   = "[aqua]"
	tagReset    = "[-]"
	tagSelected = "[black:white]"
	tagEnd      = "[-:-]"
)

// Pages and their tab labels.
const (
	PageModels    = "models"
	PageRelations = "relations"

	labelModels    = "1 Models"
	labelRelations = "2 Relations"
)

const (
	hints        = " q quit  1/2 tabs  h/l panels  j/k navigate  g/G top/bottom "
	listWidth    = 24
	detailsWidth = 44
)
