// Package ui provides the interactive schema browser behind `ormer browse`.
// On a terminal it runs a tview application; otherwise the same data is
// written as plain text.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-isatty"
	"github.com/rivo/tview"

	"github.com/hlop3z/ormer/internal/metadata"
)

// Browse shows meta. It runs the interactive browser when out is a terminal
// and writes a plain listing otherwise.
func Browse(meta *metadata.Metadata, out *os.File) error {
	if out == nil || !isatty.IsTerminal(out.Fd()) {
		var w io.Writer = os.Stdout
		if out != nil {
			w = out
		}
		return WriteText(w, meta)
	}
	return NewBrowser(meta).Run()
}

// Browser is a two-page tview application: models with their columns, and
// the classified relations with their join tables.
type Browser struct {
	meta   *metadata.Metadata
	models []string

	app       *tview.Application
	pages     *tview.Pages
	tabBar    *tview.TextView
	page      string
	modelList *tview.List
	columns   *tview.Table
	details   *tview.TextView
	relations *tview.Table
	panels    []tview.Primitive
	panel     int
}

// NewBrowser builds the browser widgets for meta without starting it.
func NewBrowser(meta *metadata.Metadata) *Browser {
	b := &Browser{
		meta:   meta,
		models: sortedModels(meta),
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		page:   PageModels,
	}

	b.pages.AddPage(PageModels, b.modelsPage(), true, true)
	b.pages.AddPage(PageRelations, b.relationsPage(), true, false)

	b.tabBar = tview.NewTextView().SetDynamicColors(true)
	b.tabBar.SetBackgroundColor(Theme.Background)
	b.renderTabs()

	header := tview.NewTextView().SetText(b.headerText()).SetTextColor(Theme.Text)
	header.SetBackgroundColor(Theme.Primary)

	status := tview.NewTextView().
		SetText(hints).
		SetTextColor(Theme.TextDim).
		SetTextAlign(tview.AlignCenter)
	status.SetBackgroundColor(Theme.Background)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(b.tabBar, 1, 0, false).
		AddItem(b.pages, 0, 1, true).
		AddItem(status, 1, 0, false)

	b.app.SetRoot(layout, true).EnableMouse(true)
	b.app.SetInputCapture(b.handleKey)
	return b
}

// Run starts the application and blocks until the user quits.
func (b *Browser) Run() error {
	return b.app.Run()
}

// Page returns the name of the visible page.
func (b *Browser) Page() string { return b.page }

func (b *Browser) headerText() string {
	text := fmt.Sprintf(" ormer  %s  %d models  %d relations",
		b.meta.Database, len(b.meta.Tables), len(b.meta.Relations))
	if fp := b.meta.Fingerprint; fp != "" {
		if len(fp) > 12 {
			fp = fp[:12]
		}
		text += "  " + fp
	}
	return text
}

func (b *Browser) renderTabs() {
	var text strings.Builder
	text.WriteString(" ")
	for _, tab := range []struct{ page, label string }{
		{PageModels, labelModels},
		{PageRelations, labelRelations},
	} {
		if tab.page == b.page {
			fmt.Fprintf(&text, "%s %s %s ", tagSelected, tab.label, tagEnd)
		} else {
			fmt.Fprintf(&text, " %s  ", tab.label)
		}
	}
	b.tabBar.SetText(text.String())
}

func (b *Browser) switchTo(page string) {
	b.page = page
	b.pages.SwitchToPage(page)
	b.renderTabs()
	if page == PageModels && len(b.panels) > 0 {
		b.app.SetFocus(b.panels[b.panel])
	} else if page == PageRelations {
		b.app.SetFocus(b.relations)
	}
}

func (b *Browser) movePanel(delta int) {
	if b.page != PageModels || len(b.panels) == 0 {
		return
	}
	b.panel = (b.panel + delta + len(b.panels)) % len(b.panels)
	b.app.SetFocus(b.panels[b.panel])
}

func (b *Browser) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		b.app.Stop()
		return nil
	case tcell.KeyLeft:
		if b.page == PageModels {
			b.movePanel(-1)
			return nil
		}
	case tcell.KeyRight:
		if b.page == PageModels {
			b.movePanel(1)
			return nil
		}
	}

	switch event.Rune() {
	case 'q':
		b.app.Stop()
		return nil
	case '1':
		b.switchTo(PageModels)
		return nil
	case '2':
		b.switchTo(PageRelations)
		return nil
	case 'h':
		b.movePanel(-1)
		return nil
	case 'l':
		b.movePanel(1)
		return nil
	case 'j':
		return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	case 'k':
		return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	case 'g':
		return tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone)
	case 'G':
		return tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone)
	}
	return event
}

func panelBorder(box *tview.Box, title string) {
	box.SetBackgroundColor(Theme.Background).
		SetBorder(true).
		SetBorderColor(Theme.Border).
		SetTitle(" " + title + " ").
		SetTitleColor(Theme.Accent)
}

func selectableTable() *tview.Table {
	t := tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0).
		SetSelectable(true, false).
		SetSelectedStyle(tcell.StyleDefault.Foreground(Theme.Highlight).Background(Theme.Selection))
	return t
}

func headerRow(t *tview.Table, headers ...string) {
	for i, h := range headers {
		t.SetCell(0, i, tview.NewTableCell(h).
			SetTextColor(Theme.Header).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false).
			SetExpansion(1))
	}
}

func (b *Browser) modelsPage() tview.Primitive {
	if len(b.models) == 0 {
		empty := tview.NewTextView().
			SetDynamicColors(true).
			SetTextAlign(tview.AlignCenter).
			SetText("\n\n" + tagMuted + "the schema declares no models" + tagReset)
		return empty
	}

	b.modelList = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true).
		SetSelectedBackgroundColor(Theme.Selection).
		SetSelectedFocusOnly(false).
		SetMainTextColor(Theme.Text)
	panelBorder(b.modelList.Box, "Models")

	b.columns = selectableTable()
	panelBorder(b.columns.Box, "Columns")

	b.details = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	panelBorder(b.details.Box, "Details")

	for _, name := range b.models {
		b.modelList.AddItem(name, "", 0, nil)
	}
	b.modelList.SetChangedFunc(func(index int, _, _ string, _ rune) {
		b.showModel(index)
	})
	b.showModel(0)

	b.panels = []tview.Primitive{b.modelList, b.columns, b.details}
	return tview.NewFlex().
		AddItem(b.modelList, listWidth, 0, true).
		AddItem(b.columns, 0, 1, false).
		AddItem(b.details, detailsWidth, 0, false)
}

// showModel fills the columns and details panels for the index-th model.
func (b *Browser) showModel(index int) {
	if index < 0 || index >= len(b.models) {
		return
	}
	t := b.meta.Tables[b.models[index]]

	b.columns.Clear()
	headerRow(b.columns, "COLUMN", "MEMBER", "TYPE", "NULL", "DEFAULT")
	for r, c := range t.Columns {
		name := c.Name
		if c.PrimaryKey {
			name += " (pk)"
		}
		nullable := ""
		if c.Nullable {
			nullable = "yes"
		}
		typ := c.Type
		if c.List {
			typ += "[]"
		}
		for i, text := range []string{name, c.Member, typ, nullable, c.Default} {
			cell := tview.NewTableCell(text).SetTextColor(Theme.Text).SetExpansion(1)
			if i == 0 {
				cell.SetTextColor(Theme.Key)
			}
			b.columns.SetCell(r+1, i, cell)
		}
	}
	b.columns.ScrollToBeginning()

	b.details.SetText(modelDetails(b.meta, t))
	b.details.ScrollToBeginning()
}

func modelDetails(meta *metadata.Metadata, t *metadata.TableMeta) string {
	var s strings.Builder
	fmt.Fprintf(&s, "%sTable:%s %s\n", tagLabel, tagReset, t.QuotedName)
	fmt.Fprintf(&s, "%sPrimary key:%s %s\n", tagLabel, tagReset, t.PrimaryKey)
	if len(t.ForeignKeys) > 0 {
		fmt.Fprintf(&s, "%sForeign keys:%s %s\n", tagLabel, tagReset, strings.Join(t.ForeignKeys, ", "))
	}

	var rels []string
	for _, r := range meta.Relations {
		if modelOf(r.From) == t.Model || modelOf(r.To) == t.Model {
			rels = append(rels, fmt.Sprintf("  %s%s%s %s", tagAccent, r.Name, tagReset, r.Kind))
		}
	}
	if len(rels) > 0 {
		fmt.Fprintf(&s, "\n%sRelations:%s\n%s\n", tagLabel, tagReset, strings.Join(rels, "\n"))
	}
	return s.String()
}

func (b *Browser) relationsPage() tview.Primitive {
	b.relations = selectableTable()
	panelBorder(b.relations.Box, "Relations")
	headerRow(b.relations, "NAME", "KIND", "FROM", "TO", "FOREIGN KEY", "JOIN TABLE")

	for r, rel := range b.meta.Relations {
		join := ""
		if jt, ok := b.meta.JoinTables[rel.Name]; ok {
			join = jt.Name
		}
		for i, text := range []string{rel.Name, rel.Kind, rel.From, rel.To, foreignKey(rel), join} {
			cell := tview.NewTableCell(text).SetTextColor(Theme.Text).SetExpansion(1)
			if i == 0 {
				cell.SetTextColor(Theme.Accent)
			}
			b.relations.SetCell(r+1, i, cell)
		}
	}
	return b.relations
}

// foreignKey renders "Owner.member (fields -> references)", or "" when the
// relation has no foreign key side.
func foreignKey(r *metadata.RelationMeta) string {
	if r.Owner == "" {
		return ""
	}
	if len(r.Fields) == 0 {
		return r.Owner
	}
	return fmt.Sprintf("%s (%s -> %s)", r.Owner, strings.Join(r.Fields, ", "), strings.Join(r.References, ", "))
}

func sortedModels(meta *metadata.Metadata) []string {
	names := make([]string, 0, len(meta.Tables))
	for name := range meta.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// modelOf returns the model part of a "Model.member" reference.
func modelOf(ref string) string {
	model, _, _ := strings.Cut(ref, ".")
	return model
}
