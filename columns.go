package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type column interface {
	SetSize(width, height int)
	Update(msg tea.Msg) (column, tea.Cmd)
	View(styles styles, focused bool) string
	Title() string
	FocusValue() string
}

type listEntry struct {
	title   string
	desc    string
	payload string
}

func (e listEntry) Title() string       { return e.title }
func (e listEntry) Description() string { return e.desc }
func (e listEntry) FilterValue() string { return e.title }

// sectionListColumn is the left pane: one entry per dashboard section.
type sectionListColumn struct {
	title    string
	model    list.Model
	width    int
	height   int
	onSelect func(entry listEntry) tea.Cmd
}

func newSectionListColumn(title string, items []list.Item, width int, onSelect func(listEntry) tea.Cmd, s styles) *sectionListColumn {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.SelectedDesc = s.listSel.Copy().Faint(true)
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.NormalDesc = s.listItem.Copy().Foreground(palette.muted)

	m := list.New(items, delegate, width, 20)
	m.Title = title
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(false)

	return &sectionListColumn{
		title:    title,
		model:    m,
		width:    width,
		onSelect: onSelect,
	}
}

func (c *sectionListColumn) SetItems(items []list.Item) {
	c.model.SetItems(items)
	if len(items) > 0 && c.model.Index() >= len(items) {
		c.model.Select(0)
	}
}

// SelectKey moves the cursor to the entry whose payload matches key.
func (c *sectionListColumn) SelectKey(key string) {
	for i, item := range c.model.Items() {
		if entry, ok := item.(listEntry); ok && entry.payload == key {
			c.model.Select(i)
			return
		}
	}
}

func (c *sectionListColumn) SelectedEntry() (listEntry, bool) {
	if entry, ok := c.model.SelectedItem().(listEntry); ok {
		return entry, true
	}
	return listEntry{}, false
}

func (c *sectionListColumn) SetSize(width, height int) {
	c.width = width
	if height < 3 {
		height = 3
	}
	c.height = height
	c.model.SetSize(width, height-2)
}

func (c *sectionListColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && c.onSelect != nil {
		if entry, ok := c.model.SelectedItem().(listEntry); ok {
			return c, c.onSelect(entry)
		}
	}
	var cmd tea.Cmd
	c.model, cmd = c.model.Update(msg)
	return c, cmd
}

func (c *sectionListColumn) View(s styles, focused bool) string {
	body := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(c.title), c.model.View())
	if focused {
		return s.panelFocused.Width(c.width).Render(body)
	}
	return s.panel.Width(c.width).Render(body)
}

func (c *sectionListColumn) Title() string {
	return c.title
}

func (c *sectionListColumn) FocusValue() string {
	if entry, ok := c.model.SelectedItem().(listEntry); ok {
		return entry.title
	}
	return ""
}

// rowsColumn is the middle pane: the active section's table plus a
// footer with filter, page and selection counts.
type rowsColumn struct {
	title   string
	facade  tableFacade
	loading bool
	lastErr error
	width   int
	height  int
}

func newRowsColumn(title string) *rowsColumn {
	return &rowsColumn{title: title}
}

func (c *rowsColumn) SetFacade(title string, facade tableFacade) {
	c.title = title
	c.facade = facade
	c.resize()
}

func (c *rowsColumn) SetStatus(loading bool, err error) {
	c.loading = loading
	c.lastErr = err
}

func (c *rowsColumn) Facade() tableFacade {
	return c.facade
}

func (c *rowsColumn) SetSize(width, height int) {
	c.width = width
	if height < 5 {
		height = 5
	}
	c.height = height
	c.resize()
}

func (c *rowsColumn) resize() {
	if c.facade == nil {
		return
	}
	c.facade.SetSize(c.width-2, c.height-5)
}

func (c *rowsColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	if c.facade == nil {
		return c, nil
	}
	return c, c.facade.Update(msg)
}

func (c *rowsColumn) View(s styles, focused bool) string {
	var body string
	switch {
	case c.facade == nil:
		body = s.statusHint.Render("no rows here")
	case c.loading:
		body = c.facade.View(s, focused) + "\n" + s.statusHint.Render("loading…")
	default:
		body = c.facade.View(s, focused) + "\n" + c.footer(s)
	}
	if c.lastErr != nil {
		body += "\n" + s.errorBanner.Render(truncate(c.lastErr.Error(), max(c.width-4, 20)))
	}
	full := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(c.title), body)
	if focused {
		return s.panelFocused.Width(c.width).Render(full)
	}
	return s.panel.Width(c.width).Render(full)
}

func (c *rowsColumn) footer(s styles) string {
	counts := c.facade.Counts()
	segments := []string{
		fmt.Sprintf("%d/%d rows", counts.Filtered, counts.Total),
		fmt.Sprintf("page %d/%d", counts.Page+1, max(counts.PageCount, 1)),
		fmt.Sprintf("%d per page", counts.PageSize),
	}
	if counts.Selected > 0 {
		segments = append(segments, fmt.Sprintf("%d selected", counts.Selected))
	}
	if filter := c.facade.FilterQuery(); filter != "" {
		segments = append(segments, fmt.Sprintf("filter %q", filter))
	}
	return s.statusHint.Render(strings.Join(segments, " · "))
}

func (c *rowsColumn) Title() string {
	return c.title
}

func (c *rowsColumn) FocusValue() string {
	if c.facade == nil {
		return ""
	}
	return c.facade.CurrentLabel()
}

// textColumn is a read-only viewport pane, used for the detail view and
// the analytics board.
type textColumn struct {
	title   string
	width   int
	height  int
	content string
	view    viewport.Model
}

func newTextColumn(title string, width int) *textColumn {
	vp := viewport.New(width, 20)
	return &textColumn{
		title: title,
		view:  vp,
	}
}

func (p *textColumn) SetSize(width, height int) {
	p.width = width
	if height < 3 {
		height = 3
	}
	p.height = height
	p.view.Width = width - 2
	p.view.Height = height - 3
}

func (p *textColumn) SetTitle(title string) {
	p.title = title
}

func (p *textColumn) SetContent(content string) {
	if content == p.content {
		return
	}
	p.content = content
	p.view.SetContent(content)
	p.view.GotoTop()
}

func (p *textColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	p.view, cmd = p.view.Update(msg)
	return p, cmd
}

func (p *textColumn) View(s styles, focused bool) string {
	header := s.columnTitle.Render(p.title)
	body := header + "\n" + p.view.View()
	if focused {
		return s.panelFocused.Width(p.width).Render(body)
	}
	return s.panel.Width(p.width).Render(body)
}

func (p *textColumn) Title() string {
	return p.title
}

func (p *textColumn) FocusValue() string {
	return ""
}
