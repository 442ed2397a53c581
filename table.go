package main

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var pageSizeOptions = []int{10, 25, 50, 100}

const defaultPageSize = 25

type sortDirection int

const (
	sortNone sortDirection = iota
	sortAsc
	sortDesc
)

// columnSpec describes one table column for row type R: how to read the
// cell, how to sort it, and how it behaves in search and exports.
// Nested columns hold flattened complex values (embedded objects, image
// lists); they are skipped by the PDF exporter and kept in CSV.
type columnSpec[R any] struct {
	Key        string
	Label      string
	Width      int
	Value      func(R) string
	Sort       func(a, b R) bool
	Searchable bool
	Nested     bool
	Hidden     bool
}

type tableQuery struct {
	Filter   string
	SortKey  string
	SortDir  sortDirection
	Page     int
	PageSize int
}

type tableView[R any] struct {
	Window    []R
	Filtered  int
	Total     int
	Page      int
	PageCount int
}

// applyFilter keeps rows whose searchable columns contain the query,
// case-insensitively. Columns default to searchable when none are
// marked. An empty query keeps everything.
func applyFilter[R any](columns []columnSpec[R], rows []R, query string) []R {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	searchable := make([]columnSpec[R], 0, len(columns))
	for _, col := range columns {
		if col.Searchable {
			searchable = append(searchable, col)
		}
	}
	if len(searchable) == 0 {
		searchable = columns
	}
	var kept []R
	for _, row := range rows {
		for _, col := range searchable {
			if strings.Contains(strings.ToLower(col.Value(row)), query) {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}

// applySort orders rows by the keyed column. Unknown keys and sortNone
// leave the order untouched. The sort is stable so equal cells keep
// their fetch order.
func applySort[R any](columns []columnSpec[R], rows []R, key string, dir sortDirection) []R {
	if dir == sortNone || key == "" {
		return rows
	}
	var active *columnSpec[R]
	for i := range columns {
		if columns[i].Key == key {
			active = &columns[i]
			break
		}
	}
	if active == nil {
		return rows
	}
	less := active.Sort
	if less == nil {
		value := active.Value
		less = func(a, b R) bool {
			return strings.ToLower(value(a)) < strings.ToLower(value(b))
		}
	}
	sorted := make([]R, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if dir == sortDesc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// paginate slices one page out of rows. A page beyond the final page
// resets to the first one, which also covers the filtered set shrinking
// underneath the current page.
func paginate[R any](rows []R, page, size int) (window []R, actualPage, pageCount int) {
	if size <= 0 {
		size = defaultPageSize
	}
	pageCount = (len(rows) + size - 1) / size
	if page < 0 || page >= pageCount {
		page = 0
	}
	start := page * size
	if start >= len(rows) {
		return nil, page, pageCount
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], page, pageCount
}

// buildTableView runs the filter, sort, paginate pipeline. It is pure:
// the same inputs always yield the same window and counts.
func buildTableView[R any](columns []columnSpec[R], rows []R, q tableQuery) tableView[R] {
	filtered := applyFilter(columns, rows, q.Filter)
	ordered := applySort(columns, filtered, q.SortKey, q.SortDir)
	window, page, pageCount := paginate(ordered, q.Page, q.PageSize)
	return tableView[R]{
		Window:    window,
		Filtered:  len(filtered),
		Total:     len(rows),
		Page:      page,
		PageCount: pageCount,
	}
}

type tableCounts struct {
	Total     int
	Filtered  int
	Page      int
	PageCount int
	PageSize  int
	Selected  int
}

// tableFacade is the untyped surface the UI drives a section's table
// through. The typed dataTable behind it owns the rows.
type tableFacade interface {
	SetSize(width, height int)
	Update(msg tea.Msg) tea.Cmd
	View(st styles, focused bool) string
	SetFilter(query string)
	FilterQuery() string
	SortOptions() []string
	SortByIndex(index int)
	SortLabel() string
	NextPage()
	PrevPage()
	CyclePageSize()
	ToggleSelectCurrent()
	ToggleSelectPage()
	ClearSelection()
	SelectedIDs() []string
	CurrentID() string
	CurrentLabel() string
	ColumnToggles() []string
	ToggleColumnAt(index int) (key string, hidden bool)
	SetHiddenKeys(keys []string)
	HiddenKeys() []string
	Counts() tableCounts
	ExportHeaders(includeNested bool) []string
	ExportRows(includeNested, all bool) [][]string
}

// dataTable renders one entity collection through a bubbles table. All
// derivation goes through buildTableView; the bubbles model only ever
// sees the current window.
type dataTable[R any] struct {
	columns  []columnSpec[R]
	rows     []R
	query    tableQuery
	hidden   map[string]bool
	selected map[string]bool
	rowID    func(R) string
	rowLabel func(R) string
	view     tableView[R]
	tbl      table.Model
	width    int
	height   int
}

func newDataTable[R any](columns []columnSpec[R], rowID func(R) string, rowLabel func(R) string, pageSize int) *dataTable[R] {
	hidden := make(map[string]bool)
	for _, col := range columns {
		if col.Hidden {
			hidden[col.Key] = true
		}
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	dt := &dataTable[R]{
		columns:  columns,
		hidden:   hidden,
		selected: make(map[string]bool),
		rowID:    rowID,
		rowLabel: rowLabel,
		query:    tableQuery{PageSize: pageSize},
		tbl:      newRowsTableModel(),
	}
	dt.refresh()
	return dt
}

func newRowsTableModel() table.Model {
	tbl := table.New(table.WithFocused(true))
	st := table.DefaultStyles()
	st.Header = st.Header.
		Bold(true).
		Foreground(palette.muted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.muted).
		BorderBottom(true).
		Padding(0, 1)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	st.Cell = st.Cell.Padding(0, 1)
	tbl.SetStyles(st)
	return tbl
}

// SetRows replaces the collection, drops stale selection, and rebuilds
// the window. Selection is keyed by id so refetches start clean.
func (d *dataTable[R]) SetRows(rows []R) {
	d.rows = rows
	d.selected = make(map[string]bool)
	d.refresh()
}

func (d *dataTable[R]) Rows() []R {
	return d.rows
}

// MapRows rewrites every row in place and rebuilds the window. Used
// for local patches that should not trigger a refetch.
func (d *dataTable[R]) MapRows(fn func(R) R) {
	for i := range d.rows {
		d.rows[i] = fn(d.rows[i])
	}
	d.refresh()
}

// RemoveRow drops one row from the local collection without a refetch.
func (d *dataTable[R]) RemoveRow(id string) {
	kept := d.rows[:0]
	for _, row := range d.rows {
		if d.rowID(row) != id {
			kept = append(kept, row)
		}
	}
	d.rows = kept
	delete(d.selected, id)
	d.refresh()
}

func (d *dataTable[R]) CurrentRow() (R, bool) {
	var zero R
	cursor := d.tbl.Cursor()
	if cursor < 0 || cursor >= len(d.view.Window) {
		return zero, false
	}
	return d.view.Window[cursor], true
}

func (d *dataTable[R]) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.tbl.SetWidth(width)
	if height > 3 {
		d.tbl.SetHeight(height - 1)
	}
	d.refresh()
}

func (d *dataTable[R]) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.tbl, cmd = d.tbl.Update(msg)
	return cmd
}

func (d *dataTable[R]) View(st styles, focused bool) string {
	body := d.tbl.View()
	if len(d.view.Window) == 0 {
		placeholder := "no rows"
		if strings.TrimSpace(d.query.Filter) != "" {
			placeholder = "no rows match \"" + strings.TrimSpace(d.query.Filter) + "\""
		}
		body = st.statusHint.Render(placeholder)
	}
	return body
}

func (d *dataTable[R]) SetFilter(query string) {
	d.query.Filter = query
	d.refresh()
}

func (d *dataTable[R]) FilterQuery() string {
	return d.query.Filter
}

// SortOptions lists the visible column labels for the sort overlay,
// marking the active one with its direction arrow.
func (d *dataTable[R]) SortOptions() []string {
	visible := d.visibleColumns()
	options := make([]string, 0, len(visible))
	for _, col := range visible {
		label := col.Label
		if col.Key == d.query.SortKey {
			switch d.query.SortDir {
			case sortAsc:
				label += " ▲"
			case sortDesc:
				label += " ▼"
			}
		}
		options = append(options, label)
	}
	return options
}

// SortByIndex targets the index-th visible column and advances its
// direction.
func (d *dataTable[R]) SortByIndex(index int) {
	visible := d.visibleColumns()
	if index < 0 || index >= len(visible) {
		return
	}
	d.SortByKey(visible[index].Key)
}

// SortByKey cycles asc/desc/none on one column, switching columns
// restarts at ascending.
func (d *dataTable[R]) SortByKey(key string) {
	if d.query.SortKey != key {
		d.query.SortKey = key
		d.query.SortDir = sortAsc
		d.refresh()
		return
	}
	switch d.query.SortDir {
	case sortAsc:
		d.query.SortDir = sortDesc
	case sortDesc:
		d.query.SortKey = ""
		d.query.SortDir = sortNone
	default:
		d.query.SortDir = sortAsc
	}
	d.refresh()
}

func (d *dataTable[R]) SortLabel() string {
	if d.query.SortDir == sortNone || d.query.SortKey == "" {
		return ""
	}
	arrow := "▲"
	if d.query.SortDir == sortDesc {
		arrow = "▼"
	}
	for _, col := range d.columns {
		if col.Key == d.query.SortKey {
			return col.Label + " " + arrow
		}
	}
	return ""
}

func (d *dataTable[R]) NextPage() {
	if d.query.Page+1 < d.view.PageCount {
		d.query.Page++
		d.refresh()
	}
}

func (d *dataTable[R]) PrevPage() {
	if d.query.Page > 0 {
		d.query.Page--
		d.refresh()
	}
}

func (d *dataTable[R]) CyclePageSize() {
	for i, option := range pageSizeOptions {
		if option == d.query.PageSize {
			d.query.PageSize = pageSizeOptions[(i+1)%len(pageSizeOptions)]
			d.query.Page = 0
			d.refresh()
			return
		}
	}
	d.query.PageSize = pageSizeOptions[0]
	d.query.Page = 0
	d.refresh()
}

func (d *dataTable[R]) ToggleSelectCurrent() {
	row, ok := d.CurrentRow()
	if !ok {
		return
	}
	id := d.rowID(row)
	if d.selected[id] {
		delete(d.selected, id)
	} else {
		d.selected[id] = true
	}
	d.refresh()
}

// ToggleSelectPage selects every row on the page, or clears them all
// when the page is already fully selected.
func (d *dataTable[R]) ToggleSelectPage() {
	allSelected := len(d.view.Window) > 0
	for _, row := range d.view.Window {
		if !d.selected[d.rowID(row)] {
			allSelected = false
			break
		}
	}
	for _, row := range d.view.Window {
		id := d.rowID(row)
		if allSelected {
			delete(d.selected, id)
		} else {
			d.selected[id] = true
		}
	}
	d.refresh()
}

func (d *dataTable[R]) ClearSelection() {
	d.selected = make(map[string]bool)
	d.refresh()
}

func (d *dataTable[R]) SelectedIDs() []string {
	ids := make([]string, 0, len(d.selected))
	for _, row := range d.rows {
		if id := d.rowID(row); d.selected[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (d *dataTable[R]) SelectedRows() []R {
	var rows []R
	for _, row := range d.rows {
		if d.selected[d.rowID(row)] {
			rows = append(rows, row)
		}
	}
	return rows
}

func (d *dataTable[R]) CurrentID() string {
	row, ok := d.CurrentRow()
	if !ok {
		return ""
	}
	return d.rowID(row)
}

func (d *dataTable[R]) CurrentLabel() string {
	row, ok := d.CurrentRow()
	if !ok {
		return ""
	}
	return d.rowLabel(row)
}

// ColumnToggles lists every column with its visibility marker, in
// declaration order, for the visibility overlay.
func (d *dataTable[R]) ColumnToggles() []string {
	toggles := make([]string, 0, len(d.columns))
	for _, col := range d.columns {
		marker := "[x]"
		if d.hidden[col.Key] {
			marker = "[ ]"
		}
		toggles = append(toggles, marker+" "+col.Label)
	}
	return toggles
}

func (d *dataTable[R]) ToggleColumnAt(index int) (string, bool) {
	if index < 0 || index >= len(d.columns) {
		return "", false
	}
	key := d.columns[index].Key
	if d.hidden[key] {
		delete(d.hidden, key)
	} else {
		d.hidden[key] = true
	}
	if d.query.SortKey == key && d.hidden[key] {
		d.query.SortKey = ""
		d.query.SortDir = sortNone
	}
	d.refresh()
	return key, d.hidden[key]
}

func (d *dataTable[R]) SetHiddenKeys(keys []string) {
	d.hidden = make(map[string]bool)
	for _, key := range keys {
		d.hidden[key] = true
	}
	if d.query.SortKey != "" && d.hidden[d.query.SortKey] {
		d.query.SortKey = ""
		d.query.SortDir = sortNone
	}
	d.refresh()
}

func (d *dataTable[R]) HiddenKeys() []string {
	var keys []string
	for _, col := range d.columns {
		if d.hidden[col.Key] {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

func (d *dataTable[R]) Counts() tableCounts {
	return tableCounts{
		Total:     d.view.Total,
		Filtered:  d.view.Filtered,
		Page:      d.view.Page,
		PageCount: d.view.PageCount,
		PageSize:  d.query.PageSize,
		Selected:  len(d.selected),
	}
}

// ExportHeaders returns the visible column labels. Nested columns are
// dropped when includeNested is false, which is how the PDF exporter
// calls it.
func (d *dataTable[R]) ExportHeaders(includeNested bool) []string {
	var headers []string
	for _, col := range d.visibleColumns() {
		if col.Nested && !includeNested {
			continue
		}
		headers = append(headers, col.Label)
	}
	return headers
}

// ExportRows serializes either the filtered/sorted set or the full
// collection through the column value funcs, so nested fields come out
// flattened exactly as they render.
func (d *dataTable[R]) ExportRows(includeNested, all bool) [][]string {
	source := d.rows
	if !all {
		source = applySort(d.columns, applyFilter(d.columns, d.rows, d.query.Filter), d.query.SortKey, d.query.SortDir)
	}
	columns := make([]columnSpec[R], 0, len(d.columns))
	for _, col := range d.visibleColumns() {
		if col.Nested && !includeNested {
			continue
		}
		columns = append(columns, col)
	}
	records := make([][]string, 0, len(source))
	for _, row := range source {
		record := make([]string, 0, len(columns))
		for _, col := range columns {
			record = append(record, col.Value(row))
		}
		records = append(records, record)
	}
	return records
}

func (d *dataTable[R]) visibleColumns() []columnSpec[R] {
	visible := make([]columnSpec[R], 0, len(d.columns))
	for _, col := range d.columns {
		if !d.hidden[col.Key] {
			visible = append(visible, col)
		}
	}
	return visible
}

// refresh re-derives the window and pushes it into the bubbles model,
// keeping the cursor on the same row id when it survives.
func (d *dataTable[R]) refresh() {
	previousID := ""
	if row, ok := d.CurrentRow(); ok {
		previousID = d.rowID(row)
	}

	d.view = buildTableView(d.columns, d.rows, d.query)
	d.query.Page = d.view.Page

	visible := d.visibleColumns()
	columns := make([]table.Column, 0, len(visible)+1)
	columns = append(columns, table.Column{Title: "", Width: 2})
	widths := d.fitWidths(visible)
	for i, col := range visible {
		title := col.Label
		if col.Key == d.query.SortKey && d.query.SortDir != sortNone {
			if d.query.SortDir == sortAsc {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		columns = append(columns, table.Column{Title: title, Width: widths[i]})
	}

	rows := make([]table.Row, 0, len(d.view.Window))
	cursor := 0
	for i, row := range d.view.Window {
		id := d.rowID(row)
		if id == previousID && previousID != "" {
			cursor = i
		}
		marker := " "
		if d.selected[id] {
			marker = "✓"
		}
		cells := make(table.Row, 0, len(visible)+1)
		cells = append(cells, marker)
		for _, col := range visible {
			cells = append(cells, col.Value(row))
		}
		rows = append(rows, cells)
	}

	d.tbl.SetColumns(columns)
	d.tbl.SetRows(rows)
	if len(rows) > 0 {
		d.tbl.SetCursor(cursor)
	}
}

// fitWidths scales the declared width hints into the available width,
// leaving room for the selection marker and cell padding.
func (d *dataTable[R]) fitWidths(visible []columnSpec[R]) []int {
	widths := make([]int, len(visible))
	hintTotal := 0
	for i, col := range visible {
		hint := col.Width
		if hint <= 0 {
			hint = 12
		}
		widths[i] = hint
		hintTotal += hint
	}
	available := d.width - 4 - 3*len(visible)
	if available <= 0 || hintTotal == 0 {
		return widths
	}
	for i := range widths {
		scaled := widths[i] * available / hintTotal
		if scaled < 4 {
			scaled = 4
		}
		widths[i] = scaled
	}
	return widths
}
