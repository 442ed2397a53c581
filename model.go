package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusSections focusArea = iota
	focusRows
	focusDetail
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayLogin
	overlayForm
	overlayConfirm
	overlayFilter
	overlaySort
	overlayColumns
	overlayCompose
	overlayReply
)

const jobPanelLines = 5

type navEntry struct {
	key   string
	title string
	desc  string
}

// navOrder fixes the section list and the 1..9,0 jump keys.
var navOrder = []navEntry{
	{sectionBlogs, "Blogs", "posts and articles"},
	{sectionProperties, "Properties", "real estate listings"},
	{sectionContacts, "Contacts", "inbound messages"},
	{sectionSubscribers, "Subscribers", "newsletter audience"},
	{sectionTemplates, "Templates", "reusable emails"},
	{sectionUsers, "Users", "accounts and roles"},
	{sectionWebsites, "Websites", "managed sites"},
	{sectionAgents, "Agents", "sales team"},
	{sectionAnalytics, "Analytics", "traffic and leads"},
	{sectionExports, "Exports", "csv and pdf files"},
}

func digitSection(keyName string) (string, bool) {
	if len(keyName) != 1 || keyName[0] < '0' || keyName[0] > '9' {
		return "", false
	}
	index := int(keyName[0] - '1')
	if keyName == "0" {
		index = 9
	}
	if index < 0 || index >= len(navOrder) {
		return "", false
	}
	return navOrder[index].key, true
}

type keyMap struct {
	quit      key.Binding
	nextFocus key.Binding
	prevFocus key.Binding
	refresh   key.Binding
	create    key.Binding
	edit      key.Binding
	remove    key.Binding
	filter    key.Binding
	sortBy    key.Binding
	columns   key.Binding
	selectRow key.Binding
	exportCSV key.Binding
	exportPDF key.Binding
	compose   key.Binding
	theme     key.Binding
	logout    key.Binding
	cancelJob key.Binding
	jobsPanel key.Binding
	toggleHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next panel"),
		),
		prevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev panel"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		sortBy: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		columns: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "columns"),
		),
		selectRow: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "select"),
		),
		exportCSV: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "csv"),
		),
		exportPDF: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "pdf"),
		),
		compose: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "bulk email"),
		),
		theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),
		cancelJob: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "cancel job"),
		),
		jobsPanel: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "job panel"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.nextFocus,
		k.refresh,
		k.create,
		k.filter,
		k.exportCSV,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextFocus, k.prevFocus, k.refresh},
		{k.create, k.edit, k.remove, k.selectRow},
		{k.filter, k.sortBy, k.columns},
		{k.exportCSV, k.exportPDF, k.compose},
		{k.theme, k.logout, k.cancelJob, k.jobsPanel},
		{k.toggleHelp, k.quit},
	}
}

type pickerState struct {
	options []string
	index   int
}

type jobPanel struct {
	active  bool
	title   string
	batch   int
	batches int
	sent    int
	failed  int
	lines   []string
}

func (p *jobPanel) push(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	p.lines = append(p.lines, line)
	if len(p.lines) > jobPanelLines {
		p.lines = p.lines[len(p.lines)-jobPanelLines:]
	}
}

// appEnv carries everything main resolves before the program starts.
type appEnv struct {
	cfg        *uiConfig
	cfgPath    string
	store      *sessionStore
	audit      *auditLogger
	api        *apiClient
	realty     *apiClient
	analytics  *fallbackClient
	exportsDir string
}

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	cfg     *uiConfig
	cfgPath string
	store   *sessionStore
	audit   *auditLogger
	api     *apiClient
	realty  *apiClient

	sess     session
	loggedIn bool

	sections  []section
	analytics *analyticsPane
	exports   *exportsPane
	jobs      *jobRunner

	active string
	focus  focusArea

	columns      []column
	colSections  *sectionListColumn
	colRows      *rowsColumn
	colAnalytics *textColumn
	colDetail    *textColumn
	detailWidth  int

	md *markdownView

	overlay       overlayKind
	form          *entityForm
	confirmPrompt string
	confirmAction tea.Cmd
	picker        pickerState
	filterInput   textinput.Model
	filterPrev    string

	replyContact     contact
	composeSelection []string

	exportsDir string

	jobPanel jobPanel
	showJobs bool
	gauge    progress.Model

	spinner spinner.Model

	toastMessage string
	toastErr     bool
	toastExpires time.Time

	guard crashGuard
}

func newModel(env appEnv) *model {
	st := newStyles()
	pageSize := env.cfg.pageSizeOrDefault()

	sections := []section{
		newBlogsSection(env.api, pageSize),
		newPropertiesSection(env.realty, pageSize),
		newContactsSection(env.api, pageSize),
		newSubscribersSection(env.api, pageSize),
		newTemplatesSection(env.api, pageSize),
		newUsersSection(env.api, pageSize),
		newWebsitesSection(env.api, pageSize),
		newAgentsSection(env.api, pageSize),
	}
	for _, sec := range sections {
		if hidden := env.cfg.hiddenColumnsFor(sec.Key()); len(hidden) > 0 {
			sec.Table().SetHiddenKeys(hidden)
		}
	}

	m := &model{
		styles:     st,
		keys:       newKeyMap(),
		help:       help.New(),
		cfg:        env.cfg,
		cfgPath:    env.cfgPath,
		store:      env.store,
		audit:      env.audit,
		api:        env.api,
		realty:     env.realty,
		sections:   sections,
		analytics:  newAnalyticsPane(env.analytics),
		exports:    newExportsPane(env.exportsDir, pageSize),
		jobs:       newJobRunner(env.api),
		exportsDir: env.exportsDir,
		md:         newMarkdownView(markdownThemeFromString(env.cfg.Theme)),
		showJobs:   true,
		focus:      focusRows,
	}

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = st.statusHint.Copy().Bold(true)
	m.gauge = progress.New(progress.WithDefaultGradient())

	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.CharLimit = 80
	ti.Width = 40
	m.filterInput = ti

	items := make([]list.Item, 0, len(navOrder))
	for _, entry := range navOrder {
		items = append(items, listEntry{title: entry.title, desc: entry.desc, payload: entry.key})
	}
	m.colSections = newSectionListColumn("Sections", items, 24, func(entry listEntry) tea.Cmd {
		return m.switchSection(entry.payload)
	}, st)
	m.colRows = newRowsColumn("Rows")
	m.colAnalytics = newTextColumn("Analytics", 60)
	m.colDetail = newTextColumn("Detail", 40)
	m.columns = []column{m.colSections, m.colRows, m.colDetail}

	m.active = env.cfg.DefaultSection
	if !validSectionKey(m.active) {
		m.active = sectionBlogs
	}
	m.colSections.SelectKey(m.active)

	if sess, err := env.store.Current(); err == nil {
		m.sess = sess
		m.loggedIn = true
		m.audit.SetActor(sess.Email)
	} else {
		m.openLogin()
	}

	return m
}

func validSectionKey(key string) bool {
	for _, entry := range navOrder {
		if entry.key == key {
			return true
		}
	}
	return false
}

func (m *model) sectionByKey(key string) section {
	for _, sec := range m.sections {
		if sec.Key() == key {
			return sec
		}
	}
	return nil
}

// activeFacade returns the table behind the middle pane, nil for the
// analytics board.
func (m *model) activeFacade() tableFacade {
	switch m.active {
	case sectionAnalytics:
		return nil
	case sectionExports:
		return m.exports.table
	default:
		if sec := m.sectionByKey(m.active); sec != nil {
			return sec.Table()
		}
	}
	return nil
}

func (m *model) activeTitle() string {
	for _, entry := range navOrder {
		if entry.key == m.active {
			return entry.title
		}
	}
	return ""
}

func (m *model) activeLoading() bool {
	switch m.active {
	case sectionAnalytics:
		return m.analytics.loading
	case sectionExports:
		return m.exports.loading
	default:
		sec := m.sectionByKey(m.active)
		return sec != nil && sec.Loading()
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.loggedIn {
		if cmd := m.switchSection(m.active); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch message := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		m.applyLayout()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if message.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.guard.Tripped() {
			return m.handleGuardKey(message)
		}
		if m.overlay != overlayNone {
			if cmd := m.handleOverlayKey(message); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
		if handled, cmd := m.handleGlobalKey(message); handled {
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}
	}

	if m.overlay == overlayNone && int(m.focus) < len(m.columns) {
		col := m.columns[m.focus]
		var cmd tea.Cmd
		m.columns[m.focus], cmd = col.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if _, isKey := msg.(tea.KeyMsg); isKey && m.focus == focusRows {
			m.refreshDetail()
		}
	}

	switch message := msg.(type) {
	case sectionLoadedMsg:
		m.handleSectionLoaded(message)
	case sectionErrorMsg:
		m.handleSectionError(message)
	case mutationDoneMsg:
		if cmd := m.handleMutationDone(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case contactStatusMsg:
		m.handleContactStatus(message)
	case contactReplyMsg:
		m.handleContactReply(message)
	case analyticsLoadedMsg:
		m.analytics.ApplyLoad(message)
		m.renderMiddle()
		m.refreshDetail()
	case analyticsErrorMsg:
		m.analytics.ApplyError(message)
		m.renderMiddle()
		m.refreshDetail()
		m.setErrToast(serverMessage(message.err, "Analytics unavailable"), 6*time.Second)
	case exportsLoadedMsg:
		m.exports.ApplyLoad(message)
		if m.active == sectionExports {
			m.colRows.SetStatus(false, nil)
		}
		m.refreshDetail()
	case exportsErrorMsg:
		m.exports.ApplyError(message)
		if m.active == sectionExports {
			m.colRows.SetStatus(false, message.err)
		}
		m.setErrToast("Could not read exports: "+message.err.Error(), 6*time.Second)
	case exportRemovedMsg:
		if cmd := m.handleExportRemoved(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case loginDoneMsg:
		if cmd := m.handleLoginDone(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case logoutDoneMsg:
		m.handleLogoutDone(message)
	case formSubmitMsg:
		if cmd := m.handleFormSubmit(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case formCancelMsg:
		if m.overlay == overlayLogin && !m.loggedIn {
			m.setToast("Sign in to continue", 4*time.Second)
		} else {
			m.closeOverlay()
		}
	case jobMsg:
		if cmd := m.handleJobMessage(message); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch len(cmds) {
	case 0:
		return m, nil
	case 1:
		return m, cmds[0]
	default:
		return m, tea.Batch(cmds...)
	}
}

func (m *model) handleGuardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		m.guard.Retry()
	case "0":
		return m, m.resetHome()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) handleOverlayKey(msg tea.KeyMsg) tea.Cmd {
	switch m.overlay {
	case overlayLogin, overlayForm, overlayCompose, overlayReply:
		if m.form == nil {
			m.closeOverlay()
			return nil
		}
		cmd, _ := m.form.Update(msg)
		return cmd

	case overlayConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := m.confirmAction
			m.closeOverlay()
			return cmd
		case "n", "N", "esc", "q":
			m.closeOverlay()
		}

	case overlayFilter:
		switch msg.String() {
		case "enter":
			m.closeOverlay()
			return nil
		case "esc":
			if f := m.activeFacade(); f != nil {
				f.SetFilter(m.filterPrev)
			}
			m.closeOverlay()
			m.refreshDetail()
			return nil
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		if f := m.activeFacade(); f != nil {
			f.SetFilter(m.filterInput.Value())
		}
		m.refreshDetail()
		return cmd

	case overlaySort:
		switch msg.String() {
		case "up", "k":
			if m.picker.index > 0 {
				m.picker.index--
			}
		case "down", "j":
			if m.picker.index < len(m.picker.options)-1 {
				m.picker.index++
			}
		case "enter", " ":
			if f := m.activeFacade(); f != nil {
				f.SortByIndex(m.picker.index)
				m.picker.options = f.SortOptions()
				m.refreshDetail()
			}
			if msg.String() == "enter" {
				m.closeOverlay()
			}
		case "esc", "q", "s":
			m.closeOverlay()
		}

	case overlayColumns:
		switch msg.String() {
		case "up", "k":
			if m.picker.index > 0 {
				m.picker.index--
			}
		case "down", "j":
			if m.picker.index < len(m.picker.options)-1 {
				m.picker.index++
			}
		case " ", "enter":
			if f := m.activeFacade(); f != nil {
				f.ToggleColumnAt(m.picker.index)
				m.picker.options = f.ColumnToggles()
				m.refreshDetail()
			}
		case "esc", "q", "c":
			m.persistColumns()
			m.closeOverlay()
		}
	}
	return nil
}

func (m *model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return true, tea.Quit
	case key.Matches(msg, m.keys.nextFocus):
		m.focus = focusArea((int(m.focus) + 1) % len(m.columns))
		return true, nil
	case key.Matches(msg, m.keys.prevFocus):
		m.focus = focusArea((int(m.focus) + len(m.columns) - 1) % len(m.columns))
		return true, nil
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.applyLayout()
		return true, nil
	case key.Matches(msg, m.keys.refresh):
		return true, m.reloadActive()
	case key.Matches(msg, m.keys.theme):
		next := nextMarkdownTheme(m.md.Theme())
		m.md.SetTheme(next)
		m.cfg.Theme = next.String()
		if err := saveUIConfig(m.cfg, m.cfgPath); err != nil {
			m.setErrToast("Could not save theme: "+err.Error(), 5*time.Second)
		}
		m.setToast("Theme: "+next.String(), 3*time.Second)
		m.refreshDetail()
		return true, nil
	case key.Matches(msg, m.keys.logout):
		m.confirmPrompt = "Sign out?"
		m.confirmAction = signOutCmd(m.store)
		m.overlay = overlayConfirm
		return true, nil
	case key.Matches(msg, m.keys.cancelJob):
		if m.jobs.CancelActive() {
			m.setToast("Cancelling after the current batch…", 4*time.Second)
		}
		return true, nil
	case key.Matches(msg, m.keys.jobsPanel):
		m.showJobs = !m.showJobs
		m.applyLayout()
		return true, nil
	}

	if sectionKey, ok := digitSection(msg.String()); ok {
		return true, m.switchSection(sectionKey)
	}

	switch msg.String() {
	case "enter":
		if m.focus == focusRows && m.active != sectionAnalytics {
			m.focus = focusDetail
			m.refreshDetail()
			return true, nil
		}
	case "/":
		if f := m.activeFacade(); f != nil {
			m.filterPrev = f.FilterQuery()
			m.filterInput.SetValue(m.filterPrev)
			m.filterInput.CursorEnd()
			m.filterInput.Focus()
			m.overlay = overlayFilter
			return true, nil
		}
	case "s":
		if f := m.activeFacade(); f != nil {
			m.picker = pickerState{options: f.SortOptions()}
			m.overlay = overlaySort
			return true, nil
		}
	case "c":
		if f := m.activeFacade(); f != nil && m.active != sectionExports {
			m.picker = pickerState{options: f.ColumnToggles()}
			m.overlay = overlayColumns
			return true, nil
		}
	case "n":
		m.openCreateForm()
		return true, nil
	case "e":
		m.openEditForm()
		return true, nil
	case "d":
		m.openDeleteConfirm()
		return true, nil
	case "x":
		if f := m.activeFacade(); f != nil {
			f.ToggleSelectCurrent()
			return true, nil
		}
	case "X":
		if f := m.activeFacade(); f != nil {
			f.ToggleSelectPage()
			return true, nil
		}
	case "u":
		if f := m.activeFacade(); f != nil {
			f.ClearSelection()
			return true, nil
		}
	case "]":
		if m.active == sectionAnalytics {
			m.analytics.CycleRange()
			m.renderMiddle()
			m.refreshDetail()
			return true, nil
		}
		if f := m.activeFacade(); f != nil {
			f.NextPage()
			m.refreshDetail()
			return true, nil
		}
	case "[":
		if m.active == sectionAnalytics {
			m.analytics.CycleRange()
			m.renderMiddle()
			m.refreshDetail()
			return true, nil
		}
		if f := m.activeFacade(); f != nil {
			f.PrevPage()
			m.refreshDetail()
			return true, nil
		}
	case "p":
		if f := m.activeFacade(); f != nil {
			f.CyclePageSize()
			m.cfg.PageSize = f.Counts().PageSize
			if err := saveUIConfig(m.cfg, m.cfgPath); err != nil {
				m.setErrToast("Could not save page size: "+err.Error(), 5*time.Second)
			}
			m.refreshDetail()
			return true, nil
		}
	case "E":
		m.exportActive("csv")
		return true, nil
	case "P":
		m.exportActive("pdf")
		return true, nil
	case "y":
		m.copyCurrent()
		return true, nil
	case "m":
		if m.active == sectionSubscribers || m.active == sectionTemplates {
			m.openCompose()
			return true, nil
		}
	case "t":
		if m.active == sectionContacts {
			return true, m.cycleContactStatusCmd()
		}
	case "a":
		if m.active == sectionContacts {
			m.openReply()
			return true, nil
		}
	}
	return false, nil
}

// switchSection swaps the middle pane and lazily loads the section the
// first time it is shown.
func (m *model) switchSection(key string) tea.Cmd {
	if !validSectionKey(key) {
		return nil
	}
	m.active = key
	m.colSections.SelectKey(key)

	var cmd tea.Cmd
	switch key {
	case sectionAnalytics:
		m.columns[1] = m.colAnalytics
		if !m.analytics.loaded && !m.analytics.loading {
			cmd = m.analytics.Load(context.Background())
		}
	case sectionExports:
		m.columns[1] = m.colRows
		m.colRows.SetFacade("Exports", m.exports.table)
		m.colRows.SetStatus(m.exports.loading, m.exports.lastErr)
		if !m.exports.loaded && !m.exports.loading {
			cmd = m.exports.Load()
			m.colRows.SetStatus(true, nil)
		}
	default:
		sec := m.sectionByKey(key)
		if sec == nil {
			return nil
		}
		m.columns[1] = m.colRows
		m.colRows.SetFacade(sec.Title(), sec.Table())
		m.colRows.SetStatus(sec.Loading(), sec.LastError())
		if !sec.Loaded() && !sec.Loading() {
			sec.MarkLoading()
			m.colRows.SetStatus(true, nil)
			cmd = sec.Load(context.Background())
		}
	}
	m.applyLayout()
	return cmd
}

func (m *model) reloadActive() tea.Cmd {
	switch m.active {
	case sectionAnalytics:
		if m.analytics.loading {
			return nil
		}
		return m.analytics.Load(context.Background())
	case sectionExports:
		if m.exports.loading {
			return nil
		}
		m.colRows.SetStatus(true, nil)
		return m.exports.Load()
	default:
		return m.reloadSection(m.active)
	}
}

func (m *model) reloadSection(key string) tea.Cmd {
	sec := m.sectionByKey(key)
	if sec == nil || sec.Loading() {
		return nil
	}
	sec.MarkLoading()
	if key == m.active {
		m.colRows.SetStatus(true, nil)
	}
	return sec.Load(context.Background())
}

func (m *model) openLogin() {
	m.form = newEntityForm("Sign in", "session", loginSchema(), formCreate, nil, "")
	m.overlay = overlayLogin
}

func (m *model) openCreateForm() {
	sec := m.sectionByKey(m.active)
	if sec == nil {
		m.setToast("This section has no editor", 3*time.Second)
		return
	}
	form := sec.NewCreateForm()
	if form == nil {
		m.setToast(sec.Title()+" are created elsewhere", 4*time.Second)
		return
	}
	m.form = form
	m.overlay = overlayForm
}

func (m *model) openEditForm() {
	sec := m.sectionByKey(m.active)
	if sec == nil {
		m.setToast("Nothing to edit here", 3*time.Second)
		return
	}
	id := sec.Table().CurrentID()
	if id == "" {
		m.setToast("No row selected", 3*time.Second)
		return
	}
	form, ok := sec.NewEditForm(id)
	if !ok {
		m.setToast(sec.Title()+" cannot be edited", 4*time.Second)
		return
	}
	m.form = form
	m.overlay = overlayForm
}

func (m *model) openDeleteConfirm() {
	if m.active == sectionExports {
		path := m.exports.CurrentPath()
		if path == "" {
			m.setToast("No file selected", 3*time.Second)
			return
		}
		m.confirmPrompt = fmt.Sprintf("Delete %s?", filepath.Base(path))
		m.confirmAction = m.exports.RemoveCurrent()
		m.overlay = overlayConfirm
		return
	}
	sec := m.sectionByKey(m.active)
	if sec == nil {
		return
	}
	id := sec.Table().CurrentID()
	if id == "" {
		m.setToast("No row selected", 3*time.Second)
		return
	}
	label := sec.Table().CurrentLabel()
	m.confirmPrompt = fmt.Sprintf("Delete %q?", truncate(label, 48))
	m.confirmAction = sec.Delete(context.Background(), id, label)
	m.overlay = overlayConfirm
}

// openCompose opens the bulk email form. From the subscribers section
// it carries the current selection; from the templates section it
// seeds subject and message from the highlighted template.
func (m *model) openCompose() {
	subsSec := m.sectionByKey(sectionSubscribers)
	subs := cachedSubscribers(subsSec)
	categories := subscriberCategories(subs)

	var seed map[string]string
	m.composeSelection = nil
	switch m.active {
	case sectionSubscribers:
		selected := make(map[string]bool)
		for _, id := range subsSec.Table().SelectedIDs() {
			selected[id] = true
		}
		for _, sub := range subs {
			if selected[sub.id()] {
				m.composeSelection = append(m.composeSelection, sub.Email)
			}
		}
	case sectionTemplates:
		tplSec := m.sectionByKey(sectionTemplates)
		for _, tpl := range cachedTemplates(tplSec) {
			if tpl.id() == tplSec.Table().CurrentID() {
				seed = map[string]string{"subject": tpl.Subject, "message": tpl.Content}
				break
			}
		}
	}

	sch := bulkSendSchema(categories, len(m.composeSelection))
	m.form = newEntityForm("Compose bulk email", "newsletter", sch, formCreate, seed, "")
	m.overlay = overlayCompose
}

func (m *model) openReply() {
	sec := m.sectionByKey(sectionContacts)
	if sec == nil {
		return
	}
	c, ok := currentContact(sec)
	if !ok {
		m.setToast("No contact selected", 3*time.Second)
		return
	}
	m.replyContact = c
	seed := map[string]string{"subject": "Re: " + contactTopic(c)}
	m.form = newEntityForm("Reply to "+contactLabel(c), sectionContacts, replySchema(), formCreate, seed, c.id())
	m.overlay = overlayReply
}

func (m *model) closeOverlay() {
	m.overlay = overlayNone
	m.form = nil
	m.confirmPrompt = ""
	m.confirmAction = nil
	m.picker = pickerState{}
	m.filterInput.Blur()
}

func (m *model) persistColumns() {
	f := m.activeFacade()
	if f == nil || m.active == sectionExports {
		return
	}
	m.cfg.setHiddenColumns(m.active, f.HiddenKeys())
	if err := saveUIConfig(m.cfg, m.cfgPath); err != nil {
		m.setErrToast("Could not save layout: "+err.Error(), 5*time.Second)
	}
}

func (m *model) handleFormSubmit(msg formSubmitMsg) tea.Cmd {
	switch m.overlay {
	case overlayLogin:
		values := msg.form.Values()
		return signInCmd(m.api, m.store, values["email"], values["password"])

	case overlayForm:
		sec := m.sectionByKey(msg.form.section)
		if sec == nil {
			m.closeOverlay()
			return nil
		}
		return sec.Submit(context.Background(), msg.form)

	case overlayCompose:
		values := msg.form.Values()
		audience := values["audience"]
		var category string
		var recipients []string
		switch {
		case audience == bulkAudienceAll:
		case isBulkSelectionAudience(audience):
			recipients = m.composeSelection
		default:
			category = audience
		}
		req := newBulkSendRequest(values["subject"], values["message"], category, recipients)
		m.closeOverlay()
		m.audit.Log("job.queued", map[string]any{
			"job_id":     req.ID,
			"title":      req.Title,
			"recipients": len(recipients),
			"category":   category,
		})
		m.setToast(req.Title+" queued", 4*time.Second)
		return m.jobs.Enqueue(req)

	case overlayReply:
		values := msg.form.Values()
		return replyToContactCmd(context.Background(), m.api, m.replyContact, values["subject"], values["message"])
	}
	return nil
}

func (m *model) handleSectionLoaded(msg sectionLoadedMsg) {
	sec := m.sectionByKey(msg.key)
	if sec == nil {
		return
	}
	sec.ApplyLoad(msg)
	if msg.key == m.active {
		m.colRows.SetStatus(false, nil)
		m.refreshDetail()
	}
}

func (m *model) handleSectionError(msg sectionErrorMsg) {
	sec := m.sectionByKey(msg.key)
	if sec != nil {
		sec.ApplyError(msg)
	}
	if errors.Is(msg.err, errSessionExpired) {
		m.forceLogin("Session expired, sign in again")
		return
	}
	if msg.key == m.active {
		m.colRows.SetStatus(false, msg.err)
		m.refreshDetail()
	}
	m.setErrToast(serverMessage(msg.err, "Could not load "+msg.key), 6*time.Second)
}

// handleMutationDone closes the form and refetches on success; on
// failure the form stays open so the values can be corrected.
func (m *model) handleMutationDone(msg mutationDoneMsg) tea.Cmd {
	if msg.err != nil {
		if errors.Is(msg.err, errSessionExpired) {
			m.forceLogin("Session expired, sign in again")
			return nil
		}
		fallback := fmt.Sprintf("Could not %s %s", msg.action, msg.label)
		m.setErrToast(serverMessage(msg.err, fallback), 6*time.Second)
		return nil
	}

	m.audit.Log(msg.key+"."+msg.action, map[string]any{"id": msg.id, "label": msg.label})
	if msg.action == "delete" {
		if sec := m.sectionByKey(msg.key); sec != nil {
			sec.RemoveLocal(msg.id)
		}
		m.setToast(fmt.Sprintf("Deleted %s", msg.label), 4*time.Second)
		m.refreshDetail()
		return nil
	}

	if m.overlay == overlayForm {
		m.closeOverlay()
	}
	verb := "created"
	if msg.action == "update" {
		verb = "updated"
	}
	m.setToast(fmt.Sprintf("%s %s", truncate(msg.label, 48), verb), 4*time.Second)
	return m.reloadSection(msg.key)
}

func (m *model) handleContactStatus(msg contactStatusMsg) {
	if msg.err != nil {
		if errors.Is(msg.err, errSessionExpired) {
			m.forceLogin("Session expired, sign in again")
			return
		}
		m.setErrToast(serverMessage(msg.err, "Could not update status"), 6*time.Second)
		return
	}
	if sec := m.sectionByKey(sectionContacts); sec != nil {
		applyContactStatusLocal(sec, msg.id, msg.status)
	}
	m.audit.Log("contacts.status", map[string]any{"id": msg.id, "status": msg.status})
	m.setToast("Marked "+formatEnum(msg.status), 3*time.Second)
	m.refreshDetail()
}

func (m *model) handleContactReply(msg contactReplyMsg) {
	if msg.err != nil {
		if errors.Is(msg.err, errSessionExpired) {
			m.forceLogin("Session expired, sign in again")
			return
		}
		m.setErrToast(serverMessage(msg.err, "Reply failed"), 6*time.Second)
		return
	}
	m.closeOverlay()
	m.audit.Log("contacts.reply", map[string]any{"id": msg.id, "email": msg.email})
	m.setToast("Reply sent to "+msg.email, 4*time.Second)
}

func (m *model) handleExportRemoved(msg exportRemovedMsg) tea.Cmd {
	if msg.err != nil {
		m.setErrToast("Could not delete file: "+msg.err.Error(), 5*time.Second)
		return nil
	}
	m.audit.Log("export.delete", map[string]any{"path": msg.path})
	m.setToast("Deleted "+filepath.Base(msg.path), 4*time.Second)
	return m.exports.Load()
}

func (m *model) handleLoginDone(msg loginDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.setErrToast(serverMessage(msg.err, "Sign-in failed"), 6*time.Second)
		return nil
	}
	m.sess = msg.sess
	m.loggedIn = true
	m.audit.SetActor(msg.sess.Email)
	m.audit.Log("login", map[string]any{"email": msg.sess.Email, "role": msg.sess.Role})
	m.closeOverlay()
	m.setToast("Signed in as "+msg.sess.Email, 4*time.Second)
	return m.switchSection(m.active)
}

func (m *model) handleLogoutDone(msg logoutDoneMsg) {
	m.audit.Log("logout", map[string]any{"email": m.sess.Email})
	m.audit.SetActor("")
	m.loggedIn = false
	m.sess = session{}
	if msg.err != nil {
		m.setErrToast("Could not clear session: "+msg.err.Error(), 5*time.Second)
	}
	m.openLogin()
	m.setToast("Signed out", 3*time.Second)
}

func (m *model) forceLogin(reason string) {
	m.loggedIn = false
	m.sess = session{}
	m.audit.Log("session.expired", map[string]any{"reason": reason})
	m.audit.SetActor("")
	m.openLogin()
	m.setErrToast(reason, 6*time.Second)
}

func (m *model) handleJobMessage(msg jobMsg) tea.Cmd {
	var cmds []tea.Cmd

	switch message := msg.(type) {
	case jobStartedMsg:
		m.jobPanel = jobPanel{active: true, title: message.Title, batches: message.Batches}
		m.showJobs = true
		m.applyLayout()
		m.audit.Log("job.started", map[string]any{
			"job_id":  message.ID,
			"title":   message.Title,
			"batches": message.Batches,
		})
		m.setToast(message.Title+" started", 4*time.Second)

	case jobProgressMsg:
		m.jobPanel.batch = message.Batch
		m.jobPanel.batches = message.Batches
		m.jobPanel.sent = message.Sent
		m.jobPanel.failed = message.Failed
		m.jobPanel.push(message.Line)

	case jobFinishedMsg:
		m.jobPanel.active = false
		fields := map[string]any{
			"job_id": message.ID,
			"title":  message.Title,
			"sent":   message.Sent,
			"failed": message.Failed,
		}
		switch {
		case message.Err != nil && errors.Is(message.Err, context.Canceled):
			fields["status"] = "cancelled"
			m.jobPanel.push("cancelled")
			m.setToast(message.Title+" cancelled", 5*time.Second)
		case message.Err != nil:
			fields["status"] = "failed"
			fields["error"] = message.Err.Error()
			m.jobPanel.push("failed: " + message.Err.Error())
			m.setErrToast(serverMessage(message.Err, message.Title+" failed"), 6*time.Second)
			if errors.Is(message.Err, errSessionExpired) {
				m.forceLogin("Session expired, sign in again")
			}
		default:
			fields["status"] = "succeeded"
			m.setToast(fmt.Sprintf("%s: %d sent, %d failed", message.Title, message.Sent, message.Failed), 6*time.Second)
		}
		m.audit.Log("job.finished", fields)

	case jobChannelClosedMsg:
		// drain loop ended; the runner starts the next queued job
	}

	if cmd := m.jobs.Handle(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

func (m *model) cycleContactStatusCmd() tea.Cmd {
	sec := m.sectionByKey(sectionContacts)
	if sec == nil {
		return nil
	}
	c, ok := currentContact(sec)
	if !ok {
		m.setToast("No contact selected", 3*time.Second)
		return nil
	}
	return cycleContactStatusCmd(context.Background(), m.api, c)
}

// exportActive writes the current filtered set synchronously and
// refreshes the exports listing when it is already loaded.
func (m *model) exportActive(kind string) {
	switch m.active {
	case sectionExports:
		m.setToast("Already browsing exports", 3*time.Second)
		return
	case sectionAnalytics:
		if kind != "csv" {
			m.setToast("Analytics exports are CSV only", 4*time.Second)
			return
		}
		path, err := m.analytics.ExportCSV(m.exportsDir)
		m.finishExport(kind, path, err)
		return
	}

	sec := m.sectionByKey(m.active)
	if sec == nil || !sec.Loaded() {
		m.setToast("Nothing to export yet", 3*time.Second)
		return
	}
	var path string
	var err error
	if kind == "pdf" {
		path, err = exportSectionPDF(m.exportsDir, sec.Key(), sec.Title(), sec.Table(), true)
	} else {
		path, err = exportSectionCSV(m.exportsDir, sec.Key(), sec.Table(), true)
	}
	m.finishExport(kind, path, err)
}

func (m *model) finishExport(kind, path string, err error) {
	if err != nil {
		m.setErrToast("Export failed: "+err.Error(), 6*time.Second)
		return
	}
	m.audit.Log("export."+kind, map[string]any{"path": path})
	m.setToast("Wrote "+filepath.Base(path), 5*time.Second)
	if m.exports.loaded {
		m.exports.loaded = false
	}
}

func (m *model) copyCurrent() {
	var value string
	if m.active == sectionExports {
		value = m.exports.CurrentPath()
	} else if f := m.activeFacade(); f != nil {
		value = f.CurrentLabel()
		if value == "" {
			value = f.CurrentID()
		}
	}
	if strings.TrimSpace(value) == "" {
		m.setToast("Nothing to copy", 3*time.Second)
		return
	}
	if err := clipboard.WriteAll(value); err != nil {
		m.setErrToast("Clipboard unavailable", 4*time.Second)
		return
	}
	m.setToast("Copied "+truncate(value, 40), 3*time.Second)
}

func (m *model) resetHome() tea.Cmd {
	m.guard.Reset()
	m.overlay = overlayNone
	m.form = nil
	m.confirmAction = nil
	m.picker = pickerState{}
	m.focus = focusRows
	m.jobPanel = jobPanel{}
	m.audit.Log("guard.reset", nil)
	key := m.cfg.DefaultSection
	if !validSectionKey(key) {
		key = sectionBlogs
	}
	return m.switchSection(key)
}

func (m *model) renderMiddle() {
	if m.active != sectionAnalytics {
		return
	}
	m.colAnalytics.SetTitle("Analytics · " + m.analytics.Range().label)
	m.colAnalytics.SetContent(m.analytics.View(m.styles))
}

func (m *model) refreshDetail() {
	st := m.styles
	var b strings.Builder

	switch m.active {
	case sectionAnalytics:
		b.WriteString(renderStatCards(m.analytics.StatCards(), st, m.detailWidth))
		b.WriteString("\n")
		b.WriteString(st.detailLabel.Render("Range: ") + m.analytics.Range().label + "\n")
		if m.analytics.lastErr != nil {
			b.WriteString(st.errorBanner.Render(truncate(m.analytics.lastErr.Error(), 90)) + "\n")
		}
		b.WriteString(st.statusHint.Render("] cycles the range · E exports the series"))

	case sectionExports:
		b.WriteString(renderStatCards(m.exports.StatCards(), st, m.detailWidth))
		b.WriteString("\n")
		b.WriteString(m.exports.Detail())

	default:
		sec := m.sectionByKey(m.active)
		if sec == nil {
			m.colDetail.SetContent("")
			return
		}
		b.WriteString(renderStatCards(sec.StatCards(), st, m.detailWidth))
		b.WriteString("\n")
		id := sec.Table().CurrentID()
		if text, ok := sec.Detail(id); ok {
			b.WriteString(text)
		} else if sec.Loading() {
			b.WriteString(st.statusHint.Render("loading…"))
		} else {
			b.WriteString(st.statusHint.Render("no row selected"))
		}
		if _, content, ok := sec.Markdown(id); ok {
			b.WriteString("\n\n")
			b.WriteString(m.md.Render(content))
		}
		if err := sec.LastError(); err != nil {
			b.WriteString("\n" + st.errorBanner.Render(truncate(serverMessage(err, "fetch failed"), 120)))
		}
	}

	m.colDetail.SetContent(b.String())
}

func renderStatCards(cards []statCard, st styles, width int) string {
	if len(cards) == 0 {
		return ""
	}
	perRow := max(1, width/16)
	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		cells := make([]string, 0, end-start)
		for _, card := range cards[start:end] {
			cells = append(cells, st.statCard.Render(st.statValue.Render(card.Value)+"\n"+st.detailLabel.Render(card.Label)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m *model) applyLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.help.Width = max(m.width-4, 0)

	chrome := 2
	if helpView := m.help.View(m.keys); helpView != "" {
		chrome += lipgloss.Height(helpView)
	}
	body := m.height - chrome
	if m.jobPanelVisible() {
		body -= jobPanelLines + 3
	}
	if body < 8 {
		body = 8
	}

	total := m.width - 6
	sectionsW := clamp(total*20/100, 18, 28)
	detailW := clamp(total*34/100, 30, 52)
	rowsW := total - sectionsW - detailW
	if rowsW < 28 {
		rowsW = 28
	}
	m.detailWidth = detailW

	m.colSections.SetSize(sectionsW, body)
	m.colRows.SetSize(rowsW, body)
	m.colAnalytics.SetSize(rowsW, body)
	m.colDetail.SetSize(detailW, body)
	m.analytics.SetSize(rowsW-4, body)
	m.md.SetWrap(detailW - 4)
	m.gauge.Width = clamp(m.width/3, 20, 48)
	m.renderMiddle()
	m.refreshDetail()
}

func (m *model) jobPanelVisible() bool {
	return m.showJobs && (m.jobPanel.active || len(m.jobPanel.lines) > 0)
}

func (m *model) View() string {
	if m.guard.Tripped() {
		return m.guard.View(m.styles, m.width, m.height)
	}
	return m.safeView()
}

// safeView is the render boundary: a panic below lands here, trips the
// guard and swaps in the recovery screen instead of crashing the
// program.
func (m *model) safeView() (out string) {
	defer func() {
		if cause := recover(); cause != nil {
			m.guard.Trip(cause, debug.Stack())
			m.audit.Log("guard.trip", map[string]any{"cause": fmt.Sprint(cause)})
			out = m.guard.View(m.styles, m.width, m.height)
		}
	}()

	var builder strings.Builder

	title := "Manron Backoffice"
	if t := m.activeTitle(); t != "" {
		title += " • " + t
	}
	if m.loggedIn && m.sess.Email != "" {
		title += " • " + m.sess.Email
	}
	builder.WriteString(m.styles.topBar.Width(m.width).Render(title))
	builder.WriteRune('\n')

	colViews := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		colViews = append(colViews, col.View(m.styles, i == int(m.focus)))
	}
	builder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, colViews...))
	builder.WriteRune('\n')

	if m.jobPanelVisible() {
		builder.WriteString(m.renderJobPanel())
		builder.WriteRune('\n')
	}

	if helpView := m.help.View(m.keys); helpView != "" {
		builder.WriteString(helpView)
		if !strings.HasSuffix(helpView, "\n") {
			builder.WriteRune('\n')
		}
	}

	builder.WriteString(m.renderStatus())

	if m.overlay != overlayNone {
		overlay := m.renderOverlay()
		builder.WriteString("\n")
		builder.WriteString(lipgloss.Place(m.width, m.height/2, lipgloss.Center, lipgloss.Center, overlay))
	}

	return m.styles.app.Render(builder.String())
}

func (m *model) renderJobPanel() string {
	var b strings.Builder
	b.WriteString(m.styles.columnTitle.Render("Bulk send"))
	b.WriteRune('\n')

	pct := 0.0
	if m.jobPanel.batches > 0 {
		pct = float64(m.jobPanel.batch) / float64(m.jobPanel.batches)
	}
	title := m.jobPanel.title
	if title == "" {
		title = "idle"
	}
	b.WriteString(fmt.Sprintf("%s  %s · batch %d/%d · %d sent · %d failed",
		m.gauge.ViewAs(pct), title, m.jobPanel.batch, m.jobPanel.batches, m.jobPanel.sent, m.jobPanel.failed))
	for _, line := range m.jobPanel.lines {
		b.WriteRune('\n')
		b.WriteString(m.styles.logLine.Render(line))
	}
	return m.styles.panel.Width(m.width - 2).Render(b.String())
}

func (m *model) renderOverlay() string {
	width := min(72, m.width-6)
	if width < 30 {
		width = max(m.width-4, 30)
	}

	var content string
	switch m.overlay {
	case overlayLogin, overlayForm, overlayCompose, overlayReply:
		if m.form == nil {
			return ""
		}
		m.form.SetSize(width)
		content = m.form.View(m.styles)

	case overlayConfirm:
		content = m.styles.overlayTitle.Render("Confirm") + "\n\n" +
			m.confirmPrompt + "\n\n" +
			m.styles.formHint.Render("y confirm • n cancel")

	case overlayFilter:
		content = m.styles.overlayTitle.Render("Filter rows") + "\n\n" +
			m.filterInput.View() + "\n\n" +
			m.styles.formHint.Render("typing filters live • enter keep • esc restore")

	case overlaySort, overlayColumns:
		title := "Sort by"
		hint := "enter apply • esc close"
		if m.overlay == overlayColumns {
			title = "Columns"
			hint = "space toggle • esc save"
		}
		lines := make([]string, 0, len(m.picker.options))
		for i, opt := range m.picker.options {
			cursor := "  "
			if i == m.picker.index {
				cursor = "> "
			}
			lines = append(lines, cursor+opt)
		}
		content = m.styles.overlayTitle.Render(title) + "\n\n" +
			strings.Join(lines, "\n") + "\n\n" +
			m.styles.formHint.Render(hint)
	}
	return m.styles.overlay.Width(width).Render(content)
}

func (m *model) renderStatus() string {
	identity := "signed out"
	if m.loggedIn {
		identity = m.sess.Email
		if m.sess.Role != "" {
			identity += " (" + m.sess.Role + ")"
		}
	}
	segments := []string{m.styles.statusSeg.Render(identity)}

	if claims, ok := peekTokenClaims(m.sess.Token); ok && !claims.Expires.IsZero() {
		segments = append(segments, m.styles.statusSeg.Render("exp "+claims.Expires.Local().Format("Jan 2 15:04")))
	}
	if int(m.focus) < len(m.columns) {
		if focusTitle := m.columns[m.focus].Title(); focusTitle != "" {
			segments = append(segments, m.styles.statusSeg.Render("Focus: "+focusTitle))
		}
	}
	if m.activeLoading() {
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" loading"))
	}
	if m.jobs.Running() {
		seg := fmt.Sprintf("Bulk %d/%d", m.jobPanel.batch, max(m.jobPanel.batches, 1))
		if pending := m.jobs.Pending(); pending > 0 {
			seg += fmt.Sprintf(" (+%d queued)", pending)
		}
		segments = append(segments, m.styles.statusSeg.Render(seg))
	}
	if m.toastMessage != "" {
		if time.Now().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			style := m.styles.statusToast
			if m.toastErr {
				style = m.styles.statusToastErr
			}
			segments = append(segments, style.Render(m.toastMessage))
		}
	}
	return m.styles.statusBar.Width(m.width).Render(strings.Join(segments, "│"))
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastErr = false
	m.toastExpires = time.Now().Add(duration)
}

func (m *model) setErrToast(msg string, duration time.Duration) {
	m.setToast(msg, duration)
	m.toastErr = true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
