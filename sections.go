package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	sectionBlogs       = "blogs"
	sectionProperties  = "properties"
	sectionContacts    = "contacts"
	sectionSubscribers = "subscribers"
	sectionTemplates   = "templates"
	sectionUsers       = "users"
	sectionWebsites    = "websites"
	sectionAgents      = "agents"
	sectionAnalytics   = "analytics"
	sectionExports     = "exports"
)

type statCard struct {
	Label string
	Value string
}

type sectionLoadedMsg struct {
	key   string
	rows  any
	count int
}

type sectionErrorMsg struct {
	key string
	err error
}

type mutationDoneMsg struct {
	key    string
	action string
	id     string
	label  string
	err    error
}

// section is the untyped surface one management screen exposes to the
// model. Entity sections share the generic implementation below;
// analytics and exports are handled as their own panes.
type section interface {
	Key() string
	Title() string
	Table() tableFacade
	Loaded() bool
	Loading() bool
	LastError() error
	MarkLoading()
	Load(ctx context.Context) tea.Cmd
	ApplyLoad(msg sectionLoadedMsg) bool
	ApplyError(msg sectionErrorMsg)
	NewCreateForm() *entityForm
	NewEditForm(id string) (*entityForm, bool)
	Submit(ctx context.Context, form *entityForm) tea.Cmd
	Delete(ctx context.Context, id, label string) tea.Cmd
	RemoveLocal(id string)
	StatCards() []statCard
	Detail(id string) (string, bool)
	Markdown(id string) (title, content string, ok bool)
}

type entitySectionConfig[R any] struct {
	Key        string
	Title      string
	Singular   string
	Columns    []columnSpec[R]
	Schema     schema
	PageSize   int
	RowID      func(R) string
	RowLabel   func(R) string
	Fetch      func(ctx context.Context) ([]R, error)
	Create     func(ctx context.Context, form *entityForm) error
	Update     func(ctx context.Context, id string, form *entityForm) error
	Remove     func(ctx context.Context, id string) error
	SeedValues func(R) map[string]string
	Stats      func([]R) []statCard
	Detail     func(R) string
	Markdown   func(R) (title, content string, ok bool)
}

type entitySection[R any] struct {
	cfg     entitySectionConfig[R]
	table   *dataTable[R]
	loaded  bool
	loading bool
	lastErr error
}

func newEntitySection[R any](cfg entitySectionConfig[R]) *entitySection[R] {
	return &entitySection[R]{
		cfg:   cfg,
		table: newDataTable(cfg.Columns, cfg.RowID, cfg.RowLabel, cfg.PageSize),
	}
}

func (s *entitySection[R]) Key() string        { return s.cfg.Key }
func (s *entitySection[R]) Title() string      { return s.cfg.Title }
func (s *entitySection[R]) Table() tableFacade { return s.table }
func (s *entitySection[R]) Loaded() bool       { return s.loaded }
func (s *entitySection[R]) Loading() bool      { return s.loading }
func (s *entitySection[R]) LastError() error   { return s.lastErr }
func (s *entitySection[R]) MarkLoading()       { s.loading = true }

func (s *entitySection[R]) Load(ctx context.Context) tea.Cmd {
	key := s.cfg.Key
	fetch := s.cfg.Fetch
	return func() tea.Msg {
		rows, err := fetch(ctx)
		if err != nil {
			return sectionErrorMsg{key: key, err: err}
		}
		return sectionLoadedMsg{key: key, rows: rows, count: len(rows)}
	}
}

func (s *entitySection[R]) ApplyLoad(msg sectionLoadedMsg) bool {
	rows, ok := msg.rows.([]R)
	if !ok {
		return false
	}
	s.table.SetRows(rows)
	s.loaded = true
	s.loading = false
	s.lastErr = nil
	return true
}

func (s *entitySection[R]) ApplyError(msg sectionErrorMsg) {
	s.loading = false
	s.lastErr = msg.err
}

// NewCreateForm returns nil for sections whose rows are created
// externally (contacts, subscribers).
func (s *entitySection[R]) NewCreateForm() *entityForm {
	if s.cfg.Create == nil {
		return nil
	}
	title := "New " + s.cfg.Singular
	return newEntityForm(title, s.cfg.Key, s.cfg.Schema, formCreate, nil, "")
}

func (s *entitySection[R]) NewEditForm(id string) (*entityForm, bool) {
	if s.cfg.Update == nil || s.cfg.SeedValues == nil {
		return nil, false
	}
	row, ok := s.rowByID(id)
	if !ok {
		return nil, false
	}
	title := "Edit " + s.cfg.Singular
	return newEntityForm(title, s.cfg.Key, s.cfg.Schema, formEdit, s.cfg.SeedValues(row), id), true
}

// Submit dispatches create or update based on the bound id and reports
// through mutationDoneMsg either way.
func (s *entitySection[R]) Submit(ctx context.Context, form *entityForm) tea.Cmd {
	cfg := s.cfg
	if form.entityID == "" && cfg.Create == nil {
		return nil
	}
	if form.entityID != "" && cfg.Update == nil {
		return nil
	}
	return func() tea.Msg {
		if form.entityID == "" {
			err := cfg.Create(ctx, form)
			return mutationDoneMsg{key: cfg.Key, action: "create", label: cfg.Singular, err: err}
		}
		err := cfg.Update(ctx, form.entityID, form)
		return mutationDoneMsg{key: cfg.Key, action: "update", id: form.entityID, label: cfg.Singular, err: err}
	}
}

func (s *entitySection[R]) Delete(ctx context.Context, id, label string) tea.Cmd {
	cfg := s.cfg
	if cfg.Remove == nil {
		return nil
	}
	if label == "" {
		label = cfg.Singular
	}
	return func() tea.Msg {
		err := cfg.Remove(ctx, id)
		return mutationDoneMsg{key: cfg.Key, action: "delete", id: id, label: label, err: err}
	}
}

func (s *entitySection[R]) RemoveLocal(id string) {
	s.table.RemoveRow(id)
}

func (s *entitySection[R]) StatCards() []statCard {
	if s.cfg.Stats == nil {
		return []statCard{{Label: "Total", Value: fmt.Sprintf("%d", len(s.table.Rows()))}}
	}
	return s.cfg.Stats(s.table.Rows())
}

func (s *entitySection[R]) Detail(id string) (string, bool) {
	row, ok := s.rowByID(id)
	if !ok || s.cfg.Detail == nil {
		return "", false
	}
	return s.cfg.Detail(row), true
}

func (s *entitySection[R]) Markdown(id string) (string, string, bool) {
	if s.cfg.Markdown == nil {
		return "", "", false
	}
	row, ok := s.rowByID(id)
	if !ok {
		return "", "", false
	}
	return s.cfg.Markdown(row)
}

func (s *entitySection[R]) rowByID(id string) (R, bool) {
	var zero R
	if id == "" {
		return zero, false
	}
	for _, row := range s.table.Rows() {
		if s.cfg.RowID(row) == id {
			return row, true
		}
	}
	return zero, false
}

// remoteID tolerates both id spellings the backend uses.
type remoteID struct {
	Mongo string `json:"_id,omitempty"`
	Plain string `json:"id,omitempty"`
}

func (r remoteID) id() string {
	if r.Mongo != "" {
		return r.Mongo
	}
	return r.Plain
}
