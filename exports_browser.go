package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

type exportFile struct {
	Name    string
	Kind    string
	Size    int64
	ModTime time.Time
	Path    string
}

// gatherExportFiles lists generated CSV/PDF files, newest first. A
// missing directory just means nothing was exported yet.
func gatherExportFiles(dir string) ([]exportFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var files []exportFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		kind := ""
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			kind = "CSV"
		case ".pdf":
			kind = "PDF"
		default:
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, exportFile{
			Name:    name,
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Path:    filepath.Join(dir, name),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func exportFileColumns() []columnSpec[exportFile] {
	return []columnSpec[exportFile]{
		{Key: "name", Label: "File", Width: 30, Searchable: true,
			Value: func(f exportFile) string { return f.Name }},
		{Key: "kind", Label: "Kind", Width: 5,
			Value: func(f exportFile) string { return f.Kind }},
		{Key: "size", Label: "Size", Width: 9,
			Value: func(f exportFile) string { return humanize.Bytes(uint64(f.Size)) },
			Sort:  func(a, b exportFile) bool { return a.Size < b.Size }},
		{Key: "modified", Label: "Modified", Width: 14,
			Value: func(f exportFile) string { return humanize.Time(f.ModTime) },
			Sort:  func(a, b exportFile) bool { return a.ModTime.Before(b.ModTime) }},
	}
}

type exportsLoadedMsg struct {
	files []exportFile
}

type exportsErrorMsg struct {
	err error
}

type exportRemovedMsg struct {
	path string
	err  error
}

// exportsPane is the browser over the exports directory. It reuses the
// data table, so filtering and sorting come along for free.
type exportsPane struct {
	dir     string
	table   *dataTable[exportFile]
	loaded  bool
	loading bool
	lastErr error
}

func newExportsPane(dir string, pageSize int) *exportsPane {
	return &exportsPane{
		dir: dir,
		table: newDataTable(exportFileColumns(),
			func(f exportFile) string { return f.Path },
			func(f exportFile) string { return f.Name },
			pageSize),
	}
}

func (p *exportsPane) Load() tea.Cmd {
	dir := p.dir
	p.loading = true
	return func() tea.Msg {
		files, err := gatherExportFiles(dir)
		if err != nil {
			return exportsErrorMsg{err: err}
		}
		return exportsLoadedMsg{files: files}
	}
}

func (p *exportsPane) ApplyLoad(msg exportsLoadedMsg) {
	p.table.SetRows(msg.files)
	p.loaded = true
	p.loading = false
	p.lastErr = nil
}

func (p *exportsPane) ApplyError(msg exportsErrorMsg) {
	p.loading = false
	p.lastErr = msg.err
}

func (p *exportsPane) CurrentPath() string {
	return p.table.CurrentID()
}

func (p *exportsPane) RemoveCurrent() tea.Cmd {
	path := p.CurrentPath()
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		return exportRemovedMsg{path: path, err: os.Remove(path)}
	}
}

func (p *exportsPane) StatCards() []statCard {
	files := p.table.Rows()
	var csvCount, pdfCount int
	var size int64
	for _, f := range files {
		if f.Kind == "CSV" {
			csvCount++
		} else {
			pdfCount++
		}
		size += f.Size
	}
	return []statCard{
		{Label: "Files", Value: humanize.Comma(int64(len(files)))},
		{Label: "CSV", Value: humanize.Comma(int64(csvCount))},
		{Label: "PDF", Value: humanize.Comma(int64(pdfCount))},
		{Label: "On disk", Value: humanize.Bytes(uint64(size))},
	}
}

func (p *exportsPane) Detail() string {
	file, ok := p.table.CurrentRow()
	if !ok {
		return "No exports yet.\nUse E (CSV) or P (PDF) on any section."
	}
	var d strings.Builder
	d.WriteString(file.Name + "\n")
	d.WriteString(strings.Repeat("═", len([]rune(file.Name))) + "\n\n")
	d.WriteString("Kind:     " + file.Kind + "\n")
	d.WriteString("Size:     " + humanize.Bytes(uint64(file.Size)) + "\n")
	d.WriteString("Modified: " + file.ModTime.Format("2006-01-02 15:04:05") + "\n")
	d.WriteString("Path:     " + file.Path + "\n")
	return d.String()
}
