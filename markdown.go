package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

func (t markdownTheme) String() string {
	switch t {
	case markdownThemeDark:
		return "dark"
	case markdownThemeLight:
		return "light"
	default:
		return "auto"
	}
}

func nextMarkdownTheme(theme markdownTheme) markdownTheme {
	switch theme {
	case markdownThemeAuto:
		return markdownThemeDark
	case markdownThemeDark:
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

// markdownView lazily builds a glamour renderer for the current pane
// width and theme. Rendering falls back to the raw source on error so a
// malformed document never blanks the detail pane.
type markdownView struct {
	renderer *glamour.TermRenderer
	theme    markdownTheme
	wrap     int
}

func newMarkdownView(theme markdownTheme) *markdownView {
	return &markdownView{theme: theme, wrap: 80}
}

func (v *markdownView) SetWrap(width int) {
	if width < 0 {
		width = 0
	}
	if v.wrap != width {
		v.wrap = width
		v.renderer = nil
	}
}

func (v *markdownView) SetTheme(theme markdownTheme) {
	if theme == "" {
		theme = markdownThemeAuto
	}
	if v.theme != theme {
		v.theme = theme
		v.renderer = nil
	}
}

func (v *markdownView) Theme() markdownTheme { return v.theme }

func (v *markdownView) Render(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	renderer := v.ensure()
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (v *markdownView) ensure() *glamour.TermRenderer {
	if v.renderer != nil {
		return v.renderer
	}
	options := []glamour.TermRendererOption{
		glamour.WithWordWrap(v.wrap),
	}
	switch v.theme {
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	default:
		options = append(options, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return nil
	}
	v.renderer = renderer
	return renderer
}
