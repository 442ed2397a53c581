package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownThemeCycle(t *testing.T) {
	assert.Equal(t, markdownThemeDark, nextMarkdownTheme(markdownThemeAuto))
	assert.Equal(t, markdownThemeLight, nextMarkdownTheme(markdownThemeDark))
	assert.Equal(t, markdownThemeAuto, nextMarkdownTheme(markdownThemeLight))
}

func TestMarkdownThemeFromString(t *testing.T) {
	assert.Equal(t, markdownThemeDark, markdownThemeFromString(" Dark "))
	assert.Equal(t, markdownThemeLight, markdownThemeFromString("light"))
	assert.Equal(t, markdownThemeAuto, markdownThemeFromString(""))
	assert.Equal(t, markdownThemeAuto, markdownThemeFromString("solarized"))

	assert.Equal(t, "dark", markdownThemeDark.String())
	assert.Equal(t, "auto", markdownTheme("whatever").String())
}

func TestMarkdownRenderBlankAndFallback(t *testing.T) {
	view := newMarkdownView(markdownThemeDark)
	assert.Empty(t, view.Render("   \n  "))

	out := view.Render("# Listing notes\n\nSome *emphasis* here.")
	assert.Contains(t, out, "Listing notes")
	assert.Contains(t, out, "emphasis")
}

func TestMarkdownViewInvalidation(t *testing.T) {
	view := newMarkdownView(markdownThemeDark)
	view.Render("plain")
	assert.NotNil(t, view.renderer)

	// same wrap keeps the renderer, a new wrap rebuilds it
	view.SetWrap(80)
	assert.NotNil(t, view.renderer)
	view.SetWrap(40)
	assert.Nil(t, view.renderer)

	view.Render("plain")
	assert.NotNil(t, view.renderer)
	view.SetTheme(markdownThemeLight)
	assert.Nil(t, view.renderer)
	assert.Equal(t, markdownThemeLight, view.Theme())

	view.SetTheme("")
	assert.Equal(t, markdownThemeAuto, view.Theme())
}
