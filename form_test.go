package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyNamed(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func contactFormSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "email", Label: "Email", Required: true, Check: checkEmail},
		{Key: "subject", Label: "Subject", Required: true},
		{Key: "message", Label: "Message", Kind: fieldMultiline},
	}}
}

func TestFormBlocksSubmitUntilValid(t *testing.T) {
	form := newEntityForm("New Contact", "contacts", contactFormSchema(), formCreate, nil, "")

	// enter on an empty form surfaces errors and emits nothing
	cmd, handled := form.Update(keyNamed(tea.KeyEnter))
	assert.True(t, handled)
	assert.Nil(t, cmd)
	assert.Equal(t, "Email is required", form.errors["email"])
	assert.Equal(t, "Subject is required", form.errors["subject"])
	assert.Equal(t, 0, form.focus)

	// fix the first field only; focus jumps to the next offender
	form.Update(keyRunes("kaan@manrongroup.com"))
	cmd, _ = form.Update(keyNamed(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, form.focus)
	_, stillBad := form.errors["email"]
	assert.False(t, stillBad)

	form.Update(keyRunes("Viewing request"))
	cmd, _ = form.Update(keyNamed(tea.KeyEnter))
	require.NotNil(t, cmd)

	msg, ok := cmd().(formSubmitMsg)
	require.True(t, ok)
	assert.Same(t, form, msg.form)
	assert.Equal(t, "Viewing request", msg.form.Values()["subject"])
}

func TestFormEscapeCancels(t *testing.T) {
	form := newEntityForm("New Contact", "contacts", contactFormSchema(), formCreate, nil, "")

	cmd, handled := form.Update(keyNamed(tea.KeyEsc))
	assert.True(t, handled)
	require.NotNil(t, cmd)
	assert.IsType(t, formCancelMsg{}, cmd())
}

func TestFormFocusCycle(t *testing.T) {
	form := newEntityForm("New Contact", "contacts", contactFormSchema(), formCreate, nil, "")
	require.Equal(t, 0, form.focus)

	form.Update(keyNamed(tea.KeyTab))
	assert.Equal(t, 1, form.focus)
	form.Update(keyNamed(tea.KeyTab))
	assert.Equal(t, 2, form.focus)
	form.Update(keyNamed(tea.KeyTab))
	assert.Equal(t, 0, form.focus)

	form.Update(keyNamed(tea.KeyShiftTab))
	assert.Equal(t, 2, form.focus)

	// the textarea keeps up/down for itself
	form.Update(keyNamed(tea.KeyDown))
	assert.Equal(t, 2, form.focus)
}

func TestFormChoiceCycling(t *testing.T) {
	s := schema{Fields: []fieldSpec{
		{Key: "role", Label: "Role", Kind: fieldChoice, Choices: []string{"admin", "editor", "viewer"}},
		{Key: "featured", Label: "Featured", Kind: fieldToggle},
	}}
	form := newEntityForm("Edit User", "users", s, formEdit, map[string]string{"role": "Editor"}, "u1")

	// initial value matched case-insensitively
	assert.Equal(t, "editor", form.Values()["role"])

	form.Update(keyNamed(tea.KeyRight))
	assert.Equal(t, "viewer", form.Values()["role"])
	form.Update(keyNamed(tea.KeyRight))
	assert.Equal(t, "admin", form.Values()["role"])
	form.Update(keyNamed(tea.KeyLeft))
	assert.Equal(t, "viewer", form.Values()["role"])

	// toggles fall back to no/yes choices
	form.Update(keyNamed(tea.KeyTab))
	assert.Equal(t, "no", form.Values()["featured"])
	form.Update(keyNamed(tea.KeyRight))
	assert.Equal(t, "yes", form.Values()["featured"])
}

func TestFormEditLeavesSecretsAlone(t *testing.T) {
	s := schema{Fields: []fieldSpec{
		{Key: "email", Label: "Email", Required: true},
		{Key: "password", Label: "Password", Kind: fieldSecret, Required: true, Check: checkMinLength(8)},
	}}
	form := newEntityForm("Edit User", "users", s, formEdit,
		map[string]string{"email": "kaan@manrongroup.com"}, "u1")

	cmd, _ := form.Update(keyNamed(tea.KeyEnter))
	require.NotNil(t, cmd)

	msg, ok := cmd().(formSubmitMsg)
	require.True(t, ok)
	body := msg.form.Payload()
	assert.Equal(t, "kaan@manrongroup.com", body["email"])
	_, sent := body["password"]
	assert.False(t, sent)

	// the label tells the operator what a blank means
	view := form.View(newStyles())
	assert.Contains(t, view, "(blank keeps current)")
}

func TestFormMultilineSubmitsWithCtrlS(t *testing.T) {
	form := newEntityForm("New Contact", "contacts", contactFormSchema(), formCreate,
		map[string]string{"email": "kaan@manrongroup.com", "subject": "Hello"}, "")

	// land on the textarea
	form.Update(keyNamed(tea.KeyTab))
	form.Update(keyNamed(tea.KeyTab))
	require.Equal(t, 2, form.focus)

	// enter inserts a newline instead of submitting
	cmd, _ := form.Update(keyNamed(tea.KeyEnter))
	if cmd != nil {
		_, submitted := cmd().(formSubmitMsg)
		assert.False(t, submitted)
	}

	cmd, _ = form.Update(keyNamed(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	_, ok := cmd().(formSubmitMsg)
	assert.True(t, ok)
}
