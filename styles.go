package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	accent  lipgloss.AdaptiveColor
	muted   lipgloss.AdaptiveColor
	success lipgloss.AdaptiveColor
	warning lipgloss.AdaptiveColor
	danger  lipgloss.AdaptiveColor
}{
	accent:  lipgloss.AdaptiveColor{Light: "57", Dark: "105"},
	muted:   lipgloss.AdaptiveColor{Light: "245", Dark: "241"},
	success: lipgloss.AdaptiveColor{Light: "28", Dark: "78"},
	warning: lipgloss.AdaptiveColor{Light: "130", Dark: "214"},
	danger:  lipgloss.AdaptiveColor{Light: "124", Dark: "203"},
}

type styles struct {
	app, topBar, topStatus           lipgloss.Style
	columnTitle                      lipgloss.Style
	panel, panelFocused              lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	statusToast, statusToastErr      lipgloss.Style
	listItem, listSel                lipgloss.Style
	detailTitle, detailLabel         lipgloss.Style
	statCard, statValue              lipgloss.Style
	errorBanner                      lipgloss.Style
	overlay, overlayTitle            lipgloss.Style
	formLabel, formError, formHint   lipgloss.Style
	logLine                          lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	focusedBorder := lipgloss.DoubleBorder()

	return styles{
		app:            base,
		topBar:         base.Padding(0, 1).Bold(true),
		topStatus:      base.Copy().Foreground(palette.muted),
		columnTitle:    base.Copy().Bold(true).Padding(0, 1),
		panel:          base.BorderStyle(panelBorder).BorderForeground(palette.muted),
		panelFocused:   base.BorderStyle(focusedBorder).BorderForeground(palette.accent),
		statusBar:      base.Padding(0, 1),
		statusSeg:      base.Padding(0, 1).MarginRight(1),
		statusHint:     base.Copy().Faint(true),
		statusToast:    base.Padding(0, 1).MarginRight(1).Foreground(palette.success),
		statusToastErr: base.Padding(0, 1).MarginRight(1).Foreground(palette.danger),
		listItem:       base.Copy().Padding(0, 0, 0, 2),
		listSel:        base.Copy().Padding(0, 0, 0, 1).Bold(true).Foreground(palette.accent).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(palette.accent),
		detailTitle:    base.Copy().Bold(true).Foreground(palette.accent),
		detailLabel:    base.Copy().Foreground(palette.muted),
		statCard:       base.Border(lipgloss.RoundedBorder()).BorderForeground(palette.muted).Padding(0, 1).MarginRight(1),
		statValue:      base.Copy().Bold(true).Foreground(palette.accent),
		errorBanner:    base.Copy().Bold(true).Foreground(palette.danger),
		overlay:        base.Border(lipgloss.RoundedBorder()).BorderForeground(palette.accent).Padding(1, 2),
		overlayTitle:   base.Copy().Bold(true).Foreground(palette.accent),
		formLabel:      base.Copy().Bold(true),
		formError:      base.Copy().Foreground(palette.danger),
		formHint:       base.Copy().Faint(true),
		logLine:        base.Copy().Foreground(palette.muted),
	}
}
