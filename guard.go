package main

import (
	"fmt"
	"strings"
)

// crashGuardLimit bounds re-render attempts after a panic in the view
// path. Once spent, the recovery screen only offers reset and quit.
const crashGuardLimit = 3

type crashGuard struct {
	tripped bool
	retries int
	message string
	stack   string
}

func (g *crashGuard) Tripped() bool { return g.tripped }

func (g *crashGuard) CanRetry() bool { return g.retries < crashGuardLimit }

func (g *crashGuard) RetriesLeft() int { return crashGuardLimit - g.retries }

// Trip records a recovered render panic.
func (g *crashGuard) Trip(cause any, stack []byte) {
	g.tripped = true
	g.message = fmt.Sprint(cause)
	g.stack = string(stack)
}

// Retry spends one attempt and clears the trip so the next render runs
// the real view again.
func (g *crashGuard) Retry() bool {
	if !g.tripped || !g.CanRetry() {
		return false
	}
	g.retries++
	g.tripped = false
	return true
}

// Reset clears the guard entirely. Callers reinitialize the interface
// state before resuming.
func (g *crashGuard) Reset() {
	g.tripped = false
	g.retries = 0
	g.message = ""
	g.stack = ""
}

func (g *crashGuard) View(st styles, width, height int) string {
	var b strings.Builder
	b.WriteString(st.errorBanner.Render("The dashboard hit a rendering error."))
	b.WriteString("\n\n")
	if g.message != "" {
		b.WriteString("  " + truncate(g.message, max(width-4, 20)) + "\n\n")
	}
	if trace := stackPreview(g.stack, 12); trace != "" {
		for _, line := range strings.Split(trace, "\n") {
			b.WriteString(st.logLine.Render("  "+truncate(line, max(width-4, 20))) + "\n")
		}
		b.WriteString("\n")
	}
	if g.CanRetry() {
		b.WriteString(fmt.Sprintf("  [r] retry (%d left)   [0] reset to home   [q] quit\n", g.RetriesLeft()))
	} else {
		b.WriteString("  retries exhausted   [0] reset to home   [q] quit\n")
	}
	return b.String()
}

// stackPreview keeps the head of a panic stack, enough to locate the
// failing frame without flooding the screen.
func stackPreview(stack string, limit int) string {
	if stack == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(stack, "\n"), "\n")
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n")
}
