package main

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

type auditEvent struct {
	SessionID string         `json:"session_id"`
	Actor     string         `json:"actor,omitempty"`
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// auditLogger appends one JSON line per event. Logging must never block
// or fail the UI, so errors are swallowed and a nil logger is a no-op.
type auditLogger struct {
	mu        sync.Mutex
	path      string
	sessionID string
	actor     string
}

func newAuditLogger(path, sessionID string) *auditLogger {
	return &auditLogger{path: path, sessionID: sessionID}
}

// SetActor records the identity stamped on subsequent events. Called
// once a login succeeds or a stored session is restored.
func (a *auditLogger) SetActor(actor string) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actor = actor
}

func (a *auditLogger) Log(event string, extra map[string]any) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	entry := auditEvent{
		SessionID: a.sessionID,
		Actor:     a.actor,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     event,
	}
	if len(extra) > 0 {
		entry.Extra = extra
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	file, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	file.Write(append(data, '\n'))
}
