package main

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "modernc.org/sqlite"
)

var errNoSession = errors.New("no stored session")

// session is the persisted identity: the bearer token plus the display
// fields returned by signin. At most one row exists at a time.
type session struct {
	Token    string
	UserID   string
	Email    string
	Fullname string
	Role     string
	SavedAt  time.Time
}

type sessionStore struct {
	db *sql.DB
}

func openSessionStore(dir string) (*sessionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := migrateSessionStore(db); err != nil {
		db.Close()
		return nil, err
	}
	return &sessionStore{db: db}, nil
}

func migrateSessionStore(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			fullname TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			saved_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Current returns the stored session, or errNoSession when none exists.
func (s *sessionStore) Current() (session, error) {
	row := s.db.QueryRow(`SELECT token, user_id, email, fullname, role, saved_at FROM session WHERE id = 1`)
	var sess session
	err := row.Scan(&sess.Token, &sess.UserID, &sess.Email, &sess.Fullname, &sess.Role, &sess.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return session{}, errNoSession
	}
	if err != nil {
		return session{}, err
	}
	if strings.TrimSpace(sess.Token) == "" {
		return session{}, errNoSession
	}
	return sess, nil
}

func (s *sessionStore) Save(sess session) error {
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO session (id, token, user_id, email, fullname, role, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			email = excluded.email,
			fullname = excluded.fullname,
			role = excluded.role,
			saved_at = excluded.saved_at`,
		sess.Token, sess.UserID, sess.Email, sess.Fullname, sess.Role, sess.SavedAt)
	return err
}

func (s *sessionStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM session WHERE id = 1`)
	return err
}

func (s *sessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// tokenClaims are display-only fields peeked from the bearer token. The
// token is never verified client side; the backend owns validity.
type tokenClaims struct {
	Subject string
	Role    string
	Expires time.Time
}

func peekTokenClaims(token string) (tokenClaims, bool) {
	if strings.Count(token, ".") != 2 {
		return tokenClaims{}, false
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return tokenClaims{}, false
	}
	var peeked tokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		peeked.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		peeked.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		peeked.Expires = exp.Time
	}
	return peeked, true
}
