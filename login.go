package main

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type loginDoneMsg struct {
	sess session
	err  error
}

type logoutDoneMsg struct {
	err error
}

func loginSchema() schema {
	return schema{Fields: []fieldSpec{
		{Key: "email", Label: "Email", Kind: fieldLine, Required: true, Check: checkEmail},
		{Key: "password", Label: "Password", Kind: fieldSecret, Required: true},
	}}
}

type signinUser struct {
	remoteID
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
}

// signinResponse tolerates both shapes the backend has shipped: a
// nested user object and the older flat fields next to the token.
type signinResponse struct {
	Token    string      `json:"token"`
	User     *signinUser `json:"user"`
	Email    string      `json:"email"`
	Fullname string      `json:"fullname"`
	Role     string      `json:"role"`
}

func (r signinResponse) session() session {
	sess := session{
		Token:    r.Token,
		Email:    r.Email,
		Fullname: r.Fullname,
		Role:     canonicalRole(r.Role),
		SavedAt:  time.Now().UTC(),
	}
	if r.User != nil {
		sess.UserID = r.User.id()
		if r.User.Email != "" {
			sess.Email = r.User.Email
		}
		if r.User.Fullname != "" {
			sess.Fullname = r.User.Fullname
		}
		if r.User.Role != "" {
			sess.Role = canonicalRole(r.User.Role)
		}
	}
	return sess
}

// canonicalRole maps any spelling the backend returns onto the role set
// the dashboard renders and gates on. Unknown roles pass through.
func canonicalRole(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, role := range userRoles {
		if strings.EqualFold(trimmed, role) {
			return role
		}
	}
	return trimmed
}

func signInCmd(client *apiClient, store *sessionStore, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var resp signinResponse
		err := client.post(ctx, "/signin", map[string]string{
			"email":    strings.TrimSpace(email),
			"password": password,
		}, &resp)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		if resp.Token == "" {
			return loginDoneMsg{err: errNoSession}
		}

		sess := resp.session()
		if err := store.Save(sess); err != nil {
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{sess: sess}
	}
}

func signOutCmd(store *sessionStore) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: store.Clear()}
	}
}
