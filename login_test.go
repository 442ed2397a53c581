package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigninResponseFlatShape(t *testing.T) {
	var resp signinResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"token": "tok-1",
		"email": "kaan@manrongroup.com",
		"fullname": "Kaan Demir",
		"role": "ADMIN"
	}`), &resp))

	sess := resp.session()
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "kaan@manrongroup.com", sess.Email)
	assert.Equal(t, "Kaan Demir", sess.Fullname)
	assert.Equal(t, "admin", sess.Role)
	assert.Empty(t, sess.UserID)
	assert.False(t, sess.SavedAt.IsZero())
}

func TestSigninResponseNestedUserWins(t *testing.T) {
	var resp signinResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"token": "tok-2",
		"email": "stale@manrongroup.com",
		"role": "client",
		"user": {
			"_id": "u-9",
			"email": "fresh@manrongroup.com",
			"fullname": "Fresh Name",
			"role": "superadmin"
		}
	}`), &resp))

	sess := resp.session()
	assert.Equal(t, "u-9", sess.UserID)
	assert.Equal(t, "fresh@manrongroup.com", sess.Email)
	assert.Equal(t, "Fresh Name", sess.Fullname)
	assert.Equal(t, "superAdmin", sess.Role)
}

func TestCanonicalRole(t *testing.T) {
	assert.Equal(t, "superAdmin", canonicalRole("SUPERADMIN"))
	assert.Equal(t, "admin", canonicalRole(" Admin "))
	assert.Equal(t, "agent", canonicalRole("agent"))

	// unknown roles pass through trimmed
	assert.Equal(t, "auditor", canonicalRole(" auditor "))
	assert.Empty(t, canonicalRole("  "))
}

func TestSignInCmdStoresSession(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"token":"tok-3","email":"kaan@manrongroup.com","role":"admin"}`)
	}))
	defer srv.Close()

	store := newTestStore(t)
	client := newAPIClient(srv.URL, store, nil)

	msg := signInCmd(client, store, "  kaan@manrongroup.com ", "hunter2")()
	done, ok := msg.(loginDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, "tok-3", done.sess.Token)

	// the email is trimmed before it travels
	assert.Equal(t, "kaan@manrongroup.com", gotBody["email"])
	assert.Equal(t, "hunter2", gotBody["password"])

	stored, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "tok-3", stored.Token)
	assert.Equal(t, "admin", stored.Role)
}

func TestSignInCmdRejectsEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":""}`)
	}))
	defer srv.Close()

	store := newTestStore(t)
	msg := signInCmd(newAPIClient(srv.URL, store, nil), store, "a@b.com", "pw")()
	done := msg.(loginDoneMsg)
	assert.ErrorIs(t, done.err, errNoSession)

	_, err := store.Current()
	assert.ErrorIs(t, err, errNoSession)
}

func TestSignInCmdSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Invalid credentials"}`)
	}))
	defer srv.Close()

	store := newTestStore(t)
	msg := signInCmd(newAPIClient(srv.URL, store, nil), store, "a@b.com", "wrong")()
	done := msg.(loginDoneMsg)
	require.Error(t, done.err)
	assert.Equal(t, "Invalid credentials", serverMessage(done.err, "login failed"))
}

func TestSignOutCmdClearsStore(t *testing.T) {
	store := newTestStore(t)
	seedSession(t, store)

	msg := signOutCmd(store)()
	done, ok := msg.(logoutDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)

	_, err := store.Current()
	assert.ErrorIs(t, err, errNoSession)
}

func TestLoginSchemaValidation(t *testing.T) {
	s := loginSchema()
	errs := s.validate(formCreate, map[string]string{})
	assert.Len(t, errs, 2)

	errs = s.validate(formCreate, map[string]string{"email": "not-an-email", "password": "x"})
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Key)
}
