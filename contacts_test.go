package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextContactStatusCycle(t *testing.T) {
	assert.Equal(t, "contacted", nextContactStatus("new"))
	assert.Equal(t, "resolved", nextContactStatus("contacted"))
	assert.Equal(t, "new", nextContactStatus("resolved"))
	assert.Equal(t, "resolved", nextContactStatus("CONTACTED"))

	// anything unrecognized restarts the cycle
	assert.Equal(t, "new", nextContactStatus(""))
	assert.Equal(t, "new", nextContactStatus("archived"))
}

func TestCycleContactStatusHitsStatusEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	client := newAPIClient(srv.URL, newTestStore(t), nil)
	c := contact{remoteID: remoteID{Mongo: "c7"}, Status: "new"}

	msg := cycleContactStatusCmd(context.Background(), client, c)()
	statusMsg, ok := msg.(contactStatusMsg)
	require.True(t, ok)
	require.NoError(t, statusMsg.err)
	assert.Equal(t, "c7", statusMsg.id)
	assert.Equal(t, "contacted", statusMsg.status)
	assert.Equal(t, "/contacts/c7/status", gotPath)
	assert.Equal(t, map[string]string{"status": "contacted"}, gotBody)
}

func TestReplyToContactPostsSubjectAndMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	client := newAPIClient(srv.URL, newTestStore(t), nil)
	c := contact{remoteID: remoteID{Mongo: "c7"}, Email: "buyer@example.com"}

	msg := replyToContactCmd(context.Background(), client, c, "Re: viewing", "Saturday works.")()
	replyMsg, ok := msg.(contactReplyMsg)
	require.True(t, ok)
	require.NoError(t, replyMsg.err)
	assert.Equal(t, "buyer@example.com", replyMsg.email)
	assert.Equal(t, "/contacts/c7/reply", gotPath)
	assert.Equal(t, "Re: viewing", gotBody["subject"])
	assert.Equal(t, "Saturday works.", gotBody["message"])
}

func TestApplyContactStatusLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]contact{
			{remoteID: remoteID{Mongo: "c1"}, Name: "Ada", Status: "new"},
			{remoteID: remoteID{Mongo: "c2"}, Name: "Grace", Status: "new"},
		})
	}))
	defer srv.Close()

	sec := newContactsSection(newAPIClient(srv.URL, newTestStore(t), nil), 25)
	loadSection(t, sec)

	applyContactStatusLocal(sec, "c2", "resolved")

	current, ok := currentContact(sec)
	require.True(t, ok)
	assert.Equal(t, "Ada", current.Name)
	assert.Equal(t, "new", current.Status)

	detail, ok := sec.Detail("c2")
	require.True(t, ok)
	assert.Contains(t, detail, "Resolved")

	// patching an unknown section is a no-op, not a panic
	blogSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]blogPost{})
	}))
	defer blogSrv.Close()
	blogSec := newBlogsSection(newAPIClient(blogSrv.URL, newTestStore(t), nil), 25)
	applyContactStatusLocal(blogSec, "c2", "resolved")
	_, ok = currentContact(blogSec)
	assert.False(t, ok)
}

func TestContactTopicFallsBackToService(t *testing.T) {
	assert.Equal(t, "valuation", contactTopic(contact{Category: "valuation", Service: "other"}))
	assert.Equal(t, "staging", contactTopic(contact{Service: "staging"}))
	assert.Empty(t, contactTopic(contact{}))
}

func TestContactStats(t *testing.T) {
	cards := contactStats([]contact{
		{Status: "new"}, {Status: "New"}, {Status: "contacted"}, {Status: "resolved"},
	})
	require.Len(t, cards, 4)
	assert.Equal(t, statCard{Label: "Messages", Value: "4"}, cards[0])
	assert.Equal(t, statCard{Label: "New", Value: "2"}, cards[1])
	assert.Equal(t, statCard{Label: "Contacted", Value: "1"}, cards[2])
	assert.Equal(t, statCard{Label: "Resolved", Value: "1"}, cards[3])
}

func TestContactLabelPrefersName(t *testing.T) {
	assert.Equal(t, "Ada", contactLabel(contact{Name: "Ada", Email: "ada@example.com"}))
	assert.Equal(t, "ada@example.com", contactLabel(contact{Email: "ada@example.com"}))
}
