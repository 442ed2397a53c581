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

func TestSubscriberSectionDeleteDropsRow(t *testing.T) {
	var deletedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]subscriber{
				{remoteID: remoteID{Mongo: "s1"}, Email: "a@example.com", Status: "active"},
				{remoteID: remoteID{Mongo: "s2"}, Email: "b@example.com", Status: "active"},
			})
		case http.MethodDelete:
			deletedPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	sec := newSubscribersSection(newAPIClient(srv.URL, newTestStore(t), nil), 25)
	loadSection(t, sec)
	require.Equal(t, 2, sec.Table().Counts().Total)

	msg := sec.Delete(context.Background(), "s1", "a@example.com")()
	done, ok := msg.(mutationDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, "delete", done.action)
	assert.Equal(t, "s1", done.id)
	assert.Equal(t, "a@example.com", done.label)
	assert.Equal(t, "/newsletter/s1", deletedPath)

	// the row disappears locally without a refetch
	sec.RemoveLocal("s1")
	assert.Equal(t, 1, sec.Table().Counts().Total)
	for _, row := range cachedSubscribers(sec) {
		assert.NotEqual(t, "s1", row.id())
	}
}

func TestSubscriberSectionHasNoForms(t *testing.T) {
	sec := newSubscribersSection(newAPIClient("http://unused", newTestStore(t), nil), 25)

	assert.Nil(t, sec.NewCreateForm())
	_, ok := sec.NewEditForm("s1")
	assert.False(t, ok)
}

func TestSubscriberCategoriesDistinctSorted(t *testing.T) {
	categories := subscriberCategories([]subscriber{
		{Categories: []string{"News", "listings"}},
		{Categories: []string{"news", " Open Houses "}},
		{Categories: []string{"", "LISTINGS"}},
	})

	// first-seen casing wins, duplicates fold case-insensitively
	assert.Equal(t, []string{"News", "Open Houses", "listings"}, categories)
}

func TestSubscriberStats(t *testing.T) {
	cards := subscriberStats([]subscriber{
		{Status: "active", Categories: []string{"news"}},
		{Status: "Active", Categories: []string{"listings"}},
		{Status: "unsubscribed"},
	})
	require.Len(t, cards, 4)
	assert.Equal(t, statCard{Label: "Subscribers", Value: "3"}, cards[0])
	assert.Equal(t, statCard{Label: "Active", Value: "2"}, cards[1])
	assert.Equal(t, statCard{Label: "Inactive", Value: "1"}, cards[2])
	assert.Equal(t, statCard{Label: "Categories", Value: "2"}, cards[3])
}

func TestCachedSubscribersTypeGuard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]subscriber{{remoteID: remoteID{Mongo: "s1"}, Email: "a@example.com"}})
	}))
	defer srv.Close()

	sec := newSubscribersSection(newAPIClient(srv.URL, newTestStore(t), nil), 25)
	loadSection(t, sec)
	require.Len(t, cachedSubscribers(sec), 1)

	// a non-subscriber section yields nothing rather than panicking
	blogSec := newBlogsSection(newAPIClient(srv.URL, newTestStore(t), nil), 25)
	assert.Nil(t, cachedSubscribers(blogSec))
}

func TestSubscriberCategoriesSeenOrderIndependence(t *testing.T) {
	categories := subscriberCategories([]subscriber{
		{Categories: []string{"zeta"}},
		{Categories: []string{"alpha"}},
	})
	assert.Equal(t, []string{"alpha", "zeta"}, categories)
}
