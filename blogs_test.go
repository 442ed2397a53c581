package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blogBackend is a tiny in-memory /blogs endpoint so section flows can
// run against real HTTP.
type blogBackend struct {
	mu    sync.Mutex
	next  int
	posts []blogPost
}

func newBlogBackend(posts ...blogPost) *blogBackend {
	return &blogBackend{next: 100, posts: posts}
}

func (b *blogBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/blogs":
			json.NewEncoder(w).Encode(b.posts)
		case r.Method == http.MethodPost && r.URL.Path == "/blogs":
			var post blogPost
			json.NewDecoder(r.Body).Decode(&post)
			post.Mongo = fmt.Sprintf("b%d", b.next)
			b.next++
			b.posts = append(b.posts, post)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(post)
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/blogs/"):
			id := strings.TrimPrefix(r.URL.Path, "/blogs/")
			var patch blogPost
			json.NewDecoder(r.Body).Decode(&patch)
			for i := range b.posts {
				if b.posts[i].id() == id {
					patch.Mongo = id
					b.posts[i] = patch
				}
			}
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/blogs/"):
			id := strings.TrimPrefix(r.URL.Path, "/blogs/")
			kept := b.posts[:0]
			for _, post := range b.posts {
				if post.id() != id {
					kept = append(kept, post)
				}
			}
			b.posts = kept
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func loadSection(t *testing.T, sec section) {
	t.Helper()
	msg := sec.Load(context.Background())()
	loaded, ok := msg.(sectionLoadedMsg)
	require.True(t, ok, "load failed: %#v", msg)
	require.True(t, sec.ApplyLoad(loaded))
}

func TestBlogSectionCreateShowsUpAfterReload(t *testing.T) {
	backend := newBlogBackend(blogPost{
		remoteID: remoteID{Mongo: "b1"},
		Title:    "First post",
		Author:   "Kaan",
		Category: "real-estate",
	})
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	sec := newBlogsSection(newAPIClient(srv.URL, newTestStore(t), nil), 25)
	loadSection(t, sec)
	require.Equal(t, 1, sec.Table().Counts().Total)

	form := newEntityForm("New blog post", sectionBlogs, blogSchema(), formCreate, map[string]string{
		"title":    "Summer market update",
		"excerpt":  "Prices keep climbing",
		"content":  "Full analysis here.",
		"author":   "Kaan",
		"category": "market-news",
		"type":     "article",
		"tags":     "market, summer",
		"featured": "yes",
	}, "")

	msg := sec.Submit(context.Background(), form)()
	done, ok := msg.(mutationDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)
	assert.Equal(t, "create", done.action)
	assert.Empty(t, done.id)

	// the new post is visible after the post-mutation reload
	loadSection(t, sec)
	assert.Equal(t, 2, sec.Table().Counts().Total)

	var titles []string
	for _, row := range sec.Table().ExportRows(true, true) {
		titles = append(titles, row[0])
	}
	assert.Contains(t, titles, "Summer market update")

	created := backend.posts[1]
	assert.Equal(t, []string{"market", "summer"}, created.Tags)
	assert.True(t, created.Featured)
}

func TestBlogSectionEditSeedsAndUpdates(t *testing.T) {
	backend := newBlogBackend(blogPost{
		remoteID:    remoteID{Mongo: "b1"},
		Title:       "First post",
		Excerpt:     "Short",
		Content:     "Body",
		Author:      "Kaan",
		Category:    "lifestyle",
		Type:        "guide",
		Tags:        []string{"tips"},
		PublishDate: "2025-06-01",
		Featured:    false,
	})
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	sec := newBlogsSection(newAPIClient(srv.URL, newTestStore(t), nil), 25)
	loadSection(t, sec)

	form, ok := sec.NewEditForm("b1")
	require.True(t, ok)
	assert.Equal(t, "Edit blog post", form.title)
	values := form.Values()
	assert.Equal(t, "First post", values["title"])
	assert.Equal(t, "tips", values["tags"])
	assert.Equal(t, "lifestyle", values["category"])

	_, missing := sec.NewEditForm("nope")
	assert.False(t, missing)

	msg := sec.Submit(context.Background(), form)()
	done := msg.(mutationDoneMsg)
	require.NoError(t, done.err)
	assert.Equal(t, "update", done.action)
	assert.Equal(t, "b1", done.id)
	assert.Equal(t, "First post", backend.posts[0].Title)
}

func TestCreateBlogSwitchesToMultipartForFiles(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "hero.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("jpeg"), 0o644))

	var gotContentType, gotTitle, gotTags, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotTitle = r.FormValue("title")
		gotTags = r.FormValue("tags")
		file, header, err := r.FormFile("mainImage")
		require.NoError(t, err)
		file.Close()
		gotFile = header.Filename
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	form := newEntityForm("New blog post", sectionBlogs, blogSchema(), formCreate, map[string]string{
		"title":     "With cover",
		"excerpt":   "x",
		"content":   "y",
		"author":    "Kaan",
		"category":  "company",
		"type":      "news",
		"tags":      "a,b",
		"mainImage": imagePath,
	}, "")
	require.True(t, form.HasFiles())

	client := newAPIClient(srv.URL, newTestStore(t), nil)
	require.NoError(t, createBlog(context.Background(), client, form))

	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
	assert.Equal(t, "With cover", gotTitle)
	assert.JSONEq(t, `["a","b"]`, gotTags)
	assert.Equal(t, "hero.jpg", gotFile)
}

func TestFlattenBlogImages(t *testing.T) {
	post := blogPost{MainImage: "main.jpg", Gallery: []string{"one.jpg", "two.jpg"}}
	assert.Equal(t, "main.jpg | one.jpg | two.jpg", flattenBlogImages(post))

	assert.Equal(t, "one.jpg", flattenBlogImages(blogPost{Gallery: []string{"one.jpg"}}))
	assert.Empty(t, flattenBlogImages(blogPost{MainImage: "   "}))
}

func TestBlogStats(t *testing.T) {
	cards := blogStats([]blogPost{
		{Category: "lifestyle", Featured: true},
		{Category: "lifestyle"},
		{Category: "company", Featured: true},
	})
	require.Len(t, cards, 3)
	assert.Equal(t, statCard{Label: "Posts", Value: "3"}, cards[0])
	assert.Equal(t, statCard{Label: "Featured", Value: "2"}, cards[1])
	assert.Equal(t, statCard{Label: "Categories", Value: "2"}, cards[2])
}

func TestBlogDetailRendersFields(t *testing.T) {
	detail, ok := detailForPost(t, blogPost{
		remoteID:    remoteID{Mongo: "b1"},
		Title:       "Open house guide",
		Author:      "Kaan",
		Category:    "real-estate",
		PublishDate: "2025-06-01T00:00:00Z",
		Tags:        []string{"guide"},
	})
	require.True(t, ok)
	assert.Contains(t, detail, "Open house guide")
	assert.Contains(t, detail, "Real Estate")
	assert.Contains(t, detail, "2025-06-01")
	assert.Contains(t, detail, "guide")
}

func detailForPost(t *testing.T, post blogPost) (string, bool) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]blogPost{post})
	}))
	defer srv.Close()

	sec := newBlogsSection(newAPIClient(srv.URL, newTestStore(t), nil), 25)
	loadSection(t, sec)
	return sec.Detail(post.id())
}
