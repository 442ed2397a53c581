package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkSendBatches(t *testing.T) {
	recipients := make([]string, 60)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("user%02d@example.com", i)
	}

	req := newBulkSendRequest("Hello", "body", "", recipients)
	batches := req.batches()
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 25)
	assert.Len(t, batches[1], 25)
	assert.Len(t, batches[2], 10)
	assert.Equal(t, "user00@example.com", batches[0][0])
	assert.Equal(t, "user59@example.com", batches[2][9])

	// audience sends carry one nil batch and let the server resolve it
	categoryReq := newBulkSendRequest("Hello", "body", "news", nil)
	batches = categoryReq.batches()
	require.Len(t, batches, 1)
	assert.Nil(t, batches[0])
}

func TestNewBulkSendRequestTitle(t *testing.T) {
	req := newBulkSendRequest("  Summer listings roundup  ", "body", "", nil)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "Bulk send: Summer listings roundup", req.Title)

	long := newBulkSendRequest("This subject keeps going and going well past forty characters", "b", "", nil)
	assert.Contains(t, long.Title, "…")
}

func drainJob(t *testing.T, ch chan jobMsg) []jobMsg {
	t.Helper()
	var msgs []jobMsg
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestRunBulkSendTalliesBatches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			Recipients []string `json:"recipients"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(bulkSendResponse{Sent: len(body.Recipients)})
	}))
	defer srv.Close()

	recipients := make([]string, 30)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("user%02d@example.com", i)
	}
	req := newBulkSendRequest("Hello", "body", "", recipients)

	ch := make(chan jobMsg)
	go runBulkSend(context.Background(), newAPIClient(srv.URL, newTestStore(t), nil), req, ch)
	msgs := drainJob(t, ch)

	require.Len(t, msgs, 4)
	started := msgs[0].(jobStartedMsg)
	assert.Equal(t, req.ID, started.ID)
	assert.Equal(t, 2, started.Batches)

	first := msgs[1].(jobProgressMsg)
	assert.Equal(t, 1, first.Batch)
	assert.Equal(t, 25, first.Sent)
	assert.Contains(t, first.Line, "delivered")

	finished := msgs[3].(jobFinishedMsg)
	require.NoError(t, finished.Err)
	assert.Equal(t, 30, finished.Sent)
	assert.Equal(t, 0, finished.Failed)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRunBulkSendCategoryUsesServerCount(t *testing.T) {
	var gotCategory string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Category string `json:"category"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotCategory = body.Category
		json.NewEncoder(w).Encode(bulkSendResponse{Sent: 118, Failed: 2})
	}))
	defer srv.Close()

	req := newBulkSendRequest("Hello", "body", "news", nil)
	ch := make(chan jobMsg)
	go runBulkSend(context.Background(), newAPIClient(srv.URL, newTestStore(t), nil), req, ch)
	msgs := drainJob(t, ch)

	assert.Equal(t, "news", gotCategory)
	finished := msgs[len(msgs)-1].(jobFinishedMsg)
	require.NoError(t, finished.Err)
	assert.Equal(t, 118, finished.Sent)
	assert.Equal(t, 2, finished.Failed)
}

func TestRunBulkSendCountsFailedBatches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"message":"smtp unavailable"}`)
			return
		}
		var body struct {
			Recipients []string `json:"recipients"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(bulkSendResponse{Sent: len(body.Recipients)})
	}))
	defer srv.Close()

	recipients := make([]string, 30)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("user%02d@example.com", i)
	}
	req := newBulkSendRequest("Hello", "body", "", recipients)

	ch := make(chan jobMsg)
	go runBulkSend(context.Background(), newAPIClient(srv.URL, newTestStore(t), nil), req, ch)
	msgs := drainJob(t, ch)

	first := msgs[1].(jobProgressMsg)
	assert.Contains(t, first.Line, "failed: smtp unavailable")
	assert.Equal(t, 25, first.Failed)

	// one bad batch does not abort the job
	finished := msgs[len(msgs)-1].(jobFinishedMsg)
	require.NoError(t, finished.Err)
	assert.Equal(t, 5, finished.Sent)
	assert.Equal(t, 25, finished.Failed)
}

func TestRunBulkSendStopsWhenCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(bulkSendResponse{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := newBulkSendRequest("Hello", "body", "", []string{"a@example.com"})
	ch := make(chan jobMsg)
	go runBulkSend(ctx, newAPIClient(srv.URL, newTestStore(t), nil), req, ch)
	msgs := drainJob(t, ch)

	require.Len(t, msgs, 2)
	finished := msgs[1].(jobFinishedMsg)
	assert.ErrorIs(t, finished.Err, context.Canceled)
	assert.Zero(t, finished.Sent)
}

func TestJobRunnerSerializesJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(bulkSendResponse{Sent: 1})
	}))
	defer srv.Close()

	runner := newJobRunner(newAPIClient(srv.URL, newTestStore(t), nil))
	first := newBulkSendRequest("First", "body", "", []string{"a@example.com"})
	second := newBulkSendRequest("Second", "body", "", []string{"b@example.com"})

	cmd := runner.Enqueue(first)
	require.NotNil(t, cmd)
	assert.True(t, runner.Running())

	// a job queued while one runs waits its turn
	assert.Nil(t, runner.Enqueue(second))
	assert.Equal(t, 1, runner.Pending())

	// pump the message stream the way the update loop would
	var finished []string
	for cmd != nil {
		msg, ok := cmd().(jobMsg)
		require.True(t, ok)
		if done, isDone := msg.(jobFinishedMsg); isDone {
			finished = append(finished, done.ID)
		}
		cmd = runner.Handle(msg)
	}

	assert.Equal(t, []string{first.ID, second.ID}, finished)
	assert.False(t, runner.Running())
	assert.Zero(t, runner.Pending())
	assert.Nil(t, runner.Active())
}

func TestJobRunnerCancelActive(t *testing.T) {
	runner := newJobRunner(nil)
	assert.False(t, runner.CancelActive())

	// slow responses so the cancel lands while a batch is in flight
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		json.NewEncoder(w).Encode(bulkSendResponse{Sent: 1})
	}))
	defer srv.Close()

	runner = newJobRunner(newAPIClient(srv.URL, newTestStore(t), nil))
	cmd := runner.Enqueue(newBulkSendRequest("First", "body", "", []string{"a@example.com", "b@example.com"}))
	require.NotNil(t, cmd)

	started := cmd().(jobMsg)
	_, ok := started.(jobStartedMsg)
	require.True(t, ok)
	assert.True(t, runner.CancelActive())

	// drain to the finish; the context error surfaces there
	cmd = runner.Handle(started)
	var sawCancel bool
	for cmd != nil {
		msg := cmd().(jobMsg)
		if done, isDone := msg.(jobFinishedMsg); isDone && done.Err != nil {
			sawCancel = assert.ErrorIs(t, done.Err, context.Canceled)
		}
		cmd = runner.Handle(msg)
	}
	assert.True(t, sawCancel)
	assert.False(t, runner.Running())
}

func TestBulkSendSchemaAudiences(t *testing.T) {
	s := bulkSendSchema([]string{"news", "listings"}, 0)
	audience, ok := s.field("audience")
	require.True(t, ok)
	assert.Equal(t, []string{"everyone", "news", "listings"}, audience.Choices)

	s = bulkSendSchema([]string{"news"}, 4)
	audience, _ = s.field("audience")
	assert.Equal(t, []string{"everyone", "selection (4)", "news"}, audience.Choices)

	assert.True(t, isBulkSelectionAudience("selection (4)"))
	assert.False(t, isBulkSelectionAudience("everyone"))
	assert.False(t, isBulkSelectionAudience("news"))

	// a two character subject fails the length check
	errs := s.validate(formCreate, map[string]string{
		"audience": "everyone",
		"subject":  "Hi",
		"message":  "body",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "subject", errs[0].Key)
}
