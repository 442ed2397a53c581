package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// bulkSendBatchSize caps how many recipients ride in a single request so
// a large audience never produces one oversized payload.
const bulkSendBatchSize = 25

type bulkSendRequest struct {
	ID         string
	Title      string
	Subject    string
	Message    string
	Category   string
	Recipients []string
}

func newBulkSendRequest(subject, message, category string, recipients []string) bulkSendRequest {
	return bulkSendRequest{
		ID:         uuid.NewString(),
		Title:      "Bulk send: " + truncate(strings.TrimSpace(subject), 40),
		Subject:    subject,
		Message:    message,
		Category:   category,
		Recipients: recipients,
	}
}

// batches chunks the explicit recipient list. A send without explicit
// recipients becomes a single nil batch; the server resolves the
// audience from the category field (or sends to everyone).
func (r bulkSendRequest) batches() [][]string {
	if len(r.Recipients) == 0 {
		return [][]string{nil}
	}
	var out [][]string
	for start := 0; start < len(r.Recipients); start += bulkSendBatchSize {
		end := start + bulkSendBatchSize
		if end > len(r.Recipients) {
			end = len(r.Recipients)
		}
		out = append(out, r.Recipients[start:end])
	}
	return out
}

type jobMsg interface {
	isJob()
	jobID() string
}

type jobStartedMsg struct {
	ID      string
	Title   string
	Batches int
}

func (jobStartedMsg) isJob()            {}
func (msg jobStartedMsg) jobID() string { return msg.ID }

type jobProgressMsg struct {
	ID      string
	Title   string
	Batch   int
	Batches int
	Sent    int
	Failed  int
	Line    string
}

func (jobProgressMsg) isJob()            {}
func (msg jobProgressMsg) jobID() string { return msg.ID }

type jobFinishedMsg struct {
	ID     string
	Title  string
	Sent   int
	Failed int
	Err    error
}

func (jobFinishedMsg) isJob()            {}
func (msg jobFinishedMsg) jobID() string { return msg.ID }

type jobChannelClosedMsg struct {
	ID string
}

func (jobChannelClosedMsg) isJob()            {}
func (msg jobChannelClosedMsg) jobID() string { return msg.ID }

// jobRunner serializes bulk sends: one active job, the rest queued FIFO.
type jobRunner struct {
	client  *apiClient
	queue   []bulkSendRequest
	active  *bulkSendRequest
	running bool
	cancel  context.CancelFunc
	ch      chan jobMsg
}

func newJobRunner(client *apiClient) *jobRunner {
	return &jobRunner{client: client}
}

func (r *jobRunner) Enqueue(req bulkSendRequest) tea.Cmd {
	r.queue = append(r.queue, req)
	return r.nextCmd()
}

func (r *jobRunner) Running() bool { return r.running }

func (r *jobRunner) Pending() int { return len(r.queue) }

func (r *jobRunner) Active() *bulkSendRequest { return r.active }

// CancelActive asks the active job to stop. The in-flight batch still
// completes; the job finishes with a context error afterwards.
func (r *jobRunner) CancelActive() bool {
	if !r.running || r.cancel == nil {
		return false
	}
	r.cancel()
	return true
}

// Handle consumes a job message and returns the command that keeps the
// stream alive: re-arm the channel read while the job runs, start the
// next queued job once it ends.
func (r *jobRunner) Handle(msg jobMsg) tea.Cmd {
	switch msg.(type) {
	case jobFinishedMsg:
		r.reset()
		return r.nextCmd()
	case jobChannelClosedMsg:
		r.reset()
		return r.nextCmd()
	default:
		if r.ch == nil {
			return nil
		}
		return waitForJobMsg(r.ch)
	}
}

func (r *jobRunner) reset() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.running = false
	r.active = nil
	r.ch = nil
}

func (r *jobRunner) nextCmd() tea.Cmd {
	if r.running {
		return nil
	}
	if len(r.queue) == 0 {
		return nil
	}
	req := r.queue[0]
	r.queue = r.queue[1:]
	r.active = &req
	r.running = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	ch := make(chan jobMsg)
	r.ch = ch
	go runBulkSend(ctx, r.client, req, ch)
	return waitForJobMsg(ch)
}

type bulkSendResponse struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func runBulkSend(ctx context.Context, client *apiClient, req bulkSendRequest, ch chan<- jobMsg) {
	defer close(ch)

	batches := req.batches()
	ch <- jobStartedMsg{ID: req.ID, Title: req.Title, Batches: len(batches)}

	var sent, failed int
	for i, batch := range batches {
		if ctx.Err() != nil {
			ch <- jobFinishedMsg{ID: req.ID, Title: req.Title, Sent: sent, Failed: failed, Err: ctx.Err()}
			return
		}

		body := map[string]any{
			"subject": req.Subject,
			"message": req.Message,
		}
		switch {
		case batch != nil:
			body["recipients"] = batch
		case req.Category != "":
			body["category"] = req.Category
		}

		var resp bulkSendResponse
		err := client.post(ctx, "/newsletter/bulk-send", body, &resp)
		var line string
		switch {
		case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, errSessionExpired)):
			ch <- jobFinishedMsg{ID: req.ID, Title: req.Title, Sent: sent, Failed: failed, Err: err}
			return
		case err != nil:
			failed += len(batch)
			line = fmt.Sprintf("batch %d/%d failed: %s", i+1, len(batches), serverMessage(err, "send rejected"))
		default:
			sent += batchSent(resp, batch)
			failed += resp.Failed
			line = fmt.Sprintf("batch %d/%d delivered", i+1, len(batches))
		}
		ch <- jobProgressMsg{
			ID:      req.ID,
			Title:   req.Title,
			Batch:   i + 1,
			Batches: len(batches),
			Sent:    sent,
			Failed:  failed,
			Line:    line,
		}
	}

	ch <- jobFinishedMsg{ID: req.ID, Title: req.Title, Sent: sent, Failed: failed}
}

// batchSent prefers the server's own count and falls back to the batch
// size when the response body carries none.
func batchSent(resp bulkSendResponse, batch []string) int {
	if resp.Sent > 0 || resp.Failed > 0 {
		return resp.Sent
	}
	return len(batch)
}

func waitForJobMsg(ch <-chan jobMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return jobChannelClosedMsg{}
		}
		return msg
	}
}

const bulkAudienceAll = "everyone"

func bulkAudienceSelection(count int) string {
	return fmt.Sprintf("selection (%d)", count)
}

func isBulkSelectionAudience(value string) bool {
	return strings.HasPrefix(value, "selection (")
}

// bulkSendSchema builds the compose form. The audience choice offers
// everyone, the current table selection when one exists, and each known
// subscriber category.
func bulkSendSchema(categories []string, selected int) schema {
	audiences := []string{bulkAudienceAll}
	if selected > 0 {
		audiences = append(audiences, bulkAudienceSelection(selected))
	}
	audiences = append(audiences, categories...)

	return schema{Fields: []fieldSpec{
		{Key: "audience", Label: "Audience", Kind: fieldChoice, Required: true, Choices: audiences},
		{Key: "subject", Label: "Subject", Kind: fieldLine, Required: true, Check: checkMinLength(3)},
		{Key: "message", Label: "Message", Kind: fieldMultiline, Required: true, Hint: "plain text or markdown"},
	}}
}
