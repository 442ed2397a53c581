package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// errSessionExpired is returned once when a 401 outside the allow-list
// forces the stored session to be cleared. Callers switch to the login
// view on errors.Is(err, errSessionExpired).
var errSessionExpired = errors.New("session expired")

// authAllowlist holds path prefixes whose 401 responses mean "not
// permitted", not "session expired". They never clear the session.
var authAllowlist = []string{
	"/signin",
	"/signup",
	"/analytics/",
	"/newsletter/bulk-send",
}

func isAllowlisted(path string) bool {
	for _, prefix := range authAllowlist {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// httpError carries a non-2xx response: the status, the request path
// and id, and the server-provided message when the body had one.
type httpError struct {
	Status    int
	Path      string
	Message   string
	RequestID string
}

func (e *httpError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Path, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: status %d", e.Path, e.Status)
}

// serverMessage extracts the user-facing message from an httpError in
// err's chain, or returns fallback.
func serverMessage(err error, fallback string) string {
	var httpErr *httpError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}

type filePart struct {
	Field    string
	Filename string
	Path     string
}

// apiClient is the single point of HTTP egress. It attaches the bearer
// token and a request id, negotiates JSON or multipart bodies, and
// applies the 401 policy. Non-401 failures propagate unmodified; there
// is no retry and no backoff.
type apiClient struct {
	baseURL string
	http    *http.Client
	store   *sessionStore
	audit   *auditLogger
}

func newAPIClient(baseURL string, store *sessionStore, audit *auditLogger) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		audit:   audit,
	}
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	reader, err := encodeJSON(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", reader, out)
}

func (c *apiClient) put(ctx context.Context, path string, body, out any) error {
	reader, err := encodeJSON(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return c.do(ctx, http.MethodPut, path, "application/json", reader, out)
}

func (c *apiClient) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, nil)
}

// postMultipart sends fields plus file attachments. The content type is
// taken from the multipart writer so the boundary stays consistent; no
// explicit application type is forced on it.
func (c *apiClient) postMultipart(ctx context.Context, path string, fields map[string]string, files []filePart, out any) error {
	contentType, body, err := encodeMultipart(fields, files)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, contentType, body, out)
}

func (c *apiClient) putMultipart(ctx context.Context, path string, fields map[string]string, files []filePart, out any) error {
	contentType, body, err := encodeMultipart(fields, files)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, contentType, body, out)
}

func encodeMultipart(fields map[string]string, files []filePart) (string, io.Reader, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", nil, fmt.Errorf("multipart field %s: %w", key, err)
		}
	}
	for _, part := range files {
		name := part.Filename
		if name == "" {
			name = filepath.Base(part.Path)
		}
		dst, err := writer.CreateFormFile(part.Field, name)
		if err != nil {
			return "", nil, fmt.Errorf("multipart file %s: %w", part.Field, err)
		}
		src, err := os.Open(part.Path)
		if err != nil {
			return "", nil, fmt.Errorf("multipart file %s: %w", part.Field, err)
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if err != nil {
			return "", nil, fmt.Errorf("multipart file %s: %w", part.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", nil, fmt.Errorf("multipart close: %w", err)
	}
	return writer.FormDataContentType(), &buf, nil
}

func (c *apiClient) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	hadToken := false
	if c.store != nil {
		if sess, err := c.store.Current(); err == nil {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
			hadToken = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logOutcome(method, path, requestID, 0, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !isAllowlisted(path) && hadToken {
		// Session expiry. Clearing the store first means a second
		// in-flight 401 finds no token and cannot signal again.
		if c.store != nil {
			c.store.Clear()
		}
		c.logOutcome(method, path, requestID, resp.StatusCode, errSessionExpired)
		return fmt.Errorf("%s %s: %w", method, path, errSessionExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := decodeHTTPError(resp, path, requestID)
		c.logOutcome(method, path, requestID, resp.StatusCode, httpErr)
		return httpErr
	}

	c.logOutcome(method, path, requestID, resp.StatusCode, nil)
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *apiClient) logOutcome(method, path, requestID string, status int, err error) {
	if c.audit == nil {
		return
	}
	extra := map[string]any{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	}
	if status > 0 {
		extra["status"] = status
	}
	event := "api.request"
	if err != nil {
		event = "api.error"
		extra["error"] = err.Error()
	}
	c.audit.Log(event, extra)
}

func encodeJSON(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func decodeHTTPError(resp *http.Response, path, requestID string) *httpError {
	httpErr := &httpError{Status: resp.StatusCode, Path: path, RequestID: requestID}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(data) == 0 {
		return httpErr
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			httpErr.Message = body.Message
		} else if body.Error != "" {
			httpErr.Message = body.Error
		}
	}
	return httpErr
}

// fallbackClient tries an ordered list of bases and returns the first
// base's answer that is not a transport failure or a 5xx. 4xx answers
// are authoritative and stop the walk.
type fallbackClient struct {
	clients []*apiClient
}

func newFallbackClient(bases []string, store *sessionStore, audit *auditLogger) *fallbackClient {
	fc := &fallbackClient{}
	for _, base := range bases {
		fc.clients = append(fc.clients, newAPIClient(base, store, audit))
	}
	return fc
}

func (f *fallbackClient) get(ctx context.Context, path string, out any) error {
	if len(f.clients) == 0 {
		return errors.New("no analytics bases configured")
	}
	var lastErr error
	for _, client := range f.clients {
		err := client.get(ctx, path, out)
		if err == nil {
			return nil
		}
		lastErr = err
		var httpErr *httpError
		if errors.As(err, &httpErr) && httpErr.Status < 500 {
			return err
		}
	}
	return lastErr
}
