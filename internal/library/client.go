// Package library is the client for the document-retrieval backend and
// the leaf handlers that bridge it to Discord interactions. Each handler
// is one outbound HTTP call plus reply formatting; the access gate has
// already run by the time a handler sees an event.
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/telemetry"
)

// maxResponseBytes bounds reads from API responses.
const maxResponseBytes = 10 << 20 // 10 MiB

// Client is a thin HTTP wrapper around the library backend API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	tracer  trace.Tracer
}

// NewClient creates a library API client. token may be empty when the
// backend does not require bearer auth.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		tracer: otel.Tracer("librarian/library"),
	}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("library: backend returned status %d", e.Status)
	}
	return fmt.Sprintf("library: backend returned status %d: %s", e.Status, e.Message)
}

// do sends one request to the backend and decodes the JSON response.
// No retries: a failed call surfaces immediately and the router turns
// it into a generic user notice.
func do[T any](ctx context.Context, c *Client, method, path string, payload any) (*T, error) {
	ctx, span := c.tracer.Start(ctx, "library.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("library.path", path),
		),
	)
	defer span.End()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("library: marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("library: create %s request: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.LibraryRequestDuration.WithLabelValues(path, "error").
			Observe(time.Since(started).Seconds())
		return nil, fmt.Errorf("library: %s request failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	telemetry.LibraryRequestDuration.WithLabelValues(path, http.StatusText(resp.StatusCode)).
		Observe(time.Since(started).Seconds())

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("library: read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &e) == nil {
			apiErr.Message = e.Error
		}
		return nil, apiErr
	}

	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("library: decode %s response: %w", path, err)
	}
	return &result, nil
}

// Book is one ingested document.
type Book struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Pages    int    `json:"pages,omitempty"`
}

// AskRequest queries the backend about the collection or one book.
type AskRequest struct {
	Question string `json:"question"`
	BookID   string `json:"bookId,omitempty"`
}

// AskResponse is the backend's answer.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}

// IngestRequest registers a document with the backend. URL points at the
// uploaded attachment; Filename alone re-ingests a known document.
type IngestRequest struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

// Health is the backend health report.
type Health struct {
	Status string `json:"status"`
	Books  int    `json:"books"`
}

// Ask queries the backend.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	return do[AskResponse](ctx, c, http.MethodPost, "/api/ask", req)
}

// Ingest registers a document.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (*Book, error) {
	return do[Book](ctx, c, http.MethodPost, "/api/books", req)
}

// Books lists the collection.
func (c *Client) Books(ctx context.Context) ([]Book, error) {
	books, err := do[[]Book](ctx, c, http.MethodGet, "/api/books", nil)
	if err != nil {
		return nil, err
	}
	return *books, nil
}

// Health reports backend reachability and collection size.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	return do[Health](ctx, c, http.MethodGet, "/api/health", nil)
}
