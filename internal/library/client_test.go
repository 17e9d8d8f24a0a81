package library

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Ask(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ask" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("auth header = %q", got)
		}

		var req AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Question != "who wrote it?" || req.BookID != "42" {
			t.Errorf("request = %+v", req)
		}

		_ = json.NewEncoder(w).Encode(AskResponse{
			Answer:  "The author.",
			Sources: []string{"p. 3"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	resp, err := c.Ask(context.Background(), AskRequest{Question: "who wrote it?", BookID: "42"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if resp.Answer != "The author." || len(resp.Sources) != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode(Health{Status: "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestClient_Books(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/books" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]Book{
			{ID: "1", Title: "Book One"},
			{ID: "2", Filename: "two.pdf"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	books, err := c.Books(context.Background())
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if len(books) != 2 || books[0].Title != "Book One" {
		t.Errorf("books = %+v", books)
	}
}

func TestClient_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "unknown book"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Ask(context.Background(), AskRequest{Question: "?", BookID: "nope"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "unknown book" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "")
	if _, err := c.Health(ctx); err == nil {
		t.Fatal("cancelled context should fail the request")
	}
}
