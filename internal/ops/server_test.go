package ops

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/access"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/library"
)

func testServer(t *testing.T, backend http.HandlerFunc, contexts *access.ContextList) *Server {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	client := library.NewClient(srv.URL, "")
	return NewServer(":0", contexts, client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleHealth_OK(t *testing.T) {
	t.Parallel()
	s := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(library.Health{Status: "ok", Books: 3})
	}, nil)

	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Books != 3 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleHealth_Degraded(t *testing.T) {
	t.Parallel()
	s := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, access.Filename)
	if err := os.WriteFile(path, []byte(`{"G1": [], "G2": ["C1"]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	contexts := access.Load(slog.New(slog.NewTextHandler(io.Discard, nil)), path)

	s := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(library.Health{Status: "ok"})
	}, contexts)

	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AllowListAbsent || resp.Guilds != 2 || resp.AllowListSource != path {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleStatus_AbsentAllowList(t *testing.T) {
	t.Parallel()
	s := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(library.Health{Status: "ok"})
	}, nil)

	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.AllowListAbsent || resp.Guilds != 0 {
		t.Errorf("response = %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s := testServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(library.Health{Status: "ok"})
	}, nil)

	rec := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
