package cron

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/library"
)

type fakePresence struct {
	texts []string
}

func (f *fakePresence) SetPresence(text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func probeJob(t *testing.T, backend http.HandlerFunc) (*BackendProbeJob, *fakePresence) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	presence := &fakePresence{}
	return &BackendProbeJob{
		Library:  library.NewClient(srv.URL, ""),
		Presence: presence,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, presence
}

func TestBackendProbe_SetsPresenceOnChange(t *testing.T) {
	t.Parallel()
	job, presence := probeJob(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(library.Health{Status: "ok", Books: 4})
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(presence.texts) != 1 || presence.texts[0] != "📚 4 books" {
		t.Errorf("presence updates = %v", presence.texts)
	}

	// Same state again — no second update.
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(presence.texts) != 1 {
		t.Errorf("unchanged state should not update presence again, got %v", presence.texts)
	}
}

func TestBackendProbe_MarksOffline(t *testing.T) {
	t.Parallel()
	job, presence := probeJob(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(presence.texts) != 1 || presence.texts[0] != "library offline" {
		t.Errorf("presence updates = %v", presence.texts)
	}
}

func TestScheduler_RejectsDuplicateJobNames(t *testing.T) {
	t.Parallel()
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	j := &BackendProbeJob{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := s.RegisterJob(j); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := s.RegisterJob(j); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestScheduler_RejectsInvalidSchedule(t *testing.T) {
	t.Parallel()
	s := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	j := &BackendProbeJob{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		ScheduleExpr: "not a schedule",
	}
	if err := s.RegisterJob(j); err != nil {
		t.Fatalf("registration: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("invalid schedule should fail Start")
	}
	_ = s.Stop(context.Background())
}
