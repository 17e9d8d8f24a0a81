package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/library"
)

// PresenceSetter updates the bot's visible activity text. Defined here
// to avoid a dependency on the discord package.
type PresenceSetter interface {
	SetPresence(text string) error
}

// BackendProbeJob polls the library backend and mirrors its state into
// the bot presence: book count when reachable, an offline marker when not.
type BackendProbeJob struct {
	Library      *library.Client
	Presence     PresenceSetter
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "* * * * *"

	mu       sync.Mutex
	lastText string
}

// Compile-time interface check.
var _ Job = (*BackendProbeJob)(nil)

// Name implements Job.
func (j *BackendProbeJob) Name() string {
	return "backend_probe"
}

// Schedule implements Job.
func (j *BackendProbeJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "* * * * *"
}

// Run probes the backend and updates presence on state changes.
func (j *BackendProbeJob) Run(ctx context.Context) error {
	text := "library offline"
	health, err := j.Library.Health(ctx)
	if err == nil {
		text = fmt.Sprintf("📚 %d books", health.Books)
	}

	j.mu.Lock()
	changed := text != j.lastText
	j.lastText = text
	j.mu.Unlock()

	if !changed {
		return nil
	}

	j.Logger.Info("cron: backend state changed", "presence", text)
	if j.Presence == nil {
		return nil
	}
	if perr := j.Presence.SetPresence(text); perr != nil {
		return fmt.Errorf("cron: update presence: %w", perr)
	}
	return nil
}
