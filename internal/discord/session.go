// Package discord owns the platform session: gateway connection,
// slash-command registration, and the translation between raw
// interactions and the router's platform-agnostic events.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/interaction"
)

// Session wraps the discordgo session for the librarian bot.
type Session struct {
	dg     *discordgo.Session
	appID  string
	router *interaction.Router
	logger *slog.Logger
}

// New creates a Session. The router must be fully wired; it receives
// every interaction the platform delivers.
func New(token, appID string, router *interaction.Router, logger *slog.Logger) (*Session, error) {
	if token == "" {
		return nil, errors.New("discord: token is required")
	}
	if router == nil {
		return nil, errors.New("discord: router is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}

	return &Session{
		dg:     dg,
		appID:  appID,
		router: router,
		logger: logger,
	}, nil
}

// Open connects to the gateway and registers the slash-command schema.
func (s *Session) Open(ctx context.Context) error {
	s.dg.AddHandler(s.onInteraction)
	s.dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	if err := s.dg.Open(); err != nil {
		return fmt.Errorf("discord: open gateway (check token): %w", err)
	}

	if err := s.registerCommands(); err != nil {
		_ = s.dg.Close()
		return err
	}

	s.logger.Info("discord session opened",
		"app_id", s.appID,
		"user", s.botUsername(),
	)
	return nil
}

// Close disconnects from the gateway.
func (s *Session) Close() error {
	s.logger.Info("discord session closing")
	return s.dg.Close()
}

// SetPresence updates the bot's activity text.
func (s *Session) SetPresence(text string) error {
	return s.dg.UpdateGameStatus(0, text)
}

func (s *Session) botUsername() string {
	if s.dg.State != nil && s.dg.State.User != nil {
		return s.dg.State.User.Username
	}
	return ""
}

// onInteraction is the platform event entry point. The router's Dispatch
// never panics and never returns an error, so nothing can escape into
// discordgo's event loop from here.
func (s *Session) onInteraction(ds *discordgo.Session, i *discordgo.InteractionCreate) {
	ev := eventFromInteraction(i)
	rep := &replier{session: ds, interaction: i.Interaction}
	s.router.Dispatch(context.Background(), ev, rep)
}
