package interaction

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/access"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/telemetry"
)

// DefaultCommand is the slash command this router owns.
const DefaultCommand = "library"

// User-visible denial copy. These strings are load-bearing: downstream
// tooling matches on them, so they must stay byte-identical.
const (
	msgDMDenied      = "This bot is not available in DMs."
	msgGuildDenied   = "This bot is not available in this server."
	msgChannelDenied = "This bot is not available in this channel."

	msgUnknownSubcommand = "Unknown subcommand."
	msgUnknownAction     = "Unknown action."
	msgInternalError     = "Something went wrong while handling that request."
)

// Config holds the router wiring. The allow-list is constructed once in
// the composition root and passed in here; the router never reloads it.
type Config struct {
	// Command is the owned slash-command name. Default "library".
	Command string

	// Contexts is the loaded allow-list; nil means allow everywhere.
	Contexts *access.ContextList

	// DefaultAllow governs guilds absent from the allow-list.
	DefaultAllow bool

	// ContactID, when set, is mentioned in guild-denial notices.
	ContactID string

	// Subcommands maps subcommand names to leaf handlers.
	Subcommands map[string]Handler

	// Actions maps parsed button actions to leaf handlers.
	Actions map[Action]Handler

	Logger *slog.Logger
}

// withDefaults returns a copy of the config with zero values replaced.
func (c Config) withDefaults() Config {
	if c.Command == "" {
		c.Command = DefaultCommand
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Router is the per-event dispatch layer: gate first, then exactly one
// leaf handler. Each event is terminal — no state survives between
// events, so a single Router serves concurrent events without locking.
type Router struct {
	config Config
	logger *slog.Logger
	tracer trace.Tracer
}

// NewRouter creates a Router from the given configuration.
func NewRouter(cfg Config) *Router {
	cfg = cfg.withDefaults()
	return &Router{
		config: cfg,
		logger: cfg.Logger,
		tracer: otel.Tracer("librarian/interaction"),
	}
}

// Dispatch processes one event end to end. It never panics and never
// returns an error: any fault raised by a leaf handler is logged and
// surfaced to the user only as an opaque generic notice. Letting a fault
// escape here would desynchronize the bot's platform connection.
func (r *Router) Dispatch(ctx context.Context, ev Event, rep Replier) {
	ctx, span := r.tracer.Start(ctx, "interaction.dispatch",
		trace.WithAttributes(
			attribute.String("interaction.kind", string(ev.Kind)),
			attribute.String("interaction.guild_id", ev.GuildID),
			attribute.String("interaction.subcommand", ev.Subcommand),
		),
	)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("router: handler panicked",
				"panic", rec,
				"kind", ev.Kind,
				"guild", ev.GuildID,
				"channel", ev.ChannelID,
			)
			r.notifyFailure(ctx, rep)
		}
	}()

	if err := r.dispatch(ctx, ev, rep); err != nil {
		r.logger.Error("router: dispatch failed",
			"error", err,
			"kind", ev.Kind,
			"guild", ev.GuildID,
			"channel", ev.ChannelID,
		)
		r.notifyFailure(ctx, rep)
	}
}

// dispatch runs the gate and hands the event to one leaf handler.
func (r *Router) dispatch(ctx context.Context, ev Event, rep Replier) error {
	// DMs are rejected before any allow-list lookup.
	if ev.GuildID == "" {
		telemetry.InteractionsTotal.WithLabelValues("denied_dm").Inc()
		r.logger.Info("router: denied DM interaction", "sender", ev.Sender.ID)
		return rep.Reply(ctx, Reply{Content: msgDMDenied, Ephemeral: true})
	}

	if !r.config.Contexts.GuildAllowed(ev.GuildID, r.config.DefaultAllow) {
		telemetry.InteractionsTotal.WithLabelValues("denied_guild").Inc()
		r.logger.Info("router: denied guild", "guild", ev.GuildID)
		return rep.Reply(ctx, Reply{Content: r.guildDenial(), Ephemeral: true})
	}

	if !r.config.Contexts.ChannelAllowed(ev.GuildID, ev.ChannelID, r.config.DefaultAllow) {
		telemetry.InteractionsTotal.WithLabelValues("denied_channel").Inc()
		r.logger.Info("router: denied channel",
			"guild", ev.GuildID,
			"channel", ev.ChannelID,
		)
		return rep.Reply(ctx, Reply{Content: msgChannelDenied, Ephemeral: true})
	}

	telemetry.InteractionsTotal.WithLabelValues("allowed").Inc()

	switch ev.Kind {
	case KindCommand:
		// Commands owned by other features are not this router's concern.
		if ev.Command != r.config.Command {
			return nil
		}
		return r.dispatchSubcommand(ctx, ev, rep)

	case KindComponent:
		return r.dispatchAction(ctx, ev, rep)

	default:
		// Out-of-scope event kind, not an error.
		r.logger.Debug("router: ignoring event kind", "kind", ev.Kind)
		return nil
	}
}

func (r *Router) dispatchSubcommand(ctx context.Context, ev Event, rep Replier) error {
	h, ok := r.config.Subcommands[ev.Subcommand]
	if !ok {
		r.logger.Warn("router: unknown subcommand", "subcommand", ev.Subcommand)
		return rep.Reply(ctx, Reply{Content: msgUnknownSubcommand, Ephemeral: true})
	}
	if err := h.Handle(ctx, ev, rep); err != nil {
		telemetry.HandlerErrorsTotal.WithLabelValues(ev.Subcommand).Inc()
		return fmt.Errorf("router: subcommand %q: %w", ev.Subcommand, err)
	}
	return nil
}

func (r *Router) dispatchAction(ctx context.Context, ev Event, rep Replier) error {
	id, err := ParseCustomID(ev.CustomID)
	if err != nil {
		r.logger.Warn("router: unparseable custom id", "custom_id", ev.CustomID)
		return rep.Reply(ctx, Reply{Content: msgUnknownAction, Ephemeral: true})
	}

	h, ok := r.config.Actions[id.Action]
	if !ok {
		r.logger.Warn("router: no handler for action", "action", id.Action)
		return rep.Reply(ctx, Reply{Content: msgUnknownAction, Ephemeral: true})
	}

	// Hand the parsed payload to the handler through the option map so
	// leaf handlers stay ignorant of the wire grammar.
	if ev.Options == nil {
		ev.Options = make(map[string]string, 1)
	}
	ev.Options[keyFor(id.Action)] = id.Value()

	if err := h.Handle(ctx, ev, rep); err != nil {
		telemetry.HandlerErrorsTotal.WithLabelValues(string(id.Action)).Inc()
		return fmt.Errorf("router: action %s: %w", id.Action, err)
	}
	return nil
}

// guildDenial builds the server-denial notice, mentioning the configured
// contact when one is set.
func (r *Router) guildDenial() string {
	if r.config.ContactID == "" {
		return msgGuildDenied
	}
	return fmt.Sprintf("%s Please contact <@%s>.", msgGuildDenied, r.config.ContactID)
}

// notifyFailure sends the opaque generic error notice. Best effort: the
// event may no longer accept a response, in which case the failure is
// only logged.
func (r *Router) notifyFailure(ctx context.Context, rep Replier) {
	if err := rep.Reply(ctx, Reply{Content: msgInternalError, Ephemeral: true}); err != nil {
		r.logger.Debug("router: could not deliver error notice", "error", err)
	}
}
