// Package interaction routes incoming Discord interactions: it gates
// every event through the guild/channel allow-list, then dispatches the
// allowed ones to exactly one leaf handler by subcommand name or parsed
// component identifier.
package interaction

import "context"

// Kind classifies an incoming event.
type Kind string

const (
	// KindCommand is a typed slash-command invocation.
	KindCommand Kind = "command"
	// KindComponent is a short-lived UI-control activation (button press).
	KindComponent Kind = "component"
	// KindOther is any event type the router does not handle.
	KindOther Kind = "other"
)

// Sender identifies the user behind an event.
type Sender struct {
	ID       string
	Username string
}

// Attachment is a document attached to a command invocation.
type Attachment struct {
	Filename string
	URL      string
	Size     int
}

// Event is the platform-agnostic contract between the Discord session
// and the router. The session converts raw interactions into Events; the
// router and the leaf handlers never see the platform types.
type Event struct {
	Kind      Kind
	GuildID   string
	ChannelID string
	Sender    Sender

	// Command fields (KindCommand only).
	Command    string
	Subcommand string
	Options    map[string]string
	Attachment *Attachment

	// Component fields (KindComponent only).
	CustomID string
}

// Option returns the named command option, or "" when unset.
func (e Event) Option(name string) string {
	return e.Options[name]
}

// Button is an interactive control attached to a reply.
type Button struct {
	Label    string
	CustomID string
}

// Reply is an outbound response to an event.
type Reply struct {
	Content   string
	Ephemeral bool
	Buttons   []Button
}

// Replier delivers a reply for the event currently being handled.
// Implementations must tolerate being called at most once per event and
// should fall back to a follow-up message when the event was already
// acknowledged.
type Replier interface {
	Reply(ctx context.Context, r Reply) error
}

// Handler is a leaf handler: one subcommand or button action. It receives
// only events that already passed the gate.
type Handler interface {
	Handle(ctx context.Context, ev Event, rep Replier) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev Event, rep Replier) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, ev Event, rep Replier) error {
	return f(ctx, ev, rep)
}
