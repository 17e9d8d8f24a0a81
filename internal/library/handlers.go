package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/interaction"
)

// maxReplyLength is the platform's message content limit.
const maxReplyLength = 2000

// defaultBookQuestion is asked when a user presses an ASK button rather
// than typing a question of their own.
const defaultBookQuestion = "Give me a brief summary of this book."

// Handlers holds the leaf handlers, one per subcommand and button action.
type Handlers struct {
	client *Client
	logger *slog.Logger
}

// NewHandlers creates the leaf handler set.
func NewHandlers(client *Client, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{client: client, logger: logger}
}

// Subcommands returns the router wiring for /library subcommands.
func (h *Handlers) Subcommands() map[string]interaction.Handler {
	return map[string]interaction.Handler{
		"ask":    interaction.HandlerFunc(h.Ask),
		"upload": interaction.HandlerFunc(h.Upload),
		"list":   interaction.HandlerFunc(h.List),
		"status": interaction.HandlerFunc(h.Status),
	}
}

// Actions returns the router wiring for button activations.
func (h *Handlers) Actions() map[interaction.Action]interaction.Handler {
	return map[interaction.Action]interaction.Handler{
		interaction.ActionAsk:    interaction.HandlerFunc(h.AskBook),
		interaction.ActionUpload: interaction.HandlerFunc(h.Reingest),
	}
}

// Ask answers a typed question, optionally scoped to one book.
func (h *Handlers) Ask(ctx context.Context, ev interaction.Event, rep interaction.Replier) error {
	question := strings.TrimSpace(ev.Option("question"))
	if question == "" {
		return rep.Reply(ctx, interaction.Reply{
			Content:   "Please provide a question.",
			Ephemeral: true,
		})
	}

	resp, err := h.client.Ask(ctx, AskRequest{
		Question: question,
		BookID:   ev.Option("book"),
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	return rep.Reply(ctx, interaction.Reply{Content: formatAnswer(resp)})
}

// Upload ingests the attached document and offers follow-up buttons.
func (h *Handlers) Upload(ctx context.Context, ev interaction.Event, rep interaction.Replier) error {
	att := ev.Attachment
	if att == nil {
		return rep.Reply(ctx, interaction.Reply{
			Content:   "Attach a document to upload.",
			Ephemeral: true,
		})
	}

	book, err := h.client.Ingest(ctx, IngestRequest{
		Filename: att.Filename,
		URL:      att.URL,
	})
	if err != nil {
		return fmt.Errorf("upload %q: %w", att.Filename, err)
	}

	h.logger.Info("library: document ingested",
		"filename", att.Filename,
		"book", book.ID,
	)
	return rep.Reply(ctx, interaction.Reply{
		Content: fmt.Sprintf("Added **%s** to the library.", bookLabel(*book)),
		Buttons: []interaction.Button{
			{Label: "Ask about it", CustomID: interaction.AskID(book.ID, 0, 0)},
			{Label: "Re-ingest", CustomID: interaction.UploadID(att.Filename, 0, 1)},
		},
	})
}

// List shows the collection with an ASK button per book.
func (h *Handlers) List(ctx context.Context, ev interaction.Event, rep interaction.Replier) error {
	books, err := h.client.Books(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if len(books) == 0 {
		return rep.Reply(ctx, interaction.Reply{
			Content:   "The library is empty. Use `/library upload` to add a document.",
			Ephemeral: true,
		})
	}

	var sb strings.Builder
	sb.WriteString("Books in the library:\n")
	for _, b := range books {
		if b.Pages > 0 {
			fmt.Fprintf(&sb, "• %s (%d pages)\n", bookLabel(b), b.Pages)
		} else {
			fmt.Fprintf(&sb, "• %s\n", bookLabel(b))
		}
	}

	// One button row; the platform caps rows at five buttons.
	buttons := make([]interaction.Button, 0, 5)
	for i, b := range books {
		if i == 5 {
			break
		}
		buttons = append(buttons, interaction.Button{
			Label:    clamp("Ask: "+bookLabel(b), 80),
			CustomID: interaction.AskID(b.ID, 0, i),
		})
	}

	return rep.Reply(ctx, interaction.Reply{
		Content: clamp(sb.String(), maxReplyLength),
		Buttons: buttons,
	})
}

// Status reports backend reachability. An unreachable backend is a
// formatted outcome here, not a dispatch failure.
func (h *Handlers) Status(ctx context.Context, ev interaction.Event, rep interaction.Replier) error {
	health, err := h.client.Health(ctx)
	if err != nil {
		h.logger.Warn("library: backend unreachable", "error", err)
		return rep.Reply(ctx, interaction.Reply{
			Content:   "The library backend is unreachable.",
			Ephemeral: true,
		})
	}

	return rep.Reply(ctx, interaction.Reply{
		Content:   fmt.Sprintf("Library online — %d books (status: %s).", health.Books, health.Status),
		Ephemeral: true,
	})
}

// AskBook handles an ASK button press with a canned question.
func (h *Handlers) AskBook(ctx context.Context, ev interaction.Event, rep interaction.Replier) error {
	bookID := ev.Option("bookId")
	resp, err := h.client.Ask(ctx, AskRequest{
		Question: defaultBookQuestion,
		BookID:   bookID,
	})
	if err != nil {
		return fmt.Errorf("ask book %q: %w", bookID, err)
	}

	return rep.Reply(ctx, interaction.Reply{Content: formatAnswer(resp)})
}

// Reingest handles an UPLOAD button press: the backend re-processes a
// document it already has by filename.
func (h *Handlers) Reingest(ctx context.Context, ev interaction.Event, rep interaction.Replier) error {
	filename := ev.Option("filename")
	book, err := h.client.Ingest(ctx, IngestRequest{Filename: filename})
	if err != nil {
		return fmt.Errorf("reingest %q: %w", filename, err)
	}

	return rep.Reply(ctx, interaction.Reply{
		Content: fmt.Sprintf("Re-ingested **%s**.", bookLabel(*book)),
	})
}

// formatAnswer renders the backend answer with its source footnotes.
func formatAnswer(resp *AskResponse) string {
	out := resp.Answer
	if len(resp.Sources) > 0 {
		out += "\n\nSources: " + strings.Join(resp.Sources, ", ")
	}
	return clamp(out, maxReplyLength)
}

// bookLabel prefers the title, falling back to the filename.
func bookLabel(b Book) string {
	if b.Title != "" {
		return b.Title
	}
	return b.Filename
}

// clamp truncates s to max runes with an ellipsis.
func clamp(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
