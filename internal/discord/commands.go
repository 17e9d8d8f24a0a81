package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/interaction"
)

// commandSchema declares the one slash command this bot owns.
func commandSchema() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        interaction.DefaultCommand,
			Description: "Ask questions about documents in the library",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "ask",
					Description: "Ask a question about the library or one book",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "question",
							Description: "What you want to know",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "book",
							Description: "Book ID to scope the question to",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "upload",
					Description: "Add a document to the library",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionAttachment,
							Name:        "document",
							Description: "The document to ingest",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List the books in the library",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Check whether the library backend is reachable",
				},
			},
		},
	}
}

// registerCommands overwrites the bot's global command set with the
// current schema. Global registration may take a while to propagate on
// the platform side; that is expected.
func (s *Session) registerCommands() error {
	cmds, err := s.dg.ApplicationCommandBulkOverwrite(s.appID, "", commandSchema())
	if err != nil {
		return fmt.Errorf("discord: register commands: %w", err)
	}
	s.logger.Info("discord commands registered", "count", len(cmds))
	return nil
}
