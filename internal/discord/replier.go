package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/interaction"
)

// replier delivers router replies through the interaction-response API.
// The first reply acknowledges the interaction; any further reply for
// the same event falls back to a follow-up message.
type replier struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	acked       bool
}

var _ interaction.Replier = (*replier)(nil)

// Reply implements interaction.Replier.
func (r *replier) Reply(_ context.Context, reply interaction.Reply) error {
	var flags discordgo.MessageFlags
	if reply.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	components := buttonRows(reply.Buttons)

	if !r.acked {
		err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    reply.Content,
				Flags:      flags,
				Components: components,
			},
		})
		if err != nil {
			return fmt.Errorf("discord: interaction respond: %w", err)
		}
		r.acked = true
		return nil
	}

	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content:    reply.Content,
		Flags:      flags,
		Components: components,
	})
	if err != nil {
		return fmt.Errorf("discord: followup message: %w", err)
	}
	return nil
}

// buttonRows packs buttons into action rows of at most five.
func buttonRows(buttons []interaction.Button) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}

	var rows []discordgo.MessageComponent
	for start := 0; start < len(buttons); start += 5 {
		end := min(start+5, len(buttons))

		row := discordgo.ActionsRow{}
		for _, b := range buttons[start:end] {
			row.Components = append(row.Components, discordgo.Button{
				Style:    discordgo.PrimaryButton,
				Label:    b.Label,
				CustomID: b.CustomID,
			})
		}
		rows = append(rows, row)
	}
	return rows
}
