package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/interaction"
)

// eventFromInteraction converts a raw interaction into the router's
// platform-agnostic event. A DM interaction has no guild ID; the router
// relies on that to reject DMs before any allow-list lookup.
func eventFromInteraction(i *discordgo.InteractionCreate) interaction.Event {
	ev := interaction.Event{
		Kind:      interaction.KindOther,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Sender:    sender(i),
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		ev.Kind = interaction.KindCommand
		data := i.ApplicationCommandData()
		ev.Command = data.Name
		fillCommand(&ev, data)

	case discordgo.InteractionMessageComponent:
		ev.Kind = interaction.KindComponent
		ev.CustomID = i.MessageComponentData().CustomID
	}

	return ev
}

// sender extracts the user, which lives on Member in guilds and directly
// on the interaction in DMs.
func sender(i *discordgo.InteractionCreate) interaction.Sender {
	var u *discordgo.User
	switch {
	case i.Member != nil && i.Member.User != nil:
		u = i.Member.User
	case i.User != nil:
		u = i.User
	default:
		return interaction.Sender{}
	}
	return interaction.Sender{ID: u.ID, Username: u.Username}
}

// fillCommand flattens the declared subcommand and its options.
func fillCommand(ev *interaction.Event, data discordgo.ApplicationCommandInteractionData) {
	if len(data.Options) == 0 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return
	}

	sub := data.Options[0]
	ev.Subcommand = sub.Name
	ev.Options = make(map[string]string, len(sub.Options))

	for _, opt := range sub.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			ev.Options[opt.Name] = opt.StringValue()

		case discordgo.ApplicationCommandOptionAttachment:
			id, ok := opt.Value.(string)
			if !ok || data.Resolved == nil {
				continue
			}
			att, ok := data.Resolved.Attachments[id]
			if !ok || att == nil {
				continue
			}
			ev.Attachment = &interaction.Attachment{
				Filename: att.Filename,
				URL:      att.URL,
				Size:     att.Size,
			}
		}
	}
}
