package moderation

import (
	"fmt"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

type PurgeCommand struct{}

func (c *PurgeCommand) Name() string { return "purge" }
func (c *PurgeCommand) Description() string {
	return "Bulk delete a number of recent messages in this channel"
}
func (c *PurgeCommand) Category() string     { return "Moderation" }
func (c *PurgeCommand) AllowAllGuilds() bool { return false }

func (c *PurgeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minAmount := float64(1)
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Number of messages to delete (1-100)",
				Required:    true,
				MinValue:    &minAmount,
				MaxValue:    100,
			},
		},
	}
}

func (c *PurgeCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event

	amount := int(command.OptionInt(e.ApplicationCommandData().Options, "amount"))
	if amount < 1 || amount > 100 {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid Amount", "Amount must be between 1 and 100."))
	}

	if err := bot.RespondDeferredEphemeral(s, e); err != nil {
		return err
	}

	msgs, err := s.ChannelMessages(e.ChannelID, amount, "", "", "")
	if err != nil {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Failed to Purge", err.Error()))
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}

	if err := s.ChannelMessagesBulkDelete(e.ChannelID, ids); err != nil {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Failed to Purge", err.Error()))
	}

	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed(
		"Purge Complete",
		fmt.Sprintf("%d message(s) were deleted.", len(ids)),
	))
}

func init() {
	command.RegisterCommand(
		&PurgeCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.StaffInTraining),
	)
}
