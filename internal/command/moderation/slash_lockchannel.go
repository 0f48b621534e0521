package moderation

import (
	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

type LockChannelCommand struct{}

func (c *LockChannelCommand) Name() string { return "lockchannel" }
func (c *LockChannelCommand) Description() string {
	return "Lock or unlock the current channel for @everyone"
}
func (c *LockChannelCommand) Category() string     { return "Moderation" }
func (c *LockChannelCommand) AllowAllGuilds() bool { return false }

func (c *LockChannelCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "action",
				Description: "Choose whether to lock or unlock this channel",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Lock", Value: "lock"},
					{Name: "Unlock", Value: "unlock"},
				},
			},
		},
	}
}

func (c *LockChannelCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event

	ch, err := s.Channel(e.ChannelID)
	if err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Unsupported", "The current channel could not be resolved."))
	}
	if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Unsupported", "Only standard text or announcement channels can be locked with this command."))
	}

	if err := bot.RespondDeferredEphemeral(s, e); err != nil {
		return err
	}

	// The everyone role shares its ID with the guild.
	everyoneID := e.GuildID
	action := command.OptionString(e.ApplicationCommandData().Options, "action")

	if action == "lock" {
		err = s.ChannelPermissionSet(e.ChannelID, everyoneID, discordgo.PermissionOverwriteTypeRole, 0, discordgo.PermissionSendMessages)
		if err != nil {
			return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Action Failed", err.Error()))
		}
		return bot.EditResponseEmbed(s, e, bot.SuccessEmbed("Channel Locked", "This channel has been locked for @everyone."))
	}

	// Unlocking clears the explicit deny.
	if err := s.ChannelPermissionDelete(e.ChannelID, everyoneID); err != nil {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Action Failed", err.Error()))
	}
	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed("Channel Unlocked", "This channel has been unlocked for @everyone."))
}

func init() {
	command.RegisterCommand(
		&LockChannelCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.StaffInTraining),
	)
}
