package moderation

import (
	"context"
	"fmt"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	mod "community-ops/internal/moderation"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

type GlobalKickCommand struct{}

func (c *GlobalKickCommand) Name() string { return "gkick" }
func (c *GlobalKickCommand) Description() string {
	return "Globally kicks a user from all guilds the bot is in"
}
func (c *GlobalKickCommand) Category() string     { return "Moderation" }
func (c *GlobalKickCommand) AllowAllGuilds() bool { return false }

func (c *GlobalKickCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "user_id",
				Description: "The user ID to kick",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Reason for the kick",
				Required:    false,
			},
		},
	}
}

func (c *GlobalKickCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	opts := e.ApplicationCommandData().Options

	userID := command.OptionString(opts, "user_id")
	reason := command.OptionString(opts, "reason")
	if reason == "" {
		reason = "No reason provided"
	}

	invoker := bot.ResolveUser(s, e)
	if err := mod.ValidateTarget(userID, invoker.ID, s.State.User.ID); err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid Target", err.Error()))
	}

	if err := bot.RespondDeferred(s, e); err != nil {
		return err
	}

	outcomes := sctx.Deps.Coordinator.Apply(context.Background(), bot.GuildIDs(s), userID, mod.Action{
		Kind:   mod.ActionKick,
		Reason: fmt.Sprintf("Global Kick by %s: %s", invoker.Username, reason),
	})
	okCount, failed := mod.Tally(outcomes)

	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed(
		"Global Kick Result",
		fmt.Sprintf("Operation complete. Success: %d. Failed: %d.", okCount, failed),
	))
}

func init() {
	command.RegisterCommand(
		&GlobalKickCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.SeniorStaff),
	)
}
