package moderation

import (
	"context"
	"errors"
	"fmt"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/iacase"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

type IACaseCommand struct{}

func (c *IACaseCommand) Name() string        { return "ia" }
func (c *IACaseCommand) Description() string { return "Open or close an Internal Affairs case" }
func (c *IACaseCommand) Category() string    { return "Moderation" }
func (c *IACaseCommand) AllowAllGuilds() bool { return false }

func (c *IACaseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "open",
				Description: "Open an IA case: temporarily remove roles and create a private channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "User to place under IA case",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "Reason for IA case",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "close",
				Description: "Close an IA case: restore roles and remove private channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "User to release",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "reason",
						Description: "Closure notes (optional)",
						Required:    false,
					},
				},
			},
		},
	}
}

func (c *IACaseCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	data := sctx.Event.ApplicationCommandData()
	if len(data.Options) == 0 {
		return nil
	}

	sub := data.Options[0]
	switch sub.Name {
	case "open":
		return c.open(sctx, sub.Options)
	case "close":
		return c.close(sctx, sub.Options)
	}
	return nil
}

func (c *IACaseCommand) open(sctx *command.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	s := sctx.Session
	e := sctx.Event

	target := command.OptionUser(s, opts, "user")
	reason := command.OptionString(opts, "reason")
	if target == nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid Target", "A target user is required."))
	}

	if err := bot.RespondDeferredEphemeral(s, e); err != nil {
		return err
	}

	opener := bot.ResolveUser(s, e)
	summary, err := sctx.Deps.Cases.Open(context.Background(), bot.GuildIDs(s), e.GuildID, target.ID, opener.ID, reason)
	if err != nil {
		if errors.Is(err, iacase.ErrCaseExists) {
			return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Case Exists", "There is already an active IA case for this user."))
		}
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Failed", err.Error()))
	}

	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed(
		"IA Case Opened",
		fmt.Sprintf("Affected guilds: %d. Errors: %d.", summary.AffectedGuilds, summary.Errors),
	))
}

func (c *IACaseCommand) close(sctx *command.SlashInteractionContext, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	s := sctx.Session
	e := sctx.Event

	target := command.OptionUser(s, opts, "user")
	notes := command.OptionString(opts, "reason")
	if notes == "" {
		notes = "No additional notes"
	}
	if target == nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid Target", "A target user is required."))
	}

	if err := bot.RespondDeferredEphemeral(s, e); err != nil {
		return err
	}

	closer := bot.ResolveUser(s, e)
	summary, err := sctx.Deps.Cases.Close(context.Background(), target.ID, closer.ID, notes)
	if err != nil {
		if errors.Is(err, iacase.ErrNoActiveCase) {
			return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("No Active Case", "There is no active IA case for this user."))
		}
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Failed", err.Error()))
	}

	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed(
		"IA Case Closed",
		fmt.Sprintf("Roles restored in %d guild(s). Errors: %d.", summary.AffectedGuilds, summary.Errors),
	))
}

func init() {
	command.RegisterCommand(
		&IACaseCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.SeniorStaff),
	)
}
