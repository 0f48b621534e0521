package utility

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

type GlobalNicknameCommand struct{}

func (c *GlobalNicknameCommand) Name() string { return "mnick" }
func (c *GlobalNicknameCommand) Description() string {
	return "Updates a nickname across all Magonila Project guilds"
}
func (c *GlobalNicknameCommand) Category() string     { return "Utility" }
func (c *GlobalNicknameCommand) AllowAllGuilds() bool { return false }

func (c *GlobalNicknameCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "nickname",
				Description: "The nickname to set (max 32 characters)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Target user to rename (Staff In Training+ only)",
				Required:    false,
			},
		},
	}
}

func (c *GlobalNicknameCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	opts := e.ApplicationCommandData().Options

	nickname := command.OptionString(opts, "nickname")
	if len(nickname) == 0 || len(nickname) > 32 {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid Nickname", "Nickname must be between 1 and 32 characters."))
	}

	invoker := bot.ResolveUser(s, e)
	target := command.OptionUser(s, opts, "user")
	isSelf := target == nil || target.ID == invoker.ID

	// Renaming yourself takes Member; renaming someone else takes
	// Staff In Training or higher.
	required := permissions.Member
	denial := "You must be Member or higher to change your nickname."
	if !isSelf {
		required = permissions.StaffInTraining
		denial = "You must be Staff In Training or higher to change another user's nickname."
	}

	membership, err := bot.MembershipOf(s, e.GuildID, e.Member)
	if err != nil || !sctx.Deps.Resolver.Satisfies(membership, required) {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Insufficient Permission", denial))
	}

	targetID := invoker.ID
	if !isSelf {
		targetID = target.ID
	}
	if err := mod.ValidateTarget(targetID, "", s.State.User.ID); err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid Target", "You cannot modify the bot's nickname."))
	}

	if err := bot.RespondDeferred(s, e); err != nil {
		return err
	}

	outcomes := sctx.Deps.Coordinator.Apply(context.Background(), bot.GuildIDs(s), targetID, mod.Action{
		Kind:     mod.ActionNickname,
		Nickname: nickname,
		Reason:   fmt.Sprintf("Nickname set by %s", invoker.Username),
	})
	okCount, failed := mod.Tally(outcomes)

	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed(
		"Nickname Update Result",
		fmt.Sprintf("Operation complete. Success: %d. Failed: %d.", okCount, failed),
	))
}

func init() {
	command.RegisterCommand(
		&GlobalNicknameCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
	)
}
