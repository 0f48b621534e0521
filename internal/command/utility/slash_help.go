package utility

import (
	"sort"
	"strings"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"
	"community-ops/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string { return "help" }
func (c *HelpCommand) Description() string {
	return "Show commands available to you based on your permission level"
}
func (c *HelpCommand) Category() string     { return "Utility" }
func (c *HelpCommand) AllowAllGuilds() bool { return true }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *HelpCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event

	if err := bot.RespondDeferredEphemeral(s, e); err != nil {
		return err
	}

	inMainGuild := true
	if main := sctx.Deps.Config.MainGuildID; main != "" && e.GuildID != "" {
		inMainGuild = e.GuildID == main
	}

	var membership permissions.Membership
	haveMembership := false
	if e.GuildID != "" && e.Member != nil {
		if m, err := bot.MembershipOf(s, e.GuildID, e.Member); err == nil {
			membership = m
			haveMembership = true
		}
	}

	var everyone, accessible []string
	for _, reg := range command.AllCommands() {
		meta, ok := cmd.Root(reg).(command.DiscordMeta)
		if !ok {
			continue
		}
		if !inMainGuild && !meta.AllowAllGuilds() {
			continue
		}

		level, gated := requiredLevelOf(reg)
		if !gated {
			everyone = append(everyone, reg.Name())
			accessible = append(accessible, reg.Name())
			continue
		}
		if haveMembership && sctx.Deps.Resolver.Satisfies(membership, level) {
			accessible = append(accessible, reg.Name())
		}
	}
	sort.Strings(everyone)
	sort.Strings(accessible)

	embed := bot.InfoEmbed("Command Help", "Below are commands available to you based on your current permission level.")
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Your Commands", Value: formatCommandList(accessible)},
		{Name: "Everyone Commands", Value: formatCommandList(everyone)},
	}

	return bot.EditResponseEmbed(s, e, embed)
}

// requiredLevelOf walks the middleware chain looking for a level gate.
func requiredLevelOf(c cmd.Command) (permissions.Level, bool) {
	for {
		if g, ok := c.(middleware.LevelGated); ok {
			return g.RequiredLevel(), true
		}
		u, ok := c.(cmd.Unwrappable)
		if !ok {
			return 0, false
		}
		c = u.Unwrap()
	}
}

func formatCommandList(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(names))
	for _, n := range names {
		lines = append(lines, "/"+n)
	}
	return strings.Join(lines, "\n")
}

func init() {
	command.RegisterCommand(
		&HelpCommand{},
		middleware.WithCommandLogger(),
	)
}
