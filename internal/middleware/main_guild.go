package middleware

import (
	"context"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/pkg/cmd"
)

// WithMainGuildOnly restricts a command to the configured main guild.
// Commands whose adapter reports AllowAllGuilds are passed through, as is
// everything when no main guild is configured.
func WithMainGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok {
				return c.Run(ctx, inv)
			}
			if meta, ok := cmd.Root(c).(command.DiscordMeta); ok && meta.AllowAllGuilds() {
				return c.Run(ctx, inv)
			}
			mainGuild := ""
			if v.Deps != nil && v.Deps.Config != nil {
				mainGuild = v.Deps.Config.MainGuildID
			}
			if mainGuild != "" && v.Event.GuildID != mainGuild {
				return bot.RespondEmbedEphemeral(v.Session, v.Event,
					bot.ErrorEmbed("Unavailable", "This command can only be used in the main guild."))
			}
			return c.Run(ctx, inv)
		})
	}
}
