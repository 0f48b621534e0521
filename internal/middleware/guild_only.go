package middleware

import (
	"context"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/pkg/cmd"
)

// WithGuildOnly drops invocations that arrive outside a guild (DMs).
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			switch v := inv.Data.(type) {
			case *command.SlashInteractionContext:
				if v.Event.GuildID == "" {
					return bot.RespondEmbedEphemeral(v.Session, v.Event,
						bot.ErrorEmbed("Unavailable", "This command must be used in a server."))
				}
			case *command.ComponentInteractionContext:
				if v.Event.GuildID == "" {
					return bot.RespondEmbedEphemeral(v.Session, v.Event,
						bot.ErrorEmbed("Unavailable", "This action must be performed in a server."))
				}
			}
			return c.Run(ctx, inv)
		})
	}
}
