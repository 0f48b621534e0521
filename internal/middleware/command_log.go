package middleware

import (
	"context"
	"log"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/pkg/cmd"
)

// WithCommandLogger records each execution in the guild's command history.
// List it first so it wraps closest to the command: invocations rejected by
// an outer gate never reach it and are not recorded as executions.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			switch v := inv.Data.(type) {
			case *command.SlashInteractionContext:
				user := bot.ResolveUser(v.Session, v.Event)
				if e := bot.LogCommand(v.Session, v.Deps.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, c.Name()); e != nil {
					log.Printf("[WARN] Failed to log command /%s: %v", c.Name(), e)
				}
			case *command.ComponentInteractionContext:
				user := bot.ResolveUser(v.Session, v.Event)
				if e := bot.LogCommand(v.Session, v.Deps.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, c.Name()); e != nil {
					log.Printf("[WARN] Failed to log component /%s: %v", c.Name(), e)
				}
			}
			return err
		})
	}
}
