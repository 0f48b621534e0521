package middleware

import (
	"context"
	"fmt"
	"log"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/permissions"
	"community-ops/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// LevelGated is implemented by the wrapper WithLevelCheck installs, so
// other commands (help) can read a command's gate off the wrapper chain.
type LevelGated interface {
	RequiredLevel() permissions.Level
}

type levelGated struct {
	*cmd.Wrapped
	level permissions.Level
}

func (l *levelGated) RequiredLevel() permissions.Level { return l.level }

// WithLevelCheck gates a command behind a minimum permission level. The
// invoker's level is resolved from their roles in the guild the command
// was used in; a member with no resolvable level is always denied.
func WithLevelCheck(required permissions.Level) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		wrapped := cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			var (
				s *discordgo.Session
				e *discordgo.InteractionCreate
				d *command.Deps
			)
			switch v := inv.Data.(type) {
			case *command.SlashInteractionContext:
				s, e, d = v.Session, v.Event, v.Deps
			case *command.ComponentInteractionContext:
				s, e, d = v.Session, v.Event, v.Deps
			default:
				return c.Run(ctx, inv)
			}

			// The configured developer account bypasses level gates.
			if d != nil && d.Config != nil && d.Config.DeveloperID != "" {
				if u := bot.ResolveUser(s, e); u != nil && u.ID == d.Config.DeveloperID {
					return c.Run(ctx, inv)
				}
			}

			if e.GuildID == "" || e.Member == nil || d == nil || d.Resolver == nil {
				return bot.RespondEmbedEphemeral(s, e,
					bot.ErrorEmbed("Insufficient Permission", "Your permission level could not be determined."))
			}

			membership, err := bot.MembershipOf(s, e.GuildID, e.Member)
			if err != nil {
				log.Printf("[WARN] Level check for /%s: %v", c.Name(), err)
				return bot.RespondEmbedEphemeral(s, e,
					bot.ErrorEmbed("Insufficient Permission", "Your permission level could not be determined."))
			}

			if !d.Resolver.Satisfies(membership, required) {
				return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed(
					"Insufficient Permission",
					fmt.Sprintf("You must be %s or higher to use this command.", required),
				))
			}
			return c.Run(ctx, inv)
		})
		return &levelGated{Wrapped: wrapped.(*cmd.Wrapped), level: required}
	}
}
