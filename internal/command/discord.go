package command

import (
	"context"

	"community-ops/internal/config"
	"community-ops/internal/iacase"
	"community-ops/internal/moderation"
	"community-ops/internal/permissions"
	"community-ops/internal/storage"
	"community-ops/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Deps are the shared services the runtime injects into every command
// context: persistence, configuration, the permission resolver, and the
// cross-guild engines.
type Deps struct {
	Storage     *storage.Storage
	Config      *config.Config
	Resolver    *permissions.Resolver
	Coordinator *moderation.Coordinator
	Cases       *iacase.Manager
}

// Discord-specific contexts (what the runtime passes when executing).

type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

type ComponentInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Deps    *Deps
}

// SlashProvider is how a command describes its slash registration.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// ComponentInteractionHandler is implemented by commands that own button
// or select interactions (matched by custom ID prefix).
type ComponentInteractionHandler interface {
	Component(*ComponentInteractionContext) error
}

// ComponentPrefixProvider lets a command claim component custom IDs that
// do not start with its own name.
type ComponentPrefixProvider interface {
	ComponentPrefixes() []string
}

// DiscordMeta is exposed by the Discord adapter so middleware can read
// category and guild scope without depending on the concrete command type.
type DiscordMeta interface {
	Category() string
	AllowAllGuilds() bool
}

// DiscordCommand is what individual Discord commands implement (Run takes
// interface{} for Discord contexts).
type DiscordCommand interface {
	Name() string
	Description() string
	Category() string
	AllowAllGuilds() bool
	Run(ctx interface{}) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in
// the universal registry. Component interactions are routed through Run so
// middleware wraps them the same way it wraps slash invocations.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string         { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string  { return a.Cmd.Description() }
func (a *DiscordAdapter) Category() string     { return a.Cmd.Category() }
func (a *DiscordAdapter) AllowAllGuilds() bool { return a.Cmd.AllowAllGuilds() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	if v, ok := inv.Data.(*ComponentInteractionContext); ok {
		if ch, ok := a.Cmd.(ComponentInteractionHandler); ok {
			return ch.Component(v)
		}
		return nil
	}
	return a.Cmd.Run(inv.Data)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// ComponentPrefixes delegates to the adapted command when it claims
// component custom IDs.
func (a *DiscordAdapter) ComponentPrefixes() []string {
	if pp, ok := a.Cmd.(ComponentPrefixProvider); ok {
		return pp.ComponentPrefixes()
	}
	return nil
}

// RegisterCommand registers a Discord command with the universal registry
// and applies middlewares. The first listed wraps closest to the command;
// the last listed becomes the outermost layer and runs first.
func RegisterCommand(discordCmd DiscordCommand, mws ...cmd.Middleware) {
	c := cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...)
	cmd.DefaultRegistry.Register(c)
}

// AllCommands returns every registered command, sorted by name.
func AllCommands() []cmd.Command {
	return cmd.DefaultRegistry.GetAll()
}

// GetCommand looks a command up by name.
func GetCommand(name string) (cmd.Command, bool) {
	c := cmd.DefaultRegistry.Get(name)
	return c, c != nil
}
