package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/config"
	"community-ops/internal/iacase"
	"community-ops/internal/moderation"
	"community-ops/internal/permissions"
	"community-ops/internal/storage"
	"community-ops/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Bot is the Discord runtime: it owns the gateway session and dispatches
// interactions to the registered commands.
type Bot struct {
	dg      *discordgo.Session
	storage *storage.Storage
	cfg     *config.Config

	mu   sync.RWMutex
	deps *command.Deps
}

// NewBot builds the runtime around an opened storage and parsed config.
func NewBot(cfg *config.Config, stor *storage.Storage) *Bot {
	return &Bot{cfg: cfg, storage: stor}
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onGuildCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")
	return nil
}

// configureIntents limits the gateway subscription to what the bot reads:
// guild lifecycle and member/role state.
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
}

// buildDeps wires the shared services once the session user is known.
func (b *Bot) buildDeps(s *discordgo.Session) *command.Deps {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deps != nil {
		return b.deps
	}

	resolver, err := b.cfg.Resolver()
	if err != nil {
		log.Printf("[ERR] Permission override table rejected, using defaults only: %v", err)
		resolver = permissions.NewResolver(nil, b.cfg.DefaultRoleTable())
	}

	botID := ""
	if s.State.User != nil {
		botID = s.State.User.ID
	}

	b.deps = &command.Deps{
		Storage:     b.storage,
		Config:      b.cfg,
		Resolver:    resolver,
		Coordinator: moderation.NewCoordinator(s),
		Cases: iacase.NewManager(s, b.storage, iacase.Config{
			PrimaryGuildID: b.cfg.MainGuildID,
			OversightRoles: b.cfg.IAOversightRoles,
			BotUserID:      botID,
		}),
	}
	return b.deps
}

// onReady is called when the gateway session is established.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.buildDeps(s)

	mode := "Production"
	if b.cfg.IsDevelopment() {
		mode = "Development"
	}
	drawStartupBanner(r.User.Username, mode, len(command.AllCommands()))

	if err := b.applyPresence(s); err != nil {
		log.Printf("[WARN] Failed to set presence: %v", err)
	}

	for _, g := range r.Guilds {
		if err := b.registerCommands(g.ID); err != nil {
			log.Printf("[ERR] Error registering slash commands for guild %s: %v", g.ID, err)
		}
	}

	log.Printf("[INFO] Discord bot %v is running in %d guilds.", r.User.Username, len(r.Guilds))
}

// applyPresence reflects the run mode in the bot's status.
func (b *Bot) applyPresence(s *discordgo.Session) error {
	if b.cfg.IsDevelopment() {
		return s.UpdateStatusComplex(discordgo.UpdateStatusData{
			Status: string(discordgo.StatusDoNotDisturb),
			Activities: []*discordgo.Activity{
				{Name: "Currently in Development State", Type: discordgo.ActivityTypeWatching},
			},
		})
	}
	return s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{
			{Name: "Overwatching Magonila Project", Type: discordgo.ActivityTypeWatching},
		},
	})
}

// onGuildCreate is called when the bot joins (or resumes into) a guild.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Guild available: %s (%s)", g.Guild.ID, g.Guild.Name)
	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for guild %s: %v", g.Guild.ID, err)
	}
}

// onInteractionCreate dispatches slash and component interactions.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	deps := b.buildDeps(s)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		cmdName := i.ApplicationCommandData().Name
		c, ok := command.GetCommand(cmdName)
		if !ok {
			log.Printf("[WARN] Unknown command: %s", cmdName)
			return
		}

		sctx := &command.SlashInteractionContext{Session: s, Event: i, Deps: deps}
		if err := c.Run(context.Background(), &cmd.Invocation{Data: sctx}); err != nil {
			log.Printf("[ERR] Error running slash command /%s: %v", cmdName, err)
			_ = bot.RespondEmbedEphemeral(s, i, bot.ErrorEmbed("Command Failed", fmt.Sprintf("Error running command: %v", err)))
		}

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		matched := b.matchComponent(customID)
		if matched == nil {
			log.Printf("[WARN] No matching component for customID: %s", customID)
			return
		}

		cctx := &command.ComponentInteractionContext{Session: s, Event: i, Deps: deps}
		if err := matched.Run(context.Background(), &cmd.Invocation{Data: cctx}); err != nil {
			log.Printf("[ERR] Error running component %s: %v", customID, err)
			_ = bot.RespondEmbedEphemeral(s, i, bot.ErrorEmbed("Action Failed", fmt.Sprintf("Error running action: %v", err)))
		}
	}
}

// matchComponent maps a component custom ID to the command that owns it,
// either by a declared prefix or by the command's own name.
func (b *Bot) matchComponent(customID string) cmd.Command {
	for _, c := range command.AllCommands() {
		root := cmd.Root(c)
		if pp, ok := root.(command.ComponentPrefixProvider); ok {
			for _, prefix := range pp.ComponentPrefixes() {
				if strings.HasPrefix(customID, prefix) {
					return c
				}
			}
		}
		if strings.HasPrefix(customID, c.Name()+":") || strings.HasPrefix(customID, c.Name()+"_") {
			return c
		}
	}
	return nil
}
