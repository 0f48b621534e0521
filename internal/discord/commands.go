package discord

import (
	"log"
	"sync"
	"time"

	"community-ops/internal/command"
	"community-ops/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// shouldSyncGuild reports whether commands may be synced to a guild. In
// development mode with a dev guild configured, sync is confined to that
// guild so in-progress definitions never reach production guilds.
func (b *Bot) shouldSyncGuild(guildID string) bool {
	if b.cfg.IsDevelopment() && b.cfg.DevGuildID != "" {
		return guildID == b.cfg.DevGuildID
	}
	return true
}

// registerCommands syncs slash commands for a guild. A local hash cache
// keeps restarts cheap: only changed definitions hit the API.
func (b *Bot) registerCommands(guildID string) error {
	if !b.shouldSyncGuild(guildID) {
		log.Printf("[INFO] [%s] Skipping command sync outside the dev guild", guildID)
		return nil
	}
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	localHashes := b.readSyncedHashes(guildID)

	var wanted []*discordgo.ApplicationCommand
	wantedHashes := make(map[string]string)
	for _, c := range command.AllCommands() {
		if def := normalizeDefinition(c); def != nil {
			wanted = append(wanted, def)
			wantedHashes[def.Name] = hashCommand(def)
		}
	}

	// Delete obsolete
	for _, old := range existing {
		if _, ok := wantedHashes[old.Name]; !ok {
			log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, old.Name, err)
			}
			delete(localHashes, old.Name)
		}
	}

	// Create or update changed commands
	var changed []*discordgo.ApplicationCommand
	for _, def := range wanted {
		if localHashes[def.Name] != wantedHashes[def.Name] {
			changed = append(changed, def)
		}
	}

	if len(changed) > 0 {
		log.Printf("[INFO] [%s] %d commands changed, updating with rate limit...", guildID, len(changed))
		b.registerCommandsWithRateLimit(guildID, changed)
		for _, c := range changed {
			localHashes[c.Name] = wantedHashes[c.Name]
		}
	}

	b.writeSyncedHashes(guildID, localHashes)
	return nil
}

// normalizeDefinition extracts a slash definition and defaults its type.
func normalizeDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.Root(c).(command.SlashProvider)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def == nil {
		return nil
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// registerCommandsWithRateLimit spaces out command creates to stay under
// the application command rate limit.
func (b *Bot) registerCommandsWithRateLimit(guildID string, defs []*discordgo.ApplicationCommand) {
	ticker := time.NewTicker(time.Second / 40)
	defer ticker.Stop()

	var wg sync.WaitGroup
	for _, job := range defs {
		wg.Add(1)
		go func(def *discordgo.ApplicationCommand) {
			defer wg.Done()
			<-ticker.C

			_, err := b.dg.ApplicationCommandCreate(b.dg.State.User.ID, guildID, def)
			if err != nil {
				log.Printf("[ERR] Can't create command %s: %v", def.Name, err)
			} else {
				log.Printf("[DONE] Command created: %s", def.Name)
			}
		}(job)
	}
	wg.Wait()
}
