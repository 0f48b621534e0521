package discord

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// syncCachePath returns where a guild's synced command hashes live. The
// cache sits next to the datastore file so one directory holds all
// bot-written state.
func (b *Bot) syncCachePath(guildID string) string {
	return filepath.Join(filepath.Dir(b.cfg.StoragePath), "commands", guildID+".json")
}

// readSyncedHashes loads the command hashes recorded at the last sync.
// A missing or unreadable cache means every command looks changed, which
// is safe: the sync converges on the next pass.
func (b *Bot) readSyncedHashes(guildID string) map[string]string {
	hashes := make(map[string]string)
	raw, err := os.ReadFile(b.syncCachePath(guildID))
	if err == nil {
		_ = json.Unmarshal(raw, &hashes)
	}
	return hashes
}

// writeSyncedHashes persists the hashes after a sync pass.
func (b *Bot) writeSyncedHashes(guildID string, hashes map[string]string) {
	path := b.syncCachePath(guildID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	raw, _ := json.MarshalIndent(hashes, "", "  ")
	_ = os.WriteFile(path, raw, 0644)
}
