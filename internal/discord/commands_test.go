package discord

import (
	"testing"

	"community-ops/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestShouldSyncGuild(t *testing.T) {
	dev := &Bot{cfg: &config.Config{Mode: "development", DevGuildID: "dev-guild"}}
	assert.True(t, dev.shouldSyncGuild("dev-guild"))
	assert.False(t, dev.shouldSyncGuild("prod-guild"))

	prod := &Bot{cfg: &config.Config{Mode: "production", DevGuildID: "dev-guild"}}
	assert.True(t, prod.shouldSyncGuild("prod-guild"))

	// Development without a dev guild configured falls back to syncing
	// everywhere rather than syncing nowhere.
	devNoGuild := &Bot{cfg: &config.Config{Mode: "development"}}
	assert.True(t, devNoGuild.shouldSyncGuild("any"))
}
