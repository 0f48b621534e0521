package middleware

import (
	"context"
	"path/filepath"
	"testing"

	"community-ops/internal/command"
	"community-ops/internal/config"
	"community-ops/internal/permissions"
	"community-ops/internal/storage"
	"community-ops/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCommand records how often the chain actually reached it.
type countingCommand struct {
	runs int
}

func (c *countingCommand) Name() string        { return "sample" }
func (c *countingCommand) Description() string { return "counting" }

func (c *countingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	c.runs++
	return nil
}

func slashContext(userID, guildID string, deps *command.Deps) *cmd.Invocation {
	return &cmd.Invocation{Data: &command.SlashInteractionContext{
		Session: &discordgo.Session{State: discordgo.NewState()},
		Event: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			GuildID:   guildID,
			ChannelID: "chan",
			Member:    &discordgo.Member{User: &discordgo.User{ID: userID, Username: "tester"}},
		}},
		Deps: deps,
	}}
}

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// denying short-circuits like a gate that rejected the invoker.
func denying() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			return nil
		})
	}
}

func TestCommandLoggerSkipsGatedInvocations(t *testing.T) {
	stor := newTestStorage(t)
	inner := &countingCommand{}

	// Logger listed first wraps closest to the command, gates outside it.
	chain := cmd.Apply(inner, WithCommandLogger(), denying())
	require.NoError(t, chain.Run(context.Background(), slashContext("u1", "g1", &command.Deps{Storage: stor})))

	assert.Zero(t, inner.runs)
	history, err := stor.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCommandLoggerRecordsExecutions(t *testing.T) {
	stor := newTestStorage(t)
	inner := &countingCommand{}

	chain := cmd.Apply(inner, WithCommandLogger())
	require.NoError(t, chain.Run(context.Background(), slashContext("u1", "g1", &command.Deps{Storage: stor})))

	assert.Equal(t, 1, inner.runs)
	history, err := stor.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, inner.Name(), history[0].Command)
	assert.Equal(t, "u1", history[0].UserID)
}

func TestLevelCheckDeveloperBypass(t *testing.T) {
	inner := &countingCommand{}
	deps := &command.Deps{Config: &config.Config{DeveloperID: "dev-1"}}

	// No resolver is wired, so anyone but the developer would be denied
	// before reaching the command.
	chain := cmd.Apply(inner, WithLevelCheck(permissions.Administration))
	require.NoError(t, chain.Run(context.Background(), slashContext("dev-1", "g1", deps)))

	assert.Equal(t, 1, inner.runs)
}
