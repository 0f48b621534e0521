package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-ops/internal/iacase"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCaseLifecycle(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.GetOpenCase("u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	c := &iacase.Case{
		UserID:     "u1",
		OpenedBy:   "mod1",
		OpenedAt:   time.Now().UTC(),
		Reason:     "conduct review",
		ChannelID:  "chan-1",
		GuildRoles: map[string][]string{"g1": {"roleA", "roleB"}},
		Status:     iacase.StatusOpen,
	}
	require.NoError(t, s.CreateCase(c))

	got, err = s.GetOpenCase("u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "conduct review", got.Reason)
	assert.Equal(t, []string{"roleA", "roleB"}, got.GuildRoles["g1"])

	closedAt := time.Now().UTC()
	closed, err := s.CloseCase("u1", iacase.Closure{ClosedBy: "mod2", ClosedAt: closedAt, Notes: "resolved"})
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, iacase.StatusClosed, closed.Status)
	assert.Equal(t, "mod2", closed.ClosedBy)
	assert.Equal(t, "resolved", closed.CloseNotes)

	// No open case remains; closing again reports absence.
	got, err = s.GetOpenCase("u1")
	require.NoError(t, err)
	assert.Nil(t, got)
	again, err := s.CloseCase("u1", iacase.Closure{ClosedBy: "mod2", ClosedAt: closedAt})
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestClosedCasesAreKept(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.CreateCase(&iacase.Case{UserID: "u1", Status: iacase.StatusOpen}))
	_, err := s.CloseCase("u1", iacase.Closure{ClosedBy: "mod1", ClosedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.NoError(t, s.CreateCase(&iacase.Case{UserID: "u1", Status: iacase.StatusOpen}))

	history, err := s.CaseHistory("u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, iacase.StatusClosed, history[0].Status)
	assert.Equal(t, iacase.StatusOpen, history[1].Status)
}

func TestCasesSurviveReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateCase(&iacase.Case{
		UserID:     "u1",
		Status:     iacase.StatusOpen,
		GuildRoles: map[string][]string{"g1": {"roleA"}},
	}))
	require.NoError(t, s.Close())

	reloaded, err := New(path)
	require.NoError(t, err)
	defer reloaded.Close()

	got, err := reloaded.GetOpenCase("u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"roleA"}, got.GuildRoles["g1"])
}

func TestCommandHistoryBounded(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{
			Command:  "gban",
			UserID:   "u1",
			Datetime: time.Now().UTC(),
		}))
	}

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Len(t, history, commandHistoryLimit)
}
