package iacase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botID = "bot"

// memStore is an in-memory Store for tests.
type memStore struct {
	mu    sync.Mutex
	cases []*Case
}

func (s *memStore) GetOpenCase(userID string) (*Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cases {
		if c.UserID == userID && c.Status == StatusOpen {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateCase(c *Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.cases = append(s.cases, &cp)
	return nil
}

func (s *memStore) CloseCase(userID string, cl Closure) (*Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cases {
		if c.UserID == userID && c.Status == StatusOpen {
			c.Status = StatusClosed
			c.ClosedBy = cl.ClosedBy
			c.ClosedAt = cl.ClosedAt
			c.CloseNotes = cl.Notes
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// fakeGuild describes one guild's role layout and members for fakeDiscord.
type fakeGuild struct {
	roles   []*discordgo.Role   // includes everyone role with ID == guild ID
	members map[string][]string // user ID -> role IDs held
}

// fakeDiscord implements Session over in-memory guild state.
type fakeDiscord struct {
	mu          sync.Mutex
	guilds      map[string]*fakeGuild
	channels    map[string]bool
	nextChannel int
	failChannel bool

	removed       map[string][]string // guild -> role IDs removed
	added         map[string][]string // guild -> role IDs added
	channelGuilds map[string]string   // channel ID -> guild it was created in
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		guilds:        make(map[string]*fakeGuild),
		channels:      make(map[string]bool),
		removed:       make(map[string][]string),
		added:         make(map[string][]string),
		channelGuilds: make(map[string]string),
	}
}

// addGuild sets up a guild with an everyone role, a top bot role, and the
// given member roles at low positions.
func (f *fakeDiscord) addGuild(guildID string, memberRoles map[string][]string) {
	g := &fakeGuild{members: map[string][]string{botID: {"botrole-" + guildID}}}
	g.roles = []*discordgo.Role{
		{ID: guildID, Name: "@everyone", Position: 0},
		{ID: "botrole-" + guildID, Name: "Bot", Position: 100},
	}
	pos := 1
	seen := map[string]bool{}
	for user, roles := range memberRoles {
		g.members[user] = roles
		for _, r := range roles {
			if !seen[r] {
				seen[r] = true
				g.roles = append(g.roles, &discordgo.Role{ID: r, Name: r, Position: pos})
				pos++
			}
		}
	}
	f.guilds[guildID] = g
}

func (f *fakeDiscord) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}
	roles, ok := g.members[userID]
	if !ok {
		return nil, errors.New("unknown member")
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles}, nil
}

func (f *fakeDiscord) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, errors.New("unknown guild")
	}
	return g.roles, nil
}

func (f *fakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added[guildID] = append(f.added[guildID], roleID)
	g := f.guilds[guildID]
	g.members[userID] = append(g.members[userID], roleID)
	return nil
}

func (f *fakeDiscord) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed[guildID] = append(f.removed[guildID], roleID)
	g := f.guilds[guildID]
	kept := g.members[userID][:0]
	for _, r := range g.members[userID] {
		if r != roleID {
			kept = append(kept, r)
		}
	}
	g.members[userID] = kept
	return nil
}

func (f *fakeDiscord) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failChannel {
		return nil, errors.New("channel quota exceeded")
	}
	f.nextChannel++
	id := "chan-" + data.Name
	f.channels[id] = true
	f.channelGuilds[id] = guildID
	return &discordgo.Channel{ID: id, Name: data.Name}, nil
}

func (f *fakeDiscord) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.channels[channelID] {
		return nil, errors.New("unknown channel")
	}
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeDiscord) ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *fakeDiscord) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: "msg"}, nil
}

func newManager(fd *fakeDiscord, store Store) *Manager {
	return NewManager(fd, store, Config{
		PrimaryGuildID: "g1",
		OversightRoles: []string{"oversight"},
		BotUserID:      botID,
	})
}

func TestOpenAndCloseRoundTrip(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA", "roleB"}})
	fd.addGuild("g2", map[string][]string{"u1": {"roleC"}})
	store := &memStore{}
	m := newManager(fd, store)

	sum, err := m.Open(context.Background(), []string{"g1", "g2"}, "g1", "u1", "mod1", "conduct review")
	require.NoError(t, err)
	require.NotNil(t, sum.Case)
	assert.Equal(t, 2, sum.AffectedGuilds)
	assert.Equal(t, 0, sum.Errors)

	assert.ElementsMatch(t, []string{"roleA", "roleB"}, sum.Case.GuildRoles["g1"])
	assert.ElementsMatch(t, []string{"roleC"}, sum.Case.GuildRoles["g2"])
	assert.Equal(t, StatusOpen, sum.Case.Status)
	assert.NotEmpty(t, sum.Case.ChannelID)
	assert.True(t, fd.channels[sum.Case.ChannelID])

	closed, err := m.Close(context.Background(), "u1", "mod2", "resolved")
	require.NoError(t, err)
	assert.Equal(t, 2, closed.AffectedGuilds)
	assert.Equal(t, StatusClosed, closed.Case.Status)
	assert.Equal(t, "mod2", closed.Case.ClosedBy)
	assert.Equal(t, "resolved", closed.Case.CloseNotes)
	assert.False(t, closed.Case.ClosedAt.IsZero())

	// The exact snapshot roles come back, and the channel is gone.
	assert.ElementsMatch(t, []string{"roleA", "roleB"}, fd.added["g1"])
	assert.ElementsMatch(t, []string{"roleC"}, fd.added["g2"])
	assert.False(t, fd.channels[sum.Case.ChannelID])
}

func TestOpenRejectsDuplicate(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA"}})
	store := &memStore{}
	m := newManager(fd, store)

	_, err := m.Open(context.Background(), []string{"g1"}, "g1", "u1", "mod1", "first")
	require.NoError(t, err)

	removedBefore := len(fd.removed["g1"])
	_, err = m.Open(context.Background(), []string{"g1"}, "g1", "u1", "mod1", "second")
	assert.ErrorIs(t, err, ErrCaseExists)
	// No side effects on the rejected attempt.
	assert.Len(t, fd.removed["g1"], removedBefore)
	assert.Len(t, fd.channels, 1)
}

func TestCloseWithoutCase(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", nil)
	m := newManager(fd, &memStore{})

	_, err := m.Close(context.Background(), "u1", "mod1", "notes")
	assert.ErrorIs(t, err, ErrNoActiveCase)
}

func TestCloseTwiceFailsSecondTime(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA"}})
	m := newManager(fd, &memStore{})

	_, err := m.Open(context.Background(), []string{"g1"}, "g1", "u1", "mod1", "r")
	require.NoError(t, err)
	_, err = m.Close(context.Background(), "u1", "mod1", "done")
	require.NoError(t, err)

	_, err = m.Close(context.Background(), "u1", "mod1", "again")
	assert.ErrorIs(t, err, ErrNoActiveCase)
}

func TestOpenSkipsGuildsWithoutMember(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA"}})
	fd.addGuild("g2", nil) // u1 not a member here
	m := newManager(fd, &memStore{})

	sum, err := m.Open(context.Background(), []string{"g1", "g2"}, "g1", "u1", "mod1", "r")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AffectedGuilds)
	_, inSnapshot := sum.Case.GuildRoles["g2"]
	assert.False(t, inSnapshot)
}

func TestOpenSnapshotsMemberWithNoStrippableRoles(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {}})
	m := newManager(fd, &memStore{})

	sum, err := m.Open(context.Background(), []string{"g1"}, "g1", "u1", "mod1", "r")
	require.NoError(t, err)
	// Present but nothing to strip: snapshot entry exists, guild not counted
	// as affected.
	roles, ok := sum.Case.GuildRoles["g1"]
	require.True(t, ok)
	assert.Empty(t, roles)
	assert.Equal(t, 0, sum.AffectedGuilds)
}

func TestOpenChannelFailureKeepsStrippedRoles(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA"}})
	fd.failChannel = true
	store := &memStore{}
	m := newManager(fd, store)

	sum, err := m.Open(context.Background(), []string{"g1"}, "g1", "u1", "mod1", "r")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Errors)
	assert.Empty(t, sum.Case.ChannelID)
	// Role stripping stands and the case is persisted regardless.
	assert.ElementsMatch(t, []string{"roleA"}, fd.removed["g1"])
	persisted, err := store.GetOpenCase("u1")
	require.NoError(t, err)
	require.NotNil(t, persisted)
}

func TestCloseSkipsDeletedRole(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA", "roleB"}})
	m := newManager(fd, &memStore{})

	_, err := m.Open(context.Background(), []string{"g1"}, "g1", "u1", "mod1", "r")
	require.NoError(t, err)

	// roleB is deleted from the guild while the case is open.
	g := fd.guilds["g1"]
	kept := g.roles[:0]
	for _, r := range g.roles {
		if r.ID != "roleB" {
			kept = append(kept, r)
		}
	}
	g.roles = kept

	sum, err := m.Close(context.Background(), "u1", "mod1", "done")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AffectedGuilds)
	assert.ElementsMatch(t, []string{"roleA"}, fd.added["g1"])
}

func TestCloseSkipsUnreachableGuild(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA"}})
	fd.addGuild("g2", map[string][]string{"u1": {"roleC"}})
	m := newManager(fd, &memStore{})

	_, err := m.Open(context.Background(), []string{"g1", "g2"}, "g1", "u1", "mod1", "r")
	require.NoError(t, err)

	// Bot left g2 in the meantime.
	delete(fd.guilds, "g2")

	sum, err := m.Close(context.Background(), "u1", "mod1", "done")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AffectedGuilds)
	assert.Equal(t, StatusClosed, sum.Case.Status)
}

func TestOpenWithoutChannelGuildRejectedBeforeStripping(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA"}})
	m := NewManager(fd, &memStore{}, Config{BotUserID: botID})

	_, err := m.Open(context.Background(), []string{"g1"}, "", "u1", "mod1", "r")
	require.ErrorIs(t, err, ErrNoChannelGuild)
	assert.Empty(t, fd.removed["g1"])
	assert.Empty(t, fd.channels)
}

func TestOpenFallsBackToOriginGuildForChannel(t *testing.T) {
	fd := newFakeDiscord()
	fd.addGuild("g1", map[string][]string{"u1": {"roleA"}})
	m := NewManager(fd, &memStore{}, Config{BotUserID: botID})

	sum, err := m.Open(context.Background(), []string{"g1"}, "g1", "u1", "mod1", "r")
	require.NoError(t, err)
	require.NotEmpty(t, sum.Case.ChannelID)
	assert.Equal(t, "g1", fd.channelGuilds[sum.Case.ChannelID])
	assert.ElementsMatch(t, []string{"roleA"}, fd.removed["g1"])
}
