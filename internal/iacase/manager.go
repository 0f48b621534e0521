package iacase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x2B6CB0

// Session is the slice of the Discord API the manager needs.
// *discordgo.Session satisfies it.
type Session interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Config is the slice of bot configuration the manager needs: where the
// private channel lives and which roles may see it.
type Config struct {
	PrimaryGuildID string
	OversightRoles []string
	BotUserID      string
}

// Summary reports the result of an open or close operation. AffectedGuilds
// counts guilds where at least one role was stripped (open) or where the
// member was reached for restoration (close). Errors counts per-guild and
// channel failures; a non-zero value is a degraded outcome, not a hard
// failure.
type Summary struct {
	Case           *Case
	AffectedGuilds int
	Errors         int
}

// Manager orchestrates case opening and closing. A per-user lock serializes
// the check-then-create sequence so two concurrent opens for the same user
// cannot both pass the precondition.
type Manager struct {
	session Session
	store   Store
	cfg     Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager returns a lifecycle manager over the given session and store.
func NewManager(session Session, store Store, cfg Config) *Manager {
	return &Manager{
		session: session,
		store:   store,
		cfg:     cfg,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// Open opens a case for targetID: strips editable roles in every guild,
// creates the private channel, and persists the case with the role
// snapshot. The channel is created in the configured primary guild,
// falling back to originGuildID (the guild the open was requested from)
// when no primary guild is configured; with neither available the open is
// rejected with ErrNoChannelGuild before any guild is touched. Fails with
// ErrCaseExists before any side effect if an open case already exists.
// Role stripping is not rolled back when channel creation fails
// afterwards; the failure is counted in the summary and operators
// intervene manually.
func (m *Manager) Open(ctx context.Context, guildIDs []string, originGuildID, targetID, openerID, reason string) (*Summary, error) {
	channelGuildID := m.cfg.PrimaryGuildID
	if channelGuildID == "" {
		channelGuildID = originGuildID
	}
	if channelGuildID == "" {
		return nil, ErrNoChannelGuild
	}

	lock := m.userLock(targetID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := m.store.GetOpenCase(targetID)
	if err != nil {
		return nil, fmt.Errorf("case lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrCaseExists
	}

	snapshot := make(map[string][]string)
	var snapMu sync.Mutex
	var affected, errCount int

	var wg sync.WaitGroup
	for _, guildID := range guildIDs {
		wg.Add(1)
		go func(guildID string) {
			defer wg.Done()
			stripped, present, err := m.stripGuildRoles(guildID, targetID)
			if err != nil {
				log.Printf("[WARN] IA open: guild %s: %v", guildID, err)
				snapMu.Lock()
				errCount++
				snapMu.Unlock()
				return
			}
			if !present {
				return
			}
			snapMu.Lock()
			// Guilds with zero stripped roles stay in the snapshot so
			// restoration is idempotent.
			snapshot[guildID] = stripped
			if len(stripped) > 0 {
				affected++
			}
			snapMu.Unlock()
		}(guildID)
	}
	wg.Wait()

	channelID := ""
	channel, err := m.createCaseChannel(channelGuildID, targetID)
	if err != nil {
		// Roles are already stripped; that is the higher-priority effect
		// and is kept. The missing channel surfaces through the error count.
		log.Printf("[ERR] IA open: channel creation for %s failed: %v", targetID, err)
		errCount++
	} else {
		channelID = channel.ID
		notice := &discordgo.MessageEmbed{
			Title:       "Internal Affairs Notice",
			Description: fmt.Sprintf("An IA case has been opened for <@%s>. This channel is private to the involved parties.", targetID),
			Color:       embedColor,
		}
		if _, err := m.session.ChannelMessageSendEmbed(channelID, notice); err != nil {
			log.Printf("[WARN] IA open: notice for %s failed: %v", targetID, err)
		}
	}

	record := &Case{
		UserID:     targetID,
		OpenedBy:   openerID,
		OpenedAt:   time.Now().UTC(),
		Reason:     reason,
		ChannelID:  channelID,
		GuildRoles: snapshot,
		Status:     StatusOpen,
	}
	if err := m.store.CreateCase(record); err != nil {
		return nil, fmt.Errorf("persist case: %w", err)
	}

	return &Summary{Case: record, AffectedGuilds: affected, Errors: errCount}, nil
}

// Close closes the open case for targetID: restores the snapshot roles in
// every snapshot guild, posts a closure notice and deletes the private
// channel, and marks the case closed. Fails with ErrNoActiveCase if no
// open case exists.
func (m *Manager) Close(ctx context.Context, targetID, closerID, notes string) (*Summary, error) {
	lock := m.userLock(targetID)
	lock.Lock()
	defer lock.Unlock()

	record, err := m.store.GetOpenCase(targetID)
	if err != nil {
		return nil, fmt.Errorf("case lookup: %w", err)
	}
	if record == nil {
		return nil, ErrNoActiveCase
	}

	var restored, errCount int
	var tallyMu sync.Mutex

	var wg sync.WaitGroup
	for guildID, roleIDs := range record.GuildRoles {
		wg.Add(1)
		go func(guildID string, roleIDs []string) {
			defer wg.Done()
			reached, err := m.restoreGuildRoles(guildID, targetID, roleIDs)
			tallyMu.Lock()
			defer tallyMu.Unlock()
			if err != nil {
				log.Printf("[WARN] IA close: guild %s: %v", guildID, err)
				errCount++
				return
			}
			if reached {
				restored++
			}
		}(guildID, roleIDs)
	}
	wg.Wait()

	if record.ChannelID != "" {
		if err := m.teardownCaseChannel(record.ChannelID, notes); err != nil {
			log.Printf("[WARN] IA close: channel teardown for %s failed: %v", targetID, err)
			errCount++
		}
	}

	updated, err := m.store.CloseCase(targetID, Closure{
		ClosedBy: closerID,
		ClosedAt: time.Now().UTC(),
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("persist closure: %w", err)
	}
	if updated == nil {
		return nil, ErrNoActiveCase
	}

	return &Summary{Case: updated, AffectedGuilds: restored, Errors: errCount}, nil
}

// stripGuildRoles removes every role the bot can edit from the target in
// one guild. It returns the attempted role IDs (recorded even when an
// individual removal fails), whether the target was present, and a
// guild-level error. The everyone role and roles at or above the bot's top
// role are never touched.
func (m *Manager) stripGuildRoles(guildID, targetID string) (stripped []string, present bool, err error) {
	member, err := m.session.GuildMember(guildID, targetID)
	if err != nil {
		return nil, false, nil // not a member here, skip guild
	}

	editable, err := m.editableRoles(guildID)
	if err != nil {
		return nil, true, err
	}

	stripped = []string{}
	for _, roleID := range member.Roles {
		if !editable[roleID] {
			continue
		}
		stripped = append(stripped, roleID)
		if err := m.session.GuildMemberRoleRemove(guildID, targetID, roleID); err != nil {
			log.Printf("[WARN] IA open: remove role %s in guild %s: %v", roleID, guildID, err)
		}
	}
	return stripped, true, nil
}

// restoreGuildRoles re-adds the snapshot roles in one guild. Roles deleted
// or no longer editable since opening are skipped individually; the guild
// counts as reached when the member could be fetched.
func (m *Manager) restoreGuildRoles(guildID, targetID string, roleIDs []string) (reached bool, err error) {
	if _, err := m.session.GuildMember(guildID, targetID); err != nil {
		return false, nil // member gone or guild unreachable, skip
	}

	editable, err := m.editableRoles(guildID)
	if err != nil {
		return true, err
	}

	for _, roleID := range roleIDs {
		if !editable[roleID] {
			log.Printf("[INFO] IA close: role %s in guild %s no longer editable, skipped", roleID, guildID)
			continue
		}
		if err := m.session.GuildMemberRoleAdd(guildID, targetID, roleID); err != nil {
			log.Printf("[WARN] IA close: add role %s in guild %s: %v", roleID, guildID, err)
		}
	}
	return true, nil
}

// editableRoles returns the set of role IDs the bot may assign or remove
// in a guild: unmanaged roles strictly below the bot's own top role,
// excluding the guild's everyone role.
func (m *Manager) editableRoles(guildID string) (map[string]bool, error) {
	roles, err := m.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch roles: %w", err)
	}

	positions := make(map[string]int, len(roles))
	for _, r := range roles {
		positions[r.ID] = r.Position
	}

	botTop := 0
	if m.cfg.BotUserID != "" {
		if bot, err := m.session.GuildMember(guildID, m.cfg.BotUserID); err == nil {
			for _, roleID := range bot.Roles {
				if p, ok := positions[roleID]; ok && p > botTop {
					botTop = p
				}
			}
		}
	}

	editable := make(map[string]bool, len(roles))
	for _, r := range roles {
		if r.ID == guildID || r.Managed {
			continue
		}
		if botTop > 0 && r.Position >= botTop {
			continue
		}
		editable[r.ID] = true
	}
	return editable, nil
}

// createCaseChannel creates the private case channel in the given guild,
// visible only to the target and the configured oversight roles.
func (m *Manager) createCaseChannel(guildID, targetID string) (*discordgo.Channel, error) {
	allow := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory)

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// The everyone role shares the guild's ID.
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: int64(discordgo.PermissionViewChannel),
		},
		{
			ID:    targetID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: allow,
		},
	}
	for _, roleID := range m.cfg.OversightRoles {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: allow,
		})
	}

	return m.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 "ia-" + targetID,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	})
}

// teardownCaseChannel posts the closure notice and deletes the channel.
// A channel already gone is not an error.
func (m *Manager) teardownCaseChannel(channelID, notes string) error {
	if _, err := m.session.Channel(channelID); err != nil {
		return nil
	}

	notice := &discordgo.MessageEmbed{
		Title:       "Internal Affairs Case Closed",
		Description: fmt.Sprintf("Notes: %s", notes),
		Color:       embedColor,
	}
	if _, err := m.session.ChannelMessageSendEmbed(channelID, notice); err != nil {
		log.Printf("[WARN] IA close: closure notice: %v", err)
	}

	if _, err := m.session.ChannelDelete(channelID); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}
