package bot

import (
	"fmt"

	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

// MembershipOf builds the permission-resolution view of a guild member:
// its guild, role IDs and the display names of those roles. Role names
// come from session state when cached, falling back to the API.
func MembershipOf(s *discordgo.Session, guildID string, m *discordgo.Member) (permissions.Membership, error) {
	membership := permissions.Membership{
		GuildID: guildID,
		RoleIDs: m.Roles,
	}

	roles, err := guildRoles(s, guildID)
	if err != nil {
		return membership, fmt.Errorf("failed to list roles for guild %s: %w", guildID, err)
	}

	byID := make(map[string]string, len(roles))
	for _, r := range roles {
		byID[r.ID] = r.Name
	}
	for _, id := range m.Roles {
		if name, ok := byID[id]; ok {
			membership.RoleNames = append(membership.RoleNames, name)
		}
	}
	return membership, nil
}

func guildRoles(s *discordgo.Session, guildID string) ([]*discordgo.Role, error) {
	if g, err := s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return g.Roles, nil
	}
	return s.GuildRoles(guildID)
}

// GuildIDs returns the IDs of every guild the bot currently sits in.
func GuildIDs(s *discordgo.Session) []string {
	ids := make([]string, 0, len(s.State.Guilds))
	for _, g := range s.State.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// ResolveUser safely retrieves the acting user from an InteractionCreate event.
func ResolveUser(s *discordgo.Session, e *discordgo.InteractionCreate) *discordgo.User {
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	if e.User != nil {
		if e.User.Username != "" {
			return e.User
		}
		if u, err := s.User(e.User.ID); err == nil {
			return u
		}
		return e.User
	}
	return &discordgo.User{ID: "unknown", Username: "Unknown"}
}
