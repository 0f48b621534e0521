// Package config assembles the bot's configuration once at startup into a
// single immutable struct. Everything downstream (permission resolver,
// lifecycle manager, commands) receives it explicitly; nothing reads the
// environment after New returns.
package config

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"community-ops/internal/permissions"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config is the full bot configuration.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	MainGuildID  string `env:"MAIN_GUILD_ID"`
	DevGuildID   string `env:"DEV_GUILD_ID"`
	Mode         string `env:"MODE" envDefault:"production"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DeveloperID  string `env:"DEVELOPER_ID"`

	// PermissionRoleIDs holds the per-guild permission override table as
	// JSON: guild ID -> level display name -> role ID.
	PermissionRoleIDs string `env:"PERMISSION_ROLE_IDS"`

	// Global default role-ID map, one variable per level.
	RoleHeadAdministration   string `env:"ROLE_HEAD_ADMINISTRATION"`
	RoleSeniorAdministration string `env:"ROLE_SENIOR_ADMINISTRATION"`
	RoleAdministration       string `env:"ROLE_ADMINISTRATION"`
	RoleJuniorAdministration string `env:"ROLE_JUNIOR_ADMINISTRATION"`
	RoleSeniorStaff          string `env:"ROLE_SENIOR_STAFF"`
	RoleStaff                string `env:"ROLE_STAFF"`
	RoleStaffInTraining      string `env:"ROLE_STAFF_IN_TRAINING"`
	RoleMember               string `env:"ROLE_MEMBER"`

	// Internal-affairs oversight: role IDs allowed to see case channels.
	IAOversightRoles []string `env:"IA_OVERSIGHT_ROLES" envSeparator:","`

	RecruitRoleID             string `env:"RECRUIT_ROLE_ID"`
	AllocationReviewChannelID string `env:"ALLOCATION_REVIEW_CHANNEL_ID"`

	MediaNotifyChannelID string   `env:"MEDIA_NOTIFY_CHANNEL_ID"`
	MediaNotifyRoleID    string   `env:"MEDIA_NOTIFY_ROLE_ID"`
	MediaAllowedDomains  []string `env:"MEDIA_ALLOWED_DOMAINS" envSeparator:"," envDefault:"youtube.com,youtu.be,tiktok.com,twitch.tv"`
	MediaLogoURL         string   `env:"MEDIA_LOGO_URL"`

	FivemServerAddr string `env:"FIVEM_SERVER_1_IP"`
	FivemMaxPlayers int    `env:"FIVEM_MAX_PLAYERS" envDefault:"64"`

	WebsiteBaseURL     string `env:"WEBSITE_BASE_URL"`
	WebsiteProfilePath string `env:"WEBSITE_PROFILE_PATH" envDefault:"/profile"`
}

// New parses the environment into a Config.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.PermissionRoleIDs != "" {
		if _, err := cfg.PermissionOverrides(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// IsDevelopment reports whether the bot runs in development mode (commands
// registered to the dev guild only, presence marked accordingly).
func (c *Config) IsDevelopment() bool {
	return c.Mode == "development"
}

// PermissionOverrides decodes the per-guild override table. Unknown level
// names are rejected so a typo in configuration fails loudly at startup
// instead of silently granting nothing.
func (c *Config) PermissionOverrides() (map[string]map[permissions.Level]string, error) {
	if c.PermissionRoleIDs == "" {
		return nil, nil
	}

	var raw map[string]map[string]string
	if err := json.Unmarshal([]byte(c.PermissionRoleIDs), &raw); err != nil {
		return nil, fmt.Errorf("PERMISSION_ROLE_IDS: %w", err)
	}

	table := make(map[string]map[permissions.Level]string, len(raw))
	for guildID, levels := range raw {
		guildTable := make(map[permissions.Level]string, len(levels))
		for name, roleID := range levels {
			level, ok := permissions.LevelFromName(name)
			if !ok {
				return nil, fmt.Errorf("PERMISSION_ROLE_IDS: unknown level %q for guild %s", name, guildID)
			}
			guildTable[level] = roleID
		}
		table[guildID] = guildTable
	}
	return table, nil
}

// DefaultRoleTable returns the global level-to-role-ID map. Levels without
// a configured role are omitted.
func (c *Config) DefaultRoleTable() map[permissions.Level]string {
	table := map[permissions.Level]string{
		permissions.HeadAdministration:   c.RoleHeadAdministration,
		permissions.SeniorAdministration: c.RoleSeniorAdministration,
		permissions.Administration:       c.RoleAdministration,
		permissions.JuniorAdministration: c.RoleJuniorAdministration,
		permissions.SeniorStaff:          c.RoleSeniorStaff,
		permissions.Staff:                c.RoleStaff,
		permissions.StaffInTraining:      c.RoleStaffInTraining,
		permissions.Member:               c.RoleMember,
	}
	for level, roleID := range table {
		if roleID == "" {
			delete(table, level)
		}
	}
	return table
}

// Resolver builds the permission resolver from the configured tables.
func (c *Config) Resolver() (*permissions.Resolver, error) {
	overrides, err := c.PermissionOverrides()
	if err != nil {
		return nil, err
	}
	return permissions.NewResolver(overrides, c.DefaultRoleTable()), nil
}
