package moderation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

type RecruitOnboardCommand struct{}

func (c *RecruitOnboardCommand) Name() string { return "rec-onboard" }
func (c *RecruitOnboardCommand) Description() string {
	return "Assign the Recruit role to a user"
}
func (c *RecruitOnboardCommand) Category() string     { return "Moderation" }
func (c *RecruitOnboardCommand) AllowAllGuilds() bool { return false }

func (c *RecruitOnboardCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to tag as Recruit",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "allocation_link",
				Description: "Message link to the user's allocation request",
				Required:    true,
			},
		},
	}
}

func (c *RecruitOnboardCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	opts := e.ApplicationCommandData().Options

	recruitRoleID := sctx.Deps.Config.RecruitRoleID
	if recruitRoleID == "" {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Configuration Error", "RECRUIT_ROLE_ID is not configured."))
	}

	target := command.OptionUser(s, opts, "user")
	link := strings.TrimSpace(command.OptionString(opts, "allocation_link"))
	if target == nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid Target", "A target user is required."))
	}

	member, err := s.GuildMember(e.GuildID, target.ID)
	if err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Not Found", "The specified user is not in this guild."))
	}
	if slices.Contains(member.Roles, recruitRoleID) {
		return bot.RespondEmbedEphemeral(s, e, bot.SuccessEmbed("No Changes",
			fmt.Sprintf("<@%s> already has the Recruit role.", target.ID)))
	}

	details := c.extractAllocationDetails(s, e.GuildID, link)

	if err := s.GuildMemberRoleAdd(e.GuildID, target.ID, recruitRoleID); err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Failed", "Could not assign the Recruit role."))
	}

	summary := fmt.Sprintf("Recruit role assigned to <@%s>.", target.ID)
	if details != "" {
		summary += " " + details
	}
	return bot.RespondEmbedEphemeral(s, e, bot.SuccessEmbed("Recruit Assigned", summary))
}

// extractAllocationDetails pulls the identity fields out of the allocation
// review embed that the link points to. Best effort: any failure yields "".
func (c *RecruitOnboardCommand) extractAllocationDetails(s *discordgo.Session, guildID, link string) string {
	ref, err := parseMessageLink(link)
	if err != nil || ref.GuildID != guildID {
		return ""
	}

	msg, err := s.ChannelMessage(ref.ChannelID, ref.MessageID)
	if err != nil || len(msg.Embeds) == 0 {
		return ""
	}

	fields := msg.Embeds[0].Fields
	getField := func(label string) string {
		for _, f := range fields {
			if strings.EqualFold(f.Name, label) {
				return strings.TrimSpace(f.Value)
			}
		}
		return ""
	}

	var parts []string
	if v := getField("Teamspeak UID"); v != "" {
		parts = append(parts, "TS3: "+v)
	}
	if v := getField("Website ID"); v != "" {
		parts = append(parts, "Web ID: "+v)
	}
	if v := getField("Steam Hex"); v != "" {
		parts = append(parts, "Steam Hex: "+v)
	}
	return strings.Join(parts, " | ")
}

// messageRef is a parsed Discord message link.
type messageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// parseMessageLink parses https://discord.com/channels/<guild>/<channel>/<message>.
func parseMessageLink(link string) (messageRef, error) {
	u, err := url.Parse(link)
	if err != nil {
		return messageRef{}, err
	}

	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	idx := slices.Index(parts, "channels")
	if idx == -1 || len(parts) < idx+4 {
		return messageRef{}, fmt.Errorf("invalid message link format")
	}

	ref := messageRef{
		GuildID:   parts[idx+1],
		ChannelID: parts[idx+2],
		MessageID: parts[idx+3],
	}
	if ref.GuildID == "" || ref.ChannelID == "" || ref.MessageID == "" {
		return messageRef{}, fmt.Errorf("invalid message link format")
	}
	return ref, nil
}

func init() {
	command.RegisterCommand(
		&RecruitOnboardCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.Staff),
	)
}
