package utility

import (
	"fmt"
	"log"
	"strings"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

type AllocationRequestCommand struct{}

func (c *AllocationRequestCommand) Name() string { return "allocation-request" }
func (c *AllocationRequestCommand) Description() string {
	return "Submits an allocation request for review by Senior Staff+"
}
func (c *AllocationRequestCommand) Category() string     { return "Utility" }
func (c *AllocationRequestCommand) AllowAllGuilds() bool { return false }

func (c *AllocationRequestCommand) ComponentPrefixes() []string {
	return []string{allocPrefix}
}

func (c *AllocationRequestCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Your full name",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "onboarder",
				Description: "Your onboarder",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "date",
				Description: "Requested allocation date (e.g., 2026-08-30)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "ts3",
				Description: "Your Teamspeak UID",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "webid",
				Description: "Your Website ID",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "steamhex",
				Description: "Your Steam Hex",
				Required:    true,
			},
		},
	}
}

func (c *AllocationRequestCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	opts := e.ApplicationCommandData().Options

	channelID := sctx.Deps.Config.AllocationReviewChannelID
	if channelID == "" {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Configuration Error", "Review channel is not configured."))
	}

	applicant := bot.ResolveUser(s, e)
	name := strings.TrimSpace(command.OptionString(opts, "name"))
	onboarder := command.OptionUser(s, opts, "onboarder")
	date := strings.TrimSpace(command.OptionString(opts, "date"))
	ts3 := strings.TrimSpace(command.OptionString(opts, "ts3"))
	webID := strings.TrimSpace(command.OptionString(opts, "webid"))
	steamHex := strings.TrimSpace(command.OptionString(opts, "steamhex"))

	review := bot.InfoEmbed(
		"Allocation Request",
		"A new allocation request has been submitted and is pending review by Senior Staff or higher.\n\n"+
			"Reviewer Instruction: Prior to approval, please run `/rec-onboard [user]` to assign the Recruit role. "+
			"Approval should proceed only after the user has the Recruit role.",
	)
	review.Author = &discordgo.MessageEmbedAuthor{
		Name:    fmt.Sprintf("%s (%s)", applicant.Username, applicant.ID),
		IconURL: applicant.AvatarURL(""),
	}
	review.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: applicant.AvatarURL("")}
	review.Fields = []*discordgo.MessageEmbedField{
		{Name: "Applicant", Value: fmt.Sprintf("<@%s>", applicant.ID)},
		{Name: "Name", Value: name, Inline: true},
		{Name: "Onboarder", Value: fmt.Sprintf("<@%s>", onboarder.ID), Inline: true},
		{Name: "Requested Date", Value: date, Inline: true},
		{Name: "Teamspeak UID", Value: ts3, Inline: true},
		{Name: "Website ID", Value: webID, Inline: true},
		{Name: "Steam Hex", Value: steamHex, Inline: true},
		{Name: "Account Created", Value: accountCreated(applicant.ID), Inline: true},
		{Name: "Member Since", Value: memberSince(e.Member), Inline: true},
		{Name: "Current Roles", Value: currentRoles(e.Member)},
	}
	review.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Applicant ID: %s | Onboarder ID: %s", applicant.ID, onboarder.ID),
	}

	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{review},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Approve",
						Style:    discordgo.SuccessButton,
						CustomID: allocCustomID(allocApprove, applicant.ID),
					},
					discordgo.Button{
						Label:    "Deny",
						Style:    discordgo.DangerButton,
						CustomID: allocCustomID(allocDeny, applicant.ID),
					},
				},
			},
		},
	})
	if err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Configuration Error", "The configured review channel is invalid or not a text channel."))
	}

	return bot.RespondEmbedEphemeral(s, e, bot.SuccessEmbed(
		"Request Submitted",
		"Your allocation request has been submitted for review. You will be notified upon a decision.",
	))
}

// Component resolves approve/deny clicks on a pending review message.
func (c *AllocationRequestCommand) Component(cctx *command.ComponentInteractionContext) error {
	s := cctx.Session
	e := cctx.Event

	verdict, applicantID, ok := parseAllocCustomID(e.MessageComponentData().CustomID)
	if !ok {
		return nil
	}

	membership, err := bot.MembershipOf(s, e.GuildID, e.Member)
	if err != nil || !cctx.Deps.Resolver.Satisfies(membership, permissions.SeniorStaff) {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Insufficient Permission",
			"Senior Staff or higher is required to review allocation requests."))
	}

	reviewer := bot.ResolveUser(s, e)

	if verdict == allocDeny {
		return bot.UpdateMessage(s, e, bot.ErrorEmbed(
			"Allocation Request Denied",
			fmt.Sprintf("Denied by %s.", reviewer.Username),
		))
	}

	recruitRoleID := cctx.Deps.Config.RecruitRoleID
	if recruitRoleID == "" {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Configuration Error", "Recruit role is not configured."))
	}

	if _, err := s.GuildMember(e.GuildID, applicantID); err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Not Found", "The applicant is not present in this server."))
	}

	if err := s.GuildMemberRoleAdd(e.GuildID, applicantID, recruitRoleID); err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Role Assignment Failed",
			"Unable to assign the recruit role. Verify role hierarchy and permissions."))
	}

	c.notifyApplicant(s, e, applicantID, reviewer)

	return bot.UpdateMessage(s, e, bot.SuccessEmbed(
		"Allocation Request Approved",
		fmt.Sprintf("Approved by %s. Recruit role assigned.", reviewer.Username),
	))
}

// notifyApplicant DMs the applicant with the decision, echoing the details
// from the review embed. Best effort: closed DMs are not an error.
func (c *AllocationRequestCommand) notifyApplicant(s *discordgo.Session, e *discordgo.InteractionCreate, applicantID string, reviewer *discordgo.User) {
	getField := func(label string) string {
		if e.Message == nil || len(e.Message.Embeds) == 0 {
			return "N/A"
		}
		for _, f := range e.Message.Embeds[0].Fields {
			if strings.EqualFold(f.Name, label) {
				return f.Value
			}
		}
		return "N/A"
	}

	guildName := e.GuildID
	if g, err := s.State.Guild(e.GuildID); err == nil {
		guildName = g.Name
	}

	dm := bot.SuccessEmbed(
		"Allocation Approved",
		"Your allocation request has been reviewed and approved. You have been granted Recruit tags in the Discord. "+
			"Please review the details below and contact your onboarder if you have any questions.",
	)
	dm.Fields = []*discordgo.MessageEmbedField{
		{Name: "Server", Value: guildName},
		{Name: "Name", Value: getField("Name"), Inline: true},
		{Name: "Onboarder", Value: getField("Onboarder"), Inline: true},
		{Name: "Requested Date", Value: getField("Requested Date")},
		{Name: "Reviewer", Value: fmt.Sprintf("%s (%s)", reviewer.Username, reviewer.ID)},
	}

	ch, err := s.UserChannelCreate(applicantID)
	if err != nil {
		log.Printf("[WARN] Allocation: could not open DM with %s: %v", applicantID, err)
		return
	}
	if _, err := s.ChannelMessageSendEmbed(ch.ID, dm); err != nil {
		log.Printf("[WARN] Allocation: could not DM %s: %v", applicantID, err)
	}
}

func accountCreated(userID string) string {
	ts, err := discordgo.SnowflakeTimestamp(userID)
	if err != nil {
		return "Unknown"
	}
	return fmt.Sprintf("<t:%d:F>", ts.Unix())
}

func memberSince(m *discordgo.Member) string {
	if m == nil || m.JoinedAt.IsZero() {
		return "Unknown"
	}
	return fmt.Sprintf("<t:%d:F>", m.JoinedAt.Unix())
}

func currentRoles(m *discordgo.Member) string {
	if m == nil || len(m.Roles) == 0 {
		return "None"
	}
	mentions := make([]string, 0, len(m.Roles))
	for _, id := range m.Roles {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", id))
	}
	return strings.Join(mentions, ", ")
}

func init() {
	command.RegisterCommand(
		&AllocationRequestCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
	)
}
