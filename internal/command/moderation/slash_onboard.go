package moderation

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

// Departments a recruit can be onboarded into. The value is matched
// against guild role names.
var departmentChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Baton Rouge Police Department", Value: "Police Department"},
	{Name: "East Baton Rouge Parish Sheriff's Office", Value: "Sheriffs Office"},
	{Name: "Louisiana State Police", Value: "State Police"},
	{Name: "Baton Rouge Fire Department", Value: "Fire Rescue"},
	{Name: "Civilian Operations", Value: "Civilian Operations"},
	{Name: "Communications", Value: "Communications"},
}

type OnboardCommand struct{}

func (c *OnboardCommand) Name() string { return "onboard" }
func (c *OnboardCommand) Description() string {
	return "Onboard a Recruit into the community (sets nickname, removes Recruit, assigns department)"
}
func (c *OnboardCommand) Category() string     { return "Moderation" }
func (c *OnboardCommand) AllowAllGuilds() bool { return false }

func (c *OnboardCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "User to onboard (must currently have Recruit)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "User's roleplay name (nickname will be set)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "department",
				Description: "Department to assign",
				Required:    true,
				Choices:     departmentChoices,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "webid",
				Description: "Website ID (used for logging)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "ts3",
				Description: "Teamspeak UID (used for logging)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "steamhex",
				Description: "Steam Hex (used for logging)",
				Required:    true,
			},
		},
	}
}

func (c *OnboardCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	opts := e.ApplicationCommandData().Options

	target := command.OptionUser(s, opts, "user")
	rpName := command.OptionString(opts, "name")
	department := command.OptionString(opts, "department")
	webID := command.OptionString(opts, "webid")
	ts3 := command.OptionString(opts, "ts3")
	steamHex := command.OptionString(opts, "steamhex")

	recruitRoleID := sctx.Deps.Config.RecruitRoleID
	if recruitRoleID == "" {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Configuration Error", "RECRUIT_ROLE_ID is not configured."))
	}

	member, err := s.GuildMember(e.GuildID, target.ID)
	if err != nil {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Not Found", "The specified user is not in this guild."))
	}
	if !slices.Contains(member.Roles, recruitRoleID) {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Invalid State", "The target does not have the Recruit role. Assign it with /rec-onboard first."))
	}

	if err := bot.RespondDeferredEphemeral(s, e); err != nil {
		return err
	}

	deptRole, err := findDepartmentRole(s, e.GuildID, department)
	if err != nil {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Role Missing",
			fmt.Sprintf("Could not find a role matching %q. Please create or rename the role to match.", department)))
	}

	// Failures on the individual steps are tolerated, same as a human
	// moderator fixing them up by hand afterwards.
	if err := s.GuildMemberNickname(e.GuildID, target.ID, rpName); err != nil {
		log.Printf("[WARN] Onboard: failed to set nickname for %s: %v", target.ID, err)
	}
	if err := s.GuildMemberRoleRemove(e.GuildID, target.ID, recruitRoleID); err != nil {
		log.Printf("[WARN] Onboard: failed to remove recruit role from %s: %v", target.ID, err)
	}
	if err := s.GuildMemberRoleAdd(e.GuildID, target.ID, deptRole.ID); err != nil {
		log.Printf("[WARN] Onboard: failed to assign department role to %s: %v", target.ID, err)
	}

	invoker := bot.ResolveUser(s, e)
	summary := bot.InfoEmbed("User Onboarded", "")
	summary.Fields = []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("<@%s> (%s)", target.ID, target.ID)},
		{Name: "Roleplay Name", Value: rpName, Inline: true},
		{Name: "Department", Value: department, Inline: true},
		{Name: "Website ID", Value: webID, Inline: true},
		{Name: "Teamspeak UID", Value: ts3, Inline: true},
		{Name: "Steam Hex", Value: steamHex, Inline: true},
		{Name: "Moderator", Value: fmt.Sprintf("<@%s>", invoker.ID)},
	}
	summary.Timestamp = time.Now().Format(time.RFC3339)

	if err := bot.MessageEmbed(s, e.ChannelID, summary); err != nil {
		log.Printf("[WARN] Onboard: failed to post summary: %v", err)
	}

	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed(
		"Onboarding Complete",
		fmt.Sprintf("Successfully onboarded <@%s> into %s.", target.ID, department),
	))
}

// findDepartmentRole matches a guild role by department name, exact first
// then substring, both case-insensitive.
func findDepartmentRole(s *discordgo.Session, guildID, department string) (*discordgo.Role, error) {
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(department)
	for _, r := range roles {
		if strings.ToLower(r.Name) == needle {
			return r, nil
		}
	}
	for _, r := range roles {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no role matching %q", department)
}

func init() {
	command.RegisterCommand(
		&OnboardCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.Staff),
	)
}
