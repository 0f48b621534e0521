package utility

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"

	"github.com/bwmarrin/discordgo"
)

type MediaCommand struct{}

func (c *MediaCommand) Name() string { return "media" }
func (c *MediaCommand) Description() string {
	return "Post a media link to the media notification channel"
}
func (c *MediaCommand) Category() string     { return "Utility" }
func (c *MediaCommand) AllowAllGuilds() bool { return false }

func (c *MediaCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "Video URL (must start with https:// and be an allowed domain)",
				Required:    true,
			},
		},
	}
}

func (c *MediaCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	cfg := sctx.Deps.Config

	if err := bot.RespondDeferredEphemeral(s, e); err != nil {
		return err
	}

	link := strings.TrimSpace(command.OptionString(e.ApplicationCommandData().Options, "url"))
	allowed := cfg.MediaAllowedDomains

	if !isAllowedVideoURL(link, allowed) {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Invalid URL",
			fmt.Sprintf("Please provide a valid link from: %s", strings.Join(allowed, ", "))))
	}

	if cfg.MediaNotifyChannelID == "" {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Configuration Error", "MEDIA_NOTIFY_CHANNEL_ID is not set."))
	}

	// When a media role is configured, only its members can post.
	if cfg.MediaNotifyRoleID != "" && (e.Member == nil || !slices.Contains(e.Member.Roles, cfg.MediaNotifyRoleID)) {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Permission Denied", "This command is restricted to members with the Media role."))
	}

	invoker := bot.ResolveUser(s, e)
	title, color := mediaSiteStyle(link)

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("%s posted: [Watch here](%s)", invoker.Username, link),
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if cfg.MediaLogoURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: cfg.MediaLogoURL}
	}

	_, err := s.ChannelMessageSendComplex(cfg.MediaNotifyChannelID, &discordgo.MessageSend{
		Content: "Media Notified",
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Configuration Error", "Media notification channel is invalid or inaccessible."))
	}

	return bot.EditResponseEmbed(s, e, bot.SuccessEmbed("Posted", "Your video link has been sent to the media notification channel."))
}

// isAllowedVideoURL accepts only https links whose host is one of the
// allowed domains or a subdomain of one.
func isAllowedVideoURL(link string, allowedDomains []string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range allowedDomains {
		dom := strings.ToLower(strings.TrimSpace(d))
		if dom == "" {
			continue
		}
		if host == dom || strings.HasSuffix(host, "."+dom) {
			return true
		}
	}
	return false
}

// mediaSiteStyle picks embed title and color per video site.
func mediaSiteStyle(link string) (string, int) {
	u, err := url.Parse(link)
	if err != nil {
		return "New Media", bot.ColorInfo
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		return "YouTube Upload", 0xFF0000
	case strings.Contains(host, "tiktok.com"):
		return "TikTok Post", 0x000000
	case strings.Contains(host, "twitch.tv"):
		return "Twitch Stream", 0x9146FF
	}
	return "New Media", bot.ColorInfo
}

func init() {
	command.RegisterCommand(
		&MediaCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
	)
}
