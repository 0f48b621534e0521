package utility

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

var (
	canonicalRe = regexp.MustCompile(`(?i)<link[^>]+rel=["']canonical["'][^>]+href=["']([^"']+)["']`)
	ogURLRe     = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:url["'][^>]+content=["']([^"']+)["']`)
)

type WebLookupCommand struct {
	// HTTPClient is swappable for tests; nil means a 10s-timeout default.
	HTTPClient *http.Client
}

func (c *WebLookupCommand) Name() string { return "weblookup" }
func (c *WebLookupCommand) Description() string {
	return "Lookup a member on the website by Web ID and return a quick link"
}
func (c *WebLookupCommand) Category() string     { return "Utility" }
func (c *WebLookupCommand) AllowAllGuilds() bool { return false }

func (c *WebLookupCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "id",
				Description: "The Web ID to look up (numeric or slug, as used on the website)",
				Required:    true,
			},
		},
	}
}

func (c *WebLookupCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	cfg := sctx.Deps.Config

	if cfg.WebsiteBaseURL == "" {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Configuration Error", "WEBSITE_BASE_URL is not configured."))
	}

	rawID := strings.TrimSpace(command.OptionString(e.ApplicationCommandData().Options, "id"))
	profileURL := buildProfileURL(cfg.WebsiteBaseURL, cfg.WebsiteProfilePath, rawID)
	profileURL = c.resolveProfileURL(profileURL)

	invoker := bot.ResolveUser(s, e)
	embed := bot.InfoEmbed("Website Profile Lookup", "Use the button below to open the member's profile.")
	embed.URL = profileURL
	embed.Author = &discordgo.MessageEmbedAuthor{
		Name:    invoker.Username,
		IconURL: invoker.AvatarURL(""),
	}

	return s.InteractionRespond(e.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label: "View Profile",
							Style: discordgo.LinkButton,
							URL:   profileURL,
						},
					},
				},
			},
		},
	})
}

// buildProfileURL joins base, profile path and ID. A "-x" suffix is added
// so the website's slug auto-correct issues a redirect to the full URL.
func buildProfileURL(base, profilePath, rawID string) string {
	base = strings.TrimSuffix(base, "/")
	profilePath = strings.Trim(profilePath, "/")
	return fmt.Sprintf("%s/%s/%s-x", base, profilePath, url.PathEscape(rawID))
}

// resolveProfileURL follows the website's slug redirect, falling back to
// the canonical/og:url found in the page HTML. Best effort: on any failure
// the constructed URL is returned unchanged.
func (c *WebLookupCommand) resolveProfileURL(profileURL string) string {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	noRedirect := *client
	noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	if resp, err := noRedirect.Get(profileURL); err == nil {
		loc := resp.Header.Get("Location")
		resp.Body.Close()
		if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
			return loc
		}
	}

	resp, err := client.Get(profileURL)
	if err != nil {
		return profileURL
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return profileURL
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return profileURL
	}
	if found := extractCanonicalURL(string(body)); found != "" {
		return found
	}
	return profileURL
}

// extractCanonicalURL pulls a canonical or og:url profile link out of HTML.
func extractCanonicalURL(html string) string {
	for _, re := range []*regexp.Regexp{canonicalRe, ogURLRe} {
		if m := re.FindStringSubmatch(html); len(m) == 2 {
			found := strings.TrimSpace(m[1])
			if strings.HasPrefix(found, "http") && strings.Contains(found, "/profile/") {
				return found
			}
		}
	}
	return ""
}

func init() {
	command.RegisterCommand(
		&WebLookupCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.StaffInTraining),
	)
}
