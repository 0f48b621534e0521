package utility

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"community-ops/internal/bot"
	"community-ops/internal/command"
	"community-ops/internal/middleware"
	"community-ops/internal/permissions"

	"github.com/bwmarrin/discordgo"
)

// fivemPlayer is one entry of the FiveM players.json endpoint.
type fivemPlayer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ServerStatusCommand struct {
	// HTTPClient is swappable for tests; nil means a 10s-timeout default.
	HTTPClient *http.Client
}

func (c *ServerStatusCommand) Name() string        { return "status" }
func (c *ServerStatusCommand) Description() string { return "Shows the current status of the FiveM server" }
func (c *ServerStatusCommand) Category() string    { return "Utility" }
func (c *ServerStatusCommand) AllowAllGuilds() bool { return false }

func (c *ServerStatusCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "server",
				Description: "Select the server to check the status",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Server 1", Value: "1"},
				},
			},
		},
	}
}

func (c *ServerStatusCommand) Run(ctx interface{}) error {
	sctx, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sctx.Session
	e := sctx.Event
	cfg := sctx.Deps.Config

	server := command.OptionString(e.ApplicationCommandData().Options, "server")
	if cfg.FivemServerAddr == "" {
		return bot.RespondEmbedEphemeral(s, e, bot.ErrorEmbed("Configuration Error", "FIVEM_SERVER_1_IP is not configured."))
	}

	if err := bot.RespondDeferred(s, e); err != nil {
		return err
	}

	players, err := c.fetchPlayers(fmt.Sprintf("http://%s/players.json", cfg.FivemServerAddr))
	if err != nil {
		return bot.EditResponseEmbed(s, e, bot.ErrorEmbed("Fetch Failed", err.Error()))
	}

	embed := bot.InfoEmbed(
		fmt.Sprintf("Server %s Status", server),
		fmt.Sprintf("Players: %d/%d", len(players), cfg.FivemMaxPlayers),
	)
	embed.Fields = []*discordgo.MessageEmbedField{playerListField(players)}

	return bot.EditResponseEmbed(s, e, embed)
}

func (c *ServerStatusCommand) fetchPlayers(playersURL string) ([]fivemPlayer, error) {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequest(http.MethodGet, playersURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "MagonilaBot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var players []fivemPlayer
	if err := json.NewDecoder(resp.Body).Decode(&players); err != nil {
		return nil, err
	}
	return players, nil
}

// playerListField formats up to 25 players to stay inside embed limits.
func playerListField(players []fivemPlayer) *discordgo.MessageEmbedField {
	if len(players) == 0 {
		return &discordgo.MessageEmbedField{Name: "Players", Value: "There are currently no players online."}
	}

	limit := len(players)
	if limit > 25 {
		limit = 25
	}
	lines := make([]string, 0, limit)
	for _, p := range players[:limit] {
		lines = append(lines, fmt.Sprintf("[#%d] %s", p.ID, p.Name))
	}

	value := strings.Join(lines, "\n")
	if more := len(players) - limit; more > 0 {
		value += fmt.Sprintf("\n...and %d more.", more)
	}
	return &discordgo.MessageEmbedField{Name: "Players", Value: value}
}

func init() {
	command.RegisterCommand(
		&ServerStatusCommand{},
		middleware.WithCommandLogger(),
		middleware.WithGuildOnly(),
		middleware.WithMainGuildOnly(),
		middleware.WithLevelCheck(permissions.Member),
	)
}
