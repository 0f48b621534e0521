package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorInfo    = 0x2B6CB0
	ColorSuccess = 0x2F855A
	ColorError   = 0xC53030
)

// InfoEmbed builds a neutral informational embed.
func InfoEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       ColorInfo,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// SuccessEmbed builds a green embed for completed operations.
func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       ColorSuccess,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// ErrorEmbed builds a red embed for refusals and failures.
func ErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       ColorError,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}
