package bot

import (
	"time"

	"community-ops/internal/storage"

	"github.com/bwmarrin/discordgo"
)

// LogCommand appends a command invocation to the guild's bounded history.
func LogCommand(s *discordgo.Session, stor *storage.Storage, guildID, channelID, userID, username, command string) error {
	if stor == nil || guildID == "" {
		return nil
	}

	var guildName, channelName string
	if g, err := s.State.Guild(guildID); err == nil {
		guildName = g.Name
	}
	if ch, err := s.State.Channel(channelID); err == nil {
		channelName = ch.Name
	}

	return stor.AppendCommandToHistory(guildID, storage.CommandHistoryRecord{
		Command:     command,
		ChannelID:   channelID,
		ChannelName: channelName,
		GuildName:   guildName,
		UserID:      userID,
		Username:    username,
		Datetime:    time.Now(),
	})
}
