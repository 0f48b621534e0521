package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageLink(t *testing.T) {
	ref, err := parseMessageLink("https://discord.com/channels/111/222/333")
	require.NoError(t, err)
	assert.Equal(t, "111", ref.GuildID)
	assert.Equal(t, "222", ref.ChannelID)
	assert.Equal(t, "333", ref.MessageID)
}

func TestParseMessageLinkPTBDomain(t *testing.T) {
	ref, err := parseMessageLink("https://ptb.discord.com/channels/111/222/333")
	require.NoError(t, err)
	assert.Equal(t, "333", ref.MessageID)
}

func TestParseMessageLinkRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"not a url at all %%%",
		"https://discord.com/channels/111/222",
		"https://discord.com/users/111",
	}
	for _, link := range cases {
		_, err := parseMessageLink(link)
		assert.Error(t, err, "link %q should not parse", link)
	}
}
