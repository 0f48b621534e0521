package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedVideoURL(t *testing.T) {
	allowed := []string{"youtube.com", "youtu.be", "tiktok.com", "twitch.tv"}

	assert.True(t, isAllowedVideoURL("https://youtube.com/watch?v=abc", allowed))
	assert.True(t, isAllowedVideoURL("https://www.youtube.com/watch?v=abc", allowed))
	assert.True(t, isAllowedVideoURL("https://youtu.be/abc", allowed))
	assert.True(t, isAllowedVideoURL("https://clips.twitch.tv/xyz", allowed))

	// http is rejected outright
	assert.False(t, isAllowedVideoURL("http://youtube.com/watch?v=abc", allowed))
	// lookalike hosts are not subdomains
	assert.False(t, isAllowedVideoURL("https://notyoutube.com/watch", allowed))
	assert.False(t, isAllowedVideoURL("https://youtube.com.evil.net/watch", allowed))
	assert.False(t, isAllowedVideoURL("https://vimeo.com/123", allowed))
	assert.False(t, isAllowedVideoURL("not a url", allowed))
	assert.False(t, isAllowedVideoURL("", allowed))
}

func TestMediaSiteStyle(t *testing.T) {
	title, color := mediaSiteStyle("https://www.youtube.com/watch?v=abc")
	assert.Equal(t, "YouTube Upload", title)
	assert.Equal(t, 0xFF0000, color)

	title, _ = mediaSiteStyle("https://www.tiktok.com/@user/video/1")
	assert.Equal(t, "TikTok Post", title)

	title, color = mediaSiteStyle("https://example.com/clip")
	assert.Equal(t, "New Media", title)
	assert.Equal(t, 0x2B6CB0, color)
}
