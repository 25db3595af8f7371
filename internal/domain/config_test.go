package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotNil(t, config)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 5001, config.Server.Port)
	assert.Zero(t, config.Server.RateLimit)
	assert.Equal(t, "downloads", config.Download.OutputDir)
	assert.Equal(t, "yt-dlp", config.Extractor.Binary)
	assert.Equal(t, 60*time.Second, config.Extractor.ProbeTimeout)
	assert.Equal(t, 30*time.Minute, config.Extractor.FetchTimeout)
	assert.Equal(t, "youtube_cookies.txt", config.Extractor.CookieFiles["youtube"])
	assert.Equal(t, "instagram_cookies.txt", config.Extractor.CookieFiles["instagram"])
	assert.Equal(t, HistoryDriverMemory, config.History.Driver)
	assert.Equal(t, 50, config.History.ListLimit)
	assert.Empty(t, config.Auth.Tokens)
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, SizePolicy(config.Formats.SizeLimits).Validate())
}
