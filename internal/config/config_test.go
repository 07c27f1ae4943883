package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "test-token", cfg.DiscordToken)
	assert.Equal(t, "VoiceRelay", cfg.BotName)
	assert.Equal(t, "localhost:5000", cfg.APIAddr)
	assert.Equal(t, "minimal", cfg.Verbosity)
	assert.Equal(t, 30*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, "en", cfg.TTSLang)
	assert.Equal(t, 1.0, cfg.DefaultVolume)
	assert.True(t, cfg.InitSlashCommands)
}

func TestNewRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "placeholder")
	require.NoError(t, os.Unsetenv("DISCORD_TOKEN"))

	_, err := New()
	assert.Error(t, err)
}

func TestNewReadsOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("VERBOSITY", "verbose")
	t.Setenv("API_ADDR", "0.0.0.0:8080")
	t.Setenv("RESOLVE_TIMEOUT", "5s")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "verbose", cfg.Verbosity)
	assert.Equal(t, "0.0.0.0:8080", cfg.APIAddr)
	assert.Equal(t, 5*time.Second, cfg.ResolveTimeout)
}

func TestShouldRespond(t *testing.T) {
	silent := &Config{Verbosity: "silent"}
	assert.False(t, silent.ShouldRespond("minimal"))
	assert.False(t, silent.ShouldRespond("verbose"))

	minimal := &Config{Verbosity: "minimal"}
	assert.True(t, minimal.ShouldRespond("minimal"))
	assert.False(t, minimal.ShouldRespond("normal"))

	verbose := &Config{Verbosity: "verbose"}
	assert.True(t, verbose.ShouldRespond("minimal"))
	assert.True(t, verbose.ShouldRespond("verbose"))

	// unknown levels never suppress responses
	odd := &Config{Verbosity: "chatty"}
	assert.True(t, odd.ShouldRespond("minimal"))
}
