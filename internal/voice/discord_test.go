package voice

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordConnectorJoinTimesOut(t *testing.T) {
	c := NewDiscordConnector(nil, 1.0, 25*time.Millisecond)
	c.join = func(guildID, channelID string) (*discordgo.VoiceConnection, error) {
		time.Sleep(500 * time.Millisecond)
		return nil, errors.New("handshake never finished")
	}

	start := time.Now()
	conn, err := c.Join("guild-1", "chan-1")
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 400*time.Millisecond, "join must fail at the configured bound")
}

func TestDiscordConnectorJoinPropagatesErrors(t *testing.T) {
	c := NewDiscordConnector(nil, 1.0, time.Second)
	c.join = func(guildID, channelID string) (*discordgo.VoiceConnection, error) {
		return nil, errors.New("missing permissions")
	}

	_, err := c.Join("guild-1", "chan-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing permissions")
}

func TestDiscordConnectorDefaultsTimeout(t *testing.T) {
	c := NewDiscordConnector(nil, 1.0, 0)
	assert.Equal(t, 30*time.Second, c.timeout)
}

func TestManagerWrapsConnectTimeout(t *testing.T) {
	c := NewDiscordConnector(nil, 1.0, 10*time.Millisecond)
	var joins atomic.Int32
	c.join = func(guildID, channelID string) (*discordgo.VoiceConnection, error) {
		joins.Add(1)
		time.Sleep(200 * time.Millisecond)
		return nil, errors.New("too slow")
	}

	m := NewManager(c)
	err := m.Play("guild-1", "chan-1", StreamSource("https://example.com/a"))
	require.ErrorIs(t, err, ErrConnectFailed)
	assert.False(t, m.IsActive("guild-1"))
	assert.Equal(t, int32(1), joins.Load())
}
