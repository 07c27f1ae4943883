package voice

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"voicerelay/internal/logging"
	"voicerelay/internal/voice/stream"
)

// DiscordConnector joins voice channels over an open discordgo session.
type DiscordConnector struct {
	dg      *discordgo.Session
	volume  float64
	timeout time.Duration
	log     zerolog.Logger

	join func(guildID, channelID string) (*discordgo.VoiceConnection, error)
}

func NewDiscordConnector(dg *discordgo.Session, volume float64, timeout time.Duration) *DiscordConnector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &DiscordConnector{dg: dg, volume: volume, timeout: timeout, log: logging.For("connector")}
	c.join = func(guildID, channelID string) (*discordgo.VoiceConnection, error) {
		// mute=false, deaf=true: the relay never listens.
		return c.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	}
	return c
}

// Join connects to a voice channel, bounded by the configured connect
// timeout. A handshake that outlives the bound fails the caller; if it
// lands afterwards anyway, the stray connection is disconnected.
func (c *DiscordConnector) Join(guildID, channelID string) (Connection, error) {
	type joinResult struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	result := make(chan joinResult, 1)
	go func() {
		vc, err := c.join(guildID, channelID)
		result <- joinResult{vc: vc, err: err}
	}()

	select {
	case r := <-result:
		if r.err != nil {
			return nil, fmt.Errorf("join voice channel %s: %w", channelID, r.err)
		}
		return &discordConnection{vc: r.vc, volume: c.volume, stop: make(chan struct{}), log: c.log}, nil
	case <-time.After(c.timeout):
		go func() {
			if r := <-result; r.err == nil && r.vc != nil {
				c.log.Warn().Str("channel", channelID).Msg("late voice handshake discarded")
				_ = r.vc.Disconnect()
			}
		}()
		return nil, fmt.Errorf("join voice channel %s: timed out after %s", channelID, c.timeout)
	}
}

// discordConnection streams one audio source into a discordgo voice
// connection. Disconnect is safe to call at any point and from any
// goroutine; playback then winds down and the completion fires with the
// stream loop's outcome.
type discordConnection struct {
	vc       *discordgo.VoiceConnection
	volume   float64
	stop     chan struct{}
	stopOnce sync.Once
	log      zerolog.Logger
}

func (c *discordConnection) Play(src Source, onDone func(error)) {
	go func() {
		pcm, cleanup, err := stream.Open(src.Input(), c.volume)
		if err != nil {
			onDone(fmt.Errorf("open stream: %w", err))
			return
		}
		defer cleanup()

		err = stream.ToDiscord(pcm, c.stop, c.vc)
		// ReadFull reports the end of the pipe as (Unexpected)EOF; that is
		// the natural end of the track, not a failure.
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = nil
		}
		onDone(err)
	}()
}

func (c *discordConnection) Disconnect() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return c.vc.Disconnect()
}

func (c *discordConnection) ChannelID() string {
	return c.vc.ChannelID
}
