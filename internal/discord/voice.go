package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ErrNotInVoice reports a user who is not in any voice channel.
var ErrNotInVoice = errors.New("user not in any voice channel")

// FindUserVoiceState returns the channel a user occupies in a guild.
func (b *Bot) FindUserVoiceState(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", ErrNotInVoice
}

// GuildOfChannel implements api.ChannelResolver.
func (b *Bot) GuildOfChannel(channelID string) (string, error) {
	ch, err := b.dg.State.Channel(channelID)
	if err != nil {
		ch, err = b.dg.Channel(channelID)
		if err != nil {
			return "", fmt.Errorf("channel %s not found", channelID)
		}
	}
	if ch.Type != discordgo.ChannelTypeGuildVoice && ch.Type != discordgo.ChannelTypeGuildStageVoice {
		return "", fmt.Errorf("channel %s is not a voice channel", channelID)
	}
	return ch.GuildID, nil
}

// UserVoiceChannel implements api.ChannelResolver: it scans every guild
// the bot can see for the user's voice state.
func (b *Bot) UserVoiceChannel(userID string) (guildID, channelID string, ok bool) {
	b.dg.State.RLock()
	defer b.dg.State.RUnlock()

	for _, g := range b.dg.State.Guilds {
		for _, vs := range g.VoiceStates {
			if vs.UserID == userID {
				return g.ID, vs.ChannelID, true
			}
		}
	}
	return "", "", false
}
