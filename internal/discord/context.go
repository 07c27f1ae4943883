package discord

import (
	"github.com/bwmarrin/discordgo"
)

// slashContext adapts a slash interaction to command.RequestContext. The
// dispatcher defers the interaction before running the command, so every
// Reply goes out as a followup.
type slashContext struct {
	bot     *Bot
	s       *discordgo.Session
	event   *discordgo.InteractionCreate
	replied bool
}

func (c *slashContext) UserID() string {
	if c.event.Member != nil && c.event.Member.User != nil {
		return c.event.Member.User.ID
	}
	if c.event.User != nil {
		return c.event.User.ID
	}
	return ""
}

func (c *slashContext) GuildID() string {
	return c.event.GuildID
}

func (c *slashContext) UserVoiceChannel() (string, error) {
	return c.bot.FindUserVoiceState(c.event.GuildID, c.UserID())
}

func (c *slashContext) Reply(text string) error {
	c.replied = true
	_, err := c.s.FollowupMessageCreate(c.event.Interaction, false, &discordgo.WebhookParams{
		Content: text,
	})
	return err
}

// messageContext adapts a legacy text message to command.RequestContext.
type messageContext struct {
	bot   *Bot
	s     *discordgo.Session
	event *discordgo.MessageCreate
}

func (c *messageContext) UserID() string {
	return c.event.Author.ID
}

func (c *messageContext) GuildID() string {
	return c.event.GuildID
}

func (c *messageContext) UserVoiceChannel() (string, error) {
	return c.bot.FindUserVoiceState(c.event.GuildID, c.event.Author.ID)
}

func (c *messageContext) Reply(text string) error {
	_, err := c.s.ChannelMessageSend(c.event.ChannelID, text)
	return err
}
