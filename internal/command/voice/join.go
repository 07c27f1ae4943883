package voice

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/command"
	"voicerelay/internal/config"
	playback "voicerelay/internal/voice"
)

type JoinCommand struct {
	Manager *playback.Manager
	Cfg     *config.Config
}

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Join your voice channel" }
func (c *JoinCommand) Aliases() []string   { return []string{} }

func (c *JoinCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *JoinCommand) Run(ctx command.RequestContext, args string) error {
	channelID, err := ctx.UserVoiceChannel()
	if err != nil {
		if c.Cfg.ShouldRespond("minimal") {
			return ctx.Reply("❌ Join a voice channel first!")
		}
		return nil
	}

	if err := c.Manager.Join(ctx.GuildID(), channelID); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	if c.Cfg.ShouldRespond("normal") {
		return ctx.Reply("✅ Joined!")
	}
	return nil
}
