package voice

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/command"
	"voicerelay/internal/config"
	"voicerelay/internal/resolver"
	playback "voicerelay/internal/voice"
)

type StreamCommand struct {
	Manager  *playback.Manager
	Resolver resolver.Resolver
	Cfg      *config.Config
}

func (c *StreamCommand) Name() string        { return "stream" }
func (c *StreamCommand) Description() string { return "Play a direct stream URL" }
func (c *StreamCommand) Aliases() []string   { return []string{} }

func (c *StreamCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "Stream URL",
				Required:    true,
			},
		},
	}
}

func (c *StreamCommand) Run(ctx command.RequestContext, args string) error {
	if !resolver.IsURL(args) {
		return ctx.Reply("Usage: stream <URL>")
	}

	channelID, err := ctx.UserVoiceChannel()
	if err != nil {
		if c.Cfg.ShouldRespond("minimal") {
			return ctx.Reply("❌ Join a voice channel first!")
		}
		return nil
	}

	rctx, cancel := context.WithTimeout(context.Background(), c.Cfg.ResolveTimeout)
	defer cancel()

	streamURL, err := c.Resolver.ResolveStream(rctx, args)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", args, err)
	}

	if err := c.Manager.Play(ctx.GuildID(), channelID, playback.StreamSource(streamURL)); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	if c.Cfg.ShouldRespond("normal") {
		return ctx.Reply(fmt.Sprintf("📡 Streaming: %s", args))
	}
	return nil
}
