package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/command"
	"voicerelay/internal/config"
	"voicerelay/internal/resolver"
	playback "voicerelay/internal/voice"
)

type PlayCommand struct {
	Manager  *playback.Manager
	Resolver resolver.Resolver
	Cfg      *config.Config
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play audio from a search query or URL" }
func (c *PlayCommand) Aliases() []string   { return []string{"yt"} }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Song name or link",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx command.RequestContext, args string) error {
	if args == "" {
		return ctx.Reply("Usage: play <query or URL>")
	}

	channelID, err := ctx.UserVoiceChannel()
	if err != nil {
		if c.Cfg.ShouldRespond("minimal") {
			return ctx.Reply("❌ Join a voice channel first!")
		}
		return nil
	}

	if c.Cfg.ShouldRespond("normal") {
		_ = ctx.Reply(fmt.Sprintf("🔍 Searching: %s", args))
	}

	rctx, cancel := context.WithTimeout(context.Background(), c.Cfg.ResolveTimeout)
	defer cancel()

	streamURL, err := c.Resolver.ResolveStream(rctx, args)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			if c.Cfg.ShouldRespond("minimal") {
				return ctx.Reply("❌ Couldn't find that!")
			}
			return nil
		}
		return fmt.Errorf("resolve %q: %w", args, err)
	}

	if err := c.Manager.Play(ctx.GuildID(), channelID, playback.StreamSource(streamURL)); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	if c.Cfg.ShouldRespond("minimal") {
		return ctx.Reply("🎵 Now playing!")
	}
	return nil
}
