package voice

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/command"
	"voicerelay/internal/config"
	"voicerelay/internal/tts"
	playback "voicerelay/internal/voice"
)

type SayCommand struct {
	Manager *playback.Manager
	Synth   tts.Synthesizer
	Cfg     *config.Config
}

func (c *SayCommand) Name() string        { return "say" }
func (c *SayCommand) Description() string { return "Speak a message in your voice channel" }
func (c *SayCommand) Aliases() []string   { return []string{} }

func (c *SayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Text to speak",
				Required:    true,
			},
		},
	}
}

func (c *SayCommand) Run(ctx command.RequestContext, args string) error {
	if args == "" {
		return ctx.Reply("Usage: say <message>")
	}

	channelID, err := ctx.UserVoiceChannel()
	if err != nil {
		if c.Cfg.ShouldRespond("minimal") {
			return ctx.Reply("❌ Join a voice channel first!")
		}
		return nil
	}

	sctx, cancel := context.WithTimeout(context.Background(), c.Cfg.ResolveTimeout)
	defer cancel()

	artifact, err := c.Synth.Synthesize(sctx, args, c.Cfg.TTSLang)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	if err := c.Manager.Play(ctx.GuildID(), channelID, playback.SpeechSource(artifact)); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	if c.Cfg.ShouldRespond("normal") {
		return ctx.Reply(fmt.Sprintf("🗣️ Saying: %s", args))
	}
	return nil
}
