package voice

import (
	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/command"
	"voicerelay/internal/config"
	playback "voicerelay/internal/voice"
)

type StopCommand struct {
	Manager *playback.Manager
	Cfg     *config.Config
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback and leave the voice channel" }
func (c *StopCommand) Aliases() []string   { return []string{} }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StopCommand) Run(ctx command.RequestContext, args string) error {
	stopped := c.Manager.Stop(ctx.GuildID())

	if !c.Cfg.ShouldRespond("minimal") {
		return nil
	}
	if stopped {
		return ctx.Reply("⏹️ Stopped!")
	}
	return ctx.Reply("Nothing is playing.")
}
