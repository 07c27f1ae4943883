package voice

import "github.com/bwmarrin/discordgo"

// LeaveCommand is the slash-visible name for stopping; it shares the
// StopCommand behavior.
type LeaveCommand struct {
	StopCommand
}

func (c *LeaveCommand) Name() string        { return "leave" }
func (c *LeaveCommand) Description() string { return "Leave the voice channel" }
func (c *LeaveCommand) Aliases() []string   { return []string{} }

func (c *LeaveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}
