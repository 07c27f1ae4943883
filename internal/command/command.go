// Package command defines the chat command contract shared by slash
// interactions and legacy text messages, with a registry and middleware
// chain for dispatch.
package command

import "github.com/bwmarrin/discordgo"

// RequestContext is the single abstraction every entry point implements:
// slash interactions and legacy text messages look identical to commands.
type RequestContext interface {
	UserID() string
	GuildID() string

	// UserVoiceChannel returns the voice channel the issuing user currently
	// occupies, or an error when they are not in one.
	UserVoiceChannel() (string, error)

	// Reply sends text back to where the request came from.
	Reply(text string) error
}

// Command is one chat command.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Run(ctx RequestContext, args string) error
}

// SlashProvider is implemented by commands that register as slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}
