package command

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCtx struct {
	guildID string
}

func (c *stubCtx) UserID() string                    { return "user-1" }
func (c *stubCtx) GuildID() string                   { return c.guildID }
func (c *stubCtx) UserVoiceChannel() (string, error) { return "", errors.New("not in voice") }
func (c *stubCtx) Reply(text string) error           { return nil }

type stubCommand struct {
	name    string
	aliases []string
	runs    int
	err     error
}

func (c *stubCommand) Name() string        { return c.name }
func (c *stubCommand) Description() string { return "stub" }
func (c *stubCommand) Aliases() []string   { return c.aliases }

func (c *stubCommand) Run(ctx RequestContext, args string) error {
	c.runs++
	return c.err
}

func (c *stubCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.name, Description: "stub"}
}

func TestRegistryLookupByNameAndAlias(t *testing.T) {
	cmd := &stubCommand{name: "test-echo", aliases: []string{"test-e"}}
	Register(cmd)

	got, ok := Get("test-echo")
	require.True(t, ok)
	assert.Equal(t, cmd, got)

	got, ok = Get("test-e")
	require.True(t, ok)
	assert.Equal(t, cmd, got)

	_, ok = Get("test-missing")
	assert.False(t, ok)
}

func TestAllDeduplicatesAliases(t *testing.T) {
	Register(&stubCommand{name: "test-dedupe", aliases: []string{"test-d1", "test-d2"}})

	seen := 0
	for _, cmd := range All() {
		if cmd.Name() == "test-dedupe" {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}

func TestWithGuildOnlyBlocksDMs(t *testing.T) {
	cmd := &stubCommand{name: "test-guilded"}
	wrapped := ApplyMiddlewares(cmd, WithGuildOnly())

	require.NoError(t, wrapped.Run(&stubCtx{guildID: ""}, ""))
	assert.Equal(t, 0, cmd.runs)

	require.NoError(t, wrapped.Run(&stubCtx{guildID: "guild-1"}, ""))
	assert.Equal(t, 1, cmd.runs)
}

func TestMiddlewarePreservesSlashDefinition(t *testing.T) {
	cmd := &stubCommand{name: "test-slash"}
	wrapped := ApplyMiddlewares(cmd, WithGuildOnly(), WithCommandLogger())

	sp, ok := wrapped.(SlashProvider)
	require.True(t, ok)
	def := sp.SlashDefinition()
	require.NotNil(t, def)
	assert.Equal(t, "test-slash", def.Name)
}

func TestCommandLoggerPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	cmd := &stubCommand{name: "test-failing", err: boom}
	wrapped := ApplyMiddlewares(cmd, WithCommandLogger())

	assert.ErrorIs(t, wrapped.Run(&stubCtx{guildID: "guild-1"}, ""), boom)
	assert.Equal(t, 1, cmd.runs)
}
