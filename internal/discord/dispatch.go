package discord

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/command"
)

var mentionPattern = regexp.MustCompile(`<@!?\d+>`)

// onInteractionCreate routes slash commands through the registry.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	cmd, ok := command.Get(data.Name)
	if !ok {
		b.log.Warn().Str("command", data.Name).Msg("unknown slash command")
		return
	}

	// Resolution and synthesis can take a while; always defer.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.log.Error().Err(err).Str("command", data.Name).Msg("failed to defer interaction")
		return
	}

	var args string
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			args = opt.StringValue()
			break
		}
	}

	ctx := &slashContext{bot: b, s: s, event: i}
	if err := cmd.Run(ctx, args); err != nil {
		b.log.Error().Err(err).Str("command", data.Name).Msg("slash command failed")
		_ = ctx.Reply("❌ Error: " + shortError(err))
	}
	// A deferred interaction with no followup stays "thinking" forever.
	if !ctx.replied {
		_ = s.InteractionResponseDelete(i.Interaction)
	}
}

// onMessageCreate handles legacy text commands: an optional bot mention
// followed by a registered command word and its arguments.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	content := strings.TrimSpace(mentionPattern.ReplaceAllString(m.Content, ""))
	if content == "" {
		return
	}

	name, rest, _ := strings.Cut(content, " ")
	cmd, ok := command.Get(strings.ToLower(name))
	if !ok {
		return
	}

	ctx := &messageContext{bot: b, s: s, event: m}
	if err := cmd.Run(ctx, strings.TrimSpace(rest)); err != nil {
		b.log.Error().Err(err).Str("command", cmd.Name()).Msg("text command failed")
		if b.cfg.ShouldRespond("minimal") {
			_ = ctx.Reply("❌ Error: " + shortError(err))
		}
	}
}

// shortError keeps user-facing error text to a single readable line.
func shortError(err error) string {
	msg := err.Error()
	if r := []rune(msg); len(r) > 100 {
		return string(r[:100])
	}
	return msg
}
