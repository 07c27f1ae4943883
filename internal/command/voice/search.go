package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"voicerelay/internal/command"
	"voicerelay/internal/config"
	"voicerelay/internal/resolver"
)

type SearchCommand struct {
	Resolver resolver.Resolver
	Cfg      *config.Config
}

func (c *SearchCommand) Name() string        { return "search" }
func (c *SearchCommand) Description() string { return "Search for audio streams" }
func (c *SearchCommand) Aliases() []string   { return []string{} }

func (c *SearchCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "What to search for",
				Required:    true,
			},
		},
	}
}

func (c *SearchCommand) Run(ctx command.RequestContext, args string) error {
	if args == "" {
		return ctx.Reply("Usage: search <query>")
	}

	rctx, cancel := context.WithTimeout(context.Background(), c.Cfg.ResolveTimeout)
	defer cancel()

	tracks, err := c.Resolver.Search(rctx, args)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			return ctx.Reply("❌ No results found!")
		}
		return fmt.Errorf("search %q: %w", args, err)
	}

	var b strings.Builder
	b.WriteString("**Search Results:**\n")
	for i, t := range tracks {
		mins := int(t.Duration.Minutes())
		secs := int(t.Duration.Seconds()) % 60
		fmt.Fprintf(&b, "%d. %s (%d:%02d)\n", i+1, truncate(t.Title, 50), mins, secs)
	}
	return ctx.Reply(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
