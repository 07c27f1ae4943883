// Package discord runs the gateway side of the relay: the discordgo
// session, slash and legacy text command dispatch, and the lookups the
// HTTP control API needs.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"voicerelay/internal/command"
	voicecmd "voicerelay/internal/command/voice"
	"voicerelay/internal/config"
	"voicerelay/internal/logging"
	"voicerelay/internal/resolver"
	"voicerelay/internal/tts"
	"voicerelay/internal/voice"
)

// Bot is the Discord side of the relay.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	manager  *voice.Manager
	resolver resolver.Resolver
	synth    tts.Synthesizer
	log      zerolog.Logger

	mu         sync.Mutex
	registered map[string]bool // guilds with slash commands installed
}

// NewBot creates the session, the session manager bound to it, and
// registers all voice commands.
func NewBot(cfg *config.Config, res resolver.Resolver, synth tts.Synthesizer) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:         dg,
		cfg:        cfg,
		resolver:   res,
		synth:      synth,
		log:        logging.For("discord"),
		registered: make(map[string]bool),
	}
	b.manager = voice.NewManager(voice.NewDiscordConnector(dg, cfg.DefaultVolume, cfg.ConnectTimeout))
	b.registerVoiceCommands()
	return b, nil
}

// Manager exposes the session manager to the other entry points.
func (b *Bot) Manager() *voice.Manager {
	return b.manager
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.configureIntents()
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onInteractionCreate)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")
	b.manager.StopAll()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent
}

func (b *Bot) registerVoiceCommands() {
	mws := []command.Middleware{
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	}
	stop := voicecmd.StopCommand{Manager: b.manager, Cfg: b.cfg}
	for _, cmd := range []command.Command{
		&voicecmd.PlayCommand{Manager: b.manager, Resolver: b.resolver, Cfg: b.cfg},
		&voicecmd.SayCommand{Manager: b.manager, Synth: b.synth, Cfg: b.cfg},
		&voicecmd.StreamCommand{Manager: b.manager, Resolver: b.resolver, Cfg: b.cfg},
		&voicecmd.SearchCommand{Resolver: b.resolver, Cfg: b.cfg},
		&voicecmd.JoinCommand{Manager: b.manager, Cfg: b.cfg},
		&stop,
		&voicecmd.LeaveCommand{StopCommand: stop},
	} {
		command.Register(command.ApplyMiddlewares(cmd, mws...))
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		b.installSlashCommands(g.ID)
	}
	b.log.Info().Str("user", s.State.User.Username).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.Guild.ID).Str("name", g.Guild.Name).Msg("guild available")
	b.installSlashCommands(g.Guild.ID)
}

func (b *Bot) installSlashCommands(guildID string) {
	if !b.cfg.InitSlashCommands {
		return
	}
	b.mu.Lock()
	done := b.registered[guildID]
	b.registered[guildID] = true
	b.mu.Unlock()
	if done {
		return
	}

	for _, cmd := range command.All() {
		sp, ok := cmd.(command.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		if _, err := b.dg.ApplicationCommandCreate(b.dg.State.User.ID, guildID, def); err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Str("command", def.Name).Msg("failed to register slash command")
		}
	}
}
