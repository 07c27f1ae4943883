// cmd/voicerelay/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"voicerelay/internal/api"
	"voicerelay/internal/config"
	"voicerelay/internal/discord"
	"voicerelay/internal/logging"
	"voicerelay/internal/resolver"
	"voicerelay/internal/tts"
	v "voicerelay/internal/version"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		l := logging.For("main")
		l.Fatal().Err(err).Msg("Config load failed")
	}

	logging.Setup(cfg.Verbosity, cfg.LogFile)
	log := logging.For("main")
	log.Info().Str("bot", cfg.BotName).Msgf("Starting %v...", v.AppName)

	synth := tts.NewGoogleTranslate(cfg.ResolveTimeout)
	res := resolver.NewYTDLP(cfg.ResolveTimeout)

	bot, err := discord.NewBot(cfg, res, synth)
	if err != nil {
		log.Fatal().Err(err).Msg("Discord session init failed")
	}

	server := api.NewServer(cfg.APIAddr, cfg.BotName, cfg.TTSLang, bot.Manager(), res, synth, bot)

	errCh := make(chan error, 2)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := server.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Msgf("Received signal %s, shutting down...", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Runtime error")
		}
		cancel()
	case <-ctx.Done():
	}

	log.Info().Msg("Voice relay exited cleanly")
}
