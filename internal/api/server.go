// Package api exposes the HTTP control surface: external callers trigger
// speech and stream playback, stop sessions, search for tracks and query
// status over localhost JSON endpoints.
package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"voicerelay/internal/logging"
	"voicerelay/internal/resolver"
	"voicerelay/internal/tts"
	"voicerelay/internal/voice"
)

// ChannelResolver maps between channels, guilds and users. Implemented by
// the discord Bot; kept as an interface so handlers never touch discordgo.
type ChannelResolver interface {
	// GuildOfChannel returns the guild owning a voice channel, verifying
	// the channel exists and is a voice channel.
	GuildOfChannel(channelID string) (string, error)

	// UserVoiceChannel returns the guild and channel a user currently sits
	// in, or ok=false if they are not in any voice channel.
	UserVoiceChannel(userID string) (guildID, channelID string, ok bool)
}

// Server is the HTTP control API.
type Server struct {
	addr     string
	botName  string
	ttsLang  string
	manager  *voice.Manager
	resolver resolver.Resolver
	synth    tts.Synthesizer
	channels ChannelResolver
	log      zerolog.Logger
}

func NewServer(addr, botName, ttsLang string, manager *voice.Manager, res resolver.Resolver, synth tts.Synthesizer, channels ChannelResolver) *Server {
	return &Server{
		addr:     addr,
		botName:  botName,
		ttsLang:  ttsLang,
		manager:  manager,
		resolver: res,
		synth:    synth,
		channels: channels,
		log:      logging.For("api"),
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /notify", s.handleNotify)
	mux.HandleFunc("POST /stream", s.handleStream)
	mux.HandleFunc("POST /control", s.handleControl)
	mux.HandleFunc("POST /voice", s.handleVoice)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

// Run starts the control API and blocks until it exits or ctx is
// cancelled; run in a goroutine.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.routes()}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down control API")
		_ = srv.Shutdown(context.Background())
	}()

	s.log.Info().Str("addr", s.addr).Msg("control API listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
