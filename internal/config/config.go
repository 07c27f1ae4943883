package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	BotName      string `env:"BOT_NAME" envDefault:"VoiceRelay"`

	// APIAddr is the listen address of the HTTP control API.
	APIAddr string `env:"API_ADDR" envDefault:"localhost:5000"`

	// Verbosity controls text-channel chatter: silent, minimal, normal, verbose.
	Verbosity string `env:"VERBOSITY" envDefault:"minimal"`

	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s"`
	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"30s"`

	TTSLang string `env:"TTS_LANG" envDefault:"en"`

	// DefaultVolume scales playback; 1.0 is unchanged.
	DefaultVolume float64 `env:"DEFAULT_VOLUME" envDefault:"1.0"`

	InitSlashCommands bool `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	// LogFile enables a rotating file sink next to console output when set.
	LogFile string `env:"LOG_FILE"`
}

func init() {
	// Missing .env is fine, system environment still applies.
	_ = godotenv.Load()
}

// New parses the environment into a Config.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

var verbosityLevels = map[string]int{
	"silent":  0,
	"minimal": 1,
	"normal":  2,
	"verbose": 3,
}

// ShouldRespond reports whether the configured verbosity is at least level.
// Unknown levels err on the side of responding.
func (c *Config) ShouldRespond(level string) bool {
	cur, ok := verbosityLevels[c.Verbosity]
	if !ok {
		return true
	}
	req, ok := verbosityLevels[level]
	if !ok {
		return true
	}
	return cur >= req
}
