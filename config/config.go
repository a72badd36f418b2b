package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Runtime
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5200"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Admin routes
	ServiceToken string `env:"SERVICE_TOKEN"`

	// Twitch
	TwitchUser       string   `env:"TWITCH_USER"`
	TwitchOAuthToken string   `env:"TWITCH_OAUTH_TOKEN"`
	TwitchChannels   []string `env:"TWITCH_CHANNELS" envSeparator:","`
	BroadcasterID    string   `env:"BROADCASTER_ID"`

	// Optional infrastructure
	RedisURL     string `env:"REDIS_URL"`
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"duel.events"`

	// R2 question pack
	CloudflareAccountID string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `env:"R2_ACCESS_KEY_SECRET"`
	R2BucketName        string `env:"R2_BUCKET_NAME"`
	QuestionPackKey     string `env:"QUESTION_PACK_KEY"`

	// Local question pack, imported after the R2 one
	QuestionPackFile string `env:"QUESTION_PACK_FILE"`

	Game Game

	// DotEnvLoaded is set by Load when a .env file was read.
	DotEnvLoaded bool `env:"-"`
}

// Game holds the tunables of the points economy.
type Game struct {
	DefaultWager     int64         `env:"DEFAULT_WAGER" envDefault:"100"`
	GuessBudget      int           `env:"GUESS_BUDGET" envDefault:"5"`
	StaleAfter       time.Duration `env:"STALE_AFTER" envDefault:"10m"`
	PresencePoints   int64         `env:"PRESENCE_POINTS" envDefault:"5"`
	LurkTick         time.Duration `env:"LURK_TICK" envDefault:"1m"`
	LurkPoints       int64         `env:"LURK_POINTS" envDefault:"1"`
	LeaderboardEvery time.Duration `env:"LEADERBOARD_EVERY" envDefault:"0s"`
}

// DefaultGame mirrors the envDefault values above.
func DefaultGame() Game {
	return Game{
		DefaultWager:   100,
		GuessBudget:    5,
		StaleAfter:     10 * time.Minute,
		PresencePoints: 5,
		LurkTick:       time.Minute,
		LurkPoints:     1,
	}
}

func Load() (*Config, error) {
	dotEnvErr := godotenv.Load()

	cfg := &Config{DotEnvLoaded: dotEnvErr == nil}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Game.GuessBudget <= 0 {
		return fmt.Errorf("GUESS_BUDGET must be positive, got %d", c.Game.GuessBudget)
	}
	if c.Game.DefaultWager < 0 {
		return fmt.Errorf("DEFAULT_WAGER must not be negative, got %d", c.Game.DefaultWager)
	}
	if c.Game.StaleAfter <= 0 {
		return fmt.Errorf("STALE_AFTER must be positive, got %s", c.Game.StaleAfter)
	}
	return nil
}

// TwitchEnabled reports whether enough credentials are present to join chat.
func (c *Config) TwitchEnabled() bool {
	return c.TwitchUser != "" && c.TwitchOAuthToken != "" && len(c.TwitchChannels) > 0
}

// R2Enabled reports whether a question pack should be pulled from R2 on startup.
func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2BucketName != "" && c.QuestionPackKey != ""
}
