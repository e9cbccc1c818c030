package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Discord DiscordConfig
	Slack   SlackConfig
	Bot     BotConfig
	Redis   RedisConfig
	Server  ServerConfig
	Log     LogConfig
}

// DiscordConfig holds Discord gateway settings.
type DiscordConfig struct {
	Token string //nolint:gosec // G117: bot token config
}

// Enabled reports whether a Discord session should be opened.
func (c DiscordConfig) Enabled() bool { return c.Token != "" }

// SlackConfig holds Slack integration settings.
type SlackConfig struct {
	BotToken      string //nolint:gosec // G117: bot token config
	SigningSecret string
}

// Enabled reports whether both Slack credentials are set.
func (c SlackConfig) Enabled() bool { return c.BotToken != "" && c.SigningSecret != "" }

// BotConfig holds prompt, menu and reaction pacing settings.
type BotConfig struct {
	CommandPrefix       string
	PromptTimeout       time.Duration
	MenuTimeout         time.Duration
	MenuNonBlockingSeed bool
	ReactionRate        float64
	ReactionBurst       int
}

// RedisConfig holds Redis relay settings. The relay is disabled when Addr is empty.
type RedisConfig struct {
	Addr          string
	Password      string //nolint:gosec // G117: Redis connection config
	DB            int
	ChannelPrefix string
}

// Enabled reports whether the Redis relay should run.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	// OpsToken guards the ops API and the live feed. Every request to them
	// is rejected while it is empty.
	OpsToken string //nolint:gosec // G117: shared ops credential
}

// LogConfig holds zerolog settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	promptTimeout, err := getEnvDuration("REACTKIT_PROMPT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	menuTimeout, err := getEnvDuration("REACTKIT_MENU_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	nonBlocking, err := getEnvBool("REACTKIT_MENU_NONBLOCKING_SEED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	reactionRate, err := getEnvFloat("REACTKIT_REACTION_RATE", 4)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	reactionBurst, err := getEnvInt("REACTKIT_REACTION_BURST", 1)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("REACTKIT_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("REACTKIT_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("REACTKIT_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("REACTKIT_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Discord: DiscordConfig{
			Token: getEnv("REACTKIT_DISCORD_TOKEN", ""),
		},
		Slack: SlackConfig{
			BotToken:      getEnv("REACTKIT_SLACK_BOT_TOKEN", ""),
			SigningSecret: getEnv("REACTKIT_SLACK_SIGNING_SECRET", ""),
		},
		Bot: BotConfig{
			CommandPrefix:       getEnv("REACTKIT_COMMAND_PREFIX", "~"),
			PromptTimeout:       promptTimeout,
			MenuTimeout:         menuTimeout,
			MenuNonBlockingSeed: nonBlocking,
			ReactionRate:        reactionRate,
			ReactionBurst:       reactionBurst,
		},
		Redis: RedisConfig{
			Addr:          getEnv("REACTKIT_REDIS_ADDR", ""),
			Password:      getEnv("REACTKIT_REDIS_PASSWORD", ""),
			DB:            redisDB,
			ChannelPrefix: getEnv("REACTKIT_REDIS_CHANNEL_PREFIX", "reactkit"),
		},
		Server: ServerConfig{
			Addr:         getEnv("REACTKIT_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
			OpsToken:     getEnv("REACTKIT_OPS_TOKEN", ""),
		},
		Log: LogConfig{
			Level:  getEnv("REACTKIT_LOG_LEVEL", "info"),
			Format: getEnv("REACTKIT_LOG_FORMAT", "json"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if !c.Discord.Enabled() && !c.Slack.Enabled() {
		return errors.New("REACTKIT_DISCORD_TOKEN or REACTKIT_SLACK_BOT_TOKEN with REACTKIT_SLACK_SIGNING_SECRET is required")
	}

	if (c.Slack.BotToken == "") != (c.Slack.SigningSecret == "") {
		log.Warn().Msg("only one of REACTKIT_SLACK_BOT_TOKEN and REACTKIT_SLACK_SIGNING_SECRET is set; Slack is disabled")
	}

	if c.Server.OpsToken == "" {
		log.Warn().Msg("REACTKIT_OPS_TOKEN is not set; the ops API and live feed reject every request")
	}

	// Bounds checks.
	if c.Bot.CommandPrefix == "" {
		return errors.New("REACTKIT_COMMAND_PREFIX must not be empty")
	}
	if c.Bot.PromptTimeout <= 0 {
		return fmt.Errorf("REACTKIT_PROMPT_TIMEOUT must be positive, got %s", c.Bot.PromptTimeout)
	}
	if c.Bot.MenuTimeout <= 0 {
		return fmt.Errorf("REACTKIT_MENU_TIMEOUT must be positive, got %s", c.Bot.MenuTimeout)
	}
	if c.Bot.ReactionRate <= 0 {
		return fmt.Errorf("REACTKIT_REACTION_RATE must be positive, got %g", c.Bot.ReactionRate)
	}
	if c.Bot.ReactionBurst < 1 {
		return fmt.Errorf("REACTKIT_REACTION_BURST must be >= 1, got %d", c.Bot.ReactionBurst)
	}
	if c.Redis.DB < 0 || c.Redis.DB > 15 {
		return fmt.Errorf("REACTKIT_REDIS_DB must be 0-15, got %d", c.Redis.DB)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("REACTKIT_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("REACTKIT_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
