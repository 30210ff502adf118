package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"taskbot/internal/util"
)

// Config is the bot's runtime configuration, read from an optional YAML file
// with TASKBOT_* environment variables taking precedence for the secrets.
type Config struct {
	Addr     string `yaml:"addr"`
	DataFile string `yaml:"data_file"`

	Slack   SlackConfig   `yaml:"slack"`
	Weather WeatherConfig `yaml:"weather"`
	Standup StandupConfig `yaml:"standup"`
	Events  EventsConfig  `yaml:"events"`

	// Quotes overrides the built-in motivational quote list when non-empty.
	Quotes []string `yaml:"quotes"`
}

type SlackConfig struct {
	BotToken      string `yaml:"bot_token"`
	SigningSecret string `yaml:"signing_secret"`
}

type WeatherConfig struct {
	APIKey string `yaml:"api_key"`
}

// StandupConfig names the channel and clock time for the recurring standup
// prompts.
type StandupConfig struct {
	Channel string `yaml:"channel"`
	Hour    int    `yaml:"hour"`
	Minute  int    `yaml:"minute"`
}

// EventsConfig scopes the inbound-message behaviour: which channel the bot
// watches and which keywords trigger a reaction or the overdue-task nudge.
type EventsConfig struct {
	Channel          string   `yaml:"channel"`
	PositiveKeywords []string `yaml:"positive_keywords"`
	DeadlineKeywords []string `yaml:"deadline_keywords"`
	ReactionEmoji    string   `yaml:"reaction_emoji"`
}

// Load reads the YAML file at path. A missing file is not an error; defaults
// and environment variables apply either way.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Addr = util.EnvOrDefault("TASKBOT_ADDR", cfg.Addr)
	cfg.DataFile = util.EnvOrDefault("TASKBOT_DATA_FILE", cfg.DataFile)
	cfg.Slack.BotToken = util.EnvOrDefault("SLACK_BOT_TOKEN", cfg.Slack.BotToken)
	cfg.Slack.SigningSecret = util.EnvOrDefault("SIGNING_SECRET", cfg.Slack.SigningSecret)
	cfg.Weather.APIKey = util.EnvOrDefault("OPENWEATHER_API_KEY", cfg.Weather.APIKey)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Addr:     ":5003",
		DataFile: "data/bot_data.json",
		Standup: StandupConfig{
			Hour:   9,
			Minute: 0,
		},
		Events: EventsConfig{
			PositiveKeywords: []string{"great", "awesome", "done", "shipped", "thanks"},
			DeadlineKeywords: []string{"deadline", "late", "overdue", "behind", "stuck"},
			ReactionEmoji:    "tada",
		},
	}
}
