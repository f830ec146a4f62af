// Package config loads server configuration from YAML with sane defaults
// for every field, so an empty file is a valid configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig configures the HTTP/WebSocket listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GameConfig configures match creation.
type GameConfig struct {
	CardFile     string        `mapstructure:"card_file"`
	DeckFile     string        `mapstructure:"deck_file"`
	HumanDeck    string        `mapstructure:"human_deck"`
	OpponentDeck string        `mapstructure:"opponent_deck"`
	DelayMin     time.Duration `mapstructure:"delay_min"`
	DelayMax     time.Duration `mapstructure:"delay_max"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration file at path. A missing file is an error; a
// missing key falls back to its default.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("game.card_file", "config/cards.yaml")
	v.SetDefault("game.deck_file", "config/decks.yaml")
	v.SetDefault("game.human_deck", "Blaze Starter")
	v.SetDefault("game.opponent_deck", "Tide Rider")
	v.SetDefault("game.delay_min", 800*time.Millisecond)
	v.SetDefault("game.delay_max", 2500*time.Millisecond)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Game.DelayMax < cfg.Game.DelayMin {
		return nil, fmt.Errorf("game.delay_max (%s) below game.delay_min (%s)",
			cfg.Game.DelayMax, cfg.Game.DelayMin)
	}
	return &cfg, nil
}
