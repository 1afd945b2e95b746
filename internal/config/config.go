package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Data    DataConfig    `mapstructure:"data"`
	Balance BalanceConfig `mapstructure:"balance"`
}

// ServerConfig covers the network listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxMatches      int           `mapstructure:"max_matches"`
}

// LoggingConfig covers log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DataConfig points at the card definition files.
type DataConfig struct {
	CardsPath     string `mapstructure:"cards_path"`
	AbilitiesPath string `mapstructure:"abilities_path"`
	DecksPath     string `mapstructure:"decks_path"`
}

// BalanceConfig holds the tunable match parameters. The battlefield size,
// credit cap and hand limit are engine invariants and deliberately absent.
type BalanceConfig struct {
	StartingCredits  int `mapstructure:"starting_credits"`
	CreditIncome     int `mapstructure:"credit_income"`
	StartingHandSize int `mapstructure:"starting_hand_size"`
}

// Load reads the configuration file at path and applies defaults for any
// missing keys. Environment variables prefixed with FRONTLINE_ override file
// values (FRONTLINE_SERVER_ADDRESS, FRONTLINE_LOGGING_LEVEL, ...).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_matches", 256)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("data.cards_path", "data/cards.yaml")
	v.SetDefault("data.abilities_path", "data/abilities.yaml")
	v.SetDefault("data.decks_path", "data/decks.yaml")
	v.SetDefault("balance.starting_credits", 0)
	v.SetDefault("balance.credit_income", 3)
	v.SetDefault("balance.starting_hand_size", 4)

	v.SetEnvPrefix("FRONTLINE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Balance.CreditIncome < 0 || c.Balance.StartingCredits < 0 {
		return fmt.Errorf("balance values must not be negative")
	}
	if c.Balance.StartingHandSize < 0 {
		return fmt.Errorf("balance.starting_hand_size must not be negative")
	}
	return nil
}
