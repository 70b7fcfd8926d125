package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nepalkings/kings-server/internal/game"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

// ServerConfig holds the HTTP and websocket listener settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimit caps requests per second per client; Burst is the
	// momentary allowance above it.
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

// DatabaseConfig holds the PostgreSQL connection settings. An empty
// URL runs the server without persistence.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RulesConfig exposes the tunable game rule constants.
type RulesConfig struct {
	MinMainCards  int `mapstructure:"min_main_cards"`
	MinSideCards  int `mapstructure:"min_side_cards"`
	MaxMainSlots  int `mapstructure:"max_main_slots"`
	MaxSideSlots  int `mapstructure:"max_side_slots"`
	DealMainCards int `mapstructure:"deal_main_cards"`
	DealSideCards int `mapstructure:"deal_side_cards"`
	TurnsPerRound int `mapstructure:"turns_per_round"`
}

// GameRules converts the configured rule constants into the engine's
// rules value.
func (r RulesConfig) GameRules() game.RulesConfig {
	return game.RulesConfig{
		MinMainCards:  r.MinMainCards,
		MinSideCards:  r.MinSideCards,
		MaxMainSlots:  r.MaxMainSlots,
		MaxSideSlots:  r.MaxSideSlots,
		DealMainCards: r.DealMainCards,
		DealSideCards: r.DealSideCards,
		TurnsPerRound: r.TurnsPerRound,
	}
}

// Load reads the configuration file and environment overrides. Every
// key can be overridden with a NEPALKINGS_-prefixed variable, e.g.
// NEPALKINGS_DATABASE_URL.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("NEPALKINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine: defaults plus environment
	// overrides are a complete configuration.
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.burst", 40)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	defaults := game.DefaultRules()
	v.SetDefault("rules.min_main_cards", defaults.MinMainCards)
	v.SetDefault("rules.min_side_cards", defaults.MinSideCards)
	v.SetDefault("rules.max_main_slots", defaults.MaxMainSlots)
	v.SetDefault("rules.max_side_slots", defaults.MaxSideSlots)
	v.SetDefault("rules.deal_main_cards", defaults.DealMainCards)
	v.SetDefault("rules.deal_side_cards", defaults.DealSideCards)
	v.SetDefault("rules.turns_per_round", defaults.TurnsPerRound)
}

func (c *Config) validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Rules.TurnsPerRound <= 0 {
		return fmt.Errorf("rules.turns_per_round must be positive")
	}
	if c.Rules.DealMainCards < c.Rules.MinMainCards {
		return fmt.Errorf("rules.deal_main_cards must not be below rules.min_main_cards")
	}
	if c.Rules.MaxMainSlots < c.Rules.DealMainCards || c.Rules.MaxSideSlots < c.Rules.DealSideCards {
		return fmt.Errorf("rules hand maxima must not be below the opening deal")
	}
	return nil
}
