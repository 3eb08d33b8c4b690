// Package config provides Viper-based configuration loading for the dice table.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Engine limits mirrored here so configuration can be validated without
// importing the engine.
const (
	maxRollBudget = 100_000_000
	maxBonusDice  = 10
)

// DiceConfig holds dice engine settings.
type DiceConfig struct {
	// DefaultFaces is the die size used when an expression omits it.
	DefaultFaces int `mapstructure:"default_faces"`
	// RollBudget caps the dice rolled by a single expression.
	RollBudget int `mapstructure:"roll_budget"`
	// MaxBonusDice caps bonus/penalty dice on a percentile check.
	MaxBonusDice int `mapstructure:"max_bonus_dice"`
	// Seed selects a deterministic source when non-zero; zero uses crypto/rand.
	Seed int64 `mapstructure:"seed"`
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File, when set, also writes logs to this path with rotation.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Config is the top-level application configuration.
type Config struct {
	Dice    DiceConfig    `mapstructure:"dice"`
	Telnet  TelnetConfig  `mapstructure:"telnet"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDice(c.Dice); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDice(d DiceConfig) error {
	var errs []string
	if d.DefaultFaces < 1 {
		errs = append(errs, fmt.Sprintf("dice.default_faces must be >= 1, got %d", d.DefaultFaces))
	}
	if d.RollBudget < 1 || d.RollBudget > maxRollBudget {
		errs = append(errs, fmt.Sprintf("dice.roll_budget must be 1-%d, got %d", maxRollBudget, d.RollBudget))
	}
	if d.MaxBonusDice < 1 || d.MaxBonusDice > maxBonusDice {
		errs = append(errs, fmt.Sprintf("dice.max_bonus_dice must be 1-%d, got %d", maxBonusDice, d.MaxBonusDice))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	if l.File != "" && l.MaxSizeMB < 1 {
		errs = append(errs, fmt.Sprintf("logging.max_size_mb must be >= 1 when logging.file is set, got %d", l.MaxSizeMB))
	}
	if l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		errs = append(errs, "logging.max_backups and logging.max_age_days must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and DICE_ environment
// overrides applied.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with DICE_ prefix
	v.SetEnvPrefix("DICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dice.default_faces", 100)
	v.SetDefault("dice.roll_budget", maxRollBudget)
	v.SetDefault("dice.max_bonus_dice", maxBonusDice)
	v.SetDefault("dice.seed", 0)

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4100)
	v.SetDefault("telnet.read_timeout", "30m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", false)
}
