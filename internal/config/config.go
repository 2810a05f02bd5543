package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read into the configuration.
const EnvPrefix = "SALITA_"

// Config is the runtime configuration of salita.
type Config struct {
	DB        string    `koanf:"db" validate:"required"`
	Addr      string    `koanf:"addr" validate:"required,hostname_port"`
	LogLevel  string    `koanf:"log-level" validate:"oneof=debug info warn error"`
	ReposDir  string    `koanf:"repos-dir" validate:"required"`
	Decks     []string  `koanf:"decks" validate:"dive,required"`
	Particles Particles `koanf:"particles"`
}

// Particles lists the particle ids the sentence validator treats as focus and
// possession markers.
type Particles struct {
	Focus      []string `koanf:"focus" validate:"min=1,dive,required"`
	Possession []string `koanf:"possession" validate:"min=1,dive,required"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		DB:       "salita.db",
		Addr:     "localhost:8080",
		LogLevel: "info",
		ReposDir: "repos",
		Particles: Particles{
			Focus:      []string{"ang", "si", "sina"},
			Possession: []string{"ng", "ni", "nina"},
		},
	}
}

// RegisterFlags adds the configuration flags to flags. The defaults shown in
// help output come from Default.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("db", d.DB, "Path to the SQLite database file")
	flags.String("addr", d.Addr, "Listen address for the HTTP API")
	flags.String("log-level", d.LogLevel, "Log level: debug, info, warn or error")
	flags.String("repos-dir", d.ReposDir, "Directory git-hosted decks are checked out into")
	flags.StringSlice("decks", nil, "Deck sources: local directories or git URLs")
}

// Load builds the configuration from defaults, the optional YAML file named by
// the --config flag, SALITA_* environment variables and finally explicitly set
// flags. The result is validated.
func Load(flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path, _ := flags.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			slog.Warn("Config file not found, using defaults and environment", "path", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	// posflag only overrides keys already loaded when the flag was changed.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return Config{}, fmt.Errorf("failed to read flags: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its field constraints.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// envKey maps SALITA_LOG_LEVEL to log-level and SALITA_PARTICLES__FOCUS to
// particles.focus.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	s = strings.ReplaceAll(s, "__", ".")
	return strings.ReplaceAll(s, "_", "-")
}

// SlogLevel converts the configured level name.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
