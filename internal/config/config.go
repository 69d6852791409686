// Package config resolves server settings from flags, the environment, an
// optional config file and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/erazemk/gegenstand/internal/notify"
)

// EnvPrefix prefixes every environment variable, e.g. GEGENSTAND_DB.
const EnvPrefix = "GEGENSTAND"

// Config holds all runtime settings.
type Config struct {
	DBPath        string
	Addr          string
	LogPath       string
	LogLevel      string
	JWTSecret     string
	TokenTTL      time.Duration
	SweepInterval time.Duration
	CORSOrigins   []string
	RedisAddr     string
	RedisPassword string
	AuthRate      float64
	AuthBurst     int
	SMTP          notify.SMTPConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "gegenstand.sqlite3")
	v.SetDefault("addr", ":8080")
	v.SetDefault("log", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("jwt-secret", "")
	v.SetDefault("token-ttl", 24*time.Hour)
	v.SetDefault("sweep-interval", time.Hour)
	v.SetDefault("cors-origins", []string{"http://localhost:5173", "https://*.onrender.com"})
	v.SetDefault("redis-addr", "")
	v.SetDefault("redis-password", "")
	v.SetDefault("auth-rate", 1.0)
	v.SetDefault("auth-burst", 10)
	v.SetDefault("smtp-host", "")
	v.SetDefault("smtp-port", 587)
	v.SetDefault("smtp-user", "")
	v.SetDefault("smtp-pass", "")
	v.SetDefault("smtp-from", "")
}

// Load registers the server flags on flags, using the environment and config file
// as their defaults, and parses args. Flags win over the environment, which
// wins over the built-in defaults.
func Load(flags *flag.FlagSet, args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	var origins string

	flags.StringVar(&cfg.DBPath, "db", v.GetString("db"), "")
	flags.StringVar(&cfg.DBPath, "d", v.GetString("db"), "")
	flags.StringVar(&cfg.Addr, "addr", v.GetString("addr"), "")
	flags.StringVar(&cfg.Addr, "a", v.GetString("addr"), "")
	flags.StringVar(&cfg.LogPath, "log", v.GetString("log"), "")
	flags.StringVar(&cfg.LogPath, "l", v.GetString("log"), "")
	flags.StringVar(&cfg.LogLevel, "log-level", v.GetString("log-level"), "")
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", v.GetString("jwt-secret"), "")
	flags.DurationVar(&cfg.TokenTTL, "token-ttl", v.GetDuration("token-ttl"), "")
	flags.DurationVar(&cfg.SweepInterval, "sweep-interval", v.GetDuration("sweep-interval"), "")
	flags.StringVar(&origins, "cors-origins", strings.Join(v.GetStringSlice("cors-origins"), ","), "")
	flags.StringVar(&cfg.RedisAddr, "redis-addr", v.GetString("redis-addr"), "")
	flags.StringVar(&cfg.RedisPassword, "redis-password", v.GetString("redis-password"), "")
	flags.Float64Var(&cfg.AuthRate, "auth-rate", v.GetFloat64("auth-rate"), "")
	flags.IntVar(&cfg.AuthBurst, "auth-burst", v.GetInt("auth-burst"), "")
	flags.StringVar(&cfg.SMTP.Host, "smtp-host", v.GetString("smtp-host"), "")
	flags.IntVar(&cfg.SMTP.Port, "smtp-port", v.GetInt("smtp-port"), "")
	flags.StringVar(&cfg.SMTP.User, "smtp-user", v.GetString("smtp-user"), "")
	flags.StringVar(&cfg.SMTP.Pass, "smtp-pass", v.GetString("smtp-pass"), "")
	flags.StringVar(&cfg.SMTP.From, "smtp-from", v.GetString("smtp-from"), "")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg.CORSOrigins = splitList(origins)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token-ttl must be positive, got %s", c.TokenTTL)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("sweep-interval must not be negative, got %s", c.SweepInterval)
	}
	if c.AuthRate < 0 || c.AuthBurst < 0 {
		return fmt.Errorf("auth-rate and auth-burst must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
