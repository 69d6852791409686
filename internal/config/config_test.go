package config

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "gegenstand.sqlite3" {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("unexpected addr %q", cfg.Addr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("unexpected token ttl %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://localhost:5173" || cfg.CORSOrigins[1] != "https://*.onrender.com" {
		t.Errorf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("unexpected level %v", cfg.Level())
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("GEGENSTAND_ADDR", ":9090")
	t.Setenv("GEGENSTAND_JWT_SECRET", "from-env")
	t.Setenv("GEGENSTAND_TOKEN_TTL", "2h")
	t.Setenv("GEGENSTAND_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("expected env secret, got %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("expected env ttl, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("GEGENSTAND_ADDR", ":9090")

	cfg, err := Load(newFlagSet(), []string{"-a", ":7070", "-log-level", "debug"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("expected flag addr, got %q", cfg.Addr)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gegenstand.yaml")
	content := "db: /var/lib/gegenstand.sqlite3\nsmtp-host: smtp.example.com\nsweep-interval: 15m\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEGENSTAND_CONFIG", path)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/var/lib/gegenstand.sqlite3" {
		t.Errorf("expected db from file, got %q", cfg.DBPath)
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 587 {
		t.Errorf("unexpected smtp config %+v", cfg.SMTP)
	}
	if cfg.SweepInterval != 15*time.Minute {
		t.Errorf("expected sweep interval from file, got %s", cfg.SweepInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	if _, err := Load(newFlagSet(), []string{"-log-level", "loud"}); err == nil {
		t.Error("expected error for unknown log level")
	}
	if _, err := Load(newFlagSet(), []string{"-token-ttl", "0s"}); err == nil {
		t.Error("expected error for zero token ttl")
	}
	if _, err := Load(newFlagSet(), []string{"-bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}
