package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
log:
  level: warn
redis:
  db: 3
smtp:
  host: mail.example.org
  sender_name: Donation Swap Team
currency:
  api_key: test-key
  cache_ttl: 6h
matchmaker:
  interval: 30m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected redis db: %d", cfg.Redis.DB)
	}
	if cfg.SMTP.Host != "mail.example.org" {
		t.Fatalf("unexpected smtp host: %s", cfg.SMTP.Host)
	}
	if cfg.SMTP.SenderName != "Donation Swap Team" {
		t.Fatalf("unexpected sender name: %s", cfg.SMTP.SenderName)
	}
	if cfg.Currency.APIKey != "test-key" {
		t.Fatalf("unexpected currency api key: %s", cfg.Currency.APIKey)
	}
	if cfg.Currency.CacheTTL != 6*time.Hour {
		t.Fatalf("unexpected currency cache ttl: %s", cfg.Currency.CacheTTL)
	}
	if cfg.Matchmaker.Interval != 30*time.Minute {
		t.Fatalf("unexpected matchmaker interval: %s", cfg.Matchmaker.Interval)
	}

	if cfg.SMTP.Port != 587 {
		t.Fatalf("smtp port default should stay 587, got %d", cfg.SMTP.Port)
	}
	if cfg.SMTP.SenderAddress != "noreply@donationswap.org" {
		t.Fatalf("sender address default should stay, got %s", cfg.SMTP.SenderAddress)
	}
	if cfg.Currency.BaseURL != "http://data.fixer.io/api" {
		t.Fatalf("currency base url default should stay, got %s", cfg.Currency.BaseURL)
	}
	if cfg.Matchmaker.Commit {
		t.Fatalf("matchmaker commit default should stay false")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected default log level: %s", cfg.Log.Level)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected default redis addr: %s", cfg.Redis.Addr)
	}
	if cfg.Currency.CacheTTL != 24*time.Hour {
		t.Fatalf("unexpected default currency cache ttl: %s", cfg.Currency.CacheTTL)
	}
	if cfg.Currency.Timeout != 10*time.Second {
		t.Fatalf("unexpected default currency timeout: %s", cfg.Currency.Timeout)
	}
	if cfg.Postgres.MaxConns != 4 {
		t.Fatalf("unexpected default postgres max conns: %d", cfg.Postgres.MaxConns)
	}
	if cfg.Matchmaker.Interval != 0 {
		t.Fatalf("unexpected default matchmaker interval: %s", cfg.Matchmaker.Interval)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("POSTGRES_DSN", "postgres://x:y@db:5432/swap")
	t.Setenv("POSTGRES_MAX_CONNS", "8")
	t.Setenv("FIXER_API_KEY", "env-key")
	t.Setenv("MATCHMAKER_INTERVAL", "2h")
	t.Setenv("MATCHMAKER_COMMIT", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://x:y@db:5432/swap" {
		t.Fatalf("unexpected postgres dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Postgres.MaxConns != 8 {
		t.Fatalf("unexpected postgres max conns: %d", cfg.Postgres.MaxConns)
	}
	if cfg.Currency.APIKey != "env-key" {
		t.Fatalf("unexpected currency api key: %s", cfg.Currency.APIKey)
	}
	if cfg.Matchmaker.Interval != 2*time.Hour {
		t.Fatalf("unexpected matchmaker interval: %s", cfg.Matchmaker.Interval)
	}
	if !cfg.Matchmaker.Commit {
		t.Fatalf("matchmaker commit should be overridden to true")
	}
}

func TestLoadRejectsMalformedEnvDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MATCHMAKER_INTERVAL", "soon")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for malformed MATCHMAKER_INTERVAL")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"POSTGRES_MAX_CONNS",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"SMTP_HOST",
		"SMTP_PORT",
		"SMTP_USERNAME",
		"SMTP_PASSWORD",
		"SMTP_SENDER_NAME",
		"SMTP_SENDER_ADDRESS",
		"FIXER_BASE_URL",
		"FIXER_API_KEY",
		"CURRENCY_CACHE_TTL",
		"CURRENCY_TIMEOUT",
		"MATCHMAKER_INTERVAL",
		"MATCHMAKER_COMMIT",
	} {
		t.Setenv(key, "")
	}
}
