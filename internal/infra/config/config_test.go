package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("ACCESS_SECRET_KEY", "access-secret")
	t.Setenv("REFRESH_SECRET_KEY", "refresh-secret")
}

func TestLoad_Success(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("REFRESH_TOKEN_TTL", "3h")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("ALLOWED_ORIGINS", `["https://app.example.com"]`)
	t.Setenv("ALLOW_CREDENTIALS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("AccessTokenTTL want 2m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 3*time.Hour {
		t.Fatalf("RefreshTokenTTL want 3h, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.JWTAlgorithm != "HS512" {
		t.Fatalf("JWTAlgorithm want HS512, got %q", cfg.JWTAlgorithm)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("refresh ttl default want 7 days, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.JWTAlgorithm != "HS256" || cfg.RefreshCookieName != "refresh_token" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("default origins: %v", cfg.AllowedOrigins)
	}
	if cfg.TLSEnabled() {
		t.Fatal("TLS must be off without certificate files")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("ACCESS_SECRET_KEY", "a")

	if _, err := Load(); err == nil {
		t.Fatal("expected error due to missing REFRESH_SECRET_KEY, got nil")
	}
}

func TestLoad_SameSecretsRejected(t *testing.T) {
	t.Setenv("DATABASE_URL", "db")
	t.Setenv("ACCESS_SECRET_KEY", "same")
	t.Setenv("REFRESH_SECRET_KEY", "same")

	if _, err := Load(); err == nil {
		t.Fatal("identical secrets must be rejected")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"algorithm":        {"JWT_ALGORITHM", "RS256"},
		"negative ttl":     {"ACCESS_TOKEN_TTL", "-1m"},
		"single use":       {"REFRESH_SINGLE_USE", "true"},
		"otel no endpoint": {"OTEL_ENABLED", "true"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s must be rejected", kv[0], kv[1])
			}
		})
	}
}

func TestParseList(t *testing.T) {
	got, err := parseList(" a , b,,c ")
	if err != nil || len(got) != 3 || got[2] != "c" {
		t.Fatalf("comma list: %v %v", got, err)
	}
	if _, err := parseList("[broken"); err == nil {
		t.Fatal("broken JSON must fail")
	}
}

func TestLoad_OriginsFromConfigFile(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	body := `{"ALLOWED_ORIGINS": ["https://a.example.com", "https://b.example.com"]}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("AllowedOrigins from config.json: %v", cfg.AllowedOrigins)
	}
}
