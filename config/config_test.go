package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLIENT_URL", "http://localhost:3000")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "cs")

	// Pin everything defaulted so ambient environment cannot leak in.
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("TOKEN_TTL_HOURS", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("INBOX_MAX_RESULTS", "")
	t.Setenv("OCR_MIN_TEXT_LEN", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Errorf("TokenTTL = %v, want 72h", cfg.TokenTTL)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.InboxMaxResults != 20 {
		t.Errorf("InboxMaxResults = %d", cfg.InboxMaxResults)
	}
	if cfg.OCRMinTextLen != 100 {
		t.Errorf("OCRMinTextLen = %d", cfg.OCRMinTextLen)
	}
	if !cfg.IsDevelopment() {
		t.Error("default environment is not development")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted a missing JWT_SECRET")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL_HOURS", "24")
	t.Setenv("INBOX_MAX_RESULTS", "5")
	t.Setenv("ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v", cfg.TokenTTL)
	}
	if cfg.InboxMaxResults != 5 {
		t.Errorf("InboxMaxResults = %d", cfg.InboxMaxResults)
	}
	if !cfg.IsProduction() {
		t.Error("ENV=production not reflected")
	}
}
