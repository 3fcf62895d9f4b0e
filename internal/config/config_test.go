package config

import (
	"os"
	"testing"
	"time"

	"github.com/julianstephens/suppleflow/internal/constants"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("USER", "shell-user")
	for _, k := range []string{"SUPPLEFLOW_USER", "SUPPLEFLOW_TIMEZONE", "TIMEZONE", "SUPPLEFLOW_INSIGHT_PROVIDER", "INSIGHT_PROVIDER", "SUPPLEFLOW_HTTP_ADDR", "HTTP_ADDR", "SUPPLEFLOW_GUIDELINE_VERSION", "GUIDELINE_VERSION"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.User != "" {
		t.Errorf("User = %q; the shell's $USER must not leak in", cfg.User)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Timezone != "Local" || cfg.InsightProvider != "openai" || cfg.GuidelineVersion != "v2" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SUPPLEFLOW_USER", "rody")
	t.Setenv("SUPPLEFLOW_TIMEZONE", "America/Chicago")
	t.Setenv("SUPPLEFLOW_INSIGHT_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("SUPPLEFLOW_GUIDELINE_VERSION", "v1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.User != "rody" {
		t.Errorf("User = %q", cfg.User)
	}
	if cfg.GuidelineVersion != "v1" {
		t.Errorf("GuidelineVersion = %q", cfg.GuidelineVersion)
	}
	if cfg.InsightProvider != "gemini" {
		t.Errorf("InsightProvider = %q, want lowercased gemini", cfg.InsightProvider)
	}
	if cfg.APIKey() != "g-key" {
		t.Errorf("APIKey() = %q, want unprefixed fallback", cfg.APIKey())
	}
	if cfg.KeyringUser() != constants.KeyringGeminiUser {
		t.Errorf("KeyringUser() = %q", cfg.KeyringUser())
	}
	if cfg.Location().String() != "America/Chicago" {
		t.Errorf("Location() = %v", cfg.Location())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{Timezone: "UTC", InsightProvider: "openai"}},
		{name: "disabled insight", cfg: Config{Timezone: "Local", InsightProvider: "none"}},
		{name: "bad timezone", cfg: Config{Timezone: "Mars/Olympus", InsightProvider: "openai"}, wantErr: true},
		{name: "bad provider", cfg: Config{Timezone: "UTC", InsightProvider: "mistral"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLocation_Fallback(t *testing.T) {
	if got := (Config{Timezone: "nope"}).Location(); got != time.Local {
		t.Errorf("Location() = %v, want Local", got)
	}
	if got := (Config{InsightProvider: "none"}).APIKey(); got != "" {
		t.Errorf("APIKey() = %q for disabled provider", got)
	}
}
