package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/insight"
	"github.com/julianstephens/suppleflow/internal/utils"
)

// Prefix is prepended to every variable name, e.g. SUPPLEFLOW_TIMEZONE.
const Prefix = "SUPPLEFLOW"

// Config is read from the environment. Tagged fields fall back to the
// unprefixed name, so OPENAI_API_KEY works as well as SUPPLEFLOW_OPENAI_API_KEY.
type Config struct {
	// Untagged: a tag would make envconfig fall back to the shell's $USER.
	User             string
	Timezone         string `envconfig:"TIMEZONE" default:"Local"`
	Guidelines       string `envconfig:"GUIDELINES"`
	GuidelineVersion string `envconfig:"GUIDELINE_VERSION" default:"v2"`
	InsightProvider  string `envconfig:"INSIGHT_PROVIDER" default:"openai"`
	InsightModel     string `envconfig:"INSIGHT_MODEL"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	DBConnection     string `envconfig:"DB_CONNECTION"`
	HTTPAddr         string `envconfig:"HTTP_ADDR" default:":8080"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.InsightProvider = strings.ToLower(cfg.InsightProvider)
	if cfg.InsightProvider == "" {
		cfg.InsightProvider = insight.ProviderOpenAI
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid %s_TIMEZONE %q", Prefix, c.Timezone)
	}
	switch c.InsightProvider {
	case insight.ProviderOpenAI, insight.ProviderGemini, insight.ProviderAnthropic, insight.ProviderNone:
	default:
		return fmt.Errorf("invalid %s_INSIGHT_PROVIDER %q (expected openai, gemini, anthropic or none)", Prefix, c.InsightProvider)
	}
	return nil
}

// Location resolves Timezone. Validate has already rejected bad names.
func (c Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// APIKey returns the environment key for the configured insight provider.
func (c Config) APIKey() string {
	switch c.InsightProvider {
	case insight.ProviderGemini:
		return c.GeminiAPIKey
	case insight.ProviderAnthropic:
		return c.AnthropicAPIKey
	case insight.ProviderOpenAI:
		return c.OpenAIAPIKey
	}
	return ""
}

// KeyringUser is the keyring entry holding the configured provider's key.
func (c Config) KeyringUser() string {
	switch c.InsightProvider {
	case insight.ProviderGemini:
		return constants.KeyringGeminiUser
	case insight.ProviderAnthropic:
		return constants.KeyringAnthropicUser
	case insight.ProviderOpenAI:
		return constants.KeyringOpenAIUser
	}
	return ""
}
