package insight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/suppleflow/internal/constants"
)

var (
	ErrNoAPIKey        = errors.New("no API key configured")
	ErrUnknownProvider = errors.New("unknown insight provider")
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// BackendConfig configures a Generator. Empty Model and BaseURL select the
// provider defaults.
type BackendConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func (c BackendConfig) httpClient() *http.Client {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = constants.InsightHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// New builds the Generator for provider. ProviderNone returns a nil Generator.
func New(ctx context.Context, provider string, cfg BackendConfig) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch strings.ToLower(provider) {
	case ProviderOpenAI, "":
		gen, err = NewOpenAI(cfg)
	case ProviderGemini:
		gen, err = NewGemini(ctx, cfg)
	case ProviderAnthropic:
		gen, err = NewAnthropic(cfg)
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
