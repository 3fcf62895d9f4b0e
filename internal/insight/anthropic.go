package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	defaultAnthropicURL   = "https://api.anthropic.com/v1"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	anthropicVersion      = "2023-06-01"
)

// Anthropic calls the messages endpoint.
type Anthropic struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewAnthropic(cfg BackendConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrNoAPIKey)
	}
	return &Anthropic{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(orDefault(cfg.BaseURL, defaultAnthropicURL), "/"),
		model:      orDefault(cfg.Model, DefaultAnthropicModel),
		httpClient: cfg.httpClient(),
	}, nil
}

func (c *Anthropic) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Anthropic) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	reqBody := anthropicRequest{
		Model:       c.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	body, err := do(c.httpClient, req)
	if err != nil {
		return "", err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("api error: %s", resp.Error.Message)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response")
	}
	return sb.String(), nil
}
