// Package insight produces short advisory summaries of a user's intake
// pattern by handing a bounded prompt to an external text generator.
// Absence of an insight is a normal outcome, never an error for callers.
package insight

import (
	"context"
	"strings"
	"time"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/guidelines"
	"github.com/julianstephens/suppleflow/internal/logger"
	"github.com/julianstephens/suppleflow/internal/models"
)

// Options are the sampling parameters passed to a Generator.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Generator is an external text-generation service.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Input is the data an insight is built from.
type Input struct {
	Now         time.Time
	Location    *time.Location
	Supplements []models.Supplement
	// Intakes are the intakes taken in the summarised window (usually today).
	Intakes []models.Intake
	Kratom  *guidelines.Substance
}

type Summarizer struct {
	gen        Generator
	opts       Options
	maxRetries int
	retryDelay time.Duration
}

type SummarizerOption func(*Summarizer)

// WithRetries overrides the retry count and the base delay between attempts.
func WithRetries(n int, delay time.Duration) SummarizerOption {
	return func(s *Summarizer) {
		s.maxRetries = n
		s.retryDelay = delay
	}
}

// NewSummarizer wraps gen. A nil gen yields a summarizer that never produces
// an insight.
func NewSummarizer(gen Generator, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		gen: gen,
		opts: Options{
			Temperature: constants.InsightTemperature,
			MaxTokens:   constants.InsightMaxTokens,
		},
		maxRetries: constants.InsightMaxRetries,
		retryDelay: constants.InsightRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a generator is configured.
func (s *Summarizer) Enabled() bool {
	return s != nil && s.gen != nil
}

// Summarize returns the generated text and true, or "" and false when there
// is nothing to summarise, no generator, or every attempt failed.
func (s *Summarizer) Summarize(ctx context.Context, in Input) (string, bool) {
	if !s.Enabled() {
		return "", false
	}
	if len(in.Supplements) == 0 || len(in.Intakes) == 0 {
		return "", false
	}

	prompt := BuildPrompt(in)
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				logger.Warn("Insight generation cancelled", "provider", s.gen.Name(), "error", ctx.Err())
				return "", false
			case <-time.After(time.Duration(attempt) * s.retryDelay):
			}
		}

		text, err := s.gen.Generate(ctx, prompt, s.opts)
		if err != nil {
			lastErr = err
			logger.Debug("Insight attempt failed", "provider", s.gen.Name(), "attempt", attempt+1, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			logger.Debug("Insight generator returned empty text", "provider", s.gen.Name())
			return "", false
		}
		return text, true
	}

	logger.Warn("Insight generation failed", "provider", s.gen.Name(), "attempts", s.maxRetries+1, "error", lastErr)
	return "", false
}
