// Package provider builds the configured structuring engine.
package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/llm"
	"github.com/joseph-ayodele/catalogue-search/internal/llm/gemini"
	"github.com/joseph-ayodele/catalogue-search/internal/llm/openai"
)

const (
	OpenAI = "openai"
	Gemini = "gemini"
	None   = "none"
)

// New returns the structurer selected by cfg.Provider, or nil when the
// provider is "none". The returned closer is never nil.
func New(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Structurer, io.Closer, error) {
	switch cfg.Provider {
	case OpenAI:
		c, err := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return c, nopCloser{}, nil
	case Gemini:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return c, c, nil
	case None, "":
		return nil, nopCloser{}, nil
	default:
		return nil, nopCloser{}, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown llm provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
