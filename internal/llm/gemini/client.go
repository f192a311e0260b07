package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/llm"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-1.5-flash"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// generator is the part of *genai.GenerativeModel the client calls.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Structurer for Google Gemini.
type Client struct {
	client *genai.Client
	model  generator
	name   string
	logger *slog.Logger
}

// NewClient creates a Gemini client with the structuring contract installed
// as the system instruction.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "gemini api key is required", common.ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(llm.SystemPrompt)}}

	return &Client{
		client: client,
		model:  model,
		name:   cfg.Model,
		logger: logger.With("component", "llm.gemini"),
	}, nil
}

// Structure sends the document text and returns the raw model text.
func (c *Client) Structure(ctx context.Context, req llm.StructureRequest) (llm.StructureResult, error) {
	start := time.Now()
	c.logger.Info("llm.structure.start", "file", req.FileName, "model", c.name, "text_len", len(req.Text))

	resp, err := c.model.GenerateContent(ctx, genai.Text(llm.BuildUserPrompt(req)))
	if err != nil {
		c.logger.Error("llm.structure.http_error",
			"file", req.FileName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructureResult{}, fmt.Errorf("%w: gemini generate: %v", common.ErrExternalService, err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		c.logger.Error("llm.structure.no_content", "file", req.FileName, "error", err)
		return llm.StructureResult{}, fmt.Errorf("%w: %v", common.ErrExternalService, err)
	}

	c.logger.Info("llm.structure.ok",
		"file", req.FileName,
		"content_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.StructureResult{Content: text, Provider: providerName, Model: c.name}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
