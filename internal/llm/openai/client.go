package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/catalogue-search/internal/common"
	"github.com/joseph-ayodele/catalogue-search/internal/llm"
)

const providerName = "openai"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Structure implements llm.Structurer using chat/completions. The system
// contract and the full document text are sent as two messages.
func (c *Client) Structure(ctx context.Context, req llm.StructureRequest) (llm.StructureResult, error) {
	start := time.Now()
	c.logger.Info("llm.structure.start",
		"file", req.FileName,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
	)

	body := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: llm.BuildUserPrompt(req)},
		},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.structure.http_error",
			"file", req.FileName, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructureResult{}, err
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.structure.decode_error",
			"file", req.FileName, "error", err, "raw_bytes", len(raw),
		)
		return llm.StructureResult{}, fmt.Errorf("%w: decode openai response: %v", common.ErrExternalService, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.structure.no_choices", "file", req.FileName, "raw_bytes", len(raw))
		return llm.StructureResult{}, fmt.Errorf("%w: no choices in openai response", common.ErrExternalService)
	}

	content := cc.Choices[0].Message.Content
	c.logger.Info("llm.structure.ok",
		"file", req.FileName,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.StructureResult{Content: content, Provider: providerName, Model: c.cfg.Model}, nil
}
