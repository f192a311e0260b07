package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Engine recognizes the text of one page image in the given tesseract
// language code (e.g. "eng", "eng+msa").
type Engine interface {
	Recognize(ctx context.Context, imagePath, lang string) (string, error)
}

// NewEngine selects the OCR engine named in cfg.Engine.
func NewEngine(cfg Config, runner Runner) (Engine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", "cli":
		return &cliEngine{runner: runner, bin: cfg.Tesseract, tessdataDir: cfg.TessdataDir}, nil
	case "gosseract":
		return newGosseractEngine(cfg)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-=|]{3,}\s*$`)

// cliEngine shells out to the tesseract binary.
type cliEngine struct {
	runner      Runner
	bin         string
	tessdataDir string
}

func (c *cliEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	args := []string{imagePath, "stdout", "-l", lang}
	if c.tessdataDir != "" {
		args = append(args, "--tessdata-dir", c.tessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := c.runner.Run(ctx, c.bin, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 256))
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
