//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// gosseractEngine recognizes pages in-process through libtesseract.
type gosseractEngine struct {
	tessdataDir string
	dpi         int
}

func newGosseractEngine(cfg Config) (Engine, error) {
	return &gosseractEngine{tessdataDir: cfg.TessdataDir, dpi: cfg.DPI}, nil
}

func (g *gosseractEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if g.tessdataDir != "" {
		if err := c.SetTessdataPrefix(g.tessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if g.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(g.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	txt, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return txt, nil
}
