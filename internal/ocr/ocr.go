package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/catalogue-search/constants"
	"github.com/joseph-ayodele/catalogue-search/internal/common"
)

// Extraction methods reported in ExtractionResult.Method.
const (
	MethodPDFNative = "pdf-native" // embedded text layer read in-process
	MethodPDFText   = "pdf-text"   // pdftotext
	MethodPDFOCR    = "pdf-ocr"    // rasterized pages through the OCR engine
	MethodNone      = "none"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // default "eng"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit

	TessdataDir string
	Engine      string        // "cli" (default) | "gosseract"
	Timeout     time.Duration // bounds one Extract call; 0 = no limit
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string
	Language string // OCR language used, not the detected document language
	Duration time.Duration
	Warnings []string
}

// Native reports whether the text came from the embedded text layer.
func (r ExtractionResult) Native() bool {
	return r.Method == MethodPDFNative || r.Method == MethodPDFText
}

// nativeReader reads the embedded text layer of a PDF.
type nativeReader func(ctx context.Context, path string) (text string, pages int, err error)

type Extractor struct {
	cfg    Config
	runner Runner
	engine Engine
	native nativeReader
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	runner := execRunner{logger: logger}
	engine, err := NewEngine(cfg, runner)
	if err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg, runner: runner, engine: engine, native: readNativeText, logger: logger}, nil
}

// Config returns the effective configuration after defaults were applied.
func (e *Extractor) Config() Config { return e.cfg }

// WithOptions returns a copy of the extractor using a different DPI and/or
// OCR language. Zero values keep the current setting.
func (e *Extractor) WithOptions(dpi int, lang string) *Extractor {
	cp := *e
	if dpi > 0 {
		cp.cfg.DPI = dpi
	}
	if strings.TrimSpace(lang) != "" {
		cp.cfg.Lang = lang
	}
	return &cp
}

// Extract returns the text of a PDF, trying the embedded text layer first and
// falling back to OCR of rasterized pages. When every tier fails the result
// carries empty text, MethodNone and an error wrapping
// common.ErrExtractionFailure.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		e.logger.Error("ocr.extract.unsupported", "path", path, "extension", ext)
		return ExtractionResult{Method: MethodNone}, fmt.Errorf("%w: unsupported extension %q", common.ErrInvalidInput, ext)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	e.logger.Debug("ocr.extract.start", "path", path, "dpi", e.cfg.DPI, "lang", e.cfg.Lang)
	res := e.extractPDF(ctx, path)
	res.Duration = time.Since(start)

	if res.Method == MethodNone {
		e.logger.Warn("ocr.extract.failed",
			"path", path,
			"warnings", len(res.Warnings),
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		return res, fmt.Errorf("%w: %s", common.ErrExtractionFailure, filepath.Base(path))
	}
	e.logger.Info("ocr.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) ExtractionResult {
	var warns []string

	text, pages, err := e.native(ctx, path)
	if err != nil {
		warns = append(warns, "native: "+err.Error())
		e.logger.Debug("ocr.native.failed", "path", path, "error", err)
	} else if strings.TrimSpace(text) != "" {
		return ExtractionResult{Text: Normalize(text), Pages: pages, Method: MethodPDFNative, Warnings: warns}
	}

	text, pages, w, err := e.pdfToText(ctx, path)
	warns = append(warns, w...)
	if err != nil {
		warns = append(warns, "pdftotext: "+err.Error())
	} else if strings.TrimSpace(text) != "" {
		return ExtractionResult{Text: Normalize(text), Pages: pages, Method: MethodPDFText, Warnings: warns}
	}

	if ctx.Err() != nil {
		warns = append(warns, ctx.Err().Error())
		return ExtractionResult{Method: MethodNone, Warnings: warns}
	}

	e.logger.Info("ocr.fallback.ocr", "path", path, "dpi", e.cfg.DPI, "lang", e.cfg.Lang)
	text, pages, w, err = e.pdfToOCR(ctx, path)
	warns = append(warns, w...)
	if err != nil {
		warns = append(warns, "ocr: "+err.Error())
		return ExtractionResult{Method: MethodNone, Warnings: warns}
	}
	if strings.TrimSpace(strings.ReplaceAll(text, constants.PageBreak, "")) == "" {
		warns = append(warns, "ocr produced no text")
		return ExtractionResult{Pages: pages, Method: MethodNone, Warnings: warns}
	}
	return ExtractionResult{Text: text, Pages: pages, Method: MethodPDFOCR, Language: e.cfg.Lang, Warnings: warns}
}
