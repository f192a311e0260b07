package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/catalogue-search/internal/entity"
	"github.com/joseph-ayodele/catalogue-search/internal/language"
	"github.com/joseph-ayodele/catalogue-search/internal/ocr"
)

// DocumentReader turns a file on disk into a RawDocument.
type DocumentReader struct {
	text   TextExtractor
	logger *slog.Logger
}

func NewDocumentReader(text TextExtractor, logger *slog.Logger) *DocumentReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentReader{text: text, logger: logger}
}

// Read extracts the text of path and detects its language. fileName is the
// identifier recorded on the document; it defaults to the base name of path.
// On extraction failure the returned document is still usable: its text is
// empty, its method is NONE and err wraps common.ErrExtractionFailure.
func (r *DocumentReader) Read(ctx context.Context, path, fileName string) (entity.RawDocument, error) {
	if fileName == "" {
		fileName = filepath.Base(path)
	}
	res, err := r.text.Extract(ctx, path)

	doc := entity.RawDocument{
		FileName:    fileName,
		SourcePath:  path,
		Text:        res.Text,
		Method:      methodOf(res),
		Pages:       res.Pages,
		ExtractedAt: time.Now().UTC(),
	}
	doc.Language = language.Detect(doc.Text)

	if err != nil {
		r.logger.Warn("extract.read.failed", "file", fileName, "error", err, "warnings", res.Warnings)
		return doc, err
	}
	r.logger.Debug("extract.read.ok",
		"file", fileName,
		"method", doc.Method,
		"language", doc.Language,
		"pages", doc.Pages,
	)
	return doc, nil
}

func methodOf(res ocr.ExtractionResult) entity.ExtractionMethod {
	switch {
	case res.Native():
		return entity.MethodNative
	case res.Method == ocr.MethodPDFOCR:
		return entity.MethodOCR
	default:
		return entity.MethodNone
	}
}
