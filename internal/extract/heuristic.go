package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/catalogue-search/constants"
	"github.com/joseph-ayodele/catalogue-search/internal/entity"
)

const descriptionLimit = 200

var (
	rePhone = regexp.MustCompile(`\b(\+?\d{1,3}[-.\s]?)?\d{7,15}\b`)
	reEmail = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	reURL   = regexp.MustCompile(`https?://[^\s]+`)
)

// ParseMetadata builds the single flat record used when no structuring
// engine is configured. The file name stands in for the product and company
// names; a URL in the text takes precedence over an email address.
func ParseMetadata(text, fileName string) entity.ProductRecord {
	text = strings.TrimSpace(text)
	name := constants.BaseName(fileName)

	rec := entity.ProductRecord{
		ProductName:   name,
		CompanyName:   name,
		Description:   truncateRunes(text, descriptionLimit),
		CatalogueLink: fileName,
	}
	rec.ContactNumber = rePhone.FindString(text)
	rec.Website = reEmail.FindString(text)
	if u := reURL.FindString(text); u != "" {
		rec.Website = u
	}
	return rec
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// HeuristicExtractor implements RecordExtractor with ParseMetadata.
type HeuristicExtractor struct {
	logger *slog.Logger
}

func NewHeuristicExtractor(logger *slog.Logger) *HeuristicExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeuristicExtractor{logger: logger}
}

func (h *HeuristicExtractor) ExtractRecords(_ context.Context, doc entity.RawDocument) (Structured, error) {
	rec := ParseMetadata(doc.Text, doc.FileName)
	records := []entity.ProductRecord{}
	if rec.ProductName != "" {
		records = append(records, rec)
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return Structured{}, err
	}
	h.logger.Debug("extract.heuristic.ok", "file", doc.FileName, "records", len(records))
	return Structured{Payload: string(payload), Records: records, Source: SourceHeuristic}, nil
}
