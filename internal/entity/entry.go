package entity

import "time"

// CatalogueEntry is the stored unit for one source document. Document-shaped
// stores persist RawText and the undecoded Payload; row-shaped stores persist
// one row per element of Records.
type CatalogueEntry struct {
	FileName  string
	Language  string
	Method    ExtractionMethod
	RawText   string
	Payload   string
	Records   []ProductRecord
	IndexedAt time.Time
}

// NewCatalogueEntry ties the structured output of a document back to its RawDocument.
func NewCatalogueEntry(doc RawDocument, payload string, records []ProductRecord) CatalogueEntry {
	return CatalogueEntry{
		FileName:  doc.FileName,
		Language:  doc.Language,
		Method:    doc.Method,
		RawText:   doc.Text,
		Payload:   payload,
		Records:   records,
		IndexedAt: time.Now().UTC(),
	}
}
