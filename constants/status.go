package constants

// DocumentStatus is the per-document outcome of an ingestion run.
type DocumentStatus string

// Stable values (reported by the CLI and the upload endpoint).
const (
	DocumentStatusOK               DocumentStatus = "OK"                // text extracted and records structured
	DocumentStatusExtractionFailed DocumentStatus = "EXTRACTION_FAILED" // stored with empty text
	DocumentStatusDecodeFailed     DocumentStatus = "DECODE_FAILED"     // stored with zero records
	DocumentStatusStoreFailed      DocumentStatus = "STORE_FAILED"      // not persisted
)

// Degraded reports whether the document was stored with reduced content.
func (s DocumentStatus) Degraded() bool {
	return s == DocumentStatusExtractionFailed || s == DocumentStatusDecodeFailed
}
