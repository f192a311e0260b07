package entity

import "time"

// ExtractionMethod records which extraction tier produced a document's text.
type ExtractionMethod string

const (
	MethodNative ExtractionMethod = "NATIVE"
	MethodOCR    ExtractionMethod = "OCR"
	MethodNone   ExtractionMethod = "NONE" // both tiers failed, text is empty
)

// RawDocument is the extracted text of one ingested file. It is created once
// per file and not modified afterwards.
type RawDocument struct {
	FileName    string           `json:"file_name"`
	SourcePath  string           `json:"source_path,omitempty"`
	Language    string           `json:"language"`
	Text        string           `json:"raw_text"`
	Method      ExtractionMethod `json:"method"`
	Pages       int              `json:"pages"`
	ExtractedAt time.Time        `json:"extracted_at"`
}
