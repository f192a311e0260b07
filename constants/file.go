package constants

import (
	"path/filepath"
	"strings"
)

// AllowedExtensions holds the file extensions accepted for catalogue ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// PageBreak separates per-page OCR output so downstream consumers can recover page boundaries.
const PageBreak = "\n\n---PAGE_BREAK---\n\n"

// LanguageNone is recorded when language detection fails or is inconclusive.
const LanguageNone = "none"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowed reports whether path has an extension accepted for ingestion.
func IsAllowed(path string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(path))]
	return ok
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
