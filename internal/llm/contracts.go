package llm

import "context"

// StructureRequest is one document handed to a structuring engine.
type StructureRequest struct {
	Text     string
	FileName string
}

// StructureResult is the raw model output for one document. Content is
// expected, but not guaranteed, to be a JSON array of products.
type StructureResult struct {
	Content  string
	Provider string
	Model    string
}

// Structurer is the interface the ingestion pipeline depends on.
type Structurer interface {
	Structure(ctx context.Context, req StructureRequest) (StructureResult, error)
}
