package extract

import (
	"context"

	"github.com/sultanMIB/pdf-ui/internal/entity"
)

// MetadataReader is Stage A: bytes -> document metadata.
type MetadataReader interface {
	ReadMetadata(ctx context.Context, data []byte) (entity.Metadata, error)
}

// ContentExtractor is Stage B: bytes -> per-page text and table grids.
type ContentExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]Page, error)
}

// EntityExtractor is Stage C: text -> pattern matches.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) []entity.Entity
}

// Classifier is Stage D: text -> semantic analysis.
type Classifier interface {
	Classify(ctx context.Context, text string) (entity.SemanticAnalysis, error)
}

// Page is the content of one page in document order. Number is 1-based.
// Err is set when the page could not be read; Text and Grids are empty then.
type Page struct {
	Number int
	Text   string
	Grids  [][][]any
	Err    error
}
