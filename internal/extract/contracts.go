package extract

import (
	"context"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// PageExtractor turns one document into page-indexed text. Implementations return an
// ExtractionError when the document cannot be read at all; blank pages are not errors.
type PageExtractor interface {
	Extract(ctx context.Context, path string) (entity.Pages, error)
}
