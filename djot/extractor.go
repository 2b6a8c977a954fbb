package djot

import (
	"context"

	"go.uber.org/zap"

	"kreuzberg/document"
)

// MIME types claimed by the Djot extractor.
var mimeTypes = []string{"text/djot", "text/x-djot"}

// Extractor parses Djot markup with YAML frontmatter support.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor returns a Djot extractor logging through log.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

func (e *Extractor) Name() string                 { return "djot-extractor" }
func (e *Extractor) Version() string              { return "1.0.0" }
func (e *Extractor) Initialize() error            { return nil }
func (e *Extractor) Shutdown() error              { return nil }
func (e *Extractor) SupportedMimeTypes() []string { return mimeTypes }
func (e *Extractor) Priority() int                { return 50 }

// ExtractBytes tokenizes the Djot source and populates the result with the
// plain-text projection, the complete block/inline tree, tables collected
// in a dedicated sweep, and frontmatter metadata.
func (e *Extractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, _ *document.ExtractionConfig) (*document.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, document.NewIO("extraction cancelled", err)
	}

	body, meta := ExtractFrontmatter(string(content))
	events := Lex(body)

	djotContent := Build(events)
	tables := Tables(events)

	return &document.ExtractionResult{
		Content:     djotContent.PlainText,
		MimeType:    mimeType,
		Metadata:    meta,
		Tables:      tables,
		DjotContent: djotContent,
	}, nil
}
