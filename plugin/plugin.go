// Package plugin defines the capability surfaces for extractors,
// post-processors and validators, together with the process-wide named
// registries that hold them.
package plugin

import (
	"context"

	"kreuzberg/common"
	"kreuzberg/document"
)

// Plugin is the base capability shared by every registrable component.
type Plugin interface {
	Name() string
	Version() string
	Initialize() error
	Shutdown() error
}

// DocumentExtractor turns raw bytes of a supported MIME type into a fully
// populated ExtractionResult. Callers select the highest-priority extractor
// whose SupportedMimeTypes contains the requested MIME.
type DocumentExtractor interface {
	Plugin
	ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *document.ExtractionConfig) (*document.ExtractionResult, error)
	SupportedMimeTypes() []string
	Priority() int
}

// PostProcessor mutates an ExtractionResult during its pipeline stage.
// Within one extraction exactly one processor touches the result at a time.
type PostProcessor interface {
	Plugin
	ProcessingStage() common.ProcessingStage
	ShouldProcess(result *document.ExtractionResult, cfg *document.ExtractionConfig) bool
	Process(ctx context.Context, result *document.ExtractionResult, cfg *document.ExtractionConfig) error
}

// Validator inspects the final result after all post-processors and output
// format conversion. The first validation error aborts the extraction.
type Validator interface {
	Plugin
	ShouldValidate(result *document.ExtractionResult, cfg *document.ExtractionConfig) bool
	Validate(ctx context.Context, result *document.ExtractionResult, cfg *document.ExtractionConfig) error
}

// OCRBackend is the pluggable OCR capability. OCR never runs in-process;
// implementations bridge to an external engine.
type OCRBackend interface {
	Plugin
	ProcessImage(ctx context.Context, image []byte, language string) (*document.ExtractionResult, error)
}
