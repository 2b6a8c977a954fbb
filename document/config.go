package document

import "kreuzberg/common"

// ExtractionConfig is the library-level configuration handed to extractors,
// post-processors and validators. Nil sub-configs mean the corresponding
// feature is disabled.
type ExtractionConfig struct {
	Postprocessor           *PostProcessorConfig     `json:"postprocessor,omitempty" yaml:"postprocessor,omitempty"`
	Chunking                *ChunkingConfig          `json:"chunking,omitempty" yaml:"chunking,omitempty"`
	LanguageDetection       *LanguageDetectionConfig `json:"language_detection,omitempty" yaml:"language_detection,omitempty"`
	Images                  *ImageExtractionConfig   `json:"images,omitempty" yaml:"images,omitempty"`
	OutputFormat            common.OutputFormat      `json:"output_format" yaml:"output_format"`
	ResultFormat            common.ResultFormat      `json:"result_format" yaml:"result_format"`
	IncludeDocumentStruct   bool                     `json:"include_document_structure" yaml:"include_document_structure"`
	PdfOptions              *PdfOptions              `json:"pdf_options,omitempty" yaml:"pdf_options,omitempty"`
	EnableQualityProcessing bool                     `json:"enable_quality_processing" yaml:"enable_quality_processing"`
}

// PostProcessorConfig determines which post-processors run. Inclusion and
// exclusion precedence: EnabledSet > DisabledSet > EnabledProcessors >
// DisabledProcessors > default true.
type PostProcessorConfig struct {
	Enabled            bool                `json:"enabled" yaml:"enabled"`
	EnabledSet         map[string]struct{} `json:"-" yaml:"-"`
	DisabledSet        map[string]struct{} `json:"-" yaml:"-"`
	EnabledProcessors  []string            `json:"enabled_processors,omitempty" yaml:"enabled_processors,omitempty"`
	DisabledProcessors []string            `json:"disabled_processors,omitempty" yaml:"disabled_processors,omitempty"`
}

// ChunkingConfig configures text chunking.
type ChunkingConfig struct {
	MaxChars   int `json:"max_chars" yaml:"max_chars" validate:"min=1"`
	MaxOverlap int `json:"max_overlap" yaml:"max_overlap" validate:"gte=0"`
}

// LanguageDetectionConfig enables automatic language detection.
type LanguageDetectionConfig struct {
	MinConfidence  float64 `json:"min_confidence,omitempty" yaml:"min_confidence,omitempty"`
	DetectMultiple bool    `json:"detect_multiple,omitempty" yaml:"detect_multiple,omitempty"`
}

// ImageExtractionConfig controls inline image extraction.
type ImageExtractionConfig struct {
	ExtractImages bool  `json:"extract_images" yaml:"extract_images"`
	MaxImageBytes int64 `json:"max_image_bytes,omitempty" yaml:"max_image_bytes,omitempty"`
}

// PdfOptions exposes PDF-specific tuning.
type PdfOptions struct {
	Hierarchy *HierarchyOptions `json:"hierarchy,omitempty" yaml:"hierarchy,omitempty"`
}

// HierarchyOptions tunes the PDF layout-reconstruction pipeline.
type HierarchyOptions struct {
	// OCRCoverageThreshold is the text-coverage fraction below which OCR
	// should be triggered for a page. Nil means the 0.5 default.
	OCRCoverageThreshold *float32 `json:"ocr_coverage_threshold,omitempty" yaml:"ocr_coverage_threshold,omitempty"`
}
