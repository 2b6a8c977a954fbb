// Package document defines the unified data model produced by extractors and
// transformed by the post-processing pipeline.
package document

// ExtractionResult is the unified output of every extractor. It is created by
// an extractor, mutated by post-processors in pipeline order, and terminal
// after output-format conversion.
type ExtractionResult struct {
	Content           string           `json:"content"`
	MimeType          string           `json:"mime_type"`
	Metadata          Metadata         `json:"metadata"`
	Tables            []Table          `json:"tables"`
	Pages             []PageContent    `json:"pages,omitempty"`
	Images            []ExtractedImage `json:"images,omitempty"`
	Chunks            []Chunk          `json:"chunks,omitempty"`
	DetectedLanguages []string         `json:"detected_languages,omitempty"`
	DjotContent       *DjotContent     `json:"djot_content,omitempty"`
	Document          *Structure       `json:"document,omitempty"`
	Elements          []Element        `json:"elements,omitempty"`
}

// Table represents a detected table in the source document.
type Table struct {
	Cells      [][]string   `json:"cells"`
	Markdown   string       `json:"markdown"`
	PageNumber int          `json:"page_number"`
	BBox       *BoundingBox `json:"bounding_box,omitempty"`
}

// BoundingBox is an axis-aligned rectangle in source units (PDF points).
// Inside the PDF core the y-axis follows PDF convention: larger y is higher
// on the page.
type BoundingBox struct {
	X0 float32 `json:"x0"`
	Y0 float32 `json:"y0"`
	X1 float32 `json:"x1"`
	Y1 float32 `json:"y1"`
}

// PageContent carries per-page extraction output.
type PageContent struct {
	PageNumber int              `json:"page_number"`
	Content    string           `json:"content"`
	Tables     []Table          `json:"tables,omitempty"`
	Images     []ExtractedImage `json:"images,omitempty"`
	IsBlank    bool             `json:"is_blank"`
	Hierarchy  []HierarchyEntry `json:"hierarchy,omitempty"`
}

// HierarchyEntry records a heading detected on a page.
type HierarchyEntry struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Blank reports whether a page should be flagged blank: at most two
// non-whitespace characters and no tables or images.
func (p *PageContent) Blank() bool {
	if len(p.Tables) > 0 || len(p.Images) > 0 {
		return false
	}
	count := 0
	for _, r := range p.Content {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			count++
			if count > 2 {
				return false
			}
		}
	}
	return true
}

// Chunk contains chunked content plus positional metadata.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata provides positional information for a chunk.
type ChunkMetadata struct {
	CharStart   int `json:"char_start"`
	CharEnd     int `json:"char_end"`
	ChunkIndex  int `json:"chunk_index"`
	TotalChunks int `json:"total_chunks"`
}

// ExtractedImage represents an image pulled out of a document, optionally
// with a nested OCR result.
type ExtractedImage struct {
	Data        []byte            `json:"data"`
	Format      string            `json:"format"`
	ImageIndex  int               `json:"image_index"`
	PageNumber  int               `json:"page_number,omitempty"`
	Width       int               `json:"width,omitempty"`
	Height      int               `json:"height,omitempty"`
	Description string            `json:"description,omitempty"`
	OCRResult   *ExtractionResult `json:"ocr_result,omitempty"`
}

// Element is a flat, position-ordered projection of the document used by the
// element-based result format.
type Element struct {
	Kind       ElementKind `json:"kind"`
	Text       string      `json:"text,omitempty"`
	Level      int         `json:"level,omitempty"`
	Table      *Table      `json:"table,omitempty"`
	PageNumber int         `json:"page_number,omitempty"`
}

// ElementKind tags Element variants.
type ElementKind string

const (
	ElementHeading   ElementKind = "heading"
	ElementParagraph ElementKind = "paragraph"
	ElementListItem  ElementKind = "list_item"
	ElementTable     ElementKind = "table"
	ElementImage     ElementKind = "image"
)
