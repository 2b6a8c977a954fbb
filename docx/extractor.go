package docx

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"kreuzberg/document"
)

// MIME types claimed by the DOCX extractor.
var mimeTypes = []string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Extractor is the DOCX document extractor.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor returns a DOCX extractor logging through log.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

func (e *Extractor) Name() string                 { return "docx-extractor" }
func (e *Extractor) Version() string              { return "1.0.0" }
func (e *Extractor) Initialize() error            { return nil }
func (e *Extractor) Shutdown() error              { return nil }
func (e *Extractor) SupportedMimeTypes() []string { return mimeTypes }
func (e *Extractor) Priority() int                { return 50 }

// ExtractBytes parses the DOCX and produces markdown content, tables,
// metadata, optional extracted images and the optional document tree.
func (e *Extractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *document.ExtractionConfig) (*document.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, document.NewIO("extraction cancelled", err)
	}
	if cfg == nil {
		cfg = &document.ExtractionConfig{}
	}

	doc, err := Parse(content)
	if err != nil {
		return nil, err
	}

	result := &document.ExtractionResult{
		Content:  doc.ToMarkdown(),
		MimeType: mimeType,
	}

	for i := range doc.Tables {
		result.Tables = append(result.Tables, tableToDocumentTable(&doc.Tables[i], i))
	}

	// Metadata parts live in the same archive; reopening keeps the parser
	// free of metadata concerns.
	if archive, err := OpenArchive(content); err == nil {
		ParseProperties(archive, &result.Metadata)
		if images := ExtractImages(archive, doc, cfg.Images, e.log); len(images) > 0 {
			result.Images = images
		}
	}

	if cfg.IncludeDocumentStruct {
		structure := BuildStructure(doc)
		if err := structure.Validate(); err != nil {
			e.log.Warn("Document structure failed validation", zap.Error(err))
		}
		result.Document = structure
	}

	if pages := DetectPageBoundaries(doc); len(pages) > 0 {
		result.Metadata.Set("page_boundaries", pages)
	}

	return result, nil
}

// tableToDocumentTable converts a parsed table into the unified Table with
// its markdown rendering. The table index doubles as the page number, an
// approximation carried over from the page-less DOCX model.
func tableToDocumentTable(table *Table, index int) document.Table {
	var cells [][]string
	for i := range table.Rows {
		var row []string
		for j := range table.Rows[i].Cells {
			row = append(row, table.Rows[i].Cells[j].CellText())
		}
		cells = append(cells, row)
	}
	return document.Table{
		Cells:      cells,
		Markdown:   table.ToMarkdown(),
		PageNumber: index + 1,
	}
}

// DetectPageBoundaries locates explicit page breaks in the parsed body.
// DOCX has no true page model; this heuristic counts <w:br w:type="page">
// and <w:lastRenderedPageBreak> markers (encoded as form feeds in run text)
// and is best-effort only.
func DetectPageBoundaries(doc *Document) []int {
	var boundaries []int
	for idx := range doc.Paragraphs {
		for _, run := range doc.Paragraphs[idx].Runs {
			if strings.Contains(run.Text, "\f") {
				boundaries = append(boundaries, idx)
				break
			}
		}
	}
	return boundaries
}
