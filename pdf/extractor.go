package pdf

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"kreuzberg/document"
)

const defaultKClusters = 5

// MIME types claimed by the PDF extractor.
var mimeTypes = []string{"application/pdf", "application/x-pdf"}

// Extractor is the PDF document extractor built on the layout
// reconstruction pipeline.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor returns a PDF extractor logging through log.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

func (e *Extractor) Name() string                 { return "pdf-extractor" }
func (e *Extractor) Version() string              { return "1.0.0" }
func (e *Extractor) Initialize() error            { return nil }
func (e *Extractor) Shutdown() error              { return nil }
func (e *Extractor) SupportedMimeTypes() []string { return mimeTypes }
func (e *Extractor) Priority() int                { return 50 }

// ExtractBytes reconstructs document layout and renders structured markdown
// together with per-page content and heading hierarchy.
func (e *Extractor) ExtractBytes(ctx context.Context, content []byte, mimeType string, cfg *document.ExtractionConfig) (*document.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, document.NewIO("extraction cancelled", err)
	}

	doc, err := Open(content)
	if err != nil {
		return nil, err
	}

	markdown, err := RenderMarkdown(doc, defaultKClusters, nil)
	if err != nil {
		return nil, err
	}

	pageCount := doc.PageCount()
	allSegments := make([][]SegmentData, pageCount)
	var blocks []TextBlock
	var ocrCandidates []int
	for i := 0; i < pageCount; i++ {
		segments, err := doc.ExtractSegments(i + 1)
		if err != nil {
			e.log.Debug("Page segment extraction failed", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		allSegments[i] = segments
		for _, s := range segments {
			blocks = append(blocks, TextBlock{FontSize: s.FontSize})
		}

		// OCR itself runs out of process; pages with too little text
		// coverage are only flagged for the caller's OCR backend.
		pageW, pageH := doc.PageSize(i + 1)
		if ShouldTriggerOCR(pageW, pageH, segmentBlocks(segments), cfg) {
			ocrCandidates = append(ocrCandidates, i+1)
		}
	}
	var headingMap []HeadingAssignment
	if len(blocks) > 0 {
		headingMap = AssignHeadingLevelsSmart(ClusterFontSizes(blocks, defaultKClusters))
	}

	pages := make([]document.PageContent, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		paragraphs := LinesToParagraphs(WordsToLines(SegmentsToWords(allSegments[i])))
		ClassifyParagraphs(paragraphs, headingMap)

		page := document.PageContent{PageNumber: i + 1}
		var parts []string
		for p := range paragraphs {
			var out strings.Builder
			renderParagraph(&paragraphs[p], &out)
			parts = append(parts, out.String())
			if paragraphs[p].HeadingLevel > 0 {
				page.Hierarchy = append(page.Hierarchy, document.HierarchyEntry{
					Level: paragraphs[p].HeadingLevel,
					Text:  joinLineTexts(paragraphs[p].Lines),
				})
			}
		}
		page.Content = strings.Join(parts, "\n\n")
		page.IsBlank = page.Blank()
		pages = append(pages, page)
	}

	// The backend exposes no raster streams, so Images stays empty here;
	// callers that run the pluggable OCR backend over the flagged pages
	// splice its output in through InjectImagePlaceholders.
	result := &document.ExtractionResult{
		Content:  markdown,
		MimeType: mimeType,
		Pages:    pages,
	}
	result.Metadata.Set("page_count", pageCount)
	if len(ocrCandidates) > 0 {
		result.Metadata.Set("ocr_candidate_pages", ocrCandidates)
	}
	return result, nil
}

// segmentBlocks projects segments into coverage blocks for the OCR trigger
// heuristic.
func segmentBlocks(segments []SegmentData) []TextBlock {
	blocks := make([]TextBlock, 0, len(segments))
	for _, s := range segments {
		blocks = append(blocks, TextBlock{
			BBox: BoundingBox{
				Left:   s.X,
				Top:    s.BaselineY - s.Height,
				Right:  s.X + s.Width,
				Bottom: s.BaselineY,
			},
			FontSize: s.FontSize,
		})
	}
	return blocks
}
