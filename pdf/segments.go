package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"kreuzberg/document"
)

const (
	defaultFontSize float32 = 12.0

	mergeIntersectionThreshold float32 = 0.05
	mergeXThresholdMultiplier  float32 = 2.0
	mergeYThresholdMultiplier  float32 = 1.5

	// Horizontal gap beyond this fraction of the font size breaks a word
	// when merging backend glyphs into segments.
	wordGapFraction float32 = 0.3
)

// CharData is a single positioned character with font metrics.
type CharData struct {
	Text      string
	X         float32
	Y         float32
	Width     float32
	Height    float32
	FontSize  float32
	IsBold    bool
	IsItalic  bool
	BaselineY float32
}

// SegmentData is a pre-merged run of characters sharing baseline and font
// settings. Font metadata is sampled from the first non-whitespace character.
type SegmentData struct {
	Text      string
	X         float32
	Y         float32
	Width     float32
	Height    float32
	FontSize  float32
	IsBold    bool
	IsItalic  bool
	BaselineY float32
}

// Document wraps the PDF backend reader together with the raw bytes it
// reads from.
type Document struct {
	reader *pdf.Reader
}

// Open parses PDF bytes with the backend library. Failures surface as
// Parsing errors.
func Open(content []byte) (*Document, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, document.NewParsing("failed to open PDF", err)
	}
	return &Document{reader: reader}, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// PageSize returns the media-box width and height of a 1-based page.
func (d *Document) PageSize(pageNumber int) (float32, float32) {
	page := d.reader.Page(pageNumber)
	if page.V.IsNull() {
		return 0, 0
	}
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return 612, 792 // US Letter default
	}
	w := float32(box.Index(2).Float64() - box.Index(0).Float64())
	h := float32(box.Index(3).Float64() - box.Index(1).Float64())
	if w <= 0 || h <= 0 {
		return 612, 792
	}
	return w, h
}

// ExtractSegments pulls text segments from a 1-based page. Backend glyph
// runs are merged into segments keyed by font name, font size and baseline;
// horizontal gaps wider than a fraction of the font size contribute a space
// so segment text keeps its word boundaries. Whitespace-only segments are
// discarded. Backend failures surface as TextExtractionFailed parsing
// errors.
func (d *Document) ExtractSegments(pageNumber int) (segs []SegmentData, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			segs = nil
			err = document.NewParsing(fmt.Sprintf("text extraction failed for page %d: %v", pageNumber, rec), nil)
		}
	}()

	page := d.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, nil
	}
	content := page.Content()

	items := append([]pdf.Text{}, content.Text...)
	// Top-to-bottom (PDF y grows upward), then left-to-right.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Y != items[j].Y {
			return items[i].Y > items[j].Y
		}
		return items[i].X < items[j].X
	})

	var out []SegmentData
	var cur *SegmentData
	var curFont string
	var prevEnd float32

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, item := range items {
		fontSize := float32(item.FontSize)
		if fontSize <= 0 {
			fontSize = defaultFontSize
		}
		x := float32(item.X)
		y := float32(item.Y)
		w := float32(item.W)

		sameRun := cur != nil &&
			curFont == item.Font &&
			abs32(fontSize-cur.FontSize) < 0.1 &&
			abs32(y-cur.BaselineY) < 0.2*fontSize

		if !sameRun {
			flush()
			bold, italic := fontStyle(item.Font)
			cur = &SegmentData{
				Text:      item.S,
				X:         x,
				Y:         y,
				Width:     w,
				Height:    fontSize,
				FontSize:  fontSize,
				IsBold:    bold,
				IsItalic:  italic,
				BaselineY: y,
			}
			curFont = item.Font
			prevEnd = x + w
			continue
		}

		if gap := x - prevEnd; gap > wordGapFraction*fontSize && !strings.HasSuffix(cur.Text, " ") {
			cur.Text += " "
		}
		cur.Text += item.S
		cur.Width = x + w - cur.X
		prevEnd = x + w
	}
	flush()

	return out, nil
}

// fontStyle derives bold/italic independently per attribute from the font
// name. The backend exposes neither descriptor flags nor numeric weights, so
// name substrings are the deciding channel.
func fontStyle(fontName string) (bold, italic bool) {
	name := strings.ToLower(fontName)
	bold = strings.Contains(name, "bold") || strings.Contains(name, "black") || strings.Contains(name, "heavy")
	italic = strings.Contains(name, "italic") || strings.Contains(name, "oblique")
	return
}

// MergeCharsIntoBlocks greedily clusters characters into text blocks by
// spatial proximity: boxes merge when their centers are within 2.0× the
// font size horizontally and 1.5× vertically, or when their intersection
// ratio exceeds 0.05. Blocks come back sorted top-to-bottom, left-to-right.
func MergeCharsIntoBlocks(chars []CharData) []TextBlock {
	if len(chars) == 0 {
		return nil
	}

	type charBox struct {
		ch   CharData
		bbox BoundingBox
	}
	boxes := make([]charBox, len(chars))
	for i, ch := range chars {
		boxes[i] = charBox{
			ch: ch,
			bbox: BoundingBox{
				Left:   ch.X,
				Top:    ch.Y - ch.Height,
				Right:  ch.X + ch.Width,
				Bottom: ch.Y,
			},
		}
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		if boxes[i].bbox.Top != boxes[j].bbox.Top {
			return boxes[i].bbox.Top < boxes[j].bbox.Top
		}
		return boxes[i].bbox.Left < boxes[j].bbox.Left
	})

	used := make([]bool, len(boxes))
	var blocks []TextBlock

	for i := range boxes {
		if used[i] {
			continue
		}
		members := []CharData{boxes[i].ch}
		blockBox := boxes[i].bbox
		used[i] = true

		for changed := true; changed; {
			changed = false
			for j := i + 1; j < len(boxes); j++ {
				if used[j] {
					continue
				}
				next := boxes[j].bbox
				fontSize := max32(blockBox.Bottom-blockBox.Top, next.Bottom-next.Top)

				cx1, cy1 := blockBox.Center()
				cx2, cy2 := next.Center()
				closeEnough := abs32(cx1-cx2) < fontSize*mergeXThresholdMultiplier &&
					abs32(cy1-cy2) < fontSize*mergeYThresholdMultiplier

				if closeEnough || blockBox.IntersectionRatio(next) > mergeIntersectionThreshold {
					members = append(members, boxes[j].ch)
					blockBox.Left = min32(blockBox.Left, next.Left)
					blockBox.Top = min32(blockBox.Top, next.Top)
					blockBox.Right = max32(blockBox.Right, next.Right)
					blockBox.Bottom = max32(blockBox.Bottom, next.Bottom)
					used[j] = true
					changed = true
				}
			}
		}

		var text strings.Builder
		var totalFont float32
		for _, m := range members {
			text.WriteString(m.Text)
			totalFont += m.FontSize
		}
		blocks = append(blocks, TextBlock{
			Text:     text.String(),
			BBox:     blockBox,
			FontSize: totalFont / float32(len(members)),
		})
	}
	return blocks
}

// ShouldTriggerOCR reports whether the text blocks cover too little of the
// page, indicating a scanned page. The coverage threshold comes from
// pdf_options.hierarchy.ocr_coverage_threshold, defaulting to 0.5. Invalid
// page areas always trigger OCR.
func ShouldTriggerOCR(pageWidth, pageHeight float32, blocks []TextBlock, cfg *document.ExtractionConfig) bool {
	pageArea := pageWidth * pageHeight
	if pageArea <= 0 {
		return true
	}

	var textArea float32
	for _, b := range blocks {
		w := max32(b.BBox.Right-b.BBox.Left, 0)
		h := max32(b.BBox.Bottom-b.BBox.Top, 0)
		textArea += w * h
	}

	threshold := float32(0.5)
	if cfg != nil && cfg.PdfOptions != nil && cfg.PdfOptions.Hierarchy != nil && cfg.PdfOptions.Hierarchy.OCRCoverageThreshold != nil {
		threshold = *cfg.PdfOptions.Hierarchy.OCRCoverageThreshold
	}
	return textArea/pageArea < threshold
}
