package pdf

import (
	"fmt"
	"sort"
	"strings"

	"kreuzberg/document"
)

// RenderMarkdown renders a whole document as markdown using segment-level
// font analysis: segments are extracted per page, font sizes are clustered
// globally into a heading map, then each page is assembled per column and
// emitted with inline bold/italic markup and inline-positioned tables.
func RenderMarkdown(doc *Document, kClusters int, tables []document.Table) (string, error) {
	pageCount := doc.PageCount()

	allSegments := make([][]SegmentData, pageCount)
	type dims struct{ w, h float32 }
	pageDims := make([]dims, pageCount)

	for i := 0; i < pageCount; i++ {
		segments, err := doc.ExtractSegments(i + 1)
		if err != nil {
			return "", err
		}
		w, h := doc.PageSize(i + 1)
		pageDims[i] = dims{w: w, h: h}

		// Segments inside a positioned table's bbox are dropped before
		// paragraph assembly so table content is not duplicated.
		pageTables := tablesForPage(tables, i+1)
		if len(pageTables) > 0 {
			kept := segments[:0]
			for _, seg := range segments {
				if !insideAnyTable(seg, pageTables) {
					kept = append(kept, seg)
				}
			}
			segments = kept
		}
		allSegments[i] = segments
	}

	// Global font-size clustering over all pages.
	var blocks []TextBlock
	for _, segs := range allSegments {
		for _, s := range segs {
			blocks = append(blocks, TextBlock{FontSize: s.FontSize})
		}
	}
	var headingMap []HeadingAssignment
	if len(blocks) > 0 {
		headingMap = AssignHeadingLevelsSmart(ClusterFontSizes(blocks, kClusters))
	}

	pages := make([][]Paragraph, pageCount)
	for i := 0; i < pageCount; i++ {
		segments := allSegments[i]
		columns := DetectColumns(segments, pageDims[i].w, pageDims[i].h)

		var paragraphs []Paragraph
		if len(columns) <= 1 {
			paragraphs = LinesToParagraphs(WordsToLines(SegmentsToWords(segments)))
			ClassifyParagraphs(paragraphs, headingMap)
		} else {
			for _, colSegments := range SplitSegmentsByColumns(segments, columns) {
				if len(colSegments) == 0 {
					continue
				}
				colParas := LinesToParagraphs(WordsToLines(SegmentsToWords(colSegments)))
				ClassifyParagraphs(colParas, headingMap)
				paragraphs = append(paragraphs, colParas...)
			}
		}
		pages[i] = paragraphs
	}

	return assembleMarkdownWithTables(pages, tables), nil
}

func tablesForPage(tables []document.Table, pageNumber int) []document.Table {
	var out []document.Table
	for _, t := range tables {
		if t.PageNumber == pageNumber {
			out = append(out, t)
		}
	}
	return out
}

func insideAnyTable(seg SegmentData, tables []document.Table) bool {
	centerX := seg.X + seg.Width/2
	for _, t := range tables {
		if t.BBox == nil {
			continue
		}
		if centerX >= t.BBox.X0 && centerX <= t.BBox.X1 &&
			seg.BaselineY >= t.BBox.Y0 && seg.BaselineY <= t.BBox.Y1 {
			return true
		}
	}
	return false
}

// assembleMarkdownWithTables interleaves paragraphs and positioned tables by
// top-y descending (PDF y grows upward, so top of page renders first).
// Tables without bounding boxes append at the end of their page.
func assembleMarkdownWithTables(pages [][]Paragraph, tables []document.Table) string {
	positionedExists := false
	for _, t := range tables {
		if t.BBox != nil {
			positionedExists = true
			break
		}
	}

	var out strings.Builder

	for pageIdx, paragraphs := range pages {
		pageNumber := pageIdx + 1
		if pageIdx > 0 && out.Len() > 0 {
			out.WriteString("\n\n")
		}

		pageTables := tablesForPage(tables, pageNumber)
		var positioned, unpositioned []document.Table
		for _, t := range pageTables {
			if t.BBox != nil {
				positioned = append(positioned, t)
			} else {
				unpositioned = append(unpositioned, t)
			}
		}

		if !positionedExists || len(positioned) == 0 {
			for i := range paragraphs {
				if i > 0 {
					out.WriteString("\n\n")
				}
				renderParagraph(&paragraphs[i], &out)
			}
			for _, t := range unpositioned {
				out.WriteString("\n\n")
				out.WriteString(strings.TrimSpace(t.Markdown))
			}
			continue
		}

		type pageItem struct {
			y     float32
			para  *Paragraph
			table *document.Table
		}
		var items []pageItem
		for i := range paragraphs {
			var y float32
			if len(paragraphs[i].Lines) > 0 {
				y = paragraphs[i].Lines[0].BaselineY
			}
			items = append(items, pageItem{y: y, para: &paragraphs[i]})
		}
		for i := range positioned {
			items = append(items, pageItem{y: positioned[i].BBox.Y1, table: &positioned[i]})
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].y > items[j].y })

		for i, item := range items {
			if i > 0 {
				out.WriteString("\n\n")
			}
			if item.para != nil {
				renderParagraph(item.para, &out)
			} else {
				out.WriteString(strings.TrimSpace(item.table.Markdown))
			}
		}
		for _, t := range unpositioned {
			out.WriteString("\n\n")
			out.WriteString(strings.TrimSpace(t.Markdown))
		}
	}

	return out.String()
}

func renderParagraph(para *Paragraph, out *strings.Builder) {
	switch {
	case para.HeadingLevel > 0:
		out.WriteString(strings.Repeat("#", para.HeadingLevel))
		out.WriteByte(' ')
		out.WriteString(joinLineTexts(para.Lines))
	case para.IsListItem:
		// List items keep one line each.
		for i, line := range para.Lines {
			if i > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(renderWordsWithMarkup(wordRefs(line.Words)))
		}
	default:
		var all []*Word
		for i := range para.Lines {
			all = append(all, wordRefs(para.Lines[i].Words)...)
		}
		out.WriteString(renderWordsWithMarkup(all))
	}
}

func wordRefs(words []Word) []*Word {
	refs := make([]*Word, len(words))
	for i := range words {
		refs[i] = &words[i]
	}
	return refs
}

// joinLineTexts flattens line words into one CJK-aware joined string with no
// inline markup.
func joinLineTexts(lines []Line) string {
	var texts []string
	for _, l := range lines {
		for _, w := range l.Words {
			texts = append(texts, w.Text)
		}
	}
	return joinWordsCJKAware(texts)
}

// renderWordsWithMarkup run-length encodes consecutive words sharing the
// same (bold, italic) state: ***both***, **bold**, *italic*. Between runs a
// space is inserted per the CJK join rule.
func renderWordsWithMarkup(words []*Word) string {
	if len(words) == 0 {
		return ""
	}

	var out strings.Builder
	i := 0
	for i < len(words) {
		bold, italic := words[i].IsBold, words[i].IsItalic
		runStart := i
		for i < len(words) && words[i].IsBold == bold && words[i].IsItalic == italic {
			i++
		}

		texts := make([]string, 0, i-runStart)
		for _, w := range words[runStart:i] {
			texts = append(texts, w.Text)
		}
		runText := joinWordsCJKAware(texts)

		if out.Len() > 0 && needsSpaceBetween(words[runStart-1].Text, words[runStart].Text) {
			out.WriteByte(' ')
		}

		switch {
		case bold && italic:
			out.WriteString("***")
			out.WriteString(runText)
			out.WriteString("***")
		case bold:
			out.WriteString("**")
			out.WriteString(runText)
			out.WriteString("**")
		case italic:
			out.WriteByte('*')
			out.WriteString(runText)
			out.WriteByte('*')
		default:
			out.WriteString(runText)
		}
	}
	return out.String()
}

// InjectImagePlaceholders appends image placeholders grouped by page.
// Placeholders reference the stable image index; OCR text, when present,
// follows as a blockquote line.
func InjectImagePlaceholders(markdown string, images []document.ExtractedImage) string {
	if len(images) == 0 {
		return markdown
	}

	havePages := false
	for _, img := range images {
		if img.PageNumber > 0 {
			havePages = true
			break
		}
	}

	var out strings.Builder
	out.WriteString(markdown)

	appendImage := func(img document.ExtractedImage) {
		ii := img.ImageIndex
		if img.PageNumber > 0 {
			fmt.Fprintf(&out, "\n\n![Image %d (page %d)](embedded:p%d_i%d)", ii, img.PageNumber, img.PageNumber, ii)
		} else {
			fmt.Fprintf(&out, "\n\n![Image %d](embedded:i%d)", ii, ii)
		}
		if img.OCRResult != nil {
			if text := strings.TrimSpace(img.OCRResult.Content); text != "" {
				fmt.Fprintf(&out, "\n> *Image text: %s*", text)
			}
		}
	}

	if !havePages {
		for _, img := range images {
			appendImage(img)
		}
		return out.String()
	}

	byPage := map[int][]document.ExtractedImage{}
	var pageNumbers []int
	for _, img := range images {
		if _, seen := byPage[img.PageNumber]; !seen {
			pageNumbers = append(pageNumbers, img.PageNumber)
		}
		byPage[img.PageNumber] = append(byPage[img.PageNumber], img)
	}
	sort.Ints(pageNumbers)

	for _, page := range pageNumbers {
		for _, img := range byPage[page] {
			appendImage(img)
		}
	}
	return out.String()
}
