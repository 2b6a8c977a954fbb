package docx

import (
	"fmt"
	"strings"
)

// RunMarkdown renders one run with its formatting markers:
// ***both***, **bold**, *italic*, ~~strike~~, <u>underline</u> and
// [text](url) for hyperlinked runs.
func (r *Run) RunMarkdown() string {
	// Page-break markers stay in Run.Text for boundary detection but never
	// reach rendered output.
	text := strings.ReplaceAll(r.Text, "\f", "")
	if text == "" {
		return ""
	}

	// Emphasis markers must hug the text: leading/trailing whitespace moves
	// outside, otherwise "** Bold**" is not valid markdown emphasis.
	leading, trailing := "", ""
	if r.Bold || r.Italic || r.Strikethrough || r.Underline {
		trimmed := strings.TrimLeft(text, " \t")
		leading = text[:len(text)-len(trimmed)]
		text = trimmed
		trimmed = strings.TrimRight(text, " \t")
		trailing = text[len(trimmed):]
		text = trimmed
		if text == "" {
			return leading + trailing
		}
	}

	var out strings.Builder
	out.Grow(len(text) + 16)

	out.WriteString(leading)
	if r.HyperlinkURL != "" {
		out.WriteByte('[')
	}
	if r.Underline {
		out.WriteString("<u>")
	}
	if r.Strikethrough {
		out.WriteString("~~")
	}
	switch {
	case r.Bold && r.Italic:
		out.WriteString("***")
	case r.Bold:
		out.WriteString("**")
	case r.Italic:
		out.WriteByte('*')
	}

	out.WriteString(text)

	switch {
	case r.Bold && r.Italic:
		out.WriteString("***")
	case r.Bold:
		out.WriteString("**")
	case r.Italic:
		out.WriteByte('*')
	}
	if r.Strikethrough {
		out.WriteString("~~")
	}
	if r.Underline {
		out.WriteString("</u>")
	}
	if r.HyperlinkURL != "" {
		out.WriteString("](")
		out.WriteString(r.HyperlinkURL)
		out.WriteByte(')')
	}
	out.WriteString(trailing)
	return out.String()
}

// RunsMarkdown renders the paragraph's inline runs with no paragraph-level
// wrapping.
func (p *Paragraph) RunsMarkdown() string {
	var out strings.Builder
	for i := range p.Runs {
		out.WriteString(p.Runs[i].RunMarkdown())
	}
	return out.String()
}

// ParagraphMarkdown renders a paragraph in heading/list context.
// headingLevel zero means no heading; list counters advance per
// (numId, level) key.
func (d *Document) ParagraphMarkdown(p *Paragraph, listCounters map[NumberingKey]int, headingLevel int) string {
	inline := p.RunsMarkdown()

	if headingLevel > 0 {
		return strings.Repeat("#", headingLevel) + " " + inline
	}

	if p.NumberingID != nil && p.NumberingLevel != nil {
		key := NumberingKey{NumID: *p.NumberingID, Level: *p.NumberingLevel}
		indent := strings.Repeat("  ", int(*p.NumberingLevel))
		switch d.NumberingDefs[key] {
		case ListNumbered:
			listCounters[key]++
			return fmt.Sprintf("%s%d. %s", indent, listCounters[key], inline)
		default:
			return indent + "- " + inline
		}
	}

	return inline
}

// HeadingLevel resolves the heading level for a paragraph style through the
// style catalog, falling back to string-matching the style id when the
// catalog is absent.
func (d *Document) HeadingLevel(styleID string) int {
	if styleID == "" {
		return 0
	}
	if d.Styles != nil {
		return d.Styles.HeadingLevel(styleID)
	}
	return headingLevelFromStyleName(styleID)
}

// ToMarkdown renders the whole document: headers (each followed by a rule),
// body elements in encounter order, footers (preceded by a rule), then
// numbered footnotes and endnotes. List paragraphs are separated by single
// newlines, other paragraphs by blank lines, and list/non-list transitions
// insert a blank line.
func (d *Document) ToMarkdown() string {
	var out strings.Builder
	listCounters := make(map[NumberingKey]int)
	prevWasList := false

	for i := range d.Headers {
		text := headerFooterMarkdown(&d.Headers[i])
		if text != "" {
			out.WriteString(text)
			out.WriteString("\n\n---\n\n")
		}
	}

	for _, element := range d.Elements {
		switch element.Kind {
		case ElementParagraph:
			d.appendParagraphMarkdown(&d.Paragraphs[element.Index], &out, listCounters, &prevWasList)
		case ElementTable:
			ensureBlankLine(&out)
			out.WriteString(d.Tables[element.Index].ToMarkdown())
			prevWasList = false
		case ElementDrawing:
			drawing := &d.Drawings[element.Index]
			ensureBlankLine(&out)
			fmt.Fprintf(&out, "![%s](image_%d)\n", drawing.Description, element.Index)
			prevWasList = false
		}
	}

	for i := range d.Footers {
		text := headerFooterMarkdown(&d.Footers[i])
		if text != "" {
			ensureBlankLine(&out)
			out.WriteString("---\n\n")
			out.WriteString(text)
		}
	}

	if len(d.Footnotes) > 0 {
		out.WriteString("\n\n")
		for i := range d.Footnotes {
			writeNoteMarkdown(&out, &d.Footnotes[i])
		}
	}
	if len(d.Endnotes) > 0 {
		out.WriteString("\n\n")
		for i := range d.Endnotes {
			writeNoteMarkdown(&out, &d.Endnotes[i])
		}
	}

	return strings.TrimSpace(out.String())
}

func (d *Document) appendParagraphMarkdown(p *Paragraph, out *strings.Builder, listCounters map[NumberingKey]int, prevWasList *bool) {
	isList := p.IsList()

	if isList != *prevWasList {
		ensureBlankLine(out)
	}

	headingLevel := d.HeadingLevel(p.Style)
	md := d.ParagraphMarkdown(p, listCounters, headingLevel)
	if md == "" {
		*prevWasList = isList
		return
	}

	if isList {
		if *prevWasList {
			out.WriteByte('\n')
		}
		out.WriteString(md)
	} else {
		ensureBlankLine(out)
		out.WriteString(md)
	}
	*prevWasList = isList
}

func headerFooterMarkdown(hf *HeaderFooter) string {
	var parts []string
	for i := range hf.Paragraphs {
		if text := hf.Paragraphs[i].RunsMarkdown(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func writeNoteMarkdown(out *strings.Builder, note *Note) {
	var parts []string
	for i := range note.Paragraphs {
		if text := note.Paragraphs[i].RunsMarkdown(); text != "" {
			parts = append(parts, text)
		}
	}
	text := strings.Join(parts, " ")
	if text != "" {
		fmt.Fprintf(out, "[^%s]: %s\n", note.ID, text)
	}
}

// ensureBlankLine makes the output end with a blank line unless empty.
func ensureBlankLine(out *strings.Builder) {
	s := out.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		return
	}
	if strings.HasSuffix(s, "\n") {
		out.WriteByte('\n')
	} else {
		out.WriteString("\n\n")
	}
}

// CellText renders a cell's paragraphs for table output. Vertical-merge
// continuation cells render empty regardless of stored paragraphs.
func (c *TableCell) CellText() string {
	if c.VMerge == VMergeContinue {
		return ""
	}
	var parts []string
	for i := range c.Paragraphs {
		parts = append(parts, c.Paragraphs[i].RunsMarkdown())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ToMarkdown renders the table. The header row is the first row flagged
// is_header, falling back to row zero. A grid_span of n contributes n-1
// extra empty cells, and all rows pad to the widest row's column count.
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}

	cells := make([][]string, 0, len(t.Rows))
	for i := range t.Rows {
		var rowCells []string
		for j := range t.Rows[i].Cells {
			cell := &t.Rows[i].Cells[j]
			rowCells = append(rowCells, cell.CellText())
			for extra := 1; extra < cell.GridSpan; extra++ {
				rowCells = append(rowCells, "")
			}
		}
		cells = append(cells, rowCells)
	}

	numCols := 0
	for _, row := range cells {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	if numCols == 0 {
		return ""
	}

	colWidths := make([]int, numCols)
	for i := range colWidths {
		colWidths[i] = 3
	}
	for _, row := range cells {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	headerRow := 0
	for i := range t.Rows {
		if t.Rows[i].IsHeader {
			headerRow = i
			break
		}
	}

	var md strings.Builder
	for rowIdx, row := range cells {
		md.WriteByte('|')
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&md, " %-*s |", colWidths[i], cell)
		}
		md.WriteByte('\n')

		if rowIdx == headerRow {
			md.WriteByte('|')
			for i := 0; i < numCols; i++ {
				fmt.Fprintf(&md, " %s |", strings.Repeat("-", colWidths[i]))
			}
			md.WriteByte('\n')
		}
	}
	return strings.TrimRight(md.String(), "\n")
}
