package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"kreuzberg/document"
)

const (
	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNS  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Parse opens DOCX bytes and produces the structured document: body
// elements in encounter order, style catalog, numbering, relationships,
// headers/footers and notes.
func Parse(content []byte) (*Document, error) {
	archive, err := OpenArchive(content)
	if err != nil {
		return nil, err
	}

	doc := NewDocument()
	parser := &bodyParser{doc: doc}

	// Relationships first so hyperlinks resolve while streaming the body.
	if rels, err := archive.ReadFile("word/_rels/document.xml.rels"); err == nil {
		parser.relationships = parseRelationships(rels)
	}

	// Styles are optional; absence is non-fatal.
	if stylesXML, err := archive.ReadFile("word/styles.xml"); err == nil {
		if catalog, err := ParseStyles(stylesXML); err == nil {
			doc.Styles = catalog
		}
	}

	body, err := archive.ReadFile("word/document.xml")
	if err != nil {
		return nil, err
	}
	if err := parser.parseBody(body); err != nil {
		return nil, err
	}

	if numberingXML, err := archive.ReadFile("word/numbering.xml"); err == nil {
		doc.NumberingDefs = parseNumbering(numberingXML)
	}

	parseHeadersFooters(archive, doc)

	if notesXML, err := archive.ReadFile("word/footnotes.xml"); err == nil {
		if err := parseNotes(notesXML, &doc.Footnotes, NoteFootnote); err != nil {
			return nil, err
		}
	}
	if notesXML, err := archive.ReadFile("word/endnotes.xml"); err == nil {
		if err := parseNotes(notesXML, &doc.Endnotes, NoteEndnote); err != nil {
			return nil, err
		}
	}

	// Keep image relationships only: media targets, never URLs.
	for id, target := range parser.relationships {
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			doc.ImageRels[id] = target
		}
	}

	return doc, nil
}

// tableContext is one frame of table nesting state.
type tableContext struct {
	table     Table
	row       *TableRow
	cell      *TableCell
	paragraph *Paragraph
}

type bodyParser struct {
	doc           *Document
	relationships map[string]string
}

// parseBody streams word/document.xml, maintaining the current paragraph,
// run and hyperlink URL plus a stack of table frames, one per nesting
// depth. Run text whitespace is preserved so inter-word spaces inside
// <w:t> survive.
func (p *bodyParser) parseBody(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		currentParagraph *Paragraph
		currentRun       *Run
		inText           bool
		hyperlinkURL     string
		tableStack       []*tableContext
	)

	currentPara := func() *Paragraph {
		if len(tableStack) > 0 {
			return tableStack[len(tableStack)-1].paragraph
		}
		return currentParagraph
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return document.NewParsing("DOCX parsing failed", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if len(tableStack) > 0 {
					tableStack[len(tableStack)-1].paragraph = &Paragraph{}
				} else {
					currentParagraph = &Paragraph{}
				}
			case "r":
				run := &Run{HyperlinkURL: hyperlinkURL}
				currentRun = run
			case "t":
				if t.Name.Space == wordNS {
					inText = true
				}
			case "tbl":
				tableStack = append(tableStack, &tableContext{})
			case "tr":
				if len(tableStack) > 0 {
					tableStack[len(tableStack)-1].row = &TableRow{}
				}
			case "tc":
				if len(tableStack) > 0 {
					tableStack[len(tableStack)-1].cell = &TableCell{GridSpan: 1}
				}
			case "tblHeader":
				if len(tableStack) > 0 {
					if row := tableStack[len(tableStack)-1].row; row != nil {
						row.IsHeader = toggleAttr(t)
					}
				}
			case "gridSpan":
				if len(tableStack) > 0 {
					if cell := tableStack[len(tableStack)-1].cell; cell != nil {
						if n, err := strconv.Atoi(xmlAttr(t, "val")); err == nil && n > 0 {
							cell.GridSpan = n
						}
					}
				}
			case "vMerge":
				if len(tableStack) > 0 {
					if cell := tableStack[len(tableStack)-1].cell; cell != nil {
						switch xmlAttr(t, "val") {
						case "restart":
							cell.VMerge = VMergeRestart
						default:
							// A bare <w:vMerge/> continues the merge above.
							cell.VMerge = VMergeContinue
						}
					}
				}
			case "b", "i", "u", "strike", "dstrike":
				applyRunFormatting(t, currentRun)
			case "pStyle", "ilvl", "numId":
				applyParagraphProperty(t, currentPara())
			case "hyperlink":
				if rid := xmlAttrNS(t, relNS, "id"); rid != "" {
					hyperlinkURL = p.relationships[rid]
				}
			case "footnoteReference", "endnoteReference":
				if currentRun != nil {
					id := xmlAttr(t, "id")
					// Separator and continuation notes carry ids -1, 0, 1.
					if id != "" && id != "-1" && id != "0" && id != "1" {
						currentRun.Text += fmt.Sprintf("[^%s]", id)
					}
				}
			case "drawing":
				drawing, err := parseDrawing(dec, t)
				if err != nil {
					return err
				}
				idx := len(p.doc.Drawings)
				p.doc.Drawings = append(p.doc.Drawings, drawing)
				p.doc.Elements = append(p.doc.Elements, Element{Kind: ElementDrawing, Index: idx})
			case "sectPr":
				props, err := parseSectionProperties(dec, t)
				if err != nil {
					return err
				}
				p.doc.Sections = append(p.doc.Sections, props)
			case "br":
				if xmlAttr(t, "type") == "page" && currentRun != nil {
					currentRun.Text += "\f"
				}
			case "lastRenderedPageBreak":
				if currentRun != nil {
					currentRun.Text += "\f"
				}
			}

		case xml.CharData:
			if inText && currentRun != nil {
				currentRun.Text += string(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if t.Name.Space == wordNS {
					inText = false
				}
			case "r":
				if currentRun != nil {
					run := *currentRun
					currentRun = nil
					if len(tableStack) > 0 {
						ctx := tableStack[len(tableStack)-1]
						if ctx.paragraph != nil {
							ctx.paragraph.Runs = append(ctx.paragraph.Runs, run)
						} else if ctx.cell != nil {
							if len(ctx.cell.Paragraphs) == 0 {
								ctx.cell.Paragraphs = append(ctx.cell.Paragraphs, Paragraph{})
							}
							last := &ctx.cell.Paragraphs[len(ctx.cell.Paragraphs)-1]
							last.Runs = append(last.Runs, run)
						}
					} else if currentParagraph != nil {
						currentParagraph.Runs = append(currentParagraph.Runs, run)
					}
				}
			case "p":
				if len(tableStack) > 0 {
					ctx := tableStack[len(tableStack)-1]
					if ctx.paragraph != nil && ctx.cell != nil {
						ctx.cell.Paragraphs = append(ctx.cell.Paragraphs, *ctx.paragraph)
					}
					ctx.paragraph = nil
				} else if currentParagraph != nil {
					idx := len(p.doc.Paragraphs)
					p.doc.Paragraphs = append(p.doc.Paragraphs, *currentParagraph)
					p.doc.Elements = append(p.doc.Elements, Element{Kind: ElementParagraph, Index: idx})
					currentParagraph = nil
				}
			case "tc":
				if len(tableStack) > 0 {
					ctx := tableStack[len(tableStack)-1]
					if ctx.cell != nil && ctx.row != nil {
						ctx.row.Cells = append(ctx.row.Cells, *ctx.cell)
					}
					ctx.cell = nil
				}
			case "tr":
				if len(tableStack) > 0 {
					ctx := tableStack[len(tableStack)-1]
					if ctx.row != nil {
						ctx.table.Rows = append(ctx.table.Rows, *ctx.row)
					}
					ctx.row = nil
				}
			case "tbl":
				if len(tableStack) > 0 {
					completed := tableStack[len(tableStack)-1]
					tableStack = tableStack[:len(tableStack)-1]
					if len(tableStack) > 0 {
						// Nested table: flatten its cell paragraphs into the
						// parent cell; only the outermost frame reaches the
						// document table list.
						parent := tableStack[len(tableStack)-1]
						if parent.cell != nil {
							for _, row := range completed.table.Rows {
								for _, cell := range row.Cells {
									parent.cell.Paragraphs = append(parent.cell.Paragraphs, cell.Paragraphs...)
								}
							}
						}
					} else {
						idx := len(p.doc.Tables)
						p.doc.Tables = append(p.doc.Tables, completed.table)
						p.doc.Elements = append(p.doc.Elements, Element{Kind: ElementTable, Index: idx})
					}
				}
			case "hyperlink":
				hyperlinkURL = ""
			}
		}
	}

	return nil
}

// applyRunFormatting handles <w:b>, <w:i>, <w:u>, <w:strike> and
// <w:dstrike>, each honoring the toggle rule.
func applyRunFormatting(t xml.StartElement, run *Run) {
	if run == nil {
		return
	}
	switch t.Name.Local {
	case "b":
		run.Bold = toggleAttr(t)
	case "i":
		run.Italic = toggleAttr(t)
	case "u":
		run.Underline = xmlAttr(t, "val") != "none" && toggleAttr(t)
	case "strike", "dstrike":
		run.Strikethrough = toggleAttr(t)
	}
}

// applyParagraphProperty handles <w:pStyle>, <w:ilvl> and <w:numId> against
// whichever paragraph is current (table frame or top level).
func applyParagraphProperty(t xml.StartElement, para *Paragraph) {
	if para == nil {
		return
	}
	switch t.Name.Local {
	case "pStyle":
		para.Style = xmlAttr(t, "val")
	case "ilvl":
		if v, err := strconv.ParseInt(xmlAttr(t, "val"), 10, 64); err == nil {
			para.NumberingLevel = &v
		}
	case "numId":
		if v, err := strconv.ParseInt(xmlAttr(t, "val"), 10, 64); err == nil {
			para.NumberingID = &v
		}
	}
}

// parseDrawing consumes a self-contained <w:drawing> sub-tree, capturing
// the doc properties and the embedded blip reference.
func parseDrawing(dec *xml.Decoder, _ xml.StartElement) (Drawing, error) {
	var drawing Drawing
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return drawing, document.NewParsing("unterminated drawing element", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "docPr":
				drawing.Name = xmlAttr(t, "name")
				drawing.Description = xmlAttr(t, "descr")
			case "blip":
				drawing.EmbedID = xmlAttrNS(t, relNS, "embed")
			}
		case xml.EndElement:
			depth--
		}
	}
	return drawing, nil
}

// parseSectionProperties consumes a <w:sectPr> sub-tree.
func parseSectionProperties(dec *xml.Decoder, _ xml.StartElement) (SectionProperties, error) {
	var props SectionProperties
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return props, document.NewParsing("unterminated sectPr element", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "pgSz":
				props.PageWidth, _ = strconv.ParseInt(xmlAttr(t, "w"), 10, 64)
				props.PageHeight, _ = strconv.ParseInt(xmlAttr(t, "h"), 10, 64)
			case "pgMar":
				props.MarginTop, _ = strconv.ParseInt(xmlAttr(t, "top"), 10, 64)
				props.MarginBottom, _ = strconv.ParseInt(xmlAttr(t, "bottom"), 10, 64)
				props.MarginLeft, _ = strconv.ParseInt(xmlAttr(t, "left"), 10, 64)
				props.MarginRight, _ = strconv.ParseInt(xmlAttr(t, "right"), 10, 64)
			}
		case xml.EndElement:
			depth--
		}
	}
	return props, nil
}

// parseHeadersFooters loads every header*.xml and footer*.xml part in
// natural name order (header2 before header10).
func parseHeadersFooters(archive *Archive, doc *Document) {
	var headerParts, footerParts []string
	for _, name := range archive.Names() {
		switch {
		case strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml"):
			headerParts = append(headerParts, name)
		case strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml"):
			footerParts = append(footerParts, name)
		}
	}
	sort.Slice(headerParts, func(i, j int) bool { return natural.Less(headerParts[i], headerParts[j]) })
	sort.Slice(footerParts, func(i, j int) bool { return natural.Less(footerParts[i], footerParts[j]) })

	for _, part := range headerParts {
		if data, err := archive.ReadFile(part); err == nil {
			hf := HeaderFooter{}
			if paras, err := parseParagraphStream(data); err == nil {
				hf.Paragraphs = paras
				doc.Headers = append(doc.Headers, hf)
			}
		}
	}
	for _, part := range footerParts {
		if data, err := archive.ReadFile(part); err == nil {
			hf := HeaderFooter{}
			if paras, err := parseParagraphStream(data); err == nil {
				hf.Paragraphs = paras
				doc.Footers = append(doc.Footers, hf)
			}
		}
	}
}

// parseParagraphStream parses a flat paragraph sequence (headers, footers).
func parseParagraphStream(data []byte) ([]Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		out       []Paragraph
		paragraph *Paragraph
		run       *Run
		inText    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, document.NewParsing("header/footer parsing failed", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				paragraph = &Paragraph{}
			case "r":
				run = &Run{}
			case "t":
				if t.Name.Space == wordNS {
					inText = true
				}
			case "b", "i", "u", "strike", "dstrike":
				applyRunFormatting(t, run)
			case "pStyle", "ilvl", "numId":
				applyParagraphProperty(t, paragraph)
			}
		case xml.CharData:
			if inText && run != nil {
				run.Text += string(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if t.Name.Space == wordNS {
					inText = false
				}
			case "r":
				if run != nil && paragraph != nil {
					paragraph.Runs = append(paragraph.Runs, *run)
				}
				run = nil
			case "p":
				if paragraph != nil {
					out = append(out, *paragraph)
				}
				paragraph = nil
			}
		}
	}
	return out, nil
}

// parseNotes parses footnotes.xml or endnotes.xml. Separator and
// continuation notes (ids -1, 0, 1) are dropped.
func parseNotes(data []byte, notes *[]Note, noteType NoteType) error {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		note      *Note
		paragraph *Paragraph
		run       *Run
		inText    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return document.NewParsing("notes parsing failed", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "footnote", "endnote":
				note = &Note{ID: xmlAttr(t, "id"), Type: noteType}
			case "p":
				paragraph = &Paragraph{}
			case "r":
				run = &Run{}
			case "t":
				if t.Name.Space == wordNS {
					inText = true
				}
			case "b", "i", "u", "strike", "dstrike":
				applyRunFormatting(t, run)
			}
		case xml.CharData:
			if inText && run != nil {
				run.Text += string(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if t.Name.Space == wordNS {
					inText = false
				}
			case "r":
				if run != nil && paragraph != nil {
					paragraph.Runs = append(paragraph.Runs, *run)
				}
				run = nil
			case "p":
				if paragraph != nil && note != nil {
					note.Paragraphs = append(note.Paragraphs, *paragraph)
				}
				paragraph = nil
			case "footnote", "endnote":
				if note != nil && note.ID != "-1" && note.ID != "0" && note.ID != "1" {
					*notes = append(*notes, *note)
				}
				note = nil
			}
		}
	}
	return nil
}

// toggleAttr implements the toggle rule on a streaming start element:
// absent val means true, "0"/"false"/"none" mean false.
func toggleAttr(t xml.StartElement) bool {
	val := xmlAttr(t, "val")
	if val == "" {
		return true
	}
	return val != "0" && val != "false" && val != "none"
}

// xmlAttr returns an attribute value by local name.
func xmlAttr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// xmlAttrNS returns an attribute value by namespace and local name, falling
// back to local-name-only matching for documents with unusual prefixes.
func xmlAttrNS(t xml.StartElement, space, local string) string {
	for _, a := range t.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return xmlAttr(t, local)
}
