package docx

// ElementKind tags entries of the document element order.
type ElementKind int

const (
	ElementParagraph ElementKind = iota
	ElementTable
	ElementDrawing
)

// Element records document ordering: the kind plus an index into the
// corresponding parallel array of Document.
type Element struct {
	Kind  ElementKind
	Index int
}

// Document is the parsed DOCX: parallel arrays of paragraphs, tables and
// drawings, with Elements preserving encounter order. Arrays are append-only
// during parse and element indices are always valid.
type Document struct {
	Paragraphs    []Paragraph
	Tables        []Table
	Drawings      []Drawing
	Elements      []Element
	Headers       []HeaderFooter
	Footers       []HeaderFooter
	Footnotes     []Note
	Endnotes      []Note
	NumberingDefs map[NumberingKey]ListType
	Styles        *StyleCatalog
	Sections      []SectionProperties
	ImageRels     map[string]string
}

// NumberingKey joins a concrete numbering id with an indentation level.
type NumberingKey struct {
	NumID int64
	Level int64
}

// ListType distinguishes bullet and numbered lists.
type ListType int

const (
	ListBullet ListType = iota
	ListNumbered
)

// Paragraph is a sequence of runs with optional style and numbering.
type Paragraph struct {
	Runs           []Run
	Style          string
	NumberingID    *int64
	NumberingLevel *int64
}

// Run is a formatted text span. Whitespace inside run text is preserved
// verbatim; paragraph text is the byte-for-byte concatenation of its runs.
type Run struct {
	Text          string
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	HyperlinkURL  string
}

// Table holds rows plus grid/row/cell properties needed for merge-aware
// rendering.
type Table struct {
	Rows []TableRow
}

// TableRow is one table row.
type TableRow struct {
	Cells    []TableCell
	IsHeader bool
}

// VerticalMerge mirrors the DOCX vMerge cell flag.
type VerticalMerge int

const (
	VMergeNone VerticalMerge = iota
	VMergeRestart
	VMergeContinue
)

// TableCell carries cell paragraphs and merge properties.
type TableCell struct {
	Paragraphs []Paragraph
	GridSpan   int
	VMerge     VerticalMerge
}

// HeaderFooterType distinguishes which pages a header/footer applies to.
type HeaderFooterType int

const (
	HeaderFooterDefault HeaderFooterType = iota
	HeaderFooterFirst
	HeaderFooterEven
)

// HeaderFooter is a parsed header or footer part.
type HeaderFooter struct {
	Paragraphs []Paragraph
	Type       HeaderFooterType
}

// NoteType distinguishes footnotes from endnotes.
type NoteType int

const (
	NoteFootnote NoteType = iota
	NoteEndnote
)

// Note is a footnote or endnote definition.
type Note struct {
	ID         string
	Type       NoteType
	Paragraphs []Paragraph
}

// Drawing is an inline or anchored drawing object.
type Drawing struct {
	Name        string
	Description string
	EmbedID     string
}

// SectionProperties captures w:sectPr page geometry in EMU-derived twips.
type SectionProperties struct {
	PageWidth    int64
	PageHeight   int64
	MarginTop    int64
	MarginBottom int64
	MarginLeft   int64
	MarginRight  int64
}

// NewDocument returns an empty document with allocated lookups.
func NewDocument() *Document {
	return &Document{
		NumberingDefs: make(map[NumberingKey]ListType),
		ImageRels:     make(map[string]string),
	}
}

// Text returns the paragraph text: runs concatenated with no separator.
func (p *Paragraph) Text() string {
	var size int
	for _, r := range p.Runs {
		size += len(r.Text)
	}
	out := make([]byte, 0, size)
	for _, r := range p.Runs {
		out = append(out, r.Text...)
	}
	return string(out)
}

// IsList reports whether the paragraph belongs to a numbering definition.
func (p *Paragraph) IsList() bool {
	return p.NumberingID != nil
}
