package document

// DjotContent is the complete structured representation of a Djot document:
// a plain-text projection plus the full block/inline tree, links, images and
// footnotes collected in dedicated sweeps.
type DjotContent struct {
	PlainText string           `json:"plain_text"`
	Blocks    []FormattedBlock `json:"blocks"`
	Links     []DjotLink       `json:"links,omitempty"`
	Images    []DjotImage      `json:"images,omitempty"`
	Footnotes []DjotFootnote   `json:"footnotes,omitempty"`
}

// BlockType enumerates Djot block containers.
type BlockType string

const (
	BlockHeading               BlockType = "heading"
	BlockParagraph             BlockType = "paragraph"
	BlockBlockquote            BlockType = "blockquote"
	BlockCodeBlock             BlockType = "code_block"
	BlockRawBlock              BlockType = "raw_block"
	BlockDiv                   BlockType = "div"
	BlockSection               BlockType = "section"
	BlockBulletList            BlockType = "bullet_list"
	BlockOrderedList           BlockType = "ordered_list"
	BlockTaskList              BlockType = "task_list"
	BlockListItem              BlockType = "list_item"
	BlockDefinitionList        BlockType = "definition_list"
	BlockDefinitionTerm        BlockType = "definition_term"
	BlockDefinitionDescription BlockType = "definition_description"
	BlockFootnote              BlockType = "footnote"
	BlockTable                 BlockType = "table"
	BlockThematicBreak         BlockType = "thematic_break"
)

// FormattedBlock is one node of the Djot block tree.
type FormattedBlock struct {
	BlockType     BlockType        `json:"block_type"`
	Level         int              `json:"level,omitempty"`
	InlineContent []InlineElement  `json:"inline_content,omitempty"`
	Attributes    *Attributes      `json:"attributes,omitempty"`
	Language      string           `json:"language,omitempty"`
	Code          string           `json:"code,omitempty"`
	Children      []FormattedBlock `json:"children,omitempty"`
}

// InlineType enumerates Djot inline containers.
type InlineType string

const (
	InlineText        InlineType = "text"
	InlineStrong      InlineType = "strong"
	InlineEmphasis    InlineType = "emphasis"
	InlineMark        InlineType = "mark"
	InlineSubscript   InlineType = "subscript"
	InlineSuperscript InlineType = "superscript"
	InlineInsert      InlineType = "insert"
	InlineDelete      InlineType = "delete"
	InlineVerbatim    InlineType = "verbatim"
	InlineLink        InlineType = "link"
	InlineImage       InlineType = "image"
	InlineSpan        InlineType = "span"
	InlineMath        InlineType = "math"
	InlineRawInline   InlineType = "raw_inline"
	InlineFootnoteRef InlineType = "footnote_reference"
	InlineSymbol      InlineType = "symbol"
)

// InlineElement is one inline node; links and images keep href/src in Meta.
type InlineElement struct {
	InlineType InlineType        `json:"inline_type"`
	Text       string            `json:"text,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
	Attributes *Attributes       `json:"attributes,omitempty"`
}

// Attributes holds a parsed `{#id .class key=value}` attribute set.
type Attributes struct {
	ID        string            `json:"id,omitempty"`
	Classes   []string          `json:"classes,omitempty"`
	KeyValues map[string]string `json:"key_values,omitempty"`
}

// DjotLink records a link occurrence with its resolved target.
type DjotLink struct {
	Href string `json:"href"`
	Text string `json:"text,omitempty"`
}

// DjotImage records an image occurrence.
type DjotImage struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// DjotFootnote is a footnote definition with its collected text content.
type DjotFootnote struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}
