// Package djot parses Djot markup into an event stream and bridges it to
// the structured DjotContent model: a plain-text projection, the complete
// block/inline tree, attribute attachment, and table/footnote sweeps.
package djot

import "kreuzberg/document"

// ContainerKind enumerates every block and inline container the event
// stream can open.
type ContainerKind int

const (
	ContainerHeading ContainerKind = iota
	ContainerParagraph
	ContainerBlockquote
	ContainerCodeBlock
	ContainerRawBlock
	ContainerDiv
	ContainerSection
	ContainerList
	ContainerListItem
	ContainerTaskListItem
	ContainerDescriptionList
	ContainerDescriptionTerm
	ContainerDescriptionDetails
	ContainerFootnote
	ContainerTable
	ContainerTableRow
	ContainerTableCell
	ContainerMath
	ContainerLink
	ContainerImage
	ContainerStrong
	ContainerEmphasis
	ContainerMark
	ContainerSubscript
	ContainerSuperscript
	ContainerInsert
	ContainerDelete
	ContainerVerbatim
	ContainerSpan
	ContainerRawInline
)

// Container carries the kind plus kind-specific payload fields.
type Container struct {
	Kind     ContainerKind
	Level    int    // Heading
	Language string // CodeBlock
	Format   string // RawBlock, RawInline
	Ordered  bool   // List
	Task     bool   // List
	Checked  bool   // TaskListItem
	Href     string // Link
	Src      string // Image
	Label    string // Footnote
	Display  bool   // Math
	Header   bool   // TableRow
}

// EventKind enumerates the event stream alphabet.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventStr
	EventSoftbreak
	EventHardbreak
	EventBlankline
	EventNonBreakingSpace
	EventLeftSingleQuote
	EventRightSingleQuote
	EventLeftDoubleQuote
	EventRightDoubleQuote
	EventEllipsis
	EventEnDash
	EventEmDash
	EventFootnoteReference
	EventSymbol
	EventThematicBreak
	EventAttributes
)

// Event is one element of the stream. Start events may carry attributes
// parsed inline; standalone attribute lines surface as EventAttributes and
// attach to the next element through the bridge's one-slot pending buffer.
type Event struct {
	Kind      EventKind
	Container *Container
	Text      string
	Attrs     *document.Attributes
}
