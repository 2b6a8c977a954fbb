package djot

import (
	"strings"

	"kreuzberg/document"
)

// PlainText projects the event stream to plain text: softbreaks become
// spaces, blanklines newlines, smart-punctuation events their Unicode or
// ASCII literals.
func PlainText(events []Event) string {
	var out strings.Builder
	for _, ev := range events {
		switch ev.Kind {
		case EventStr:
			out.WriteString(ev.Text)
		case EventSoftbreak:
			out.WriteByte(' ')
		case EventHardbreak:
			out.WriteByte('\n')
		case EventBlankline:
			out.WriteByte('\n')
		case EventNonBreakingSpace:
			out.WriteByte(' ')
		case EventLeftSingleQuote, EventRightSingleQuote:
			out.WriteByte('\'')
		case EventLeftDoubleQuote, EventRightDoubleQuote:
			out.WriteByte('"')
		case EventEllipsis:
			out.WriteString("...")
		case EventEnDash:
			out.WriteString("--")
		case EventEmDash:
			out.WriteString("---")
		case EventFootnoteReference:
			out.WriteByte('[')
			out.WriteString(ev.Text)
			out.WriteByte(']')
		case EventSymbol:
			out.WriteByte(':')
			out.WriteString(ev.Text)
			out.WriteByte(':')
		case EventThematicBreak:
			out.WriteString("\n---\n")
		case EventEnd:
			if ev.Container != nil {
				switch ev.Container.Kind {
				case ContainerParagraph, ContainerHeading, ContainerListItem,
					ContainerTaskListItem, ContainerTableRow, ContainerCodeBlock,
					ContainerRawBlock, ContainerBlockquote:
					out.WriteByte('\n')
				case ContainerTableCell:
					out.WriteByte('\t')
				}
			}
		}
	}
	return strings.TrimSpace(out.String())
}

// Tables sweeps the stream collecting every table as structured cells with
// its markdown rendering.
func Tables(events []Event) []document.Table {
	var tables []document.Table
	var rows [][]string
	var row []string
	var cell strings.Builder
	inCell := false
	inTable := false

	for _, ev := range events {
		switch ev.Kind {
		case EventStart:
			if ev.Container == nil {
				continue
			}
			switch ev.Container.Kind {
			case ContainerTable:
				inTable = true
				rows = nil
			case ContainerTableRow:
				row = nil
			case ContainerTableCell:
				cell.Reset()
				inCell = true
			}
		case EventStr:
			if inCell {
				cell.WriteString(ev.Text)
			}
		case EventEnd:
			if ev.Container == nil {
				continue
			}
			switch ev.Container.Kind {
			case ContainerTableCell:
				if inCell {
					row = append(row, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case ContainerTableRow:
				if len(row) > 0 {
					rows = append(rows, row)
				}
				row = nil
			case ContainerTable:
				if inTable && len(rows) > 0 {
					tables = append(tables, document.Table{
						Cells:      rows,
						Markdown:   cellsToMarkdown(rows),
						PageNumber: len(tables) + 1,
					})
				}
				inTable = false
			}
		}
	}
	return tables
}

func cellsToMarkdown(cells [][]string) string {
	if len(cells) == 0 {
		return ""
	}
	var md strings.Builder
	for i, row := range cells {
		md.WriteByte('|')
		for _, cell := range row {
			md.WriteByte(' ')
			md.WriteString(cell)
			md.WriteString(" |")
		}
		md.WriteByte('\n')
		if i == 0 {
			md.WriteByte('|')
			for range row {
				md.WriteString(" --- |")
			}
			md.WriteByte('\n')
		}
	}
	return strings.TrimRight(md.String(), "\n")
}

// Footnotes sweeps the stream collecting footnote definitions with their
// flattened text.
func Footnotes(events []Event) []document.DjotFootnote {
	var out []document.DjotFootnote
	depth := 0
	var text strings.Builder
	label := ""

	for _, ev := range events {
		switch ev.Kind {
		case EventStart:
			if ev.Container != nil && ev.Container.Kind == ContainerFootnote {
				if depth == 0 {
					label = ev.Container.Label
					text.Reset()
				}
				depth++
			}
		case EventEnd:
			if ev.Container != nil && ev.Container.Kind == ContainerFootnote && depth > 0 {
				depth--
				if depth == 0 {
					out = append(out, document.DjotFootnote{
						Label: label,
						Text:  strings.TrimSpace(text.String()),
					})
				}
			}
		case EventStr:
			if depth > 0 {
				text.WriteString(ev.Text)
			}
		case EventSoftbreak, EventBlankline:
			if depth > 0 {
				text.WriteByte(' ')
			}
		}
	}
	return out
}

// containerBlockType maps block containers to the tree's block types;
// inline containers return "".
func containerBlockType(c *Container) document.BlockType {
	switch c.Kind {
	case ContainerHeading:
		return document.BlockHeading
	case ContainerParagraph:
		return document.BlockParagraph
	case ContainerBlockquote:
		return document.BlockBlockquote
	case ContainerCodeBlock:
		return document.BlockCodeBlock
	case ContainerRawBlock:
		return document.BlockRawBlock
	case ContainerDiv:
		return document.BlockDiv
	case ContainerSection:
		return document.BlockSection
	case ContainerList:
		return document.BlockBulletList
	case ContainerListItem, ContainerTaskListItem:
		return document.BlockListItem
	case ContainerDescriptionList:
		return document.BlockDefinitionList
	case ContainerDescriptionTerm:
		return document.BlockDefinitionTerm
	case ContainerDescriptionDetails:
		return document.BlockDefinitionDescription
	case ContainerFootnote:
		return document.BlockFootnote
	case ContainerTable:
		return document.BlockTable
	}
	return ""
}

func containerInlineType(c *Container) document.InlineType {
	switch c.Kind {
	case ContainerStrong:
		return document.InlineStrong
	case ContainerEmphasis:
		return document.InlineEmphasis
	case ContainerMark:
		return document.InlineMark
	case ContainerSubscript:
		return document.InlineSubscript
	case ContainerSuperscript:
		return document.InlineSuperscript
	case ContainerInsert:
		return document.InlineInsert
	case ContainerDelete:
		return document.InlineDelete
	case ContainerVerbatim:
		return document.InlineVerbatim
	case ContainerLink:
		return document.InlineLink
	case ContainerImage:
		return document.InlineImage
	case ContainerSpan:
		return document.InlineSpan
	case ContainerMath:
		return document.InlineMath
	case ContainerRawInline:
		return document.InlineRawInline
	}
	return ""
}

// Build consumes the event stream and produces the complete DjotContent.
// It maintains a block stack (open blocks pop on End and attach to their
// parent) and an inline-type stack; entering an inline container flushes
// accumulated text into a Text element. Standalone attributes wait in a
// one-slot pending buffer and attach to the next element.
func Build(events []Event) *document.DjotContent {
	content := &document.DjotContent{
		PlainText: PlainText(events),
	}

	var (
		blockStack     []*document.FormattedBlock
		inlineStack    []document.InlineType
		inlineElements []document.InlineElement
		text           strings.Builder
		pendingAttrs   *document.Attributes
	)

	flushText := func() {
		if text.Len() > 0 {
			inlineElements = append(inlineElements, document.InlineElement{
				InlineType: document.InlineText,
				Text:       text.String(),
			})
			text.Reset()
		}
	}

	takeAttrs := func(ev Event) *document.Attributes {
		if ev.Attrs != nil {
			return ev.Attrs
		}
		attrs := pendingAttrs
		pendingAttrs = nil
		return attrs
	}

	popBlock := func() {
		if len(blockStack) == 0 {
			return
		}
		flushText()
		block := blockStack[len(blockStack)-1]
		blockStack = blockStack[:len(blockStack)-1]
		if len(inlineElements) > 0 {
			block.InlineContent = append(block.InlineContent, inlineElements...)
			inlineElements = nil
		}
		if len(blockStack) > 0 {
			parent := blockStack[len(blockStack)-1]
			parent.Children = append(parent.Children, *block)
		} else {
			content.Blocks = append(content.Blocks, *block)
		}
	}

	for _, ev := range events {
		switch ev.Kind {
		case EventAttributes:
			pendingAttrs = ev.Attrs

		case EventStart:
			c := ev.Container
			if c == nil {
				continue
			}
			if inlineType := containerInlineType(c); inlineType != "" {
				flushText()
				inlineStack = append(inlineStack, inlineType)
				element := document.InlineElement{InlineType: inlineType, Attributes: takeAttrs(ev)}
				switch c.Kind {
				case ContainerLink:
					element.Meta = map[string]string{"href": c.Href}
					content.Links = append(content.Links, document.DjotLink{Href: c.Href})
				case ContainerImage:
					element.Meta = map[string]string{"src": c.Src}
					content.Images = append(content.Images, document.DjotImage{Src: c.Src})
				case ContainerRawInline:
					element.Meta = map[string]string{"format": c.Format}
				}
				inlineElements = append(inlineElements, element)
				continue
			}

			blockType := containerBlockType(c)
			if blockType == "" {
				continue
			}
			block := &document.FormattedBlock{
				BlockType:  blockType,
				Attributes: takeAttrs(ev),
			}
			switch c.Kind {
			case ContainerHeading:
				block.Level = c.Level
			case ContainerCodeBlock:
				block.Language = c.Language
			case ContainerRawBlock:
				block.Language = c.Format
			case ContainerList:
				switch {
				case c.Task:
					block.BlockType = document.BlockTaskList
				case c.Ordered:
					block.BlockType = document.BlockOrderedList
				}
			case ContainerTaskListItem:
				if block.Attributes == nil {
					block.Attributes = &document.Attributes{}
				}
				if block.Attributes.KeyValues == nil {
					block.Attributes.KeyValues = make(map[string]string)
				}
				if c.Checked {
					block.Attributes.KeyValues["checked"] = "true"
				} else {
					block.Attributes.KeyValues["checked"] = "false"
				}
			}
			blockStack = append(blockStack, block)

		case EventEnd:
			c := ev.Container
			if c == nil {
				continue
			}
			if inlineType := containerInlineType(c); inlineType != "" {
				flushText()
				if len(inlineStack) > 0 && inlineStack[len(inlineStack)-1] == inlineType {
					inlineStack = inlineStack[:len(inlineStack)-1]
				}
				continue
			}
			if containerBlockType(c) != "" {
				// Code and raw blocks keep their content in Code.
				if len(blockStack) > 0 {
					top := blockStack[len(blockStack)-1]
					if top.BlockType == document.BlockCodeBlock || top.BlockType == document.BlockRawBlock {
						flushText()
						for _, el := range inlineElements {
							top.Code += el.Text
						}
						inlineElements = nil
					}
				}
				popBlock()
			}

		case EventStr:
			if len(inlineStack) > 0 {
				// Text inside an open inline container lands on the most
				// recently opened inline element.
				flushText()
				for i := len(inlineElements) - 1; i >= 0; i-- {
					if inlineElements[i].InlineType == inlineStack[len(inlineStack)-1] {
						inlineElements[i].Text += ev.Text
						break
					}
				}
			} else {
				text.WriteString(ev.Text)
			}

		case EventSoftbreak:
			text.WriteByte(' ')
		case EventHardbreak, EventBlankline:
			flushText()
		case EventNonBreakingSpace:
			text.WriteByte(' ')
		case EventLeftSingleQuote, EventRightSingleQuote:
			text.WriteByte('\'')
		case EventLeftDoubleQuote, EventRightDoubleQuote:
			text.WriteByte('"')
		case EventEllipsis:
			text.WriteString("…")
		case EventEnDash:
			text.WriteString("–")
		case EventEmDash:
			text.WriteString("—")
		case EventFootnoteReference:
			flushText()
			inlineElements = append(inlineElements, document.InlineElement{
				InlineType: document.InlineFootnoteRef,
				Text:       ev.Text,
			})
		case EventSymbol:
			flushText()
			inlineElements = append(inlineElements, document.InlineElement{
				InlineType: document.InlineSymbol,
				Text:       ev.Text,
			})
		case EventThematicBreak:
			flushText()
			content.Blocks = append(content.Blocks, document.FormattedBlock{
				BlockType: document.BlockThematicBreak,
			})
		}
	}

	// Close anything still open (malformed input).
	for len(blockStack) > 0 {
		popBlock()
	}

	content.Footnotes = Footnotes(events)
	return content
}
