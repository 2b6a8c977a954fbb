package docx

import (
	"strings"

	"kreuzberg/document"
)

// BuildStructure assembles the hierarchical document tree: heading
// paragraphs open Group nodes (deeper levels pop back to their ancestor),
// list paragraphs become ListItem nodes, tables become grids, drawings
// become images, and headers/footers/notes land as top-level nodes tagged
// with their content layer.
func BuildStructure(doc *Document) *document.Structure {
	structure := document.NewStructure(
		len(doc.Paragraphs) + len(doc.Tables) + len(doc.Drawings) + len(doc.Headers) + len(doc.Footers) + 16)

	type stackEntry struct {
		level int
		index document.NodeIndex
	}
	var sectionStack []stackEntry
	nodeCount := 0

	currentParent := func() *document.NodeIndex {
		if len(sectionStack) == 0 {
			return nil
		}
		idx := sectionStack[len(sectionStack)-1].index
		return &idx
	}

	attach := func(node document.Node) document.NodeIndex {
		parent := currentParent()
		node.Parent = parent
		idx := structure.Push(node)
		if parent != nil {
			structure.AddChild(*parent, idx)
		}
		return idx
	}

	for _, element := range doc.Elements {
		switch element.Kind {
		case ElementParagraph:
			paragraph := &doc.Paragraphs[element.Index]
			text := paragraph.RunsMarkdown()
			if text == "" {
				continue
			}
			level := doc.HeadingLevel(paragraph.Style)

			switch {
			case level > 0:
				for len(sectionStack) > 0 && sectionStack[len(sectionStack)-1].level >= level {
					sectionStack = sectionStack[:len(sectionStack)-1]
				}
				groupIdx := attach(document.Node{
					ID: document.NodeID("group", text, nodeCount),
					Content: document.NodeContent{
						Kind:         document.NodeGroup,
						HeadingLevel: level,
						HeadingText:  text,
					},
					ContentLayer: document.LayerBody,
				})
				nodeCount++

				headingParent := groupIdx
				headingIdx := structure.Push(document.Node{
					ID: document.NodeID("heading", text, nodeCount),
					Content: document.NodeContent{
						Kind:         document.NodeHeading,
						HeadingLevel: level,
						Text:         text,
					},
					Parent:       &headingParent,
					ContentLayer: document.LayerBody,
				})
				nodeCount++
				structure.AddChild(groupIdx, headingIdx)

				sectionStack = append(sectionStack, stackEntry{level: level, index: groupIdx})

			case paragraph.IsList():
				attach(document.Node{
					ID:           document.NodeID("list_item", text, nodeCount),
					Content:      document.NodeContent{Kind: document.NodeListItem, Text: text},
					ContentLayer: document.LayerBody,
				})
				nodeCount++

			default:
				attach(document.Node{
					ID:           document.NodeID("paragraph", text, nodeCount),
					Content:      document.NodeContent{Kind: document.NodeParagraph, Text: text},
					ContentLayer: document.LayerBody,
				})
				nodeCount++
			}

		case ElementTable:
			table := &doc.Tables[element.Index]
			attach(document.Node{
				ID:           document.NodeID("table", "", nodeCount),
				Content:      document.NodeContent{Kind: document.NodeTable, Grid: tableToGrid(table)},
				ContentLayer: document.LayerBody,
			})
			nodeCount++

		case ElementDrawing:
			drawing := &doc.Drawings[element.Index]
			attach(document.Node{
				ID: document.NodeID("image", drawing.Name, nodeCount),
				Content: document.NodeContent{
					Kind:        document.NodeImage,
					Description: drawing.Description,
					ImageIndex:  element.Index,
				},
				ContentLayer: document.LayerBody,
			})
			nodeCount++
		}
	}

	addLayerNodes := func(items []HeaderFooter, layer document.ContentLayer) {
		for i := range items {
			var parts []string
			for j := range items[i].Paragraphs {
				if text := items[i].Paragraphs[j].RunsMarkdown(); text != "" {
					parts = append(parts, text)
				}
			}
			text := strings.Join(parts, "\n")
			if text == "" {
				continue
			}
			structure.Push(document.Node{
				ID:           document.NodeID("paragraph", text, nodeCount),
				Content:      document.NodeContent{Kind: document.NodeParagraph, Text: text},
				ContentLayer: layer,
			})
			nodeCount++
		}
	}
	addLayerNodes(doc.Headers, document.LayerHeader)
	addLayerNodes(doc.Footers, document.LayerFooter)

	for _, notes := range [][]Note{doc.Footnotes, doc.Endnotes} {
		for i := range notes {
			var parts []string
			for j := range notes[i].Paragraphs {
				if text := notes[i].Paragraphs[j].RunsMarkdown(); text != "" {
					parts = append(parts, text)
				}
			}
			text := strings.Join(parts, " ")
			if text == "" {
				continue
			}
			structure.Push(document.Node{
				ID:           document.NodeID("footnote", text, nodeCount),
				Content:      document.NodeContent{Kind: document.NodeFootnote, Text: text},
				ContentLayer: document.LayerFootnote,
			})
			nodeCount++
		}
	}

	return structure
}

// tableToGrid projects a parsed table into the grid representation used by
// structure nodes. The first row (or the flagged header row) marks header
// cells.
func tableToGrid(table *Table) *document.TableGrid {
	rows := len(table.Rows)
	cols := 0
	if rows > 0 {
		cols = len(table.Rows[0].Cells)
	}

	headerRow := 0
	for i := range table.Rows {
		if table.Rows[i].IsHeader {
			headerRow = i
			break
		}
	}

	var cells []document.GridCell
	for rowIdx := range table.Rows {
		for colIdx := range table.Rows[rowIdx].Cells {
			cell := &table.Rows[rowIdx].Cells[colIdx]
			span := cell.GridSpan
			if span < 1 {
				span = 1
			}
			cells = append(cells, document.GridCell{
				Content:  cell.CellText(),
				Row:      rowIdx,
				Col:      colIdx,
				RowSpan:  1,
				ColSpan:  span,
				IsHeader: rowIdx == headerRow,
			})
		}
	}
	return &document.TableGrid{Rows: rows, Cols: cols, Cells: cells}
}
