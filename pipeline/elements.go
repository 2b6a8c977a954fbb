package pipeline

import (
	"strings"

	"kreuzberg/document"
)

// transformToElements computes the flat element projection of a result.
// When a document structure is present its body nodes are walked in arena
// order; otherwise the markdown content is scanned line-wise.
func transformToElements(result *document.ExtractionResult) []document.Element {
	if result.Document != nil {
		return elementsFromStructure(result.Document)
	}
	return elementsFromMarkdown(result)
}

func elementsFromStructure(s *document.Structure) []document.Element {
	var out []document.Element
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.ContentLayer != document.LayerBody {
			continue
		}
		switch n.Content.Kind {
		case document.NodeHeading:
			out = append(out, document.Element{Kind: document.ElementHeading, Text: n.Content.Text, Level: n.Content.HeadingLevel, PageNumber: n.Page})
		case document.NodeParagraph:
			out = append(out, document.Element{Kind: document.ElementParagraph, Text: n.Content.Text, PageNumber: n.Page})
		case document.NodeListItem:
			out = append(out, document.Element{Kind: document.ElementListItem, Text: n.Content.Text, PageNumber: n.Page})
		case document.NodeTable:
			if n.Content.Grid != nil {
				out = append(out, document.Element{Kind: document.ElementTable, Table: gridToTable(n.Content.Grid), PageNumber: n.Page})
			}
		case document.NodeImage:
			out = append(out, document.Element{Kind: document.ElementImage, Text: n.Content.Description, PageNumber: n.Page})
		}
	}
	return out
}

func gridToTable(grid *document.TableGrid) *document.Table {
	cells := make([][]string, grid.Rows)
	for i := range cells {
		cells[i] = make([]string, grid.Cols)
	}
	for _, c := range grid.Cells {
		if c.Row < grid.Rows && c.Col < grid.Cols {
			cells[c.Row][c.Col] = c.Content
		}
	}
	return &document.Table{Cells: cells}
}

func elementsFromMarkdown(result *document.ExtractionResult) []document.Element {
	var out []document.Element
	var para []string

	flush := func() {
		if len(para) > 0 {
			out = append(out, document.Element{Kind: document.ElementParagraph, Text: strings.Join(para, " ")})
			para = para[:0]
		}
	}

	for _, line := range strings.Split(result.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#"):
			flush()
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			text := strings.TrimSpace(trimmed[level:])
			if level <= 6 && text != "" {
				out = append(out, document.Element{Kind: document.ElementHeading, Text: text, Level: level})
			} else {
				para = append(para, trimmed)
			}
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flush()
			out = append(out, document.Element{Kind: document.ElementListItem, Text: strings.TrimSpace(trimmed[2:])})
		case strings.HasPrefix(trimmed, "|"):
			flush()
		default:
			para = append(para, trimmed)
		}
	}
	flush()

	for i := range result.Tables {
		t := result.Tables[i]
		out = append(out, document.Element{Kind: document.ElementTable, Table: &t, PageNumber: t.PageNumber})
	}
	return out
}
