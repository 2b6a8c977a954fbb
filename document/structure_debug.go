package document

import (
	"kreuzberg/utils/debug"
)

// Dump renders the structure as an indented tree for troubleshooting.
func (s *Structure) Dump() string {
	tw := debug.NewTreeWriter()
	for i := range s.Nodes {
		if s.Nodes[i].Parent == nil {
			s.dumpNode(tw, i, 0)
		}
	}
	return tw.String()
}

func (s *Structure) dumpNode(tw *debug.TreeWriter, idx NodeIndex, depth int) {
	n := &s.Nodes[idx]
	switch n.Content.Kind {
	case NodeGroup:
		tw.Line(depth, "group[%s] h%d", n.ContentLayer, n.Content.HeadingLevel)
	case NodeHeading:
		tw.TextBlock(depth, "heading", n.Content.Text)
	case NodeParagraph:
		tw.TextBlock(depth, "paragraph", n.Content.Text)
	case NodeListItem:
		tw.TextBlock(depth, "list item", n.Content.Text)
	case NodeFootnote:
		tw.TextBlock(depth, "footnote", n.Content.Text)
	case NodeTable:
		rows, cols := 0, 0
		if n.Content.Grid != nil {
			rows, cols = n.Content.Grid.Rows, n.Content.Grid.Cols
		}
		tw.Line(depth, "table %dx%d", rows, cols)
	case NodeImage:
		tw.TextBlock(depth, "image", n.Content.Description)
	}
	for _, child := range n.Children {
		s.dumpNode(tw, child, depth+1)
	}
}
