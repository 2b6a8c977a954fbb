package document

import (
	"fmt"

	"github.com/gosimple/slug"
)

// NodeIndex addresses a node inside a Structure arena. All cross-node
// references are indices; there are no pointers between nodes.
type NodeIndex = int

// ContentLayer distinguishes where a node's content originates.
type ContentLayer string

const (
	LayerBody     ContentLayer = "body"
	LayerHeader   ContentLayer = "header"
	LayerFooter   ContentLayer = "footer"
	LayerFootnote ContentLayer = "footnote"
)

// NodeKind tags NodeContent variants.
type NodeKind string

const (
	NodeHeading   NodeKind = "heading"
	NodeParagraph NodeKind = "paragraph"
	NodeListItem  NodeKind = "list_item"
	NodeTable     NodeKind = "table"
	NodeImage     NodeKind = "image"
	NodeFootnote  NodeKind = "footnote"
	NodeGroup     NodeKind = "group"
)

// NodeContent is a tagged union; exactly the fields relevant for Kind are set.
type NodeContent struct {
	Kind NodeKind `json:"kind"`

	// Heading, Paragraph, ListItem, Footnote
	Text string `json:"text,omitempty"`
	// Heading and Group
	HeadingLevel int `json:"heading_level,omitempty"`
	// Group
	HeadingText string `json:"heading_text,omitempty"`
	// Table
	Grid *TableGrid `json:"grid,omitempty"`
	// Image
	Description string `json:"description,omitempty"`
	ImageIndex  int    `json:"image_index,omitempty"`
}

// TableGrid is the cell-level table representation used by Structure nodes.
type TableGrid struct {
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Cells []GridCell `json:"cells"`
}

// GridCell is a single positioned cell inside a TableGrid.
type GridCell struct {
	Content  string `json:"content"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	RowSpan  int    `json:"row_span"`
	ColSpan  int    `json:"col_span"`
	IsHeader bool   `json:"is_header"`
}

// Node is one entry of the Structure arena.
type Node struct {
	ID           string       `json:"id"`
	Content      NodeContent  `json:"content"`
	Parent       *NodeIndex   `json:"parent,omitempty"`
	Children     []NodeIndex  `json:"children,omitempty"`
	ContentLayer ContentLayer `json:"content_layer"`
	Page         int          `json:"page,omitempty"`
	PageEnd      int          `json:"page_end,omitempty"`
	BBox         *BoundingBox `json:"bbox,omitempty"`
}

// Structure is an append-only arena of document nodes forming a forest.
type Structure struct {
	Nodes []Node `json:"nodes"`
}

// NewStructure returns a Structure with room for n nodes.
func NewStructure(n int) *Structure {
	return &Structure{Nodes: make([]Node, 0, n)}
}

// Push appends a node and returns its index.
func (s *Structure) Push(n Node) NodeIndex {
	s.Nodes = append(s.Nodes, n)
	return len(s.Nodes) - 1
}

// AddChild records child under parent.
func (s *Structure) AddChild(parent, child NodeIndex) {
	s.Nodes[parent].Children = append(s.Nodes[parent].Children, child)
}

// Validate verifies the parent/child relation forms a forest with no dangling
// indices. It is a linear pass over the arena.
func (s *Structure) Validate() error {
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.Parent != nil {
			p := *n.Parent
			if p < 0 || p >= len(s.Nodes) {
				return fmt.Errorf("node %d: dangling parent index %d", i, p)
			}
			if p == i {
				return fmt.Errorf("node %d: self parent", i)
			}
			found := false
			for _, c := range s.Nodes[p].Children {
				if c == i {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("node %d: parent %d does not list it as child", i, p)
			}
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(s.Nodes) {
				return fmt.Errorf("node %d: dangling child index %d", i, c)
			}
			if s.Nodes[c].Parent == nil || *s.Nodes[c].Parent != i {
				return fmt.Errorf("node %d: child %d does not point back", i, c)
			}
		}
	}
	return nil
}

// NodeID builds a stable, human-readable node identifier from the node kind,
// a content hint and a running counter.
func NodeID(kind string, text string, count int) string {
	s := slug.Make(text)
	if len(s) > 40 {
		s = s[:40]
	}
	if s == "" {
		return fmt.Sprintf("%s-%d", kind, count)
	}
	return fmt.Sprintf("%s-%s-%d", kind, s, count)
}
