package docx

import (
	"strings"
	"testing"

	"kreuzberg/document"
)

func intPtr64(v int64) *int64 { return &v }

func TestBuildStructure(t *testing.T) {
	doc := NewDocument()
	doc.Paragraphs = []Paragraph{
		{Style: "Heading1", Runs: []Run{{Text: "Chapter"}}},
		{Runs: []Run{{Text: "Body paragraph."}}},
		{NumberingID: intPtr64(1), NumberingLevel: intPtr64(0), Runs: []Run{{Text: "item"}}},
		{Style: "Heading2", Runs: []Run{{Text: "Section"}}},
		{Runs: []Run{{Text: "Deeper text."}}},
	}
	for i := range doc.Paragraphs {
		doc.Elements = append(doc.Elements, Element{Kind: ElementParagraph, Index: i})
	}
	doc.Footnotes = []Note{{ID: "2", Paragraphs: []Paragraph{{Runs: []Run{{Text: "note text"}}}}}}

	structure := BuildStructure(doc)
	if err := structure.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// Heading1 fallback resolves to level 2 (Title is level 1).
	var groups, listItems, footnotes int
	var deepestGroupLevel int
	for _, n := range structure.Nodes {
		switch n.Content.Kind {
		case document.NodeGroup:
			groups++
			if n.Content.HeadingLevel > deepestGroupLevel {
				deepestGroupLevel = n.Content.HeadingLevel
			}
		case document.NodeListItem:
			listItems++
		case document.NodeFootnote:
			footnotes++
			if n.ContentLayer != document.LayerFootnote {
				t.Errorf("footnote layer = %s", n.ContentLayer)
			}
		}
	}
	if groups != 2 {
		t.Errorf("groups = %d, want 2", groups)
	}
	if listItems != 1 {
		t.Errorf("list items = %d, want 1", listItems)
	}
	if footnotes != 1 {
		t.Errorf("footnotes = %d, want 1", footnotes)
	}
	if deepestGroupLevel != 3 {
		t.Errorf("deepest heading group level = %d, want 3", deepestGroupLevel)
	}

	// The Heading2 group must nest under the Heading1 group.
	for i, n := range structure.Nodes {
		if n.Content.Kind == document.NodeGroup && n.Content.HeadingLevel == 3 {
			if n.Parent == nil {
				t.Errorf("node %d: deeper group has no parent", i)
			} else if structure.Nodes[*n.Parent].Content.Kind != document.NodeGroup {
				t.Errorf("node %d: parent is %s", i, structure.Nodes[*n.Parent].Content.Kind)
			}
		}
	}

	t.Run("dump renders the nested tree", func(t *testing.T) {
		dump := structure.Dump()
		if !strings.Contains(dump, `heading: "Chapter"`) {
			t.Errorf("dump missing heading: %q", dump)
		}
		// The paragraph under the Chapter group sits one level deep.
		if !strings.Contains(dump, "\n  paragraph: \"Body paragraph.\"") {
			t.Errorf("dump missing indented paragraph: %q", dump)
		}
		if !strings.Contains(dump, `footnote: "note text"`) {
			t.Errorf("dump missing footnote layer node: %q", dump)
		}
	})
}

// Markdown round-trip: headings and list nesting survive re-parsing the
// emitted markdown even though content equality is not guaranteed.
func TestMarkdownRoundTrip(t *testing.T) {
	numbered := NumberingKey{NumID: 1, Level: 0}
	doc := NewDocument()
	doc.NumberingDefs[numbered] = ListBullet
	doc.NumberingDefs[NumberingKey{NumID: 1, Level: 1}] = ListBullet
	doc.Paragraphs = []Paragraph{
		{Style: "Title", Runs: []Run{{Text: "Top"}}},
		{Style: "Heading1", Runs: []Run{{Text: "Sub"}}},
		{NumberingID: intPtr64(1), NumberingLevel: intPtr64(0), Runs: []Run{{Text: "outer item"}}},
		{NumberingID: intPtr64(1), NumberingLevel: intPtr64(1), Runs: []Run{{Text: "inner item"}}},
	}
	for i := range doc.Paragraphs {
		doc.Elements = append(doc.Elements, Element{Kind: ElementParagraph, Index: i})
	}

	md := doc.ToMarkdown()

	type heading struct {
		level int
		text  string
	}
	var headings []heading
	var listDepths []int
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		indent := (len(line) - len(trimmed)) / 2
		switch {
		case strings.HasPrefix(trimmed, "#"):
			level := strings.IndexFunc(trimmed, func(r rune) bool { return r != '#' })
			headings = append(headings, heading{level: level, text: strings.TrimSpace(trimmed[level:])})
		case strings.HasPrefix(trimmed, "- "):
			listDepths = append(listDepths, indent)
		}
	}

	if len(headings) != 2 || headings[0].level != 1 || headings[1].level != 2 {
		t.Errorf("headings = %+v", headings)
	}
	if len(listDepths) != 2 || listDepths[0] != 0 || listDepths[1] != 1 {
		t.Errorf("list nesting depths = %v, want [0 1]", listDepths)
	}
}
