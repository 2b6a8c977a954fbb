package djot

import (
	"strings"
	"testing"

	"kreuzberg/document"
)

func TestExtractFrontmatter(t *testing.T) {
	t.Run("typed fields populate metadata", func(t *testing.T) {
		src := "---\ntitle: My Doc\nauthor: Jo Writer\nkeywords: [a, b]\n---\n\nBody text\n"
		body, meta := ExtractFrontmatter(src)
		if meta.Title != "My Doc" {
			t.Errorf("title = %q", meta.Title)
		}
		if len(meta.Authors) != 1 || meta.Authors[0] != "Jo Writer" {
			t.Errorf("authors = %v", meta.Authors)
		}
		if len(meta.Keywords) != 2 {
			t.Errorf("keywords = %v", meta.Keywords)
		}
		if strings.Contains(body, "title:") {
			t.Errorf("frontmatter not stripped: %q", body)
		}
	})

	t.Run("missing title falls back to first heading", func(t *testing.T) {
		_, meta := ExtractFrontmatter("# Fallback Heading\n\ntext")
		if meta.Title != "Fallback Heading" {
			t.Errorf("title = %q", meta.Title)
		}
	})

	t.Run("no frontmatter passes through", func(t *testing.T) {
		body, _ := ExtractFrontmatter("plain content")
		if body != "plain content" {
			t.Errorf("body = %q", body)
		}
	})
}

func TestLexAndPlainText(t *testing.T) {
	t.Run("heading and paragraph", func(t *testing.T) {
		events := Lex("# Title\n\nSome _emphasis_ here.")
		text := PlainText(events)
		if !strings.Contains(text, "Title") || !strings.Contains(text, "Some emphasis here.") {
			t.Errorf("plain text = %q", text)
		}
	})

	t.Run("smart punctuation literals", func(t *testing.T) {
		events := Lex("wait... -- ---")
		text := PlainText(events)
		if !strings.Contains(text, "...") {
			t.Errorf("ellipsis lost: %q", text)
		}
	})

	t.Run("softbreak becomes space in tree text", func(t *testing.T) {
		content := Build(Lex("line one\nline two"))
		if len(content.Blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(content.Blocks))
		}
		para := content.Blocks[0]
		if len(para.InlineContent) == 0 || !strings.Contains(para.InlineContent[0].Text, "line one line two") {
			t.Errorf("inline content = %+v", para.InlineContent)
		}
	})
}

func TestBuildBlockTree(t *testing.T) {
	t.Run("heading opens section with level", func(t *testing.T) {
		content := Build(Lex("## Second Level\n\ntext"))
		if len(content.Blocks) == 0 {
			t.Fatal("no blocks")
		}
		section := content.Blocks[0]
		if section.BlockType != document.BlockSection {
			t.Fatalf("top block = %s, want section", section.BlockType)
		}
		if len(section.Children) == 0 || section.Children[0].BlockType != document.BlockHeading {
			t.Fatalf("section children = %+v", section.Children)
		}
		if section.Children[0].Level != 2 {
			t.Errorf("heading level = %d, want 2", section.Children[0].Level)
		}
	})

	t.Run("code block keeps language and code", func(t *testing.T) {
		content := Build(Lex("``` go\nfmt.Println()\n```"))
		if len(content.Blocks) != 1 {
			t.Fatalf("got %d blocks", len(content.Blocks))
		}
		code := content.Blocks[0]
		if code.BlockType != document.BlockCodeBlock || code.Language != "go" {
			t.Errorf("block = %+v", code)
		}
		if !strings.Contains(code.Code, "fmt.Println()") {
			t.Errorf("code = %q", code.Code)
		}
	})

	t.Run("raw block records format", func(t *testing.T) {
		content := Build(Lex("``` =html\n<b>x</b>\n```"))
		if len(content.Blocks) != 1 || content.Blocks[0].BlockType != document.BlockRawBlock {
			t.Fatalf("blocks = %+v", content.Blocks)
		}
		if content.Blocks[0].Language != "html" {
			t.Errorf("format = %q", content.Blocks[0].Language)
		}
	})

	t.Run("blockquote nests paragraph", func(t *testing.T) {
		content := Build(Lex("> quoted words"))
		if len(content.Blocks) != 1 || content.Blocks[0].BlockType != document.BlockBlockquote {
			t.Fatalf("blocks = %+v", content.Blocks)
		}
		if len(content.Blocks[0].Children) != 1 || content.Blocks[0].Children[0].BlockType != document.BlockParagraph {
			t.Errorf("quote children = %+v", content.Blocks[0].Children)
		}
	})

	t.Run("task list preserves checked state", func(t *testing.T) {
		content := Build(Lex("- [x] done\n- [ ] open"))
		if len(content.Blocks) != 1 || content.Blocks[0].BlockType != document.BlockTaskList {
			t.Fatalf("blocks = %+v", content.Blocks)
		}
		items := content.Blocks[0].Children
		if len(items) != 2 {
			t.Fatalf("items = %+v", items)
		}
		if items[0].Attributes == nil || items[0].Attributes.KeyValues["checked"] != "true" {
			t.Errorf("first item attrs = %+v", items[0].Attributes)
		}
		if items[1].Attributes == nil || items[1].Attributes.KeyValues["checked"] != "false" {
			t.Errorf("second item attrs = %+v", items[1].Attributes)
		}
	})

	t.Run("pending attributes attach to next block", func(t *testing.T) {
		content := Build(Lex("{#intro .lead}\nA paragraph."))
		if len(content.Blocks) != 1 {
			t.Fatalf("blocks = %+v", content.Blocks)
		}
		attrs := content.Blocks[0].Attributes
		if attrs == nil || attrs.ID != "intro" || len(attrs.Classes) != 1 || attrs.Classes[0] != "lead" {
			t.Errorf("attributes = %+v", attrs)
		}
	})

	t.Run("links and images collect targets", func(t *testing.T) {
		content := Build(Lex("See [the site](https://example.com) and ![a cat](cat.png)."))
		if len(content.Links) != 1 || content.Links[0].Href != "https://example.com" {
			t.Errorf("links = %+v", content.Links)
		}
		if len(content.Images) != 1 || content.Images[0].Src != "cat.png" {
			t.Errorf("images = %+v", content.Images)
		}
	})
}

func TestTablesSweep(t *testing.T) {
	events := Lex("| a | b |\n|---|---|\n| 1 | 2 |")
	tables := Tables(events)
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if len(tables[0].Cells) != 2 {
		t.Errorf("rows = %v", tables[0].Cells)
	}
	if tables[0].Cells[0][0] != "a" || tables[0].Cells[1][1] != "2" {
		t.Errorf("cells = %v", tables[0].Cells)
	}
	if !strings.Contains(tables[0].Markdown, "| a |") {
		t.Errorf("markdown = %q", tables[0].Markdown)
	}
}

func TestFootnotesSweep(t *testing.T) {
	events := Lex("Text with a note.[^warn]\n\n[^warn]: Be careful here.")
	notes := Footnotes(events)
	if len(notes) != 1 {
		t.Fatalf("got %d footnotes, want 1", len(notes))
	}
	if notes[0].Label != "warn" || !strings.Contains(notes[0].Text, "Be careful") {
		t.Errorf("footnote = %+v", notes[0])
	}
}

func TestInlineFormatting(t *testing.T) {
	content := Build(Lex("*strong* and _em_ and {=marked=} and `verbatim`"))
	if len(content.Blocks) != 1 {
		t.Fatalf("blocks = %+v", content.Blocks)
	}
	var kinds []document.InlineType
	for _, el := range content.Blocks[0].InlineContent {
		kinds = append(kinds, el.InlineType)
	}
	for _, want := range []document.InlineType{document.InlineStrong, document.InlineEmphasis, document.InlineMark, document.InlineVerbatim} {
		found := false
		for _, k := range kinds {
			if k == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing inline kind %s in %v", want, kinds)
		}
	}
}
