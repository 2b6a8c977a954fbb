package pdf

import (
	"strings"
	"testing"

	"kreuzberg/document"
)

func styledWord(text string, bold, italic bool) Word {
	return Word{Text: text, FontSize: 12, IsBold: bold, IsItalic: italic}
}

func TestRenderWordsWithMarkup(t *testing.T) {
	tests := []struct {
		name  string
		words []Word
		want  string
	}{
		{
			"plain run",
			[]Word{styledWord("just", false, false), styledWord("text", false, false)},
			"just text",
		},
		{
			"bold run groups consecutive words",
			[]Word{styledWord("a", false, false), styledWord("b", true, false), styledWord("c", true, false), styledWord("d", false, false)},
			"a **b c** d",
		},
		{
			"italic run",
			[]Word{styledWord("x", false, true)},
			"*x*",
		},
		{
			"bold italic run",
			[]Word{styledWord("x", true, true), styledWord("y", true, true)},
			"***x y***",
		},
		{
			"cjk tokens join without separator",
			[]Word{styledWord("世", false, false), styledWord("界", false, false)},
			"世界",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderWordsWithMarkup(wordRefs(tt.words)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func paragraphFromWords(level int, words ...Word) Paragraph {
	return Paragraph{
		Lines:        []Line{finalizeLine(words)},
		HeadingLevel: level,
	}
}

func TestAssembleMarkdownWithTables(t *testing.T) {
	t.Run("no tables renders paragraphs in order", func(t *testing.T) {
		pages := [][]Paragraph{{
			paragraphFromWords(1, Word{Text: "Title", BaselineY: 700, FontSize: 24}),
			paragraphFromWords(0, Word{Text: "Body.", BaselineY: 650, FontSize: 12}),
		}}
		got := assembleMarkdownWithTables(pages, nil)
		want := "# Title\n\nBody."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("positioned table interleaves by top y", func(t *testing.T) {
		pages := [][]Paragraph{{
			paragraphFromWords(0, Word{Text: "above", BaselineY: 700, FontSize: 12}),
			paragraphFromWords(0, Word{Text: "below", BaselineY: 300, FontSize: 12}),
		}}
		tables := []document.Table{{
			Markdown:   "| a | b |",
			PageNumber: 1,
			BBox:       &document.BoundingBox{X0: 0, Y0: 400, X1: 100, Y1: 500},
		}}
		got := assembleMarkdownWithTables(pages, tables)
		wantOrder := []string{"above", "| a | b |", "below"}
		pos := -1
		for _, part := range wantOrder {
			idx := strings.Index(got, part)
			if idx <= pos {
				t.Fatalf("output order wrong: %q", got)
			}
			pos = idx
		}
	})

	t.Run("unpositioned table appends at page end", func(t *testing.T) {
		pages := [][]Paragraph{{
			paragraphFromWords(0, Word{Text: "text", BaselineY: 700, FontSize: 12}),
		}}
		tables := []document.Table{{Markdown: "| t |", PageNumber: 1}}
		got := assembleMarkdownWithTables(pages, tables)
		if !strings.HasSuffix(got, "| t |") {
			t.Errorf("table not appended at end: %q", got)
		}
	})
}

func TestInjectImagePlaceholders(t *testing.T) {
	t.Run("no images leaves markdown unchanged", func(t *testing.T) {
		if got := InjectImagePlaceholders("text", nil); got != "text" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("placeholders grouped by page", func(t *testing.T) {
		images := []document.ExtractedImage{
			{ImageIndex: 0, PageNumber: 2},
			{ImageIndex: 1, PageNumber: 1},
		}
		got := InjectImagePlaceholders("text", images)
		first := strings.Index(got, "![Image 1 (page 1)](embedded:p1_i1)")
		second := strings.Index(got, "![Image 0 (page 2)](embedded:p2_i0)")
		if first < 0 || second < 0 || first > second {
			t.Errorf("placeholders missing or misordered: %q", got)
		}
	})

	t.Run("ocr text follows as blockquote", func(t *testing.T) {
		images := []document.ExtractedImage{{
			ImageIndex: 0,
			PageNumber: 1,
			OCRResult:  &document.ExtractionResult{Content: "scanned words"},
		}}
		got := InjectImagePlaceholders("text", images)
		if !strings.Contains(got, "> *Image text: scanned words*") {
			t.Errorf("missing OCR blockquote: %q", got)
		}
	})
}

func TestShouldTriggerOCR(t *testing.T) {
	fullPage := []TextBlock{{BBox: BoundingBox{Left: 0, Top: 0, Right: 600, Bottom: 800}}}

	if ShouldTriggerOCR(600, 800, fullPage, nil) {
		t.Error("full-coverage page should not trigger OCR")
	}
	if !ShouldTriggerOCR(600, 800, nil, nil) {
		t.Error("empty page should trigger OCR")
	}
	if !ShouldTriggerOCR(0, 0, fullPage, nil) {
		t.Error("invalid page area should trigger OCR")
	}

	threshold := float32(0.01)
	cfg := &document.ExtractionConfig{
		PdfOptions: &document.PdfOptions{Hierarchy: &document.HierarchyOptions{OCRCoverageThreshold: &threshold}},
	}
	small := []TextBlock{{BBox: BoundingBox{Left: 0, Top: 0, Right: 60, Bottom: 80}}}
	if ShouldTriggerOCR(600, 800, small, cfg) {
		t.Error("1% coverage should satisfy a 1% threshold")
	}
}
