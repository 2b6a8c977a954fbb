package pdf

import (
	"testing"
)

func seg(text string, x, baselineY, width, fontSize float32) SegmentData {
	return SegmentData{
		Text:      text,
		X:         x,
		Y:         baselineY,
		Width:     width,
		Height:    fontSize,
		FontSize:  fontSize,
		BaselineY: baselineY,
	}
}

func TestSegmentsToWords(t *testing.T) {
	t.Run("splits on whitespace with proportional widths", func(t *testing.T) {
		words := SegmentsToWords([]SegmentData{seg("Hello World", 0, 100, 110, 12)})
		if len(words) != 2 {
			t.Fatalf("got %d words, want 2", len(words))
		}
		if words[0].Text != "Hello" || words[1].Text != "World" {
			t.Errorf("words = %q, %q", words[0].Text, words[1].Text)
		}
		if words[0].XEnd-words[0].XStart != 55 {
			t.Errorf("first word width = %v, want 55", words[0].XEnd-words[0].XStart)
		}
	})

	t.Run("cjk characters form standalone words", func(t *testing.T) {
		words := SegmentsToWords([]SegmentData{seg("世界", 0, 100, 24, 12)})
		if len(words) != 2 {
			t.Fatalf("got %d words, want 2", len(words))
		}
		if words[0].Text != "世" || words[1].Text != "界" {
			t.Errorf("words = %q, %q", words[0].Text, words[1].Text)
		}
		if w := words[0].XEnd - words[0].XStart; w != 12 {
			t.Errorf("first CJK word width = %v, want 12", w)
		}
		if w := words[1].XEnd - words[1].XStart; w != 12 {
			t.Errorf("second CJK word width = %v, want 12", w)
		}
	})

	t.Run("mixed cjk and latin keeps latin runs together", func(t *testing.T) {
		words := SegmentsToWords([]SegmentData{seg("abc世def", 0, 100, 70, 12)})
		if len(words) != 3 {
			t.Fatalf("got %d words, want 3: %v", len(words), words)
		}
		if words[0].Text != "abc" || words[1].Text != "世" || words[2].Text != "def" {
			t.Errorf("words = %q, %q, %q", words[0].Text, words[1].Text, words[2].Text)
		}
	})

	t.Run("whitespace-only segments are dropped", func(t *testing.T) {
		if words := SegmentsToWords([]SegmentData{seg("   ", 0, 100, 10, 12)}); len(words) != 0 {
			t.Errorf("got %d words, want 0", len(words))
		}
	})
}

func TestWordsToLines(t *testing.T) {
	w := func(text string, x, baselineY float32) Word {
		return Word{Text: text, XStart: x, XEnd: x + 10, BaselineY: baselineY, FontSize: 12}
	}

	t.Run("same baseline joins, different splits", func(t *testing.T) {
		lines := WordsToLines([]Word{
			w("a", 0, 100), w("b", 20, 100.2),
			w("c", 0, 80),
		})
		if len(lines) != 2 {
			t.Fatalf("got %d lines, want 2", len(lines))
		}
		if len(lines[0].Words) != 2 {
			t.Errorf("first line has %d words, want 2", len(lines[0].Words))
		}
		// Lines come top first (larger y).
		if lines[0].Words[0].Text != "a" {
			t.Errorf("first line starts with %q", lines[0].Words[0].Text)
		}
		if lines[1].Words[0].Text != "c" {
			t.Errorf("second line starts with %q", lines[1].Words[0].Text)
		}
	})

	t.Run("words sort left to right within line", func(t *testing.T) {
		lines := WordsToLines([]Word{w("right", 50, 100), w("left", 0, 100)})
		if len(lines) != 1 {
			t.Fatalf("got %d lines, want 1", len(lines))
		}
		if lines[0].Words[0].Text != "left" {
			t.Errorf("line order = %q first", lines[0].Words[0].Text)
		}
	})
}

func makeLine(baselineY, fontSize, left float32, texts ...string) Line {
	var words []Word
	x := left
	for _, text := range texts {
		words = append(words, Word{Text: text, XStart: x, XEnd: x + 20, BaselineY: baselineY, FontSize: fontSize})
		x += 25
	}
	return finalizeLine(words)
}

func TestLinesToParagraphs(t *testing.T) {
	t.Run("regular spacing keeps one paragraph", func(t *testing.T) {
		paragraphs := LinesToParagraphs([]Line{
			makeLine(100, 12, 0, "one"),
			makeLine(86, 12, 0, "two"),
			makeLine(72, 12, 0, "three"),
		})
		if len(paragraphs) != 1 {
			t.Fatalf("got %d paragraphs, want 1", len(paragraphs))
		}
	})

	t.Run("large gap starts a new paragraph", func(t *testing.T) {
		paragraphs := LinesToParagraphs([]Line{
			makeLine(100, 12, 0, "one"),
			makeLine(86, 12, 0, "two"),
			makeLine(40, 12, 0, "three"),
		})
		if len(paragraphs) != 2 {
			t.Fatalf("got %d paragraphs, want 2", len(paragraphs))
		}
	})

	t.Run("moderate gap with indent change splits", func(t *testing.T) {
		paragraphs := LinesToParagraphs([]Line{
			makeLine(100, 12, 0, "one"),
			makeLine(86, 12, 0, "two"),
			makeLine(73, 12, 40, "indented"),
		})
		if len(paragraphs) != 2 {
			t.Fatalf("got %d paragraphs, want 2", len(paragraphs))
		}
	})

	t.Run("list item detection", func(t *testing.T) {
		paragraphs := LinesToParagraphs([]Line{makeLine(100, 12, 0, "-", "item")})
		if len(paragraphs) != 1 || !paragraphs[0].IsListItem {
			t.Errorf("expected single list-item paragraph, got %+v", paragraphs)
		}

		paragraphs = LinesToParagraphs([]Line{makeLine(100, 12, 0, "3.", "numbered")})
		if !paragraphs[0].IsListItem {
			t.Error("numbered prefix not recognized as list item")
		}

		paragraphs = LinesToParagraphs([]Line{makeLine(100, 12, 0, "plain", "text")})
		if paragraphs[0].IsListItem {
			t.Error("plain text misclassified as list item")
		}
	})
}

func TestClassifyParagraphs(t *testing.T) {
	headingMap := []HeadingAssignment{
		{Centroid: 24, Level: 1},
		{Centroid: 12, Level: 0},
	}

	t.Run("short large paragraph becomes heading", func(t *testing.T) {
		paragraphs := []Paragraph{{
			Lines:            []Line{makeLine(100, 24, 0, "Title")},
			DominantFontSize: 24,
		}}
		ClassifyParagraphs(paragraphs, headingMap)
		if paragraphs[0].HeadingLevel != 1 {
			t.Errorf("heading level = %d, want 1", paragraphs[0].HeadingLevel)
		}
	})

	t.Run("long paragraph never becomes heading", func(t *testing.T) {
		texts := make([]string, 13)
		for i := range texts {
			texts[i] = "w"
		}
		paragraphs := []Paragraph{{
			Lines:            []Line{makeLine(100, 24, 0, texts...)},
			DominantFontSize: 24,
		}}
		ClassifyParagraphs(paragraphs, headingMap)
		if paragraphs[0].HeadingLevel != 0 {
			t.Errorf("13-word paragraph got heading level %d", paragraphs[0].HeadingLevel)
		}
	})

	t.Run("outlier font size rejected", func(t *testing.T) {
		if level := findHeadingLevel(60, headingMap); level != 0 {
			t.Errorf("60pt matched level %d, want rejection", level)
		}
	})

	t.Run("close match accepted", func(t *testing.T) {
		if level := findHeadingLevel(23.5, headingMap); level != 1 {
			t.Errorf("23.5pt matched level %d, want 1", level)
		}
	})
}

func TestJoinWordsCJKAware(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  string
	}{
		{"latin words get spaces", []string{"hello", "world"}, "hello world"},
		{"cjk pair joins tight", []string{"世", "界"}, "世界"},
		{"mixed inserts space at boundary", []string{"hello", "世", "界"}, "hello 世界"},
		{"cjk then latin gets space", []string{"界", "go"}, "界 go"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinWordsCJKAware(tt.words); got != tt.want {
				t.Errorf("joinWordsCJKAware(%v) = %q, want %q", tt.words, got, tt.want)
			}
		})
	}
}

func TestIsCJK(t *testing.T) {
	for _, r := range []rune{'世', 'あ', 'ア', '한'} {
		if !isCJK(r) {
			t.Errorf("isCJK(%q) = false, want true", r)
		}
	}
	for _, r := range []rune{'a', 'Z', '1', 'é', ' '} {
		if isCJK(r) {
			t.Errorf("isCJK(%q) = true, want false", r)
		}
	}
}
