package pdf

import (
	"sort"
	"strings"
)

const (
	baselineYToleranceFraction  float32 = 0.5
	paragraphGapMultiplier      float32 = 1.5
	fontSizeChangeThreshold     float32 = 1.5
	leftIndentChangeThreshold   float32 = 10.0
	maxHeadingWordCount                 = 12
	maxListItemLines                    = 5
	maxHeadingDistanceMultiple  float32 = 2.0
	subscriptGapFilterFraction  float32 = 0.4
	softBreakGapFractionOfBase  float32 = 0.8
)

// Word is a tokenized word with position and style.
type Word struct {
	Text      string
	XStart    float32
	XEnd      float32
	BaselineY float32
	FontSize  float32
	IsBold    bool
	IsItalic  bool
}

// Line groups words sharing a baseline.
type Line struct {
	Words            []Word
	BaselineY        float32
	YTop             float32
	YBottom          float32
	DominantFontSize float32
	IsBold           bool
	IsItalic         bool
}

// Paragraph groups lines with classification results.
type Paragraph struct {
	Lines            []Line
	DominantFontSize float32
	HeadingLevel     int // 0 means body
	IsBold           bool
	IsItalic         bool
	IsListItem       bool
}

// SegmentsToWords splits each segment's text on whitespace, distributing the
// segment width proportionally by character count. CJK characters each form
// a standalone word; adjacent non-CJK runs stay grouped.
func SegmentsToWords(segments []SegmentData) []Word {
	var words []Word

	for _, seg := range segments {
		trimmed := strings.TrimSpace(seg.Text)
		if trimmed == "" {
			continue
		}
		parts := strings.Fields(trimmed)
		totalChars := 0
		for _, p := range parts {
			totalChars += len([]rune(p))
		}
		if totalChars == 0 {
			continue
		}

		xOffset := seg.X
		for _, part := range parts {
			frac := float32(len([]rune(part))) / float32(totalChars)
			partWidth := seg.Width * frac

			runes := []rune(part)
			hasCJK := false
			for _, r := range runes {
				if isCJK(r) {
					hasCJK = true
					break
				}
			}

			if !hasCJK {
				words = append(words, Word{
					Text:      part,
					XStart:    xOffset,
					XEnd:      xOffset + partWidth,
					BaselineY: seg.BaselineY,
					FontSize:  seg.FontSize,
					IsBold:    seg.IsBold,
					IsItalic:  seg.IsItalic,
				})
				xOffset += partWidth
				continue
			}

			charWidth := partWidth
			if len(runes) > 0 {
				charWidth = partWidth / float32(len(runes))
			}
			runX := xOffset
			for start := 0; start < len(runes); {
				if isCJK(runes[start]) {
					words = append(words, Word{
						Text:      string(runes[start]),
						XStart:    runX,
						XEnd:      runX + charWidth,
						BaselineY: seg.BaselineY,
						FontSize:  seg.FontSize,
						IsBold:    seg.IsBold,
						IsItalic:  seg.IsItalic,
					})
					runX += charWidth
					start++
					continue
				}
				end := start + 1
				for end < len(runes) && !isCJK(runes[end]) {
					end++
				}
				runWidth := charWidth * float32(end-start)
				words = append(words, Word{
					Text:      string(runes[start:end]),
					XStart:    runX,
					XEnd:      runX + runWidth,
					BaselineY: seg.BaselineY,
					FontSize:  seg.FontSize,
					IsBold:    seg.IsBold,
					IsItalic:  seg.IsItalic,
				})
				runX += runWidth
				start = end
			}
			xOffset += partWidth
		}
	}

	return words
}

// WordsToLines groups words into lines by baseline proximity: two words
// share a line iff |Δbaseline| < 0.5 × min(font sizes). Words are first
// sorted by baseline descending (top of page first), then x ascending.
func WordsToLines(words []Word) []Line {
	if len(words) == 0 {
		return nil
	}

	sorted := append([]Word{}, words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BaselineY != sorted[j].BaselineY {
			return sorted[i].BaselineY > sorted[j].BaselineY
		}
		return sorted[i].XStart < sorted[j].XStart
	})

	var lines []Line
	current := []Word{sorted[0]}

	for _, word := range sorted[1:] {
		var baselineSum float32
		minFS := word.FontSize
		for _, w := range current {
			baselineSum += w.BaselineY
			minFS = min32(minFS, w.FontSize)
		}
		minFS = max32(minFS, 1)
		currentBaseline := baselineSum / float32(len(current))

		if abs32(word.BaselineY-currentBaseline) < baselineYToleranceFraction*minFS {
			current = append(current, word)
		} else {
			lines = append(lines, finalizeLine(current))
			current = []Word{word}
		}
	}
	lines = append(lines, finalizeLine(current))
	return lines
}

func finalizeLine(words []Word) Line {
	sort.SliceStable(words, func(i, j int) bool { return words[i].XStart < words[j].XStart })

	var baselineSum float32
	yTop := float32(1e30)
	yBottom := float32(-1e30)
	boldCount, italicCount := 0, 0
	for _, w := range words {
		baselineSum += w.BaselineY
		yTop = min32(yTop, w.BaselineY-w.FontSize)
		yBottom = max32(yBottom, w.BaselineY)
		if w.IsBold {
			boldCount++
		}
		if w.IsItalic {
			italicCount++
		}
	}
	majority := (len(words) + 1) / 2

	return Line{
		Words:            words,
		BaselineY:        baselineSum / float32(len(words)),
		YTop:             yTop,
		YBottom:          yBottom,
		DominantFontSize: dominantFontSize(words),
		IsBold:           boldCount >= majority,
		IsItalic:         italicCount >= majority,
	}
}

// dominantFontSize returns the most frequent font size rounded to 0.5 pt.
func dominantFontSize(words []Word) float32 {
	if len(words) == 0 {
		return 0
	}
	type bucket struct {
		key   int
		count int
	}
	var counts []bucket
	for _, w := range words {
		key := int(w.FontSize*2 + 0.5)
		found := false
		for i := range counts {
			if counts[i].key == key {
				counts[i].count++
				found = true
				break
			}
		}
		if !found {
			counts = append(counts, bucket{key: key, count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	return float32(counts[0].key) / 2
}

// LinesToParagraphs groups lines into paragraphs by vertical gaps, font-size
// changes and indentation shifts. Gaps below 40% of the average font size
// (sub/superscripts) are filtered out before computing the base spacing,
// which is the minimum of the remaining gaps. A new paragraph starts when
// the gap exceeds 1.5× base spacing, or when the gap exceeds 0.8× base
// spacing combined with a font-size change above 1.5 pt or an indent change
// above 10 pt. The minimum-of-filtered-gaps rule has known failure modes for
// one-line-per-paragraph documents; it is kept as-is.
func LinesToParagraphs(lines []Line) []Paragraph {
	if len(lines) == 0 {
		return nil
	}
	if len(lines) == 1 {
		return []Paragraph{finalizeParagraph(lines)}
	}

	var avgFontSize float32
	for _, l := range lines {
		avgFontSize += l.DominantFontSize
	}
	avgFontSize /= float32(len(lines))

	var spacings []float32
	for i := 1; i < len(lines); i++ {
		gap := abs32(lines[i].BaselineY - lines[i-1].BaselineY)
		if gap > avgFontSize*subscriptGapFilterFraction {
			spacings = append(spacings, gap)
		}
	}

	baseSpacing := avgFontSize
	if len(spacings) > 0 {
		baseSpacing = spacings[0]
		for _, s := range spacings[1:] {
			baseSpacing = min32(baseSpacing, s)
		}
	}

	gapThreshold := baseSpacing * paragraphGapMultiplier

	var paragraphs []Paragraph
	current := []Line{lines[0]}

	for _, line := range lines[1:] {
		prev := current[len(current)-1]

		verticalGap := abs32(line.BaselineY - prev.BaselineY)
		fontSizeChange := abs32(line.DominantFontSize - prev.DominantFontSize)

		var prevLeft, currLeft float32
		if len(prev.Words) > 0 {
			prevLeft = prev.Words[0].XStart
		}
		if len(line.Words) > 0 {
			currLeft = line.Words[0].XStart
		}
		indentChange := abs32(currLeft - prevLeft)

		significantGap := verticalGap > gapThreshold
		someGap := verticalGap > baseSpacing*softBreakGapFractionOfBase
		fontChanged := fontSizeChange > fontSizeChangeThreshold
		indentChanged := indentChange > leftIndentChangeThreshold

		if significantGap || (someGap && (fontChanged || indentChanged)) {
			paragraphs = append(paragraphs, finalizeParagraph(current))
			current = []Line{line}
		} else {
			current = append(current, line)
		}
	}
	paragraphs = append(paragraphs, finalizeParagraph(current))
	return paragraphs
}

func finalizeParagraph(lines []Line) Paragraph {
	type bucket struct {
		key   int
		count int
	}
	var counts []bucket
	boldCount, italicCount := 0, 0
	for _, l := range lines {
		key := int(l.DominantFontSize*2 + 0.5)
		found := false
		for i := range counts {
			if counts[i].key == key {
				counts[i].count++
				found = true
				break
			}
		}
		if !found {
			counts = append(counts, bucket{key: key, count: 1})
		}
		if l.IsBold {
			boldCount++
		}
		if l.IsItalic {
			italicCount++
		}
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	majority := (len(lines) + 1) / 2

	isListItem := len(lines) <= maxListItemLines &&
		len(lines) > 0 && len(lines[0].Words) > 0 &&
		isListPrefix(lines[0].Words[0].Text)

	return Paragraph{
		Lines:            lines,
		DominantFontSize: float32(counts[0].key) / 2,
		IsBold:           boldCount >= majority,
		IsItalic:         italicCount >= majority,
		IsListItem:       isListItem,
	}
}

// isListPrefix recognizes "-", "*", "•" and numbered prefixes like "3." or
// "12)".
func isListPrefix(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "-" || trimmed == "*" || trimmed == "•" {
		return true
	}
	digitEnd := 0
	for digitEnd < len(trimmed) && trimmed[digitEnd] >= '0' && trimmed[digitEnd] <= '9' {
		digitEnd++
	}
	if digitEnd > 0 && digitEnd < len(trimmed) {
		return trimmed[digitEnd] == '.' || trimmed[digitEnd] == ')'
	}
	return false
}

// ClassifyParagraphs assigns heading levels from the global heading map. A
// paragraph becomes a heading only when its dominant font size matches a
// heading cluster and the total word count is at most 12.
func ClassifyParagraphs(paragraphs []Paragraph, headingMap []HeadingAssignment) {
	for i := range paragraphs {
		wordCount := 0
		for _, l := range paragraphs[i].Lines {
			wordCount += len(l.Words)
		}
		level := findHeadingLevel(paragraphs[i].DominantFontSize, headingMap)
		if level > 0 && wordCount <= maxHeadingWordCount {
			paragraphs[i].HeadingLevel = level
		}
	}
}

// findHeadingLevel matches a font size against cluster centroids, rejecting
// matches farther than 2× the average inter-centroid gap.
func findHeadingLevel(fontSize float32, headingMap []HeadingAssignment) int {
	if len(headingMap) == 0 {
		return 0
	}
	if len(headingMap) == 1 {
		return headingMap[0].Level
	}

	bestDist := float32(1e30)
	bestLevel := 0
	for _, h := range headingMap {
		if d := abs32(fontSize - h.Centroid); d < bestDist {
			bestDist = d
			bestLevel = h.Level
		}
	}

	centroids := make([]float32, len(headingMap))
	for i, h := range headingMap {
		centroids[i] = h.Centroid
	}
	sort.Slice(centroids, func(i, j int) bool { return centroids[i] < centroids[j] })
	var gapSum float32
	for i := 1; i < len(centroids); i++ {
		gapSum += centroids[i] - centroids[i-1]
	}
	avgGap := gapSum / float32(len(centroids)-1)

	if bestDist > maxHeadingDistanceMultiple*avgGap {
		return 0
	}
	return bestLevel
}
