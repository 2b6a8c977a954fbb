package pipeline

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"kreuzberg/common"
	"kreuzberg/document"
)

// QualityProcessor normalises extracted text: NFC form, control characters
// stripped, runs of blank lines and intra-line whitespace collapsed. It is
// registered at priority 30 in the Middle stage when quality processing is
// enabled.
type QualityProcessor struct{}

func (q *QualityProcessor) Name() string    { return "quality" }
func (q *QualityProcessor) Version() string { return "1.0.0" }
func (q *QualityProcessor) Initialize() error {
	return nil
}
func (q *QualityProcessor) Shutdown() error {
	return nil
}

func (q *QualityProcessor) ProcessingStage() common.ProcessingStage {
	return common.ProcessingStageMiddle
}

func (q *QualityProcessor) ShouldProcess(result *document.ExtractionResult, cfg *document.ExtractionConfig) bool {
	return cfg != nil && cfg.EnableQualityProcessing && result.Content != ""
}

func (q *QualityProcessor) Process(_ context.Context, result *document.ExtractionResult, _ *document.ExtractionConfig) error {
	result.Content = normalizeText(result.Content)
	return nil
}

func normalizeText(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	s = b.String()

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, collapseSpaces(trimmed))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// collapseSpaces squeezes interior runs of spaces/tabs outside of markdown
// table rows (where alignment is meaningful).
func collapseSpaces(line string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "|") {
		return line
	}
	var b strings.Builder
	space := false
	for _, r := range line {
		if r == ' ' || r == '\t' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
