package pipeline

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"

	"kreuzberg/document"
)

// executeChunking replaces result.Chunks when chunking is configured.
// Failures never abort: they are recorded under "chunking_error" and the
// pipeline proceeds.
func executeChunking(result *document.ExtractionResult, cfg *document.ExtractionConfig, log *zap.Logger) {
	if cfg.Chunking == nil {
		return
	}
	chunks, err := chunkText(result.Content, cfg.Chunking.MaxChars, cfg.Chunking.MaxOverlap)
	if err != nil {
		log.Debug("Chunking failed", zap.Error(err))
		result.Metadata.Set("chunking_error", err.Error())
		return
	}
	result.Chunks = chunks
	result.Metadata.Set("chunk_count", len(chunks))
}

// chunkText packs sentence-sized pieces into chunks of at most maxChars
// runes with an overlap of up to maxOverlap runes carried between adjacent
// chunks. Sentence boundaries come from the punkt tokenizer; a single
// sentence longer than maxChars is split on rune windows.
func chunkText(content string, maxChars, maxOverlap int) ([]document.Chunk, error) {
	if maxChars <= 0 {
		return nil, document.NewInvalidParameter("chunking max_chars must be positive")
	}
	if maxOverlap < 0 || maxOverlap >= maxChars {
		return nil, document.NewInvalidParameter("chunking max_overlap must be in [0, max_chars)")
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, document.NewParsing("sentence tokenizer init", err)
	}

	pieces := splitPieces(tokenizer, content, maxChars)

	var out []document.Chunk
	var cur []rune
	curStart := 0
	pos := 0 // rune offset into content

	flush := func(end int) {
		text := strings.TrimSpace(string(cur))
		if text != "" {
			out = append(out, document.Chunk{
				Content:  text,
				Metadata: document.ChunkMetadata{CharStart: curStart, CharEnd: end},
			})
		}
	}

	for _, piece := range pieces {
		runes := []rune(piece)
		if len(cur) > 0 && len(cur)+len(runes) > maxChars {
			flush(pos)
			// Carry the overlap tail into the next chunk, shortened so that
			// tail plus piece stays within maxChars.
			keep := min(maxOverlap, maxChars-len(runes))
			if maxOverlap > 0 && len(cur) > maxOverlap && keep > 0 {
				tail := cur[len(cur)-keep:]
				curStart = pos - len(tail)
				cur = append([]rune{}, tail...)
			} else {
				curStart = pos
				cur = cur[:0]
			}
		}
		if len(cur) == 0 {
			curStart = pos
		}
		cur = append(cur, runes...)
		pos += len(runes)
	}
	flush(pos)

	for i := range out {
		out[i].Metadata.ChunkIndex = i
		out[i].Metadata.TotalChunks = len(out)
	}
	return out, nil
}

// splitPieces tokenizes content into sentences and hard-splits any sentence
// exceeding maxChars. Pieces concatenate back to the original content.
func splitPieces(tokenizer *sentences.DefaultSentenceTokenizer, content string, maxChars int) []string {
	var pieces []string
	for _, s := range tokenizer.Tokenize(content) {
		text := s.Text
		runes := []rune(text)
		for len(runes) > maxChars {
			pieces = append(pieces, string(runes[:maxChars]))
			runes = runes[maxChars:]
		}
		if len(runes) > 0 {
			pieces = append(pieces, string(runes))
		}
	}
	if len(pieces) == 0 && content != "" {
		runes := []rune(content)
		for len(runes) > maxChars {
			pieces = append(pieces, string(runes[:maxChars]))
			runes = runes[maxChars:]
		}
		pieces = append(pieces, string(runes))
	}
	return pieces
}
