package pipeline

import (
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"kreuzberg/document"
)

// executeLanguageDetection populates result.DetectedLanguages when
// configured. Failures never abort: they are recorded under
// "language_detection_error".
func executeLanguageDetection(result *document.ExtractionResult, cfg *document.ExtractionConfig, log *zap.Logger) {
	if cfg.LanguageDetection == nil {
		return
	}
	langs, err := detectLanguages(result.Content, cfg.LanguageDetection)
	if err != nil {
		log.Debug("Language detection failed", zap.Error(err))
		result.Metadata.Set("language_detection_error", err.Error())
		return
	}
	result.DetectedLanguages = langs
}

// Scripts with an unambiguous dominant language map directly; Latin-script
// text is disambiguated by stopword frequency.
var latinStopwords = map[string][]string{
	"en": {"the", "and", "of", "to", "in", "is", "that", "with", "for", "was"},
	"de": {"der", "die", "und", "das", "ist", "nicht", "mit", "ein", "eine", "von"},
	"fr": {"le", "la", "les", "des", "est", "une", "dans", "que", "pour", "avec"},
	"es": {"el", "los", "las", "una", "es", "que", "por", "con", "para", "del"},
	"it": {"il", "di", "che", "della", "per", "con", "una", "sono", "nel", "gli"},
	"pt": {"de", "que", "não", "uma", "para", "com", "os", "por", "mais", "dos"},
	"nl": {"de", "het", "een", "van", "en", "dat", "niet", "met", "voor", "zijn"},
}

// detectLanguages classifies content by script coverage, then refines
// Latin-script text by stopword frequency. Tags are canonical BCP-47 via
// x/text. Confidence is a script's share of all letters in content, for
// Latin as for every other script; stopword counts only choose which
// Latin-script language is reported.
func detectLanguages(content string, cfg *document.LanguageDetectionConfig) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, document.NewInvalidParameter("empty content")
	}

	minConfidence := cfg.MinConfidence
	if minConfidence <= 0 {
		minConfidence = 0.2
	}

	scripts := map[string]int{}
	letters := 0
	for _, r := range content {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Latin, r):
			scripts["latin"]++
		case unicode.Is(unicode.Cyrillic, r):
			scripts["ru"]++
		case unicode.Is(unicode.Greek, r):
			scripts["el"]++
		case unicode.Is(unicode.Han, r):
			scripts["zh"]++
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			scripts["ja"]++
		case unicode.Is(unicode.Hangul, r):
			scripts["ko"]++
		case unicode.Is(unicode.Arabic, r):
			scripts["ar"]++
		case unicode.Is(unicode.Hebrew, r):
			scripts["he"]++
		case unicode.Is(unicode.Thai, r):
			scripts["th"]++
		case unicode.Is(unicode.Devanagari, r):
			scripts["hi"]++
		}
	}
	if letters == 0 {
		return nil, document.NewInvalidParameter("no letters in content")
	}

	type cand struct {
		lang  string
		score float64
	}
	var cands []cand
	for code, n := range scripts {
		score := float64(n) / float64(letters)
		if score < minConfidence {
			continue
		}
		if code == "latin" {
			code = classifyLatin(content)
		}
		cands = append(cands, cand{lang: code, score: score})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	if len(cands) == 0 {
		return nil, nil
	}
	if !cfg.DetectMultiple && len(cands) > 1 {
		cands = cands[:1]
	}

	out := make([]string, 0, len(cands))
	for _, c := range cands {
		tag, err := language.Parse(c.lang)
		if err != nil {
			continue
		}
		out = append(out, tag.String())
	}
	return out, nil
}

// classifyLatin picks the Latin-script language with the highest stopword
// hit count; English wins ties and is the fallback.
func classifyLatin(content string) string {
	words := strings.Fields(strings.ToLower(content))
	counts := map[string]int{}
	for lang, stops := range latinStopwords {
		for _, w := range words {
			trimmed := strings.Trim(w, ".,;:!?()[]{}\"'«»")
			for _, s := range stops {
				if trimmed == s {
					counts[lang]++
				}
			}
		}
	}
	best, bestCount := "en", counts["en"]
	for lang, n := range counts {
		if n > bestCount {
			best, bestCount = lang, n
		}
	}
	return best
}
