package pdf

// isCJK reports whether r is a CJK ideograph, Hiragana, Katakana or Hangul
// syllable. CJK scripts do not use spaces between words, so each such
// character forms a standalone word during tokenization.
func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // Hangul Syllables
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	case r >= 0xF900 && r <= 0xFAFF: // CJK Compatibility Ideographs
		return true
	case r >= 0x20000 && r <= 0x2A6DF: // CJK Extension B
		return true
	case r >= 0x2A700 && r <= 0x2B73F: // CJK Extension C
		return true
	case r >= 0x2B740 && r <= 0x2B81F: // CJK Extension D
		return true
	case r >= 0x2B820 && r <= 0x2CEAF: // CJK Extension E
		return true
	case r >= 0x2CEB0 && r <= 0x2EBEF: // CJK Extension F
		return true
	case r >= 0x30000 && r <= 0x3134F: // CJK Extension G
		return true
	case r >= 0x31350 && r <= 0x323AF: // CJK Extension H
		return true
	case r >= 0x2F800 && r <= 0x2FA1F: // CJK Compatibility Ideographs Supplement
		return true
	}
	return false
}

// needsSpaceBetween reports whether a space belongs between two adjacent
// words: only runs where both sides are CJK join without a separator.
func needsSpaceBetween(prev, next string) bool {
	if prev == "" || next == "" {
		return true
	}
	prevRunes := []rune(prev)
	nextRunes := []rune(next)
	return !(isCJK(prevRunes[len(prevRunes)-1]) && isCJK(nextRunes[0]))
}

// joinWordsCJKAware joins word texts with single spaces, omitting the space
// between adjacent CJK tokens.
func joinWordsCJKAware(words []string) string {
	if len(words) == 0 {
		return ""
	}
	size := 0
	for _, w := range words {
		size += len(w) + 1
	}
	out := make([]byte, 0, size)
	out = append(out, words[0]...)
	for i := 1; i < len(words); i++ {
		if needsSpaceBetween(words[i-1], words[i]) {
			out = append(out, ' ')
		}
		out = append(out, words[i]...)
	}
	return string(out)
}
