package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"kreuzberg/common"
	"kreuzberg/document"
)

// applyOutputFormat converts result.Content into the requested output
// format. Markdown is the native representation and is left untouched.
func applyOutputFormat(result *document.ExtractionResult, format common.OutputFormat) {
	switch format {
	case common.OutputFormatMarkdown:
	case common.OutputFormatPlain:
		result.Content = markdownToPlain(result.Content)
	case common.OutputFormatHtml:
		result.Content = markdownToHTML(result.Content)
	case common.OutputFormatDjot:
		result.Content = markdownToDjot(result.Content)
	}
}

var (
	reHeading    = regexp.MustCompile(`(?m)^(#{1,6})\s+(.*)$`)
	reBoldItalic = regexp.MustCompile(`\*\*\*([^*]+)\*\*\*`)
	reBold       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	reStrike     = regexp.MustCompile(`~~([^~]+)~~`)
	reLink       = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	reImage      = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)
	reUnderline  = regexp.MustCompile(`</?u>`)
	reListItem   = regexp.MustCompile(`(?m)^(\s*)[-*]\s+`)
	reTableRule  = regexp.MustCompile(`(?m)^\|[\s|:-]+\|$`)
)

// markdownToPlain strips markdown markers leaving readable text.
func markdownToPlain(md string) string {
	out := reImage.ReplaceAllString(md, "$1")
	out = reLink.ReplaceAllString(out, "$1")
	out = reHeading.ReplaceAllString(out, "$2")
	out = reBoldItalic.ReplaceAllString(out, "$1")
	out = reBold.ReplaceAllString(out, "$1")
	out = reItalic.ReplaceAllString(out, "$1")
	out = reStrike.ReplaceAllString(out, "$1")
	out = reUnderline.ReplaceAllString(out, "")
	out = reTableRule.ReplaceAllString(out, "")
	out = reListItem.ReplaceAllString(out, "$1")
	// Collapse table pipes into tab-separated cells.
	var b strings.Builder
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			cells := strings.Split(strings.Trim(trimmed, "|"), "|")
			for i, c := range cells {
				cells[i] = strings.TrimSpace(c)
			}
			b.WriteString(strings.Join(cells, "\t"))
		} else {
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// markdownToHTML renders the markdown subset this engine emits (headings,
// emphasis, links, images, lists, tables, blockquotes) as minimal HTML.
func markdownToHTML(md string) string {
	var b strings.Builder
	inList := false
	inTable := false

	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}
	closeTable := func() {
		if inTable {
			b.WriteString("</table>\n")
			inTable = false
		}
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			closeList()
			closeTable()
		case reTableRule.MatchString(trimmed):
			// header separator row, structural only
		case strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|"):
			closeList()
			if !inTable {
				b.WriteString("<table>\n")
				inTable = true
			}
			b.WriteString("<tr>")
			for _, cell := range strings.Split(strings.Trim(trimmed, "|"), "|") {
				b.WriteString("<td>")
				b.WriteString(inlineHTML(strings.TrimSpace(cell)))
				b.WriteString("</td>")
			}
			b.WriteString("</tr>\n")
		case strings.HasPrefix(trimmed, "#"):
			closeList()
			closeTable()
			m := reHeading.FindStringSubmatch(trimmed)
			if m != nil {
				level := len(m[1])
				fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, inlineHTML(m[2]), level)
			} else {
				fmt.Fprintf(&b, "<p>%s</p>\n", inlineHTML(trimmed))
			}
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			closeTable()
			if !inList {
				b.WriteString("<ul>\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inlineHTML(trimmed[2:]))
		case strings.HasPrefix(trimmed, "> "):
			closeList()
			closeTable()
			fmt.Fprintf(&b, "<blockquote>%s</blockquote>\n", inlineHTML(trimmed[2:]))
		default:
			closeList()
			closeTable()
			fmt.Fprintf(&b, "<p>%s</p>\n", inlineHTML(trimmed))
		}
	}
	closeList()
	closeTable()
	return strings.TrimSpace(b.String())
}

func inlineHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<u>", "\x00u\x01")
	s = strings.ReplaceAll(s, "</u>", "\x00/u\x01")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\x00u\x01", "<u>")
	s = strings.ReplaceAll(s, "\x00/u\x01", "</u>")
	s = reImage.ReplaceAllString(s, `<img alt="$1" src="$2"/>`)
	s = reLink.ReplaceAllString(s, `<a href="$2">$1</a>`)
	s = reBoldItalic.ReplaceAllString(s, "<strong><em>$1</em></strong>")
	s = reBold.ReplaceAllString(s, "<strong>$1</strong>")
	s = reItalic.ReplaceAllString(s, "<em>$1</em>")
	s = reStrike.ReplaceAllString(s, "<del>$1</del>")
	return s
}

// markdownToDjot re-emits the markdown subset in djot syntax. Headings and
// lists are shared; emphasis markers differ.
func markdownToDjot(md string) string {
	// Strong markers are rewritten through placeholders so the italic pass
	// does not re-match the freshly emitted "*...*" runs.
	out := reBoldItalic.ReplaceAllString(md, "\x00_${1}_\x01")
	out = reBold.ReplaceAllString(out, "\x00$1\x01")
	out = reItalic.ReplaceAllString(out, "_${1}_")
	out = strings.ReplaceAll(out, "\x00", "*")
	out = strings.ReplaceAll(out, "\x01", "*")
	out = reStrike.ReplaceAllString(out, "{-$1-}")
	out = reUnderline.ReplaceAllString(out, "")
	return out
}
