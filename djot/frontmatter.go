package djot

import (
	"strings"

	"gopkg.in/yaml.v3"

	"kreuzberg/document"
)

// frontmatterFields is the YAML shape accepted in a leading "---" block.
type frontmatterFields struct {
	Title    string   `yaml:"title"`
	Subject  string   `yaml:"subject"`
	Author   string   `yaml:"author"`
	Authors  []string `yaml:"authors"`
	Keywords []string `yaml:"keywords"`
	Language string   `yaml:"language"`
	Date     string   `yaml:"date"`
}

// ExtractFrontmatter strips a leading YAML frontmatter block and returns
// the remaining body plus typed metadata. Content without frontmatter
// passes through unchanged. A missing title falls back to the first
// "#"-style heading of the body.
func ExtractFrontmatter(content string) (string, document.Metadata) {
	var meta document.Metadata
	body := content

	if strings.HasPrefix(content, "---\n") || content == "---" {
		rest := strings.TrimPrefix(content, "---\n")
		if end := strings.Index(rest, "\n---"); end >= 0 {
			raw := rest[:end]
			body = strings.TrimPrefix(rest[end+len("\n---"):], "\n")

			var fields frontmatterFields
			if err := yaml.Unmarshal([]byte(raw), &fields); err == nil {
				meta.Title = fields.Title
				meta.Subject = fields.Subject
				meta.Language = fields.Language
				meta.Date = fields.Date
				meta.Keywords = fields.Keywords
				if fields.Author != "" {
					meta.Authors = append(meta.Authors, fields.Author)
				}
				meta.Authors = append(meta.Authors, fields.Authors...)
			}
		}
	}

	if meta.Title == "" {
		meta.Title = titleFromContent(body)
	}
	return body, meta
}

// titleFromContent returns the text of the first markdown-style heading.
func titleFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if level := headingLevel(trimmed); level > 0 {
			return strings.TrimSpace(trimmed[level:])
		}
	}
	return ""
}
