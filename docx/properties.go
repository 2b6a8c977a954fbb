package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"kreuzberg/document"
)

// ParseProperties reads docProps/core.xml, docProps/app.xml and
// docProps/custom.xml into typed metadata. Every part is optional.
func ParseProperties(archive *Archive, meta *document.Metadata) {
	if data, err := archive.ReadFile("docProps/core.xml"); err == nil {
		if core := parseCoreProperties(data); core != nil {
			meta.Core = core
			meta.Title = core.Title
			meta.Subject = core.Subject
			meta.Date = core.Created
			if core.Creator != "" {
				meta.Creator = core.Creator
				meta.Authors = []string{core.Creator}
			}
			meta.ModifiedBy = core.LastModifiedBy
			meta.Keywords = splitKeywords(core.Keywords)
		}
	}
	if data, err := archive.ReadFile("docProps/app.xml"); err == nil {
		meta.App = parseAppProperties(data)
	}
	if data, err := archive.ReadFile("docProps/custom.xml"); err == nil {
		if custom := parseCustomProperties(data); len(custom) > 0 {
			meta.Custom = custom
		}
	}
}

func parseCoreProperties(xml []byte) *document.CoreProperties {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	core := &document.CoreProperties{}
	for _, child := range root.ChildElements() {
		value := strings.TrimSpace(child.Text())
		switch child.Tag {
		case "title":
			core.Title = value
		case "subject":
			core.Subject = value
		case "creator":
			core.Creator = value
		case "keywords":
			core.Keywords = value
		case "description":
			core.Description = value
		case "lastModifiedBy":
			core.LastModifiedBy = value
		case "revision":
			core.Revision = value
		case "created":
			core.Created = value
		case "modified":
			core.Modified = value
		case "category":
			core.Category = value
		case "contentStatus":
			core.ContentStatus = value
		}
	}
	return core
}

func parseAppProperties(xml []byte) *document.AppProperties {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	app := &document.AppProperties{}
	for _, child := range root.ChildElements() {
		value := strings.TrimSpace(child.Text())
		switch child.Tag {
		case "Pages":
			app.Pages, _ = strconv.Atoi(value)
		case "Words":
			app.Words, _ = strconv.Atoi(value)
		case "Characters":
			app.Characters, _ = strconv.Atoi(value)
		case "Lines":
			app.Lines, _ = strconv.Atoi(value)
		case "Paragraphs":
			app.Paragraphs, _ = strconv.Atoi(value)
		case "Template":
			app.Template = value
		case "Company":
			app.Company = value
		case "TotalTime":
			app.TotalTime, _ = strconv.Atoi(value)
		case "Application":
			app.Application = value
		case "AppVersion":
			app.AppVersion = value
		}
	}
	return app
}

func parseCustomProperties(xml []byte) map[string]string {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	out := make(map[string]string)
	for _, prop := range root.ChildElements() {
		if prop.Tag != "property" {
			continue
		}
		name := attr(prop, "name")
		if name == "" {
			continue
		}
		for _, value := range prop.ChildElements() {
			out[name] = strings.TrimSpace(value.Text())
			break
		}
	}
	return out
}

// splitKeywords parses the comma-separated core keywords field.
func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
