package djot

import (
	"strings"

	"kreuzberg/document"
)

// Lex tokenizes Djot source into the event stream. Headings open sections;
// every Start has a matching End.
func Lex(src string) []Event {
	var events []Event
	lexBlocks(normalizeNewlines(src), &events, true)
	return events
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// lexBlocks parses a block sequence. When sections is true each heading
// opens a Section container that closes at the next heading of the same or
// shallower level.
func lexBlocks(src string, events *[]Event, sections bool) {
	lines := strings.Split(src, "\n")
	i := 0

	type openSection struct{ level int }
	var sectionStack []openSection

	closeSections := func(level int) {
		for len(sectionStack) > 0 && sectionStack[len(sectionStack)-1].level >= level {
			*events = append(*events, Event{Kind: EventEnd, Container: &Container{Kind: ContainerSection}})
			sectionStack = sectionStack[:len(sectionStack)-1]
		}
	}

	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			*events = append(*events, Event{Kind: EventBlankline})
			i++

		case isThematicBreak(trimmed):
			*events = append(*events, Event{Kind: EventThematicBreak})
			i++

		case strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") && isAttributeLine(trimmed):
			attrs := parseAttributes(trimmed)
			*events = append(*events, Event{Kind: EventAttributes, Attrs: attrs})
			i++

		case headingLevel(trimmed) > 0:
			level := headingLevel(trimmed)
			if sections {
				closeSections(level)
				*events = append(*events, Event{Kind: EventStart, Container: &Container{Kind: ContainerSection}})
				sectionStack = append(sectionStack, openSection{level: level})
			}
			container := &Container{Kind: ContainerHeading, Level: level}
			*events = append(*events, Event{Kind: EventStart, Container: container})
			lexInline(strings.TrimSpace(trimmed[level:]), events)
			*events = append(*events, Event{Kind: EventEnd, Container: container})
			i++

		case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
			fence := trimmed[:3]
			info := strings.TrimSpace(trimmed[3:])
			var body []string
			i++
			for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), fence) {
				body = append(body, lines[i])
				i++
			}
			if i < len(lines) {
				i++ // closing fence
			}
			content := strings.Join(body, "\n")
			if strings.HasPrefix(info, "=") {
				container := &Container{Kind: ContainerRawBlock, Format: strings.TrimPrefix(info, "=")}
				*events = append(*events, Event{Kind: EventStart, Container: container})
				*events = append(*events, Event{Kind: EventStr, Text: content})
				*events = append(*events, Event{Kind: EventEnd, Container: container})
			} else {
				container := &Container{Kind: ContainerCodeBlock, Language: info}
				*events = append(*events, Event{Kind: EventStart, Container: container})
				*events = append(*events, Event{Kind: EventStr, Text: content})
				*events = append(*events, Event{Kind: EventEnd, Container: container})
			}

		case strings.HasPrefix(trimmed, ":::"):
			class := strings.TrimSpace(strings.TrimLeft(trimmed, ":"))
			var body []string
			i++
			for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), ":::") {
				body = append(body, lines[i])
				i++
			}
			if i < len(lines) {
				i++ // closing fence
			}
			container := &Container{Kind: ContainerDiv}
			var attrs *document.Attributes
			if class != "" {
				attrs = &document.Attributes{Classes: []string{class}}
			}
			*events = append(*events, Event{Kind: EventStart, Container: container, Attrs: attrs})
			lexBlocks(strings.Join(body, "\n"), events, false)
			*events = append(*events, Event{Kind: EventEnd, Container: container})

		case strings.HasPrefix(trimmed, ">"):
			var body []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(t, ">") {
					break
				}
				body = append(body, strings.TrimPrefix(strings.TrimPrefix(t, ">"), " "))
				i++
			}
			container := &Container{Kind: ContainerBlockquote}
			*events = append(*events, Event{Kind: EventStart, Container: container})
			lexBlocks(strings.Join(body, "\n"), events, false)
			*events = append(*events, Event{Kind: EventEnd, Container: container})

		case strings.HasPrefix(trimmed, "[^") && strings.Contains(trimmed, "]:"):
			end := strings.Index(trimmed, "]:")
			label := trimmed[2:end]
			first := strings.TrimSpace(trimmed[end+2:])
			var body []string
			if first != "" {
				body = append(body, first)
			}
			i++
			for i < len(lines) && (strings.HasPrefix(lines[i], "  ") || strings.HasPrefix(lines[i], "\t")) {
				body = append(body, strings.TrimSpace(lines[i]))
				i++
			}
			container := &Container{Kind: ContainerFootnote, Label: label}
			*events = append(*events, Event{Kind: EventStart, Container: container})
			lexBlocks(strings.Join(body, "\n"), events, false)
			*events = append(*events, Event{Kind: EventEnd, Container: container})

		case strings.HasPrefix(trimmed, "|"):
			i = lexTable(lines, i, events)

		case listMarker(trimmed) != "":
			i = lexList(lines, i, events)

		case i+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i+1]), ": "):
			// Term line followed by description details.
			container := &Container{Kind: ContainerDescriptionList}
			*events = append(*events, Event{Kind: EventStart, Container: container})
			for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
				term := strings.TrimSpace(lines[i])
				if strings.HasPrefix(term, ": ") {
					details := &Container{Kind: ContainerDescriptionDetails}
					*events = append(*events, Event{Kind: EventStart, Container: details})
					lexInline(strings.TrimPrefix(term, ": "), events)
					*events = append(*events, Event{Kind: EventEnd, Container: details})
				} else {
					termC := &Container{Kind: ContainerDescriptionTerm}
					*events = append(*events, Event{Kind: EventStart, Container: termC})
					lexInline(term, events)
					*events = append(*events, Event{Kind: EventEnd, Container: termC})
				}
				i++
			}
			*events = append(*events, Event{Kind: EventEnd, Container: container})

		default:
			// Paragraph: accumulate until a blank line or block opener.
			var body []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || headingLevel(t) > 0 || strings.HasPrefix(t, "```") ||
					strings.HasPrefix(t, ":::") || strings.HasPrefix(t, ">") ||
					strings.HasPrefix(t, "|") || listMarker(t) != "" {
					break
				}
				body = append(body, t)
				i++
			}
			container := &Container{Kind: ContainerParagraph}
			*events = append(*events, Event{Kind: EventStart, Container: container})
			for j, line := range body {
				if j > 0 {
					if strings.HasSuffix(body[j-1], "\\") {
						*events = append(*events, Event{Kind: EventHardbreak})
					} else {
						*events = append(*events, Event{Kind: EventSoftbreak})
					}
				}
				lexInline(strings.TrimSuffix(line, "\\"), events)
			}
			*events = append(*events, Event{Kind: EventEnd, Container: container})
		}
	}

	closeSections(0)
}

func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return 0
	}
	return level
}

func isThematicBreak(line string) bool {
	if len(line) < 3 {
		return false
	}
	stars, dashes := 0, 0
	for _, r := range line {
		switch r {
		case '*':
			stars++
		case '-':
			dashes++
		case ' ':
		default:
			return false
		}
	}
	return stars >= 3 || dashes >= 3
}

// listMarker returns the marker prefix of a list item line, or "".
func listMarker(line string) string {
	for _, m := range []string{"- [ ] ", "- [x] ", "- [X] ", "- ", "* ", "+ "} {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	// Ordered: digits followed by '.' or ')' and a space.
	d := 0
	for d < len(line) && line[d] >= '0' && line[d] <= '9' {
		d++
	}
	if d > 0 && d+1 < len(line) && (line[d] == '.' || line[d] == ')') && line[d+1] == ' ' {
		return line[:d+2]
	}
	return ""
}

// lexList consumes a run of list item lines, handling nesting by
// indentation (any deeper indent opens a nested list) and task markers.
func lexList(lines []string, start int, events *[]Event) int {
	type openList struct {
		indent  int
		ordered bool
		task    bool
	}
	var stack []openList

	closeTo := func(indent int) {
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent && (len(stack) > 1 || stack[len(stack)-1].indent > indent) {
			top := stack[len(stack)-1]
			*events = append(*events, Event{Kind: EventEnd, Container: &Container{Kind: ContainerList, Ordered: top.ordered, Task: top.task}})
			stack = stack[:len(stack)-1]
		}
	}

	i := start
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)
		marker := listMarker(trimmed)
		if marker == "" {
			break
		}

		ordered := trimmed[0] >= '0' && trimmed[0] <= '9'
		task := strings.HasPrefix(marker, "- [")

		if len(stack) == 0 || indent > stack[len(stack)-1].indent {
			stack = append(stack, openList{indent: indent, ordered: ordered, task: task})
			*events = append(*events, Event{Kind: EventStart, Container: &Container{Kind: ContainerList, Ordered: ordered, Task: task}})
		} else {
			closeTo(indent)
			if len(stack) == 0 {
				stack = append(stack, openList{indent: indent, ordered: ordered, task: task})
				*events = append(*events, Event{Kind: EventStart, Container: &Container{Kind: ContainerList, Ordered: ordered, Task: task}})
			}
		}

		var item *Container
		if task {
			checked := strings.HasPrefix(marker, "- [x") || strings.HasPrefix(marker, "- [X")
			item = &Container{Kind: ContainerTaskListItem, Checked: checked}
		} else {
			item = &Container{Kind: ContainerListItem}
		}
		*events = append(*events, Event{Kind: EventStart, Container: item})
		lexInline(strings.TrimSpace(trimmed[len(marker):]), events)
		*events = append(*events, Event{Kind: EventEnd, Container: item})
		i++
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		*events = append(*events, Event{Kind: EventEnd, Container: &Container{Kind: ContainerList, Ordered: top.ordered, Task: top.task}})
		stack = stack[:len(stack)-1]
	}
	return i
}

// lexTable consumes consecutive pipe rows. A separator row of dashes marks
// the preceding row as a header row.
func lexTable(lines []string, start int, events *[]Event) int {
	type row struct {
		cells  []string
		header bool
	}
	var rows []row

	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "|") {
			break
		}
		if isSeparatorRow(trimmed) {
			if len(rows) > 0 {
				rows[len(rows)-1].header = true
			}
			i++
			continue
		}
		body := strings.Trim(trimmed, "|")
		var cells []string
		for _, c := range strings.Split(body, "|") {
			cells = append(cells, strings.TrimSpace(c))
		}
		rows = append(rows, row{cells: cells})
		i++
	}

	table := &Container{Kind: ContainerTable}
	*events = append(*events, Event{Kind: EventStart, Container: table})
	for _, r := range rows {
		rowC := &Container{Kind: ContainerTableRow, Header: r.header}
		*events = append(*events, Event{Kind: EventStart, Container: rowC})
		for _, cell := range r.cells {
			cellC := &Container{Kind: ContainerTableCell}
			*events = append(*events, Event{Kind: EventStart, Container: cellC})
			lexInline(cell, events)
			*events = append(*events, Event{Kind: EventEnd, Container: cellC})
		}
		*events = append(*events, Event{Kind: EventEnd, Container: rowC})
	}
	*events = append(*events, Event{Kind: EventEnd, Container: table})
	return i
}

func isSeparatorRow(line string) bool {
	body := strings.Trim(line, "|")
	if body == "" {
		return false
	}
	for _, r := range body {
		switch r {
		case '-', ':', ' ', '|':
		default:
			return false
		}
	}
	return strings.Contains(body, "-")
}

// isAttributeLine reports whether a braced line is an attribute set rather
// than inline insert/delete/mark syntax.
func isAttributeLine(line string) bool {
	inner := strings.TrimSuffix(strings.TrimPrefix(line, "{"), "}")
	if inner == "" {
		return false
	}
	switch inner[0] {
	case '+', '-', '=':
		return false
	}
	return true
}

// parseAttributes parses `{#id .class key=value}`.
func parseAttributes(raw string) *document.Attributes {
	inner := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "{"), "}")
	attrs := &document.Attributes{}
	for _, field := range strings.Fields(inner) {
		switch {
		case strings.HasPrefix(field, "#"):
			attrs.ID = strings.TrimPrefix(field, "#")
		case strings.HasPrefix(field, "."):
			attrs.Classes = append(attrs.Classes, strings.TrimPrefix(field, "."))
		case strings.Contains(field, "="):
			parts := strings.SplitN(field, "=", 2)
			if attrs.KeyValues == nil {
				attrs.KeyValues = make(map[string]string)
			}
			attrs.KeyValues[parts[0]] = strings.Trim(parts[1], `"`)
		}
	}
	if attrs.ID == "" && len(attrs.Classes) == 0 && len(attrs.KeyValues) == 0 {
		return nil
	}
	return attrs
}
