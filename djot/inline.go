package djot

import (
	"strings"

	"github.com/tdewolff/parse/v2"
)

// inline toggle markers share one open/close state machine.
var toggleKinds = map[byte]ContainerKind{
	'*': ContainerStrong,
	'_': ContainerEmphasis,
	'~': ContainerSubscript,
	'^': ContainerSuperscript,
}

// lexInline scans one line of inline content, appending events. Toggle
// markers open on first sight and close on the matching repeat; any
// containers still open at end of line are closed to keep the stream
// balanced.
func lexInline(src string, events *[]Event) {
	input := parse.NewInputString(src)
	off := 0
	move := func(n int) {
		input.Move(n)
		off += n
	}
	var text strings.Builder
	var open []*Container

	flush := func() {
		if text.Len() > 0 {
			*events = append(*events, Event{Kind: EventStr, Text: text.String()})
			text.Reset()
		}
	}
	emit := func(kind EventKind) {
		flush()
		*events = append(*events, Event{Kind: kind})
	}
	topIs := func(kind ContainerKind) bool {
		return len(open) > 0 && open[len(open)-1].Kind == kind
	}
	push := func(c *Container) {
		flush()
		*events = append(*events, Event{Kind: EventStart, Container: c})
		open = append(open, c)
	}
	pop := func() {
		flush()
		c := open[len(open)-1]
		open = open[:len(open)-1]
		*events = append(*events, Event{Kind: EventEnd, Container: c})
	}

	prevByte := func() byte {
		if off == 0 {
			return 0
		}
		return src[off-1]
	}

	for {
		c := input.Peek(0)
		if c == 0 {
			break
		}

		switch {
		case c == '\\':
			// Escape; backslash-space is a non-breaking space.
			next := input.Peek(1)
			if next == ' ' {
				emit(EventNonBreakingSpace)
				move(2)
				continue
			}
			if next != 0 {
				text.WriteByte(next)
				move(2)
				continue
			}
			move(1)

		case toggleKinds[c] != 0:
			kind := toggleKinds[c]
			if topIs(kind) {
				pop()
			} else {
				push(&Container{Kind: kind})
			}
			move(1)

		case c == '{':
			rest := src[off:]
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				text.WriteByte(c)
				move(1)
				continue
			}
			body := rest[:end+1]
			inner := body[1 : len(body)-1]
			switch {
			case strings.HasPrefix(inner, "=") && strings.HasSuffix(inner, "="):
				flush()
				markC := &Container{Kind: ContainerMark}
				*events = append(*events, Event{Kind: EventStart, Container: markC})
				lexInline(strings.Trim(inner, "="), events)
				*events = append(*events, Event{Kind: EventEnd, Container: markC})
			case strings.HasPrefix(inner, "+") && strings.HasSuffix(inner, "+"):
				flush()
				insC := &Container{Kind: ContainerInsert}
				*events = append(*events, Event{Kind: EventStart, Container: insC})
				lexInline(strings.Trim(inner, "+"), events)
				*events = append(*events, Event{Kind: EventEnd, Container: insC})
			case strings.HasPrefix(inner, "-") && strings.HasSuffix(inner, "-"):
				flush()
				delC := &Container{Kind: ContainerDelete}
				*events = append(*events, Event{Kind: EventStart, Container: delC})
				lexInline(strings.Trim(inner, "-"), events)
				*events = append(*events, Event{Kind: EventEnd, Container: delC})
			default:
				if attrs := parseAttributes(body); attrs != nil {
					flush()
					*events = append(*events, Event{Kind: EventAttributes, Attrs: attrs})
				} else {
					text.WriteString(body)
				}
			}
			move(len(body))

		case c == '`':
			run := 0
			for input.Peek(run) == '`' {
				run++
			}
			rest := src[off+run:]
			closer := strings.Repeat("`", run)
			end := strings.Index(rest, closer)
			if end < 0 {
				text.WriteString(closer)
				move(run)
				continue
			}
			flush()
			verbC := &Container{Kind: ContainerVerbatim}
			*events = append(*events, Event{Kind: EventStart, Container: verbC})
			*events = append(*events, Event{Kind: EventStr, Text: rest[:end]})
			*events = append(*events, Event{Kind: EventEnd, Container: verbC})
			move(run + end + run)

		case c == '$':
			display := input.Peek(1) == '$'
			tickOffset := 1
			if display {
				tickOffset = 2
			}
			if input.Peek(tickOffset) != '`' {
				text.WriteByte(c)
				move(1)
				continue
			}
			rest := src[off+tickOffset+1:]
			end := strings.IndexByte(rest, '`')
			if end < 0 {
				text.WriteByte(c)
				move(1)
				continue
			}
			flush()
			mathC := &Container{Kind: ContainerMath, Display: display}
			*events = append(*events, Event{Kind: EventStart, Container: mathC})
			*events = append(*events, Event{Kind: EventStr, Text: rest[:end]})
			*events = append(*events, Event{Kind: EventEnd, Container: mathC})
			move(tickOffset + 1 + end + 1)

		case c == '!':
			if input.Peek(1) != '[' {
				text.WriteByte(c)
				move(1)
				continue
			}
			rest := src[off:]
			alt, target, consumed := parseBracketTarget(rest[1:])
			if consumed == 0 {
				text.WriteByte(c)
				move(1)
				continue
			}
			flush()
			imgC := &Container{Kind: ContainerImage, Src: target}
			*events = append(*events, Event{Kind: EventStart, Container: imgC})
			lexInline(alt, events)
			*events = append(*events, Event{Kind: EventEnd, Container: imgC})
			move(1 + consumed)

		case c == '[':
			rest := src[off:]
			if strings.HasPrefix(rest, "[^") {
				if end := strings.IndexByte(rest, ']'); end > 2 {
					flush()
					*events = append(*events, Event{Kind: EventFootnoteReference, Text: rest[2:end]})
					move(end + 1)
					continue
				}
			}
			label, target, consumed := parseBracketTarget(rest)
			if consumed == 0 {
				text.WriteByte(c)
				move(1)
				continue
			}
			flush()
			linkC := &Container{Kind: ContainerLink, Href: target}
			*events = append(*events, Event{Kind: EventStart, Container: linkC})
			lexInline(label, events)
			*events = append(*events, Event{Kind: EventEnd, Container: linkC})
			move(consumed)

		case c == ':':
			rest := src[off:]
			if end := strings.IndexByte(rest[1:], ':'); end > 0 {
				sym := rest[1 : 1+end]
				if isSymbolName(sym) {
					flush()
					*events = append(*events, Event{Kind: EventSymbol, Text: sym})
					move(end + 2)
					continue
				}
			}
			text.WriteByte(c)
			move(1)

		case c == '.':
			if input.Peek(1) == '.' && input.Peek(2) == '.' {
				emit(EventEllipsis)
				move(3)
				continue
			}
			text.WriteByte(c)
			move(1)

		case c == '-':
			if input.Peek(1) == '-' {
				if input.Peek(2) == '-' {
					emit(EventEmDash)
					move(3)
				} else {
					emit(EventEnDash)
					move(2)
				}
				continue
			}
			text.WriteByte(c)
			move(1)

		case c == '\'':
			if openingQuote(prevByte()) {
				emit(EventLeftSingleQuote)
			} else {
				emit(EventRightSingleQuote)
			}
			move(1)

		case c == '"':
			if openingQuote(prevByte()) {
				emit(EventLeftDoubleQuote)
			} else {
				emit(EventRightDoubleQuote)
			}
			move(1)

		default:
			text.WriteByte(c)
			move(1)
		}
	}

	flush()
	for len(open) > 0 {
		pop()
	}
}

// parseBracketTarget parses "[label](target)" returning the label, target
// and total bytes consumed (0 when the shape does not match).
func parseBracketTarget(s string) (label, target string, consumed int) {
	if !strings.HasPrefix(s, "[") {
		return "", "", 0
	}
	depth := 0
	end := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 || end+1 >= len(s) || s[end+1] != '(' {
		return "", "", 0
	}
	close := strings.IndexByte(s[end+1:], ')')
	if close < 0 {
		return "", "", 0
	}
	label = s[1:end]
	target = s[end+2 : end+1+close]
	return label, target, end + 1 + close + 1
}

func isSymbolName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-' || r == '+') {
			return false
		}
	}
	return true
}

func openingQuote(prev byte) bool {
	return prev == 0 || prev == ' ' || prev == '\t' || prev == '(' || prev == '[' || prev == '{'
}
