package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"kreuzberg/document"
)

const maxStyleChainDepth = 20

// RunProperties are run-level formatting fields. Every field is a pointer so
// inheritance resolution can distinguish "not set" from "explicitly set".
type RunProperties struct {
	Bold               *bool
	Italic             *bool
	Underline          *bool
	Strikethrough      *bool
	Color              *string
	FontSizeHalfPoints *int
	FontASCII          *string
	VertAlign          *string
	Highlight          *string
	Caps               *bool
	SmallCaps          *bool
	ThemeColor         *string
	ThemeTint          *string
	ThemeShade         *string
}

// ParagraphProperties are paragraph-level formatting fields.
type ParagraphProperties struct {
	Alignment       *string
	SpacingBefore   *int
	SpacingAfter    *int
	IndentLeft      *int
	IndentRight     *int
	IndentFirstLine *int
	IndentHanging   *int
	OutlineLevel    *int
	KeepNext        *bool
	PageBreakBefore *bool
	ShadingFill     *string
}

// StyleDefinition is one <w:style> entry of word/styles.xml.
type StyleDefinition struct {
	ID        string
	Name      string
	Type      string
	BasedOn   string
	IsDefault bool
	Paragraph ParagraphProperties
	Run       RunProperties
}

// ResolvedStyle is a flattened style after walking the basedOn chain.
type ResolvedStyle struct {
	Paragraph ParagraphProperties
	Run       RunProperties
}

// StyleCatalog holds every style plus document defaults.
type StyleCatalog struct {
	Styles           map[string]*StyleDefinition
	DefaultParagraph ParagraphProperties
	DefaultRun       RunProperties
}

// ParseStyles parses word/styles.xml. The part is optional; callers treat
// absence as non-fatal.
func ParseStyles(xml []byte) (*StyleCatalog, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return nil, document.NewParsing("failed to parse styles.xml", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, document.NewParsing("styles.xml has no root element", nil)
	}

	catalog := &StyleCatalog{Styles: make(map[string]*StyleDefinition)}

	for _, child := range root.ChildElements() {
		switch localName(child.Tag) {
		case "docDefaults":
			if rPrDefault := findChild(child, "rPrDefault"); rPrDefault != nil {
				if rPr := findChild(rPrDefault, "rPr"); rPr != nil {
					catalog.DefaultRun = parseRunProperties(rPr)
				}
			}
			if pPrDefault := findChild(child, "pPrDefault"); pPrDefault != nil {
				if pPr := findChild(pPrDefault, "pPr"); pPr != nil {
					catalog.DefaultParagraph = parseParagraphProperties(pPr)
				}
			}
		case "style":
			style := parseStyleElement(child)
			if style != nil && style.ID != "" {
				catalog.Styles[style.ID] = style
			}
		}
	}
	return catalog, nil
}

func parseStyleElement(el *etree.Element) *StyleDefinition {
	style := &StyleDefinition{
		ID:        attr(el, "styleId"),
		Type:      attr(el, "type"),
		IsDefault: attr(el, "default") == "1" || attr(el, "default") == "true",
	}
	for _, child := range el.ChildElements() {
		switch localName(child.Tag) {
		case "name":
			style.Name = attr(child, "val")
		case "basedOn":
			style.BasedOn = attr(child, "val")
		case "pPr":
			style.Paragraph = parseParagraphProperties(child)
		case "rPr":
			style.Run = parseRunProperties(child)
		}
	}
	return style
}

func parseRunProperties(el *etree.Element) RunProperties {
	var props RunProperties
	for _, child := range el.ChildElements() {
		switch localName(child.Tag) {
		case "b":
			props.Bold = boolPtr(toggleValue(child))
		case "i":
			props.Italic = boolPtr(toggleValue(child))
		case "u":
			enabled := attr(child, "val") != "none" && toggleValue(child)
			props.Underline = boolPtr(enabled)
		case "strike", "dstrike":
			props.Strikethrough = boolPtr(toggleValue(child))
		case "color":
			props.Color = strPtr(attr(child, "val"))
			if tc := attr(child, "themeColor"); tc != "" {
				props.ThemeColor = strPtr(tc)
			}
			if tt := attr(child, "themeTint"); tt != "" {
				props.ThemeTint = strPtr(tt)
			}
			if ts := attr(child, "themeShade"); ts != "" {
				props.ThemeShade = strPtr(ts)
			}
		case "sz":
			if v, err := strconv.Atoi(attr(child, "val")); err == nil {
				props.FontSizeHalfPoints = &v
			}
		case "rFonts":
			if f := attr(child, "ascii"); f != "" {
				props.FontASCII = strPtr(f)
			}
		case "vertAlign":
			props.VertAlign = strPtr(attr(child, "val"))
		case "highlight":
			props.Highlight = strPtr(attr(child, "val"))
		case "caps":
			props.Caps = boolPtr(toggleValue(child))
		case "smallCaps":
			props.SmallCaps = boolPtr(toggleValue(child))
		}
	}
	return props
}

func parseParagraphProperties(el *etree.Element) ParagraphProperties {
	var props ParagraphProperties
	for _, child := range el.ChildElements() {
		switch localName(child.Tag) {
		case "jc":
			props.Alignment = strPtr(attr(child, "val"))
		case "spacing":
			if v, err := strconv.Atoi(attr(child, "before")); err == nil {
				props.SpacingBefore = &v
			}
			if v, err := strconv.Atoi(attr(child, "after")); err == nil {
				props.SpacingAfter = &v
			}
		case "ind":
			if v, err := strconv.Atoi(attr(child, "left")); err == nil {
				props.IndentLeft = &v
			}
			if v, err := strconv.Atoi(attr(child, "right")); err == nil {
				props.IndentRight = &v
			}
			if v, err := strconv.Atoi(attr(child, "firstLine")); err == nil {
				props.IndentFirstLine = &v
			}
			if v, err := strconv.Atoi(attr(child, "hanging")); err == nil {
				props.IndentHanging = &v
			}
		case "outlineLvl":
			if v, err := strconv.Atoi(attr(child, "val")); err == nil {
				props.OutlineLevel = &v
			}
		case "keepNext":
			props.KeepNext = boolPtr(toggleValue(child))
		case "pageBreakBefore":
			props.PageBreakBefore = boolPtr(toggleValue(child))
		case "shd":
			props.ShadingFill = strPtr(attr(child, "fill"))
		}
	}
	return props
}

// Resolve walks the basedOn chain root-first, starting from document
// defaults, applying each ancestor's properties and finally the style's own.
// The chain is cycle-safe and bounded to 20 levels, so resolution halts and
// yields the same result whether or not the chain is cyclic.
func (c *StyleCatalog) Resolve(styleID string) ResolvedStyle {
	resolved := ResolvedStyle{
		Paragraph: c.DefaultParagraph,
		Run:       c.DefaultRun,
	}
	for _, style := range c.chain(styleID) {
		mergeParagraphProperties(&resolved.Paragraph, &style.Paragraph)
		mergeRunProperties(&resolved.Run, &style.Run)
	}
	return resolved
}

// chain collects definitions from the root ancestor down to styleID.
func (c *StyleCatalog) chain(styleID string) []*StyleDefinition {
	var chain []*StyleDefinition
	visited := make(map[string]bool)
	current := styleID

	for current != "" && len(visited) < maxStyleChainDepth {
		if visited[current] {
			break
		}
		style, ok := c.Styles[current]
		if !ok {
			break
		}
		visited[current] = true
		chain = append(chain, style)
		current = style.BasedOn
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// HeadingLevel resolves the markdown heading level for a paragraph style.
// The first outline_level defined anywhere on the basedOn chain is primary
// (level 0 is H1, clamped to H6); a style named "Title" on the chain is the
// secondary fallback; unresolved styles string-match the style id
// (Heading{n} → H{n+1}).
func (c *StyleCatalog) HeadingLevel(styleID string) int {
	chain := c.chain(styleID)

	// Walk leaf-first so the style's own outline level wins over ancestors.
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Paragraph.OutlineLevel != nil {
			level := *chain[i].Paragraph.OutlineLevel + 1
			if level > 6 {
				level = 6
			}
			if level < 1 {
				level = 1
			}
			return level
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if strings.EqualFold(chain[i].Name, "Title") {
			return 1
		}
	}
	return headingLevelFromStyleName(styleID)
}

// headingLevelFromStyleName is the fallback for documents without a usable
// style catalog. Title is H1, so Heading1 becomes H2 and so on, clamped to 6.
func headingLevelFromStyleName(style string) int {
	if style == "Title" {
		return 1
	}
	rest := ""
	switch {
	case strings.HasPrefix(style, "Heading"):
		rest = strings.TrimPrefix(style, "Heading")
	case strings.HasPrefix(style, "heading"):
		rest = strings.TrimPrefix(style, "heading")
	default:
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	if n+1 > 6 {
		return 6
	}
	return n + 1
}

func mergeRunProperties(base, overlay *RunProperties) {
	if overlay.Bold != nil {
		base.Bold = overlay.Bold
	}
	if overlay.Italic != nil {
		base.Italic = overlay.Italic
	}
	if overlay.Underline != nil {
		base.Underline = overlay.Underline
	}
	if overlay.Strikethrough != nil {
		base.Strikethrough = overlay.Strikethrough
	}
	if overlay.Color != nil {
		base.Color = overlay.Color
	}
	if overlay.FontSizeHalfPoints != nil {
		base.FontSizeHalfPoints = overlay.FontSizeHalfPoints
	}
	if overlay.FontASCII != nil {
		base.FontASCII = overlay.FontASCII
	}
	if overlay.VertAlign != nil {
		base.VertAlign = overlay.VertAlign
	}
	if overlay.Highlight != nil {
		base.Highlight = overlay.Highlight
	}
	if overlay.Caps != nil {
		base.Caps = overlay.Caps
	}
	if overlay.SmallCaps != nil {
		base.SmallCaps = overlay.SmallCaps
	}
	// Theme color, tint and shade form an atomic group: a theme_color in the
	// overlay clears inherited tint/shade even when the overlay leaves them
	// unset.
	if overlay.ThemeColor != nil {
		base.ThemeColor = overlay.ThemeColor
		base.ThemeTint = overlay.ThemeTint
		base.ThemeShade = overlay.ThemeShade
	} else {
		if overlay.ThemeTint != nil {
			base.ThemeTint = overlay.ThemeTint
		}
		if overlay.ThemeShade != nil {
			base.ThemeShade = overlay.ThemeShade
		}
	}
}

func mergeParagraphProperties(base, overlay *ParagraphProperties) {
	if overlay.Alignment != nil {
		base.Alignment = overlay.Alignment
	}
	if overlay.SpacingBefore != nil {
		base.SpacingBefore = overlay.SpacingBefore
	}
	if overlay.SpacingAfter != nil {
		base.SpacingAfter = overlay.SpacingAfter
	}
	if overlay.IndentLeft != nil {
		base.IndentLeft = overlay.IndentLeft
	}
	if overlay.IndentRight != nil {
		base.IndentRight = overlay.IndentRight
	}
	if overlay.IndentFirstLine != nil {
		base.IndentFirstLine = overlay.IndentFirstLine
	}
	if overlay.IndentHanging != nil {
		base.IndentHanging = overlay.IndentHanging
	}
	if overlay.OutlineLevel != nil {
		base.OutlineLevel = overlay.OutlineLevel
	}
	if overlay.KeepNext != nil {
		base.KeepNext = overlay.KeepNext
	}
	if overlay.PageBreakBefore != nil {
		base.PageBreakBefore = overlay.PageBreakBefore
	}
	if overlay.ShadingFill != nil {
		base.ShadingFill = overlay.ShadingFill
	}
}

// toggleValue implements the OOXML toggle rule: absent val means true,
// "0"/"false" mean false, anything else is true.
func toggleValue(el *etree.Element) bool {
	val := attr(el, "val")
	if val == "" {
		return true
	}
	return val != "0" && val != "false"
}

// attr returns the value of a namespaced or plain attribute by local name.
func attr(el *etree.Element, key string) string {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// localName strips the namespace prefix from an element tag.
func localName(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// findChild returns the first child element with the given local name.
func findChild(el *etree.Element, name string) *etree.Element {
	for _, child := range el.ChildElements() {
		if localName(child.Tag) == name {
			return child
		}
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }
