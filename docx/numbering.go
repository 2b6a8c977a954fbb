package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// parseNumbering builds the (numId, level) → ListType table from
// word/numbering.xml by joining two maps: abstract numbering formats per
// level and concrete num → abstractNum references.
func parseNumbering(xml []byte) map[NumberingKey]ListType {
	out := make(map[NumberingKey]ListType)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return out
	}
	root := doc.Root()
	if root == nil {
		return out
	}

	abstractFormats := make(map[int64]map[int64]ListType)
	numToAbstract := make(map[int64]int64)

	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "abstractNum":
			abstractID, err := strconv.ParseInt(attr(child, "abstractNumId"), 10, 64)
			if err != nil {
				continue
			}
			levels := make(map[int64]ListType)
			for _, lvl := range child.ChildElements() {
				if lvl.Tag != "lvl" {
					continue
				}
				levelNum, err := strconv.ParseInt(attr(lvl, "ilvl"), 10, 64)
				if err != nil {
					continue
				}
				if numFmt := findChild(lvl, "numFmt"); numFmt != nil {
					levels[levelNum] = listTypeForFormat(attr(numFmt, "val"))
				}
			}
			abstractFormats[abstractID] = levels
		case "num":
			numID, err := strconv.ParseInt(attr(child, "numId"), 10, 64)
			if err != nil {
				continue
			}
			if ref := findChild(child, "abstractNumId"); ref != nil {
				if abstractID, err := strconv.ParseInt(attr(ref, "val"), 10, 64); err == nil {
					numToAbstract[numID] = abstractID
				}
			}
		}
	}

	for numID, abstractID := range numToAbstract {
		for level, listType := range abstractFormats[abstractID] {
			out[NumberingKey{NumID: numID, Level: level}] = listType
		}
	}
	return out
}

// listTypeForFormat maps decimal and letter/roman formats to numbered
// lists; everything else is a bullet.
func listTypeForFormat(format string) ListType {
	switch format {
	case "decimal", "decimalZero", "lowerLetter", "upperLetter", "lowerRoman", "upperRoman":
		return ListNumbered
	default:
		return ListBullet
	}
}

// parseRelationships reads an OPC relationships part into an rId → target
// map, keeping hyperlink and image relationships.
func parseRelationships(xml []byte) map[string]string {
	out := make(map[string]string)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xml); err != nil {
		return out
	}
	root := doc.Root()
	if root == nil {
		return out
	}

	for _, rel := range root.ChildElements() {
		if rel.Tag != "Relationship" {
			continue
		}
		id := attr(rel, "Id")
		target := attr(rel, "Target")
		relType := attr(rel, "Type")
		if id == "" || target == "" {
			continue
		}
		if strings.Contains(relType, "hyperlink") || strings.Contains(relType, "image") {
			out[id] = target
		}
	}
	return out
}
