package pdf

import "testing"

// columnSegments fills two columns of a 600x800 page with short segments.
func columnSegments() []SegmentData {
	var segments []SegmentData
	for y := float32(50); y < 750; y += 20 {
		segments = append(segments, seg("left column text", 40, y, 200, 12))
		segments = append(segments, seg("right column text", 360, y, 200, 12))
	}
	return segments
}

func TestDetectColumns(t *testing.T) {
	t.Run("empty page yields single full-width column", func(t *testing.T) {
		columns := DetectColumns(nil, 600, 800)
		if len(columns) != 1 || columns[0].XMin != 0 || columns[0].XMax != 600 {
			t.Errorf("columns = %+v", columns)
		}
	})

	t.Run("two columns split at the gutter", func(t *testing.T) {
		columns := DetectColumns(columnSegments(), 600, 800)
		if len(columns) != 2 {
			t.Fatalf("got %d columns, want 2: %+v", len(columns), columns)
		}
		if columns[0].XMin >= columns[1].XMin {
			t.Errorf("columns not sorted left to right: %+v", columns)
		}
	})

	t.Run("single column text yields one region", func(t *testing.T) {
		var segments []SegmentData
		for y := float32(50); y < 750; y += 20 {
			segments = append(segments, seg("full width paragraph text here", 40, y, 520, 12))
		}
		columns := DetectColumns(segments, 600, 800)
		if len(columns) != 1 {
			t.Errorf("got %d columns, want 1: %+v", len(columns), columns)
		}
	})

	t.Run("short flanks do not qualify as gutter", func(t *testing.T) {
		// Only two lines: y-span far below 60% of page height.
		segments := []SegmentData{
			seg("left", 40, 400, 200, 12),
			seg("right", 360, 400, 200, 12),
		}
		columns := DetectColumns(segments, 600, 800)
		if len(columns) != 1 {
			t.Errorf("got %d columns, want 1: %+v", len(columns), columns)
		}
	})
}

func TestSplitSegmentsByColumns(t *testing.T) {
	columns := []ColumnRegion{{XMin: 0, XMax: 300}, {XMin: 300, XMax: 600}}

	groups := SplitSegmentsByColumns([]SegmentData{
		seg("a", 10, 100, 50, 12),
		seg("b", 400, 100, 50, 12),
	}, columns)

	if len(groups[0]) != 1 || groups[0][0].Text != "a" {
		t.Errorf("left column = %+v", groups[0])
	}
	if len(groups[1]) != 1 || groups[1][0].Text != "b" {
		t.Errorf("right column = %+v", groups[1])
	}

	t.Run("outside segment goes to nearest column", func(t *testing.T) {
		groups := SplitSegmentsByColumns([]SegmentData{seg("far", 1000, 100, 20, 12)}, columns)
		if len(groups[1]) != 1 {
			t.Errorf("far segment not assigned to nearest column: %+v", groups)
		}
	})
}
