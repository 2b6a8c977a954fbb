package pdf

const (
	columnHistogramBinWidth  float32 = 5.0
	minGutterWidthMultiplier float32 = 2.0
	minGutterHeightFraction  float32 = 0.6
)

// ColumnRegion is a detected column's horizontal extent.
type ColumnRegion struct {
	XMin float32
	XMax float32
}

// DetectColumns finds column boundaries by locating vertical gutters in the
// x-axis coverage histogram (5 pt bins). A gutter is a maximal run of empty
// bins at least 2× the average character width wide, flanked by content
// whose y-span covers at least 60% of the page height. Regions come back
// sorted left-to-right; a page with no qualifying gutter yields one
// full-width column.
func DetectColumns(segments []SegmentData, pageWidth, pageHeight float32) []ColumnRegion {
	full := []ColumnRegion{{XMin: 0, XMax: pageWidth}}
	if len(segments) == 0 || pageWidth <= 0 || pageHeight <= 0 {
		return full
	}

	var totalWidth float32
	totalChars := 0
	for _, s := range segments {
		totalWidth += s.Width
		totalChars += len(s.Text)
	}
	avgCharWidth := columnHistogramBinWidth
	if totalChars > 0 {
		avgCharWidth = totalWidth / float32(totalChars)
	}
	minGutterWidth := avgCharWidth * minGutterWidthMultiplier

	numBins := int(pageWidth/columnHistogramBinWidth) + 1
	binYMin := make([]float32, numBins)
	binYMax := make([]float32, numBins)
	binCount := make([]int, numBins)
	for i := range binYMin {
		binYMin[i] = float32(1e30)
		binYMax[i] = float32(-1e30)
	}

	for _, s := range segments {
		start := clampInt(int(s.X/columnHistogramBinWidth), 0, numBins-1)
		end := clampInt(int((s.X+s.Width)/columnHistogramBinWidth)+1, 0, numBins)
		for b := start; b < end; b++ {
			binYMin[b] = min32(binYMin[b], s.BaselineY)
			binYMax[b] = max32(binYMax[b], s.BaselineY)
			binCount[b]++
		}
	}

	// Gutters: maximal runs of empty bins wide enough, whose flanks span
	// enough of the page vertically.
	type gutter struct{ start, end float32 }
	var gutters []gutter
	gutterStart := -1
	for i, count := range binCount {
		if count == 0 {
			if gutterStart < 0 {
				gutterStart = i
			}
			continue
		}
		if gutterStart >= 0 {
			xStart := float32(gutterStart) * columnHistogramBinWidth
			xEnd := float32(i) * columnHistogramBinWidth
			if xEnd-xStart >= minGutterWidth {
				leftSpan := spanOf(binYMin[:gutterStart], binYMax[:gutterStart])
				rightSpan := spanOf(binYMin[i:], binYMax[i:])
				if max32(leftSpan, rightSpan) >= pageHeight*minGutterHeightFraction {
					gutters = append(gutters, gutter{start: xStart, end: xEnd})
				}
			}
			gutterStart = -1
		}
	}

	if len(gutters) == 0 {
		return full
	}

	var columns []ColumnRegion
	var prevX float32
	for _, g := range gutters {
		if g.start > prevX {
			columns = append(columns, ColumnRegion{XMin: prevX, XMax: g.start})
		}
		prevX = g.end
	}
	if prevX < pageWidth {
		columns = append(columns, ColumnRegion{XMin: prevX, XMax: pageWidth})
	}

	// Drop columns that contain no segments at all.
	kept := columns[:0]
	for _, col := range columns {
		for _, s := range segments {
			if s.X >= col.XMin && s.X < col.XMax {
				kept = append(kept, col)
				break
			}
		}
	}
	if len(kept) == 0 {
		return full
	}
	return kept
}

// SplitSegmentsByColumns assigns each segment to the column containing its
// center; segments whose center falls outside every column go to the column
// with the nearest center-x.
func SplitSegmentsByColumns(segments []SegmentData, columns []ColumnRegion) [][]SegmentData {
	out := make([][]SegmentData, len(columns))
	for _, seg := range segments {
		centerX := seg.X + seg.Width/2
		assigned := -1
		for i, col := range columns {
			if centerX >= col.XMin && centerX < col.XMax {
				assigned = i
				break
			}
		}
		if assigned < 0 {
			best, bestDist := 0, float32(1e30)
			for i, col := range columns {
				d := abs32(centerX - (col.XMin+col.XMax)/2)
				if d < bestDist {
					best, bestDist = i, d
				}
			}
			assigned = best
		}
		out[assigned] = append(out[assigned], seg)
	}
	return out
}

func spanOf(mins, maxs []float32) float32 {
	lo, hi := float32(1e30), float32(-1e30)
	for i := range mins {
		lo = min32(lo, mins[i])
		hi = max32(hi, maxs[i])
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
