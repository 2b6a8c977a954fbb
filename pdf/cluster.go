package pdf

import (
	"sort"
)

const (
	centroidShiftEpsilon = 0.1
	maxKMeansIterations  = 50
	maxHeadingLevels     = 6
)

// TextBlock is a spatially merged run of characters with an averaged font
// size. Only the font size participates in clustering.
type TextBlock struct {
	Text     string
	BBox     BoundingBox
	FontSize float32
}

// FontSizeCluster groups text blocks around a font-size centroid.
type FontSizeCluster struct {
	Centroid float32
	Members  []TextBlock
}

// ClusterFontSizes runs 1-D k-means over block font sizes and returns the
// clusters sorted by centroid descending. Initial centroids sit at evenly
// spaced quantiles of the sorted input; convergence is declared when no
// centroid moves by more than 0.1 pt or after 50 iterations. Ties in
// assignment go to the lower cluster index.
func ClusterFontSizes(blocks []TextBlock, k int) []FontSizeCluster {
	if len(blocks) == 0 || k <= 0 {
		return nil
	}
	if k > len(blocks) {
		k = len(blocks)
	}

	sizes := make([]float32, len(blocks))
	for i, b := range blocks {
		sizes[i] = b.FontSize
	}
	sorted := append([]float32{}, sizes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	centroids := make([]float32, k)
	for i := 0; i < k; i++ {
		// Evenly spaced quantiles keep initialisation deterministic.
		pos := float64(i) * float64(len(sorted)-1) / float64(maxInt(k-1, 1))
		centroids[i] = sorted[int(pos)]
	}

	assign := make([]int, len(sizes))
	for iter := 0; iter < maxKMeansIterations; iter++ {
		for i, s := range sizes {
			best, bestDist := 0, abs32(s-centroids[0])
			for c := 1; c < k; c++ {
				d := abs32(s - centroids[c])
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			assign[i] = best
		}

		moved := float32(0)
		for c := 0; c < k; c++ {
			var sum float32
			var n int
			for i, a := range assign {
				if a == c {
					sum += sizes[i]
					n++
				}
			}
			if n == 0 {
				continue
			}
			next := sum / float32(n)
			if d := abs32(next - centroids[c]); d > moved {
				moved = d
			}
			centroids[c] = next
		}
		if moved < centroidShiftEpsilon {
			break
		}
	}

	clusters := make([]FontSizeCluster, k)
	for c := 0; c < k; c++ {
		clusters[c].Centroid = centroids[c]
	}
	for i, a := range assign {
		clusters[a].Members = append(clusters[a].Members, blocks[i])
	}

	out := clusters[:0]
	for _, c := range clusters {
		if len(c.Members) > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Centroid > out[j].Centroid })
	return out
}

// HeadingAssignment maps a cluster centroid to an optional heading level;
// zero level means body text.
type HeadingAssignment struct {
	Centroid float32
	Level    int
}

// AssignHeadingLevelsSmart decides heading levels from clusters. The body
// cluster is the most populous one (ties break to the smallest centroid).
// Every cluster at or below the body centroid is body; clusters above it map
// to H1 (largest) through H6, any further large clusters fall back to body.
// Headings are defined by being larger than the most frequent font; captions
// smaller than body are never headings.
func AssignHeadingLevelsSmart(clusters []FontSizeCluster) []HeadingAssignment {
	if len(clusters) == 0 {
		return nil
	}

	bodyIdx := 0
	for i := 1; i < len(clusters); i++ {
		if len(clusters[i].Members) > len(clusters[bodyIdx].Members) ||
			(len(clusters[i].Members) == len(clusters[bodyIdx].Members) && clusters[i].Centroid < clusters[bodyIdx].Centroid) {
			bodyIdx = i
		}
	}
	bodyCentroid := clusters[bodyIdx].Centroid

	// Clusters arrive sorted by centroid descending; walk the ones larger
	// than body assigning H1..H6 in order.
	out := make([]HeadingAssignment, len(clusters))
	level := 0
	for i, c := range clusters {
		out[i].Centroid = c.Centroid
		if c.Centroid <= bodyCentroid {
			continue
		}
		level++
		if level <= maxHeadingLevels {
			out[i].Level = level
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
