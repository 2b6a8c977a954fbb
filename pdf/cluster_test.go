package pdf

import (
	"testing"
)

func blocksWithSizes(sizes ...float32) []TextBlock {
	out := make([]TextBlock, len(sizes))
	for i, s := range sizes {
		out[i] = TextBlock{FontSize: s}
	}
	return out
}

func TestClusterFontSizes(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if got := ClusterFontSizes(nil, 3); got != nil {
			t.Errorf("ClusterFontSizes(nil) = %v, want nil", got)
		}
	})

	t.Run("two distinct sizes", func(t *testing.T) {
		var sizes []float32
		for i := 0; i < 20; i++ {
			sizes = append(sizes, 12)
		}
		sizes = append(sizes, 24, 24)

		clusters := ClusterFontSizes(blocksWithSizes(sizes...), 2)
		if len(clusters) != 2 {
			t.Fatalf("got %d clusters, want 2", len(clusters))
		}
		// Sorted by centroid descending.
		if clusters[0].Centroid != 24 {
			t.Errorf("clusters[0].Centroid = %v, want 24", clusters[0].Centroid)
		}
		if clusters[1].Centroid != 12 {
			t.Errorf("clusters[1].Centroid = %v, want 12", clusters[1].Centroid)
		}
		if len(clusters[0].Members) != 2 {
			t.Errorf("large cluster has %d members, want 2", len(clusters[0].Members))
		}
		if len(clusters[1].Members) != 20 {
			t.Errorf("body cluster has %d members, want 20", len(clusters[1].Members))
		}
	})

	t.Run("k larger than input", func(t *testing.T) {
		clusters := ClusterFontSizes(blocksWithSizes(10, 20), 5)
		if len(clusters) != 2 {
			t.Errorf("got %d clusters, want 2", len(clusters))
		}
	})
}

func TestAssignHeadingLevelsSmart(t *testing.T) {
	t.Run("largest maps to h1, body is most frequent", func(t *testing.T) {
		var sizes []float32
		for i := 0; i < 20; i++ {
			sizes = append(sizes, 12)
		}
		sizes = append(sizes, 24, 24)

		clusters := ClusterFontSizes(blocksWithSizes(sizes...), 2)
		assignments := AssignHeadingLevelsSmart(clusters)

		if len(assignments) != 2 {
			t.Fatalf("got %d assignments, want 2", len(assignments))
		}
		if assignments[0].Centroid != 24 || assignments[0].Level != 1 {
			t.Errorf("24pt cluster = level %d, want 1", assignments[0].Level)
		}
		if assignments[1].Level != 0 {
			t.Errorf("12pt cluster = level %d, want body", assignments[1].Level)
		}
	})

	t.Run("single cluster has no headings", func(t *testing.T) {
		clusters := ClusterFontSizes(blocksWithSizes(12, 12, 12), 1)
		assignments := AssignHeadingLevelsSmart(clusters)
		for _, a := range assignments {
			if a.Level != 0 {
				t.Errorf("single-cluster assignment has level %d, want body", a.Level)
			}
		}
	})

	t.Run("nothing below body becomes heading", func(t *testing.T) {
		clusters := []FontSizeCluster{
			{Centroid: 14, Members: make([]TextBlock, 3)},
			{Centroid: 12, Members: make([]TextBlock, 10)},
			{Centroid: 8, Members: make([]TextBlock, 5)},
		}
		assignments := AssignHeadingLevelsSmart(clusters)
		if assignments[0].Level != 1 {
			t.Errorf("14pt level = %d, want 1", assignments[0].Level)
		}
		if assignments[1].Level != 0 {
			t.Errorf("body level = %d, want 0", assignments[1].Level)
		}
		if assignments[2].Level != 0 {
			t.Errorf("caption level = %d, want 0 (smaller than body is never a heading)", assignments[2].Level)
		}
	})

	t.Run("population tie breaks to smaller centroid", func(t *testing.T) {
		clusters := []FontSizeCluster{
			{Centroid: 18, Members: make([]TextBlock, 4)},
			{Centroid: 10, Members: make([]TextBlock, 4)},
		}
		assignments := AssignHeadingLevelsSmart(clusters)
		if assignments[0].Level != 1 {
			t.Errorf("18pt level = %d, want 1", assignments[0].Level)
		}
		if assignments[1].Level != 0 {
			t.Errorf("10pt level = %d, want 0", assignments[1].Level)
		}
	})

	t.Run("more than six larger clusters fall back to body", func(t *testing.T) {
		clusters := []FontSizeCluster{
			{Centroid: 40, Members: make([]TextBlock, 1)},
			{Centroid: 36, Members: make([]TextBlock, 1)},
			{Centroid: 32, Members: make([]TextBlock, 1)},
			{Centroid: 28, Members: make([]TextBlock, 1)},
			{Centroid: 24, Members: make([]TextBlock, 1)},
			{Centroid: 20, Members: make([]TextBlock, 1)},
			{Centroid: 16, Members: make([]TextBlock, 1)},
			{Centroid: 12, Members: make([]TextBlock, 10)},
		}
		assignments := AssignHeadingLevelsSmart(clusters)
		for i := 0; i < 6; i++ {
			if assignments[i].Level != i+1 {
				t.Errorf("cluster %d level = %d, want %d", i, assignments[i].Level, i+1)
			}
		}
		if assignments[6].Level != 0 {
			t.Errorf("seventh larger cluster level = %d, want body", assignments[6].Level)
		}
	})
}
