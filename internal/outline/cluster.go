package outline

import (
	"math"
	"slices"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// DefaultClusterTolerance is the maximum font-size gap, in points, between a
// size and a cluster's seed (or representative) for them to be grouped.
const DefaultClusterTolerance = 0.5

// SizeCluster is a group of distinct font sizes treated as one heading level.
// Members[0] is the seed the cluster was started with.
type SizeCluster struct {
	Members []float64
}

// Seed returns the first size inserted into the cluster.
func (c SizeCluster) Seed() float64 {
	return c.Members[0]
}

// Representative returns the mean of the member sizes.
func (c SizeCluster) Representative() float64 {
	var sum float64
	for _, m := range c.Members {
		sum += m
	}
	return sum / float64(len(c.Members))
}

// Clusters is the ordered cluster list for one document, largest sizes first.
type Clusters struct {
	clusters  []SizeCluster
	tolerance float64
	maxLevels int
}

// BuildClusters groups the distinct sizes with the default tolerance and
// three heading levels.
func BuildClusters(sizes []float64) Clusters {
	return buildClusters(sizes, DefaultClusterTolerance, len(doctree.Levels))
}

// buildClusters sorts distinct sizes descending and assigns each to the first
// cluster whose seed is within tolerance. Assignment is against the seed only,
// so a cluster can drift further than tolerance from later members.
func buildClusters(sizes []float64, tolerance float64, maxLevels int) Clusters {
	distinct := make([]float64, 0, len(sizes))
	for _, s := range sizes {
		if !slices.Contains(distinct, s) {
			distinct = append(distinct, s)
		}
	}
	slices.SortFunc(distinct, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	var clusters []SizeCluster
	for _, size := range distinct {
		placed := false
		for i := range clusters {
			if math.Abs(clusters[i].Seed()-size) <= tolerance {
				clusters[i].Members = append(clusters[i].Members, size)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, SizeCluster{Members: []float64{size}})
		}
	}

	return Clusters{clusters: clusters, tolerance: tolerance, maxLevels: maxLevels}
}

// All returns the clusters in order, largest first.
func (c Clusters) All() []SizeCluster {
	return c.clusters
}

// Len returns the number of clusters.
func (c Clusters) Len() int {
	return len(c.clusters)
}

// Level maps a font size to a heading level: the first of the heading-eligible
// cluster representatives within tolerance decides. It returns "" for sizes
// that belong to no heading cluster.
func (c Clusters) Level(size float64) doctree.Level {
	n := min(c.maxLevels, len(c.clusters), len(doctree.Levels))
	for i := 0; i < n; i++ {
		if math.Abs(size-c.clusters[i].Representative()) <= c.tolerance {
			return doctree.Levels[i]
		}
	}
	return ""
}
