/*
	Geostory
	Copyright (c) 2026 Geostory Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package analysis

import (
	"github.com/geostory/geostory/narrative"
	"go.uber.org/zap"
)

// Labels in progress: -1 = unvisited, -2 = provisional noise,
// >= 0 = assigned cluster. Final labels only use -1 (noise) and
// cluster ids.
const (
	labelUnvisited = -1
	labelNoise     = -2
)

// Cluster is one group of events produced by a clustering run.
type Cluster struct {
	// Cluster identifier, zero-based within its result.
	ID int `json:"id"`

	// Indices into the input event slice, in discovery order.
	EventIndices []int `json:"event_indices"`

	// Arithmetic-mean location of the members.
	Centroid narrative.Location `json:"centroid"`

	// Bounding box of the members.
	Bounds narrative.GeoBounds `json:"bounds"`
}

// Len returns the number of events in the cluster.
func (c Cluster) Len() int { return len(c.EventIndices) }

// ClusteringResult is the partition produced by a clustering run.
// Labels always has one entry per input event: the event's cluster
// id, or -1 for noise. Every input index appears in exactly one of
// a cluster or the noise list.
type ClusteringResult struct {
	Clusters []Cluster `json:"clusters"`

	// Indices of events assigned to no cluster. Only density-based
	// clustering produces noise.
	Noise []int `json:"noise"`

	Labels []int `json:"labels"`
}

// NumClusters returns the number of clusters found.
func (r ClusteringResult) NumClusters() int { return len(r.Clusters) }

// ClusterOf returns the cluster containing the event at index i,
// or nil if the event is noise or the index is out of range.
func (r ClusteringResult) ClusterOf(i int) *Cluster {
	if i < 0 || i >= len(r.Labels) {
		return nil
	}
	label := r.Labels[i]
	if label < 0 || label >= len(r.Clusters) {
		return nil
	}
	return &r.Clusters[label]
}

// DBSCAN is density-based clustering: points with at least MinPoints
// neighbors within Eps meters seed clusters, neighbors of neighbors
// are absorbed, and everything unreachable is noise.
type DBSCAN struct {
	// Maximum distance in meters between neighboring points.
	Eps float64 `json:"eps"`

	// Minimum neighborhood size to form a dense region.
	MinPoints int `json:"min_points"`
}

// NewDBSCAN returns a DBSCAN clusterer with the given parameters.
func NewDBSCAN(eps float64, minPoints int) DBSCAN {
	return DBSCAN{Eps: eps, MinPoints: minPoints}
}

// Cluster partitions the events. The scan visits events in input
// order and neighborhoods are found by exhaustive pairwise geodesic
// distance, so the run is O(n^2) but fully deterministic: cluster
// ids follow discovery order, and a border point reachable from two
// clusters goes to whichever core point reaches it first.
func (d DBSCAN) Cluster(events []narrative.Event) ClusteringResult {
	n := len(events)
	if n == 0 {
		return ClusteringResult{}
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = labelUnvisited
	}

	currentCluster := 0
	for i := range n {
		if labels[i] != labelUnvisited {
			continue
		}

		neighbors := d.rangeQuery(events, i)
		if len(neighbors) < d.MinPoints {
			// provisional: a later cluster may still absorb it as a border point
			labels[i] = labelNoise
			continue
		}

		d.expandCluster(events, i, neighbors, currentCluster, labels)
		currentCluster++
	}

	for i, label := range labels {
		if label == labelNoise {
			labels[i] = labelUnvisited
		}
	}

	result := buildDensityResult(events, labels, currentCluster)

	Log.Debug("dbscan complete",
		zap.Int("events", n),
		zap.Int("clusters", result.NumClusters()),
		zap.Int("noise", len(result.Noise)))

	return result
}

// rangeQuery returns the indices of all events within Eps of the
// event at index i, excluding i itself.
func (d DBSCAN) rangeQuery(events []narrative.Event, i int) []int {
	var neighbors []int
	for j := range events {
		if j == i {
			continue
		}
		if narrative.Distance(events[i].Location, events[j].Location) <= d.Eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// expandCluster grows cluster clusterID from the seed's neighborhood.
// The frontier is a stack (depth-first), which pins which cluster
// claims a border point shared between two clusters; a queue here
// would produce a different (still valid, but not reproducible
// against this implementation) assignment.
func (d DBSCAN) expandCluster(events []narrative.Event, seed int, seedNeighbors []int, clusterID int, labels []int) {
	labels[seed] = clusterID

	frontier := make([]int, len(seedNeighbors))
	copy(frontier, seedNeighbors)
	processed := make(map[int]struct{})

	for len(frontier) > 0 {
		current := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if _, ok := processed[current]; ok {
			continue
		}
		processed[current] = struct{}{}

		if labels[current] == labelNoise {
			// border point: joins the cluster but does not expand it
			labels[current] = clusterID
		}
		if labels[current] != labelUnvisited {
			continue
		}
		labels[current] = clusterID

		neighbors := d.rangeQuery(events, current)
		if len(neighbors) >= d.MinPoints {
			frontier = append(frontier, neighbors...)
		}
	}
}

func buildDensityResult(events []narrative.Event, labels []int, numClusters int) ClusteringResult {
	clusters := make([]Cluster, 0, numClusters)
	for clusterID := range numClusters {
		var indices []int
		for i, label := range labels {
			if label == clusterID {
				indices = append(indices, i)
			}
		}
		clusters = append(clusters, newCluster(clusterID, indices, events))
	}

	var noise []int
	for i, label := range labels {
		if label < 0 {
			noise = append(noise, i)
		}
	}

	return ClusteringResult{Clusters: clusters, Noise: noise, Labels: labels}
}

// newCluster assembles a cluster over the given member indices.
// The centroid is the arithmetic mean of the member coordinates.
func newCluster(id int, indices []int, events []narrative.Event) Cluster {
	locations := make([]narrative.Location, len(indices))
	for i, idx := range indices {
		locations[i] = events[idx].Location
	}
	return Cluster{
		ID:           id,
		EventIndices: indices,
		Centroid:     planarCentroid(locations),
		Bounds:       clusterBounds(locations),
	}
}

// planarCentroid is the plain arithmetic mean of the coordinates.
// Cluster members are close together by construction, so the
// spherical-vector averaging used by SpatialMetrics is not needed
// here.
func planarCentroid(locations []narrative.Location) narrative.Location {
	if len(locations) == 0 {
		return narrative.Location{}
	}
	var sumLat, sumLon float64
	for _, loc := range locations {
		sumLat += loc.Latitude
		sumLon += loc.Longitude
	}
	n := float64(len(locations))
	return narrative.Location{Latitude: sumLat / n, Longitude: sumLon / n}
}

func clusterBounds(locations []narrative.Location) narrative.GeoBounds {
	b := computeBounds(locations)
	if b == nil {
		return narrative.GeoBounds{}
	}
	return *b
}

// KMeans is centroid-based clustering with geodesic point-to-
// centroid distance. Initialization is deterministic (evenly spaced
// input points by index, not random), so identical input always
// produces identical output.
type KMeans struct {
	// Number of clusters to create. The effective count is
	// min(K, number of events).
	K int `json:"k"`

	// Iteration cap; 100 by default.
	MaxIterations int `json:"max_iterations"`

	// Convergence threshold in meters: the run stops early once no
	// centroid moved farther than this between iterations. 1 meter
	// by default.
	Tolerance float64 `json:"tolerance"`
}

// NewKMeans returns a k-means clusterer with default iteration cap
// and tolerance.
func NewKMeans(k int) KMeans {
	return KMeans{K: k, MaxIterations: 100, Tolerance: 1.0}
}

// Cluster partitions the events into up to K clusters. Centroid
// updates use the arithmetic coordinate mean (not spherical
// averaging), and a cluster left empty by a reassignment keeps its
// previous centroid rather than being reseeded. Clusters that end
// with no members are omitted from the result and the remaining
// clusters are renumbered compactly. K-means has no noise concept.
func (km KMeans) Cluster(events []narrative.Event) ClusteringResult {
	n := len(events)
	if n == 0 || km.K <= 0 {
		return ClusteringResult{}
	}

	k := min(km.K, n)

	// deterministic seeding: evenly spaced existing points
	centroids := make([]narrative.Location, k)
	for i := range k {
		centroids[i] = events[i*n/k].Location
	}

	labels := make([]int, n)

	iterations := 0
	for range km.MaxIterations {
		iterations++

		// assignment: nearest centroid, ties to the lowest index
		for i, e := range events {
			best := 0
			bestDist := narrative.Distance(e.Location, centroids[0])
			for c := 1; c < k; c++ {
				if d := narrative.Distance(e.Location, centroids[c]); d < bestDist {
					bestDist = d
					best = c
				}
			}
			labels[i] = best
		}

		// update: arithmetic mean of members; empty clusters keep
		// their previous centroid
		converged := true
		for c := range k {
			var members []narrative.Location
			for i, label := range labels {
				if label == c {
					members = append(members, events[i].Location)
				}
			}
			if len(members) == 0 {
				continue
			}

			next := planarCentroid(members)
			if narrative.Distance(centroids[c], next) > km.Tolerance {
				converged = false
			}
			centroids[c] = next
		}

		if converged {
			break
		}
	}

	// drop empty clusters and renumber the rest compactly
	clusters := make([]Cluster, 0, k)
	for c := range k {
		var indices []int
		for i, label := range labels {
			if label == c {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			ID:           len(clusters),
			EventIndices: indices,
			Centroid:     centroids[c],
			Bounds:       boundsOfIndices(events, indices),
		})
	}

	Log.Debug("kmeans complete",
		zap.Int("events", n),
		zap.Int("k", k),
		zap.Int("iterations", iterations),
		zap.Int("clusters", len(clusters)))

	return ClusteringResult{Clusters: clusters, Labels: labels}
}

func boundsOfIndices(events []narrative.Event, indices []int) narrative.GeoBounds {
	locations := make([]narrative.Location, len(indices))
	for i, idx := range indices {
		locations[i] = events[idx].Location
	}
	return clusterBounds(locations)
}
