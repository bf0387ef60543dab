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
)

// NarrativeSimilarity scores how alike two narratives are. Each
// score is in [0, 1] under a well-formed configuration.
type NarrativeSimilarity struct {
	// Weighted combination of the three component scores.
	Overall float64 `json:"overall"`

	Spatial  float64 `json:"spatial"`
	Temporal float64 `json:"temporal"`
	Thematic float64 `json:"thematic"`
}

// ComparisonConfig weights the component scores and sets the
// distance at which two events count as the same place.
type ComparisonConfig struct {
	SpatialWeight  float64 `json:"spatial_weight"`
	TemporalWeight float64 `json:"temporal_weight"`
	ThematicWeight float64 `json:"thematic_weight"`

	// Maximum distance in meters for two events to match spatially.
	LocationThresholdMeters float64 `json:"location_threshold_meters"`
}

// DefaultComparisonConfig weights spatial and temporal similarity at
// 0.4 each and thematic at 0.2, with a 1 km location threshold.
func DefaultComparisonConfig() ComparisonConfig {
	return ComparisonConfig{
		SpatialWeight:           0.4,
		TemporalWeight:          0.4,
		ThematicWeight:          0.2,
		LocationThresholdMeters: 1000,
	}
}

// CompareNarratives scores the similarity of two narratives. The
// overall score is the weighted average of the three component
// scores, normalized by the weight sum; a weight sum <= 0 yields an
// overall score of 0.
func CompareNarratives(n1, n2 *narrative.Narrative, config ComparisonConfig) NarrativeSimilarity {
	spatial := SpatialSimilarity(n1.Events(), n2.Events(), config.LocationThresholdMeters)
	temporal := TemporalSimilarity(n1.Events(), n2.Events())
	thematic := ThematicSimilarity(n1.Events(), n2.Events())

	var overall float64
	totalWeight := config.SpatialWeight + config.TemporalWeight + config.ThematicWeight
	if totalWeight > 0 {
		overall = (spatial*config.SpatialWeight +
			temporal*config.TemporalWeight +
			thematic*config.ThematicWeight) / totalWeight
	}

	return NarrativeSimilarity{
		Overall:  overall,
		Spatial:  spatial,
		Temporal: temporal,
		Thematic: thematic,
	}
}

// SpatialSimilarity is a Jaccard-style ratio of location overlap: an
// event of the first set matches if any event of the second lies
// within thresholdMeters (first match wins — this is not an optimal
// bipartite matching), and the score is matches over the union
// (|set1| + |set2| - matches). Either set empty scores 0.
func SpatialSimilarity(events1, events2 []narrative.Event, thresholdMeters float64) float64 {
	if len(events1) == 0 || len(events2) == 0 {
		return 0
	}

	matches := 0
	for _, e1 := range events1 {
		for _, e2 := range events2 {
			if narrative.Distance(e1.Location, e2.Location) <= thresholdMeters {
				matches++
				break
			}
		}
	}

	union := len(events1) + len(events2) - matches
	if union <= 0 {
		return 0
	}
	return float64(matches) / float64(union)
}

// TemporalSimilarity is the overlap of the two sets' overall time
// ranges divided by the union span of the two ranges. Ranges that do
// not overlap, or either set being empty, score 0.
func TemporalSimilarity(events1, events2 []narrative.Event) float64 {
	start1, end1, ok := timeExtent(events1)
	if !ok {
		return 0
	}
	start2, end2, ok := timeExtent(events2)
	if !ok {
		return 0
	}

	overlapStart := max(start1, start2)
	overlapEnd := min(end1, end2)
	if overlapStart >= overlapEnd {
		return 0
	}

	union := float64(max(end1, end2) - min(start1, start2))
	if union <= 0 {
		return 0
	}
	return float64(overlapEnd-overlapStart) / union
}

func timeExtent(events []narrative.Event) (startMs, endMs int64, ok bool) {
	if len(events) == 0 {
		return 0, 0, false
	}
	startMs = events[0].Timestamp.UnixMilli()
	endMs = startMs
	for _, e := range events[1:] {
		ms := e.Timestamp.UnixMilli()
		startMs = min(startMs, ms)
		endMs = max(endMs, ms)
	}
	return startMs, endMs, true
}

// ThematicSimilarity is the Jaccard similarity of the two sets' tag
// vocabularies. Duplicate tags collapse (set semantics). Two sets
// that both have no tags score 0, not 1 — the absence of tags is not
// evidence of sameness.
func ThematicSimilarity(events1, events2 []narrative.Event) float64 {
	tags1 := tagSet(events1)
	tags2 := tagSet(events2)

	if len(tags1) == 0 && len(tags2) == 0 {
		return 0
	}

	intersection := 0
	for tag := range tags1 {
		if _, ok := tags2[tag]; ok {
			intersection++
		}
	}
	union := len(tags1) + len(tags2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tagSet(events []narrative.Event) map[string]struct{} {
	tags := make(map[string]struct{})
	for _, e := range events {
		for _, tag := range e.Tags {
			tags[tag] = struct{}{}
		}
	}
	return tags
}

// EventPair is a pair of matching event indices: I into the first
// narrative's events, J into the second's.
type EventPair struct {
	I int `json:"i"`
	J int `json:"j"`
}

// CommonLocations returns every pair of events, one from each
// narrative, lying within thresholdMeters of each other. Pairs are
// not deduplicated; an event appearing near several counterparts
// produces several pairs.
func CommonLocations(n1, n2 *narrative.Narrative, thresholdMeters float64) []EventPair {
	var pairs []EventPair
	for i, e1 := range n1.Events() {
		for j, e2 := range n2.Events() {
			if narrative.Distance(e1.Location, e2.Location) <= thresholdMeters {
				pairs = append(pairs, EventPair{I: i, J: j})
			}
		}
	}
	return pairs
}

// SpatialIntersection returns the events of the first narrative that
// have at least one event of the second within thresholdMeters,
// preserving first-narrative order.
func SpatialIntersection(n1, n2 *narrative.Narrative, thresholdMeters float64) []narrative.Event {
	var intersection []narrative.Event
	for _, e1 := range n1.Events() {
		for _, e2 := range n2.Events() {
			if narrative.Distance(e1.Location, e2.Location) <= thresholdMeters {
				intersection = append(intersection, e1)
				break
			}
		}
	}
	return intersection
}

// SpatialUnion returns the bounding box covering both narratives,
// or nil if both are empty.
func SpatialUnion(n1, n2 *narrative.Narrative) *narrative.GeoBounds {
	b1 := eventBounds(n1.Events())
	b2 := eventBounds(n2.Events())

	switch {
	case b1 != nil && b2 != nil:
		return &narrative.GeoBounds{
			MinLat: min(b1.MinLat, b2.MinLat),
			MaxLat: max(b1.MaxLat, b2.MaxLat),
			MinLon: min(b1.MinLon, b2.MinLon),
			MaxLon: max(b1.MaxLon, b2.MaxLon),
		}
	case b1 != nil:
		return b1
	case b2 != nil:
		return b2
	}
	return nil
}

func eventBounds(events []narrative.Event) *narrative.GeoBounds {
	locations := make([]narrative.Location, len(events))
	for i, e := range events {
		locations[i] = e.Location
	}
	return computeBounds(locations)
}
