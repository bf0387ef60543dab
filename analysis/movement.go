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
	"fmt"
	"sort"

	"github.com/geostory/geostory/narrative"
	"github.com/google/uuid"
)

// Trajectory is a time-sorted path of events belonging to one moving
// entity. Events are sorted ascending by timestamp at construction;
// nothing sorts lazily afterward.
type Trajectory struct {
	// Identifier of the trajectory.
	ID string `json:"id"`

	events []narrative.Event
}

// NewTrajectory builds a trajectory from events, copying and sorting
// them by timestamp. If id is empty a random one is assigned.
func NewTrajectory(id string, events []narrative.Event) *Trajectory {
	if id == "" {
		id = uuid.NewString()
	}

	sorted := make([]narrative.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	return &Trajectory{ID: id, events: sorted}
}

// Events returns the trajectory's events in time order. The returned
// slice is a view; callers must not modify it.
func (t *Trajectory) Events() []narrative.Event { return t.events }

// Len returns the number of events in the trajectory.
func (t *Trajectory) Len() int { return len(t.events) }

// TimeRange returns the span from the first to the last event,
// or nil for an empty trajectory.
func (t *Trajectory) TimeRange() *narrative.TimeRange {
	if len(t.events) == 0 {
		return nil
	}
	return &narrative.TimeRange{
		Start: t.events[0].Timestamp,
		End:   t.events[len(t.events)-1].Timestamp,
	}
}

// Bounds returns the bounding box of the trajectory,
// or nil for an empty trajectory.
func (t *Trajectory) Bounds() *narrative.GeoBounds {
	locations := make([]narrative.Location, len(t.events))
	for i, e := range t.events {
		locations[i] = e.Location
	}
	return computeBounds(locations)
}

// TotalDistance returns the sum of consecutive geodesic step
// distances, in meters.
func (t *Trajectory) TotalDistance() float64 {
	var total float64
	for i := 1; i < len(t.events); i++ {
		total += narrative.Distance(t.events[i-1].Location, t.events[i].Location)
	}
	return total
}

// DurationSecs returns the seconds between the first and last event.
func (t *Trajectory) DurationSecs() float64 {
	if len(t.events) < 2 {
		return 0
	}
	first := t.events[0].Timestamp.UnixMilli()
	last := t.events[len(t.events)-1].Timestamp.UnixMilli()
	return float64(last-first) / 1000.0
}

// AvgSpeed returns total distance over total duration in m/s,
// or 0 when the duration is not positive.
func (t *Trajectory) AvgSpeed() float64 {
	duration := t.DurationSecs()
	if duration <= 0 {
		return 0
	}
	return t.TotalDistance() / duration
}

// VelocityPoint is one sample of a velocity profile: the speed over
// the step beginning at Timestamp.
type VelocityPoint struct {
	Timestamp narrative.Timestamp `json:"timestamp"`
	Speed     float64             `json:"speed"` // m/s
}

// VelocityProfile returns one sample per consecutive event pair.
// A step with no elapsed time has speed 0.
func (t *Trajectory) VelocityProfile() []VelocityPoint {
	if len(t.events) < 2 {
		return nil
	}

	profile := make([]VelocityPoint, 0, len(t.events)-1)
	for i := 1; i < len(t.events); i++ {
		dist := narrative.Distance(t.events[i-1].Location, t.events[i].Location)
		dt := float64(t.events[i].Timestamp.UnixMilli()-t.events[i-1].Timestamp.UnixMilli()) / 1000.0

		var speed float64
		if dt > 0 {
			speed = dist / dt
		}
		profile = append(profile, VelocityPoint{Timestamp: t.events[i-1].Timestamp, Speed: speed})
	}
	return profile
}

// Simplify reduces the trajectory with the Ramer-Douglas-Peucker
// algorithm: points deviating less than epsilon meters from the line
// between their neighbors are dropped. The first and last point are
// always kept. Deviation is measured with a planar projection in
// (lon,lat) space, which is only a reasonable approximation over
// geographically small extents; don't expect meaningful results for
// continental-scale paths.
func (t *Trajectory) Simplify(epsilonMeters float64) *Trajectory {
	if len(t.events) <= 2 {
		return NewTrajectory(t.ID, t.events)
	}

	indices := douglasPeucker(t.events, epsilonMeters)
	simplified := make([]narrative.Event, len(indices))
	for i, idx := range indices {
		simplified[i] = t.events[idx]
	}

	return NewTrajectory(t.ID+"_simplified", simplified)
}

// douglasPeucker returns the indices of the points to keep.
func douglasPeucker(events []narrative.Event, epsilon float64) []int {
	if len(events) <= 2 {
		indices := make([]int, len(events))
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	maxDist, maxIdx := maxPerpendicularDistance(events)
	if maxDist <= epsilon {
		return []int{0, len(events) - 1}
	}

	left := douglasPeucker(events[:maxIdx+1], epsilon)
	right := douglasPeucker(events[maxIdx:], epsilon)

	// the split point appears at the end of left and the start of
	// right; drop the duplicate
	keep := left[:len(left)-1]
	for _, idx := range right {
		keep = append(keep, idx+maxIdx)
	}
	return keep
}

func maxPerpendicularDistance(events []narrative.Event) (maxDist float64, maxIdx int) {
	first := events[0].Location
	last := events[len(events)-1].Location

	for i := 1; i < len(events)-1; i++ {
		if d := perpendicularDistance(events[i].Location, first, last); d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	return maxDist, maxIdx
}

// perpendicularDistance projects the point onto the segment in
// planar (lon,lat) space, clamps the projection onto the segment,
// and measures the geodesic distance to the projected coordinate.
// A degenerate segment falls back to point-to-point distance.
func perpendicularDistance(point, lineStart, lineEnd narrative.Location) float64 {
	dx := lineEnd.Longitude - lineStart.Longitude
	dy := lineEnd.Latitude - lineStart.Latitude

	lineLenSq := dx*dx + dy*dy
	if lineLenSq < 1e-12 {
		return narrative.Distance(point, lineStart)
	}

	t := ((point.Longitude-lineStart.Longitude)*dx + (point.Latitude-lineStart.Latitude)*dy) / lineLenSq
	t = max(0, min(1, t))

	projected := narrative.Location{
		Latitude:  lineStart.Latitude + t*dy,
		Longitude: lineStart.Longitude + t*dx,
	}
	return narrative.Distance(point, projected)
}

// Stop is a detected dwell period: the entity stayed within a radius
// for at least a minimum duration.
type Stop struct {
	// Arithmetic centroid of the events making up the stop.
	Location narrative.Location `json:"location"`

	Start narrative.Timestamp `json:"start"`
	End   narrative.Timestamp `json:"end"`

	// Seconds between the first and last event of the stop.
	DurationSecs float64 `json:"duration_secs"`

	// Number of events making up the stop.
	EventCount int `json:"event_count"`
}

// TimeRange returns the stop's [Start, End] interval.
func (s Stop) TimeRange() narrative.TimeRange {
	return narrative.TimeRange{Start: s.Start, End: s.End}
}

// StopThreshold configures stop detection.
type StopThreshold struct {
	// Maximum distance in meters from the stop's first event.
	RadiusMeters float64 `json:"radius_meters"`

	// Minimum dwell time in seconds to qualify as a stop.
	MinDurationSecs float64 `json:"min_duration_secs"`
}

// DefaultStopThreshold is 50 meters for 5 minutes.
func DefaultStopThreshold() StopThreshold {
	return StopThreshold{RadiusMeters: 50, MinDurationSecs: 300}
}

// DetectStops scans the trajectory with a growing window anchored at
// the window's first event: the window extends while each next event
// stays within RadiusMeters of that anchor (the anchor is never
// recentered, so a slow drift can end a stop even when consecutive
// points are individually close — accumulated tolerance is always
// relative to the first point). When extension stops, a window whose
// elapsed time meets MinDurationSecs becomes a Stop located at the
// arithmetic centroid of its events, and the scan resumes past the
// window; otherwise the scan advances one event and re-anchors.
func DetectStops(t *Trajectory, threshold StopThreshold) []Stop {
	events := t.Events()
	if len(events) < 2 {
		return nil
	}

	var stops []Stop
	startIdx := 0

	for startIdx < len(events) {
		anchor := events[startIdx].Location

		endIdx := startIdx
		for endIdx < len(events) &&
			narrative.Distance(anchor, events[endIdx].Location) <= threshold.RadiusMeters {
			endIdx++
		}

		if endIdx > startIdx {
			startMs := events[startIdx].Timestamp.UnixMilli()
			endMs := events[endIdx-1].Timestamp.UnixMilli()
			durationSecs := float64(endMs-startMs) / 1000.0

			if durationSecs >= threshold.MinDurationSecs {
				window := events[startIdx:endIdx]
				locations := make([]narrative.Location, len(window))
				for i, e := range window {
					locations[i] = e.Location
				}

				stops = append(stops, Stop{
					Location:     planarCentroid(locations),
					Start:        events[startIdx].Timestamp,
					End:          events[endIdx-1].Timestamp,
					DurationSecs: durationSecs,
					EventCount:   len(window),
				})

				startIdx = endIdx
				continue
			}
		}

		startIdx++
	}

	return stops
}

// MovementAnalyzer bundles a stop threshold with the trajectory
// operations that depend on it.
type MovementAnalyzer struct {
	StopThreshold StopThreshold
}

// NewMovementAnalyzer returns an analyzer with the default stop
// threshold.
func NewMovementAnalyzer() *MovementAnalyzer {
	return &MovementAnalyzer{StopThreshold: DefaultStopThreshold()}
}

// ExtractTrajectory builds a trajectory from events.
func (a *MovementAnalyzer) ExtractTrajectory(id string, events []narrative.Event) *Trajectory {
	return NewTrajectory(id, events)
}

// DetectStops detects stops using the analyzer's threshold.
func (a *MovementAnalyzer) DetectStops(t *Trajectory) []Stop {
	return DetectStops(t, a.StopThreshold)
}

// MovementSegments splits the trajectory into the stretches of
// movement between detected stops, discarding empty stretches. With
// no stops the whole trajectory is returned as a single segment.
func (a *MovementAnalyzer) MovementSegments(t *Trajectory) []*Trajectory {
	stops := a.DetectStops(t)
	if len(stops) == 0 {
		return []*Trajectory{NewTrajectory(t.ID, t.Events())}
	}

	events := t.Events()
	var segments []*Trajectory
	currentStart := 0

	for i, stop := range stops {
		stopStartIdx := indexOfTimestamp(events, func(ts narrative.Timestamp) bool {
			return ts.UnixMilli() >= stop.Start.UnixMilli()
		})

		if stopStartIdx > currentStart {
			segments = append(segments, segment(t.ID, i, events[currentStart:stopStartIdx]))
		}

		currentStart = indexOfTimestamp(events, func(ts narrative.Timestamp) bool {
			return ts.UnixMilli() > stop.End.UnixMilli()
		})
	}

	if currentStart < len(events) {
		segments = append(segments, segment(t.ID, len(stops), events[currentStart:]))
	}

	return segments
}

func segment(id string, n int, events []narrative.Event) *Trajectory {
	return NewTrajectory(fmt.Sprintf("%s_segment_%d", id, n), events)
}

// indexOfTimestamp returns the index of the first event whose
// timestamp satisfies match, or len(events) if none does.
func indexOfTimestamp(events []narrative.Event, match func(narrative.Timestamp) bool) int {
	for i, e := range events {
		if match(e.Timestamp) {
			return i
		}
	}
	return len(events)
}
