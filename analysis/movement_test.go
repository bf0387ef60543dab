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
	"math"
	"testing"

	"github.com/geostory/geostory/narrative"
)

func TestTrajectoryBasic(t *testing.T) {
	events := []narrative.Event{
		testEvent(40.0, -74.0, "2024-01-01T10:00:00Z"),
		testEvent(41.0, -73.0, "2024-01-01T11:00:00Z"),
	}

	traj := NewTrajectory("test", events)

	if traj.Len() != 2 {
		t.Fatalf("Len = %d, expected 2", traj.Len())
	}
	if traj.DurationSecs() != 3600.0 {
		t.Errorf("DurationSecs = %f, expected 3600", traj.DurationSecs())
	}
	if traj.TotalDistance() <= 0 {
		t.Errorf("TotalDistance = %f, expected > 0", traj.TotalDistance())
	}
	if traj.AvgSpeed() != traj.TotalDistance()/3600.0 {
		t.Errorf("AvgSpeed = %f, expected distance/duration", traj.AvgSpeed())
	}
}

func TestTrajectorySortsAtConstruction(t *testing.T) {
	events := []narrative.Event{
		testEvent(41.0, -73.0, "2024-01-01T11:00:00Z"),
		testEvent(40.0, -74.0, "2024-01-01T10:00:00Z"),
		testEvent(42.0, -72.0, "2024-01-01T12:00:00Z"),
	}

	traj := NewTrajectory("test", events)

	sorted := traj.Events()
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Before(sorted[i-1].Timestamp) {
			t.Fatalf("events not sorted at index %d", i)
		}
	}

	// the input slice must not have been reordered
	if events[0].Location.Latitude != 41.0 {
		t.Error("construction mutated the caller's slice")
	}
}

func TestTrajectoryEmptyAndGeneratedID(t *testing.T) {
	traj := NewTrajectory("", nil)
	if traj.ID == "" {
		t.Error("empty id should be replaced with a generated one")
	}
	if traj.DurationSecs() != 0 || traj.TotalDistance() != 0 || traj.AvgSpeed() != 0 {
		t.Error("empty trajectory should have zero-valued measures")
	}
	if traj.TimeRange() != nil || traj.Bounds() != nil {
		t.Error("empty trajectory should have nil range and bounds")
	}
}

func TestVelocityProfile(t *testing.T) {
	events := []narrative.Event{
		testEvent(40.0, -74.0, "2024-01-01T10:00:00Z"),
		testEvent(40.1, -74.0, "2024-01-01T11:00:00Z"),
		testEvent(40.1, -74.0, "2024-01-01T11:00:00Z"), // zero time delta
	}

	profile := NewTrajectory("test", events).VelocityProfile()

	if len(profile) != 2 {
		t.Fatalf("profile length = %d, expected 2", len(profile))
	}
	if profile[0].Speed <= 0 {
		t.Errorf("moving step speed = %f, expected > 0", profile[0].Speed)
	}
	if profile[1].Speed != 0 {
		t.Errorf("zero-delta step speed = %f, expected 0", profile[1].Speed)
	}
}

func TestDetectStops(t *testing.T) {
	events := []narrative.Event{
		testEvent(40.0, -74.0, "2024-01-01T10:00:00Z"),
		testEvent(40.0001, -74.0001, "2024-01-01T10:30:00Z"),
		testEvent(40.0002, -74.0002, "2024-01-01T11:00:00Z"),
		testEvent(41.0, -73.0, "2024-01-01T12:00:00Z"), // moved away
	}

	traj := NewTrajectory("test", events)
	stops := DetectStops(traj, StopThreshold{RadiusMeters: 100, MinDurationSecs: 1800})

	if len(stops) != 1 {
		t.Fatalf("stops = %d, expected 1", len(stops))
	}
	if math.Abs(stops[0].DurationSecs-3600.0) > 1 {
		t.Errorf("stop duration = %f, expected ~3600", stops[0].DurationSecs)
	}
	if stops[0].EventCount != 3 {
		t.Errorf("stop event count = %d, expected 3", stops[0].EventCount)
	}

	// invariants of every emitted stop
	for i, s := range stops {
		if s.DurationSecs < 1800 {
			t.Errorf("stop %d shorter than threshold: %f", i, s.DurationSecs)
		}
		if s.EventCount < 2 {
			t.Errorf("stop %d has %d events, expected >= 2", i, s.EventCount)
		}
		if got := s.TimeRange().DurationSecs(); got != s.DurationSecs {
			t.Errorf("stop %d TimeRange duration %f != DurationSecs %f", i, got, s.DurationSecs)
		}
	}
}

func TestDetectStopsNone(t *testing.T) {
	// constantly moving, never inside one radius long enough
	events := []narrative.Event{
		testEvent(40.0, -74.0, "2024-01-01T10:00:00Z"),
		testEvent(40.5, -74.0, "2024-01-01T10:10:00Z"),
		testEvent(41.0, -74.0, "2024-01-01T10:20:00Z"),
	}

	stops := DetectStops(NewTrajectory("test", events), StopThreshold{RadiusMeters: 100, MinDurationSecs: 300})
	if len(stops) != 0 {
		t.Errorf("stops = %d, expected 0", len(stops))
	}
}

func TestSimplify(t *testing.T) {
	events := []narrative.Event{
		testEvent(0.0, 0.0, "2024-01-01T10:00:00Z"),
		testEvent(0.00001, 0.25, "2024-01-01T10:15:00Z"), // nearly on the line
		testEvent(0.1, 0.5, "2024-01-01T10:30:00Z"),      // well off the line
		testEvent(0.00001, 0.75, "2024-01-01T10:45:00Z"), // nearly on the line
		testEvent(0.0, 1.0, "2024-01-01T11:00:00Z"),
	}
	traj := NewTrajectory("test", events)

	// small epsilon keeps the detour point
	detailed := traj.Simplify(100)
	if detailed.Len() > traj.Len() {
		t.Errorf("simplified length %d exceeds input length %d", detailed.Len(), traj.Len())
	}
	if detailed.Len() < 3 {
		t.Errorf("detour point should survive epsilon=100, got %d points", detailed.Len())
	}

	// huge epsilon collapses to the two endpoints
	collapsed := traj.Simplify(1e9)
	if collapsed.Len() != 2 {
		t.Fatalf("collapsed length = %d, expected 2", collapsed.Len())
	}
	first := collapsed.Events()[0]
	last := collapsed.Events()[1]
	if first.Location != events[0].Location || last.Location != events[4].Location {
		t.Error("endpoints must always be retained")
	}

	if collapsed.ID != "test_simplified" {
		t.Errorf("simplified id = %q, expected test_simplified", collapsed.ID)
	}
}

func TestSimplifyShortPaths(t *testing.T) {
	for n := 0; n <= 2; n++ {
		events := make([]narrative.Event, n)
		for i := range events {
			events[i] = testEvent(float64(i), float64(i), "2024-01-01T10:00:00Z")
		}
		traj := NewTrajectory("short", events)

		simplified := traj.Simplify(1)
		if simplified.Len() != n {
			t.Errorf("n=%d: simplified length = %d, expected unchanged", n, simplified.Len())
		}
	}
}

func TestMovementSegments(t *testing.T) {
	analyzer := &MovementAnalyzer{StopThreshold: StopThreshold{RadiusMeters: 100, MinDurationSecs: 1800}}

	// travel, then a one-hour dwell, then travel again
	events := []narrative.Event{
		testEvent(39.0, -75.0, "2024-01-01T08:00:00Z"),
		testEvent(39.5, -74.5, "2024-01-01T09:00:00Z"),
		testEvent(40.0, -74.0, "2024-01-01T10:00:00Z"),
		testEvent(40.0001, -74.0001, "2024-01-01T11:00:00Z"),
		testEvent(41.0, -73.0, "2024-01-01T12:00:00Z"),
		testEvent(42.0, -72.0, "2024-01-01T13:00:00Z"),
	}
	traj := analyzer.ExtractTrajectory("trip", events)

	stops := analyzer.DetectStops(traj)
	if len(stops) != 1 {
		t.Fatalf("stops = %d, expected 1", len(stops))
	}

	segments := analyzer.MovementSegments(traj)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, expected 2", len(segments))
	}
	if segments[0].Len() != 2 || segments[1].Len() != 2 {
		t.Errorf("segment sizes = %d, %d; expected 2 and 2",
			segments[0].Len(), segments[1].Len())
	}
}

func TestMovementSegmentsNoStops(t *testing.T) {
	analyzer := NewMovementAnalyzer()
	events := []narrative.Event{
		testEvent(40.0, -74.0, "2024-01-01T10:00:00Z"),
		testEvent(41.0, -73.0, "2024-01-01T11:00:00Z"),
	}
	traj := analyzer.ExtractTrajectory("trip", events)

	segments := analyzer.MovementSegments(traj)
	if len(segments) != 1 {
		t.Fatalf("segments = %d, expected the whole trajectory", len(segments))
	}
	if segments[0].Len() != 2 {
		t.Errorf("segment length = %d, expected 2", segments[0].Len())
	}
}
