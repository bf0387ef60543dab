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

func TestTemporalMetricsEmpty(t *testing.T) {
	metrics := TemporalMetricsFromEvents(nil)
	if metrics.EventCount != 0 || metrics.TimeRange != nil || metrics.DurationSecs != 0 {
		t.Errorf("empty input should yield zero metrics, got %+v", metrics)
	}
}

func TestTemporalMetricsSingle(t *testing.T) {
	metrics := TemporalMetricsFromEvents([]narrative.Event{
		testEvent(0, 0, "2024-01-01T10:00:00Z"),
	})

	if metrics.EventCount != 1 {
		t.Errorf("EventCount = %d, expected 1", metrics.EventCount)
	}
	if metrics.TimeRange == nil {
		t.Fatal("single event should still have a time range")
	}
	if metrics.DurationSecs != 0 {
		t.Errorf("DurationSecs = %f, expected 0", metrics.DurationSecs)
	}
}

func TestTemporalMetricsMultiple(t *testing.T) {
	// out of order on purpose; metrics sort internally
	metrics := TemporalMetricsFromEvents([]narrative.Event{
		testEvent(0, 0, "2024-01-01T12:00:00Z"),
		testEvent(0, 0, "2024-01-01T10:00:00Z"),
		testEvent(0, 0, "2024-01-01T11:00:00Z"),
	})

	if metrics.EventCount != 3 {
		t.Errorf("EventCount = %d, expected 3", metrics.EventCount)
	}
	if metrics.DurationSecs != 7200.0 {
		t.Errorf("DurationSecs = %f, expected 7200", metrics.DurationSecs)
	}
	if metrics.AvgInterEventSecs != 3600.0 {
		t.Errorf("AvgInterEventSecs = %f, expected 3600", metrics.AvgInterEventSecs)
	}
	if metrics.MinInterEventSecs != 3600.0 || metrics.MaxInterEventSecs != 3600.0 {
		t.Errorf("min/max gaps = %f/%f, expected 3600/3600",
			metrics.MinInterEventSecs, metrics.MaxInterEventSecs)
	}
	if metrics.InterEventStdDevSecs != 0 {
		t.Errorf("std dev = %f, expected 0 for equal gaps", metrics.InterEventStdDevSecs)
	}
}

func TestTemporalMetricsStdDevIsPopulation(t *testing.T) {
	// gaps of 1000s and 3000s: mean 2000, population std dev 1000
	metrics := TemporalMetricsFromTimestamps([]narrative.Timestamp{
		narrative.TimestampFromUnixMilli(0),
		narrative.TimestampFromUnixMilli(1_000_000),
		narrative.TimestampFromUnixMilli(4_000_000),
	})

	if math.Abs(metrics.InterEventStdDevSecs-1000.0) > 1e-9 {
		t.Errorf("std dev = %f, expected 1000 (population, not sample)",
			metrics.InterEventStdDevSecs)
	}
}

func TestEventRate(t *testing.T) {
	events := []narrative.Event{
		testEvent(0, 0, "2024-01-01T10:00:00Z"),
		testEvent(0, 0, "2024-01-01T10:30:00Z"),
		testEvent(0, 0, "2024-01-01T11:15:00Z"),
	}

	rates := EventRate(events, BinHour)

	if len(rates) != 2 {
		t.Fatalf("bins = %d, expected 2", len(rates))
	}
	if rates[0].Count != 2 || rates[1].Count != 1 {
		t.Errorf("counts = [%d, %d], expected [2, 1]", rates[0].Count, rates[1].Count)
	}
}

func TestEventRateContiguous(t *testing.T) {
	// two events a day apart with hourly bins: interior bins must be
	// present with zero counts, and counts must sum to the input size
	events := []narrative.Event{
		testEvent(0, 0, "2024-01-01T10:00:00Z"),
		testEvent(0, 0, "2024-01-02T10:00:00Z"),
	}

	rates := EventRate(events, BinHour)

	if len(rates) != 25 {
		t.Fatalf("bins = %d, expected 25", len(rates))
	}
	total := 0
	for i, bin := range rates {
		total += bin.Count
		if i > 0 {
			prev := rates[i-1]
			if bin.Start.UnixMilli() != prev.End.UnixMilli() {
				t.Fatalf("bin %d not contiguous with previous", i)
			}
		}
	}
	if total != len(events) {
		t.Errorf("bin counts sum to %d, expected %d", total, len(events))
	}
}

func TestEventRateEmpty(t *testing.T) {
	if rates := EventRate(nil, BinDay); len(rates) != 0 {
		t.Errorf("bins = %d, expected 0", len(rates))
	}
}

func TestDetectGaps(t *testing.T) {
	events := []narrative.Event{
		testEvent(0, 0, "2024-01-01T10:00:00Z"),
		testEvent(0, 0, "2024-01-01T10:30:00Z"),
		testEvent(0, 0, "2024-01-01T15:00:00Z"), // 4.5 hour gap
	}

	gaps := DetectGaps(events, 3600)

	if len(gaps) != 1 {
		t.Fatalf("gaps = %d, expected 1", len(gaps))
	}
	if gaps[0].Start.UnixMilli() != mustTimestamp("2024-01-01T10:30:00Z").UnixMilli() {
		t.Errorf("gap start = %s, expected 10:30", gaps[0].Start)
	}
	if gaps[0].End.UnixMilli() != mustTimestamp("2024-01-01T15:00:00Z").UnixMilli() {
		t.Errorf("gap end = %s, expected 15:00", gaps[0].End)
	}
}

func TestDetectBursts(t *testing.T) {
	events := []narrative.Event{
		testEvent(0, 0, "2024-01-01T10:00:00Z"),
		testEvent(0, 0, "2024-01-01T10:01:00Z"),
		testEvent(0, 0, "2024-01-01T10:02:00Z"),
		testEvent(0, 0, "2024-01-01T15:00:00Z"), // isolated
	}

	bursts := DetectBursts(events, 300, 3)

	if len(bursts) != 1 {
		t.Fatalf("bursts = %d, expected 1", len(bursts))
	}
	if bursts[0].Start.UnixMilli() != mustTimestamp("2024-01-01T10:00:00Z").UnixMilli() {
		t.Errorf("burst start = %s, expected 10:00", bursts[0].Start)
	}
	if bursts[0].End.UnixMilli() != mustTimestamp("2024-01-01T10:02:00Z").UnixMilli() {
		t.Errorf("burst end = %s, expected 10:02", bursts[0].End)
	}
}

func TestDetectBurstsNonOverlapping(t *testing.T) {
	// six events one minute apart; with a 5-minute window and
	// min 3 events, the greedy scan consumes runs whole
	events := []narrative.Event{
		testEvent(0, 0, "2024-01-01T10:00:00Z"),
		testEvent(0, 0, "2024-01-01T10:01:00Z"),
		testEvent(0, 0, "2024-01-01T10:02:00Z"),
		testEvent(0, 0, "2024-01-01T10:03:00Z"),
		testEvent(0, 0, "2024-01-01T10:04:00Z"),
		testEvent(0, 0, "2024-01-01T10:05:00Z"),
	}

	bursts := DetectBursts(events, 300, 3)

	for i := 1; i < len(bursts); i++ {
		if bursts[i].Start.UnixMilli() <= bursts[i-1].End.UnixMilli() {
			t.Fatalf("bursts %d and %d overlap", i-1, i)
		}
	}
}

func TestDetectBurstsDegenerate(t *testing.T) {
	events := []narrative.Event{testEvent(0, 0, "2024-01-01T10:00:00Z")}

	if got := DetectBursts(nil, 300, 3); len(got) != 0 {
		t.Errorf("empty input: bursts = %d, expected 0", len(got))
	}
	if got := DetectBursts(events, 300, 0); len(got) != 0 {
		t.Errorf("minEvents=0: bursts = %d, expected 0", len(got))
	}
}
