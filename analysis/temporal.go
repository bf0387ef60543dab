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
	"slices"

	"github.com/geostory/geostory/narrative"
)

// TemporalMetrics summarizes the timing of a set of events.
// The zero value is the result for empty input.
type TemporalMetrics struct {
	// Number of events analyzed.
	EventCount int `json:"event_count"`

	// [min, max] of the events' timestamps; nil when there are none.
	TimeRange *narrative.TimeRange `json:"time_range,omitempty"`

	// Span of the time range in seconds.
	DurationSecs float64 `json:"duration_secs"`

	// Statistics over the gaps between consecutive events after
	// sorting, in seconds. StdDev is the population standard
	// deviation, not the sample one.
	AvgInterEventSecs    float64 `json:"avg_inter_event_secs"`
	MinInterEventSecs    float64 `json:"min_inter_event_secs"`
	MaxInterEventSecs    float64 `json:"max_inter_event_secs"`
	InterEventStdDevSecs float64 `json:"inter_event_std_dev_secs"`
}

// TemporalMetricsFromEvents computes temporal metrics over the
// events' timestamps. Input order does not matter; timestamps are
// sorted internally.
func TemporalMetricsFromEvents(events []narrative.Event) TemporalMetrics {
	timestamps := make([]narrative.Timestamp, len(events))
	for i, e := range events {
		timestamps[i] = e.Timestamp
	}
	return TemporalMetricsFromTimestamps(timestamps)
}

// TemporalMetricsFromTimestamps computes temporal metrics over a set
// of timestamps. Empty input yields the zero value.
func TemporalMetricsFromTimestamps(timestamps []narrative.Timestamp) TemporalMetrics {
	if len(timestamps) == 0 {
		return TemporalMetrics{}
	}

	sorted := sortedMillis(timestamps)
	first, last := sorted[0], sorted[len(sorted)-1]

	timeRange := narrative.TimeRange{
		Start: narrative.TimestampFromUnixMilli(first),
		End:   narrative.TimestampFromUnixMilli(last),
	}

	metrics := TemporalMetrics{
		EventCount:   len(timestamps),
		TimeRange:    &timeRange,
		DurationSecs: float64(last-first) / 1000.0,
	}

	if len(sorted) < 2 {
		return metrics
	}

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, float64(sorted[i]-sorted[i-1])/1000.0)
	}

	var sum float64
	minGap, maxGap := math.Inf(1), math.Inf(-1)
	for _, g := range gaps {
		sum += g
		minGap = math.Min(minGap, g)
		maxGap = math.Max(maxGap, g)
	}
	avg := sum / float64(len(gaps))

	var variance float64
	for _, g := range gaps {
		variance += (g - avg) * (g - avg)
	}
	variance /= float64(len(gaps))

	metrics.AvgInterEventSecs = avg
	metrics.MinInterEventSecs = minGap
	metrics.MaxInterEventSecs = maxGap
	metrics.InterEventStdDevSecs = math.Sqrt(variance)

	return metrics
}

func sortedMillis(timestamps []narrative.Timestamp) []int64 {
	ms := make([]int64, len(timestamps))
	for i, ts := range timestamps {
		ms[i] = ts.UnixMilli()
	}
	slices.Sort(ms)
	return ms
}

// TimeBin is the granularity of event-rate binning. Each bin has a
// fixed millisecond width; months and years use calendar-average
// widths (~30.44 days and ~365.25 days), not calendar-exact ones.
type TimeBin int

const (
	BinHour TimeBin = iota
	BinDay
	BinWeek
	BinMonth
	BinYear
)

func (b TimeBin) millis() int64 {
	switch b {
	case BinHour:
		return 3_600_000
	case BinDay:
		return 86_400_000
	case BinWeek:
		return 604_800_000
	case BinMonth:
		return 2_629_800_000
	case BinYear:
		return 31_557_600_000
	}
	return 3_600_000
}

// TimeBinCount is the number of events falling in one time bin.
type TimeBinCount struct {
	Start narrative.Timestamp `json:"start"`
	End   narrative.Timestamp `json:"end"`
	Count int                 `json:"count"`
}

// EventRate counts events per fixed-width time bin. Bins are
// left-aligned on multiples of the bin width from the Unix epoch
// (UTC), and the output is contiguous from the first event's bin to
// the last event's bin inclusive — interior bins with zero events
// are included, never skipped. Empty input yields an empty result.
func EventRate(events []narrative.Event, bin TimeBin) []TimeBinCount {
	if len(events) == 0 {
		return nil
	}

	timestamps := make([]narrative.Timestamp, len(events))
	for i, e := range events {
		timestamps[i] = e.Timestamp
	}
	sorted := sortedMillis(timestamps)

	binMillis := bin.millis()

	counts := make(map[int64]int)
	for _, ms := range sorted {
		counts[(ms/binMillis)*binMillis]++
	}

	firstBin := (sorted[0] / binMillis) * binMillis
	lastBin := (sorted[len(sorted)-1] / binMillis) * binMillis

	var result []TimeBinCount
	for binStart := firstBin; binStart <= lastBin; binStart += binMillis {
		result = append(result, TimeBinCount{
			Start: narrative.TimestampFromUnixMilli(binStart),
			End:   narrative.TimestampFromUnixMilli(binStart + binMillis),
			Count: counts[binStart],
		})
	}

	return result
}

// DetectGaps reports every span between consecutive events (after
// sorting) that exceeds the threshold, as the time range between the
// two bounding events.
func DetectGaps(events []narrative.Event, thresholdSecs float64) []narrative.TimeRange {
	if len(events) < 2 {
		return nil
	}

	timestamps := make([]narrative.Timestamp, len(events))
	for i, e := range events {
		timestamps[i] = e.Timestamp
	}
	sorted := sortedMillis(timestamps)

	thresholdMillis := int64(thresholdSecs * 1000)

	var gaps []narrative.TimeRange
	for i := 1; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] > thresholdMillis {
			gaps = append(gaps, narrative.TimeRange{
				Start: narrative.TimestampFromUnixMilli(sorted[i-1]),
				End:   narrative.TimestampFromUnixMilli(sorted[i]),
			})
		}
	}

	return gaps
}

// DetectBursts finds periods of dense activity: a greedy scan over
// the sorted timestamps that, at each unconsumed event, counts how
// many events (itself included) fall within windowSecs of it. If at
// least minEvents do, the burst spans from that event to the last
// one counted and the scan resumes past the whole run; otherwise the
// scan advances by one. Bursts are anchored at actual event times,
// so two bursts never overlap.
func DetectBursts(events []narrative.Event, windowSecs float64, minEvents int) []narrative.TimeRange {
	if len(events) == 0 || minEvents == 0 {
		return nil
	}

	timestamps := make([]narrative.Timestamp, len(events))
	for i, e := range events {
		timestamps[i] = e.Timestamp
	}
	sorted := sortedMillis(timestamps)

	windowMillis := int64(windowSecs * 1000)

	var bursts []narrative.TimeRange
	i := 0
	for i < len(sorted) {
		windowEnd := sorted[i] + windowMillis

		count := 0
		for _, ms := range sorted[i:] {
			if ms >= windowEnd {
				break
			}
			count++
		}

		if count >= minEvents {
			last := i + count - 1
			bursts = append(bursts, narrative.TimeRange{
				Start: narrative.TimestampFromUnixMilli(sorted[i]),
				End:   narrative.TimestampFromUnixMilli(sorted[last]),
			})
			i = last + 1
		} else {
			i++
		}
	}

	return bursts
}
