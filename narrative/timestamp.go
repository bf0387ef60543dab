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

package narrative

import (
	"fmt"
	"time"
)

// TemporalPrecision describes how finely a Timestamp is actually
// known. Sources often record only a day, month, or year; the
// precision tag preserves that knowledge without changing how
// timestamps order (ordering always uses the millisecond value).
type TemporalPrecision int

const (
	// PrecisionExact means the timestamp is a known instant.
	PrecisionExact TemporalPrecision = iota

	// PrecisionDay means only the calendar day is known.
	PrecisionDay

	// PrecisionMonth means only the month is known.
	PrecisionMonth

	// PrecisionYear means only the year is known.
	PrecisionYear
)

func (p TemporalPrecision) String() string {
	switch p {
	case PrecisionExact:
		return "exact"
	case PrecisionDay:
		return "day"
	case PrecisionMonth:
		return "month"
	case PrecisionYear:
		return "year"
	}
	return fmt.Sprintf("precision(%d)", int(p))
}

// Timestamp is an instant expressed as signed milliseconds since the
// Unix epoch, UTC, together with a precision tag. It is a value type.
type Timestamp struct {
	ms        int64
	precision TemporalPrecision
}

// NewTimestamp returns an exact Timestamp for the given instant.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{ms: t.UnixMilli()}
}

// TimestampFromUnixMilli constructs a Timestamp from milliseconds
// since the Unix epoch. It round-trips with UnixMilli.
func TimestampFromUnixMilli(ms int64) Timestamp {
	return Timestamp{ms: ms}
}

// ParseTimestamp parses an RFC 3339 string into an exact Timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return NewTimestamp(t), nil
}

// WithPrecision returns a copy of the timestamp tagged with the given
// precision. The millisecond value is unchanged.
func (t Timestamp) WithPrecision(p TemporalPrecision) Timestamp {
	t.precision = p
	return t
}

// UnixMilli returns the timestamp as milliseconds since the Unix epoch.
func (t Timestamp) UnixMilli() int64 { return t.ms }

// Time returns the timestamp as a time.Time in UTC.
func (t Timestamp) Time() time.Time { return time.UnixMilli(t.ms).UTC() }

// Precision returns the precision tag.
func (t Timestamp) Precision() TemporalPrecision { return t.precision }

// Before reports whether t is strictly earlier than other.
// Precision is ignored for ordering.
func (t Timestamp) Before(other Timestamp) bool { return t.ms < other.ms }

// After reports whether t is strictly later than other.
func (t Timestamp) After(other Timestamp) bool { return t.ms > other.ms }

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}

// TimeRange is a closed interval of time with Start <= End.
type TimeRange struct {
	Start Timestamp `json:"start"`
	End   Timestamp `json:"end"`
}

// NewTimeRange returns the range [start, end], or an error
// if start is later than end.
func NewTimeRange(start, end Timestamp) (TimeRange, error) {
	if start.After(end) {
		return TimeRange{}, fmt.Errorf("inverted time range: start %s > end %s", start, end)
	}
	return TimeRange{Start: start, End: end}, nil
}

// DurationSecs returns the span of the range in seconds.
func (r TimeRange) DurationSecs() float64 {
	return float64(r.End.UnixMilli()-r.Start.UnixMilli()) / 1000.0
}

// Contains reports whether ts falls within the range, inclusive.
func (r TimeRange) Contains(ts Timestamp) bool {
	return ts.ms >= r.Start.ms && ts.ms <= r.End.ms
}
