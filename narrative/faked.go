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
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// fakeTagVocabulary is the tag pool synthetic events draw from.
var fakeTagVocabulary = []string{
	"travel", "meeting", "protest", "festival",
	"market", "transit", "residence", "work",
}

// FakeNarrative generates a synthetic narrative of count geotagged,
// timestamped events, laid out as a plausible walk: each event hops
// a short geodesic distance from the previous one and advances the
// clock by a random gap. The same seed always produces the same
// narrative (aside from its random ID), which makes it useful for
// demos and volume testing.
func FakeNarrative(seed uint64, count int) *Narrative {
	faker := gofakeit.New(seed)

	n := NewNarrative("synthetic narrative")

	// start away from the poles so the walk stays in coordinate range
	loc := Location{
		Latitude:  faker.Float64Range(-60, 60),
		Longitude: faker.Float64Range(-180, 180),
	}
	ts := NewTimestamp(faker.DateRange(
		time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	))

	for range count {
		event := NewEvent(loc, ts, faker.City())
		for range faker.Number(0, 3) {
			event.Tags = append(event.Tags, faker.RandomString(fakeTagVocabulary))
		}
		n.AddEvent(event)

		// steer back toward the equator if the walk drifts too far north or south
		bearing := faker.Float64Range(0, 360)
		if loc.Latitude > 80 {
			bearing = 180
		} else if loc.Latitude < -80 {
			bearing = 0
		}
		loc = Destination(loc, bearing, faker.Float64Range(50, 5000))
		ts = TimestampFromUnixMilli(ts.UnixMilli() + int64(faker.Number(60, 7200))*1000)
	}

	return n
}
