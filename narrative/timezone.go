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
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// The timezone finder loads a sizable embedded polygon set, so it is
// initialized once per process, on first use.
var (
	tzOnce   sync.Once
	tzFinder tzf.F
	tzErr    error
)

// TimezoneName returns the IANA timezone name covering the given
// coordinate, e.g. "America/New_York".
func TimezoneName(loc Location) (string, error) {
	tzOnce.Do(func() {
		tzFinder, tzErr = tzf.NewDefaultFinder()
	})
	if tzErr != nil {
		return "", fmt.Errorf("initializing timezone finder: %w", tzErr)
	}
	name := tzFinder.GetTimezoneName(loc.Longitude, loc.Latitude)
	if name == "" {
		return "", fmt.Errorf("no timezone found for %s", loc)
	}
	return name, nil
}

// LocalTime returns the wall-clock time of ts at loc. Timestamps are
// stored and compared in UTC everywhere in this module; this is a
// presentation helper for callers that want civil time at the place
// an event happened.
func LocalTime(loc Location, ts Timestamp) (time.Time, error) {
	name, err := TimezoneName(loc)
	if err != nil {
		return time.Time{}, err
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return ts.Time().In(zone), nil
}
