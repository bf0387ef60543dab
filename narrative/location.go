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
	"math"
	"strconv"
	"strings"
)

// earthRadiusMeters is the mean Earth radius of the spherical model
// used by all geodesic math in this package.
const earthRadiusMeters = 6_371_000.0

// Location is a point on Earth in WGS84 degrees. It is a value type;
// once constructed it is never modified. Locations are only ever
// compared through the geodesic functions below — raw-degree
// arithmetic is wrong near the antimeridian and the poles.
type Location struct {
	Latitude  float64 `json:"latitude"`  // degrees, [-90, 90]
	Longitude float64 `json:"longitude"` // degrees, [-180, 180]

	// Optional elevation above sea level, in meters.
	Elevation *float64 `json:"elevation,omitempty"`

	// If the approximate coordinate error is known,
	// specify it here in meters.
	Uncertainty *float64 `json:"uncertainty,omitempty"`

	// Display name of the place, if any (e.g. "Tulsa, OK").
	Name string `json:"name,omitempty"`
}

// NewLocation returns a Location at the given coordinate,
// or an error if either value is out of range.
func NewLocation(lat, lon float64) (Location, error) {
	if lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("latitude out of range [-90, 90]: %f", lat)
	}
	if lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("longitude out of range [-180, 180]: %f", lon)
	}
	return Location{Latitude: lat, Longitude: lon}, nil
}

func (l Location) String() string {
	var s strings.Builder
	s.WriteRune('(')
	s.WriteString(strconv.FormatFloat(l.Latitude, 'f', -1, 64))
	s.WriteString(", ")
	s.WriteString(strconv.FormatFloat(l.Longitude, 'f', -1, 64))
	s.WriteRune(')')
	if l.Name != "" {
		s.WriteRune(' ')
		s.WriteString(l.Name)
	}
	return s.String()
}

// Distance returns the great-circle (haversine) distance between
// two locations in meters. It is symmetric and zero for coincident
// points.
func Distance(a, b Location) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	deltaLat := degreesToRadians(b.Latitude - a.Latitude)
	deltaLon := degreesToRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(deltaLat / 2)
	sinLon := math.Sin(deltaLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return earthRadiusMeters * 2 * math.Asin(math.Sqrt(h))
}

// Bearing returns the initial bearing from a toward b,
// in degrees normalized to [0, 360).
func Bearing(a, b Location) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	deltaLon := degreesToRadians(b.Longitude - a.Longitude)

	x := math.Sin(deltaLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	return math.Mod(radiansToDegrees(math.Atan2(x, y))+360, 360)
}

// Destination projects a point along a bearing (degrees, 0 = north)
// for a distance (meters) and returns the resulting coordinate.
func Destination(start Location, bearingDeg, distanceMeters float64) Location {
	lat := degreesToRadians(start.Latitude)
	lon := degreesToRadians(start.Longitude)
	brng := degreesToRadians(bearingDeg)
	angular := distanceMeters / earthRadiusMeters

	destLat := math.Asin(math.Sin(lat)*math.Cos(angular) +
		math.Cos(lat)*math.Sin(angular)*math.Cos(brng))
	destLon := lon + math.Atan2(
		math.Sin(brng)*math.Sin(angular)*math.Cos(lat),
		math.Cos(angular)-math.Sin(lat)*math.Sin(destLat))

	return Location{
		Latitude:  radiansToDegrees(destLat),
		Longitude: normalizeLongitude(radiansToDegrees(destLon)),
	}
}

func degreesToRadians(d float64) float64 { return d * (math.Pi / 180) }
func radiansToDegrees(r float64) float64 { return r * (180 / math.Pi) }

// normalizeLongitude wraps a longitude into [-180, 180).
func normalizeLongitude(lon float64) float64 {
	return math.Mod(lon+540, 360) - 180
}

// GeoBounds is a latitude/longitude bounding box. Min <= Max on both
// axes; a single point has Min == Max.
type GeoBounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// NewGeoBounds returns bounds over the given extents,
// or an error if either axis is inverted.
func NewGeoBounds(minLat, maxLat, minLon, maxLon float64) (GeoBounds, error) {
	if minLat > maxLat {
		return GeoBounds{}, fmt.Errorf("inverted latitude bounds: min %f > max %f", minLat, maxLat)
	}
	if minLon > maxLon {
		return GeoBounds{}, fmt.Errorf("inverted longitude bounds: min %f > max %f", minLon, maxLon)
	}
	return GeoBounds{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}, nil
}

// Contains returns true if the coordinate lies within the bounds,
// inclusive of the edges.
func (b GeoBounds) Contains(loc Location) bool {
	return loc.Latitude >= b.MinLat && loc.Latitude <= b.MaxLat &&
		loc.Longitude >= b.MinLon && loc.Longitude <= b.MaxLon
}

// Center returns the midpoint of the bounds in raw degrees.
func (b GeoBounds) Center() Location {
	return Location{
		Latitude:  (b.MinLat + b.MaxLat) / 2,
		Longitude: (b.MinLon + b.MaxLon) / 2,
	}
}
