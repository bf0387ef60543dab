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

	"github.com/geostory/geostory/narrative"
)

// SpatialMetrics summarizes the geography of a set of events.
// The zero value is the result for empty input.
type SpatialMetrics struct {
	// Number of events analyzed.
	EventCount int `json:"event_count"`

	// Bounding box containing all events; nil when there are none.
	Bounds *narrative.GeoBounds `json:"bounds,omitempty"`

	// Center of mass of the events, computed by spherical-vector
	// averaging (correct across the antimeridian); nil when there
	// are no events.
	Centroid *narrative.Location `json:"centroid,omitempty"`

	// Total distance in meters between consecutive events, taking
	// the input order as the temporal order.
	TotalDistance float64 `json:"total_distance"`

	// Average consecutive-step distance in meters.
	AvgDistance float64 `json:"avg_distance"`

	// Largest single consecutive-step distance in meters.
	MaxDistance float64 `json:"max_distance"`

	// Mean distance in meters from each event to the centroid.
	Dispersion float64 `json:"dispersion"`

	// Approximate area in square meters: width x height of the
	// bounding box measured with haversine edges. This is not a
	// polygon or convex-hull area; treat it as an order-of-magnitude
	// figure only. Nil when there are no events.
	Area *float64 `json:"area,omitempty"`
}

// SpatialMetricsFromEvents computes spatial metrics over the events'
// locations. Events are assumed to already be in chronological order
// for the consecutive-distance figures.
func SpatialMetricsFromEvents(events []narrative.Event) SpatialMetrics {
	locations := make([]narrative.Location, len(events))
	for i, e := range events {
		locations[i] = e.Location
	}
	return SpatialMetricsFromLocations(locations)
}

// SpatialMetricsFromLocations computes spatial metrics over a
// sequence of locations. Empty input yields the zero value.
func SpatialMetricsFromLocations(locations []narrative.Location) SpatialMetrics {
	if len(locations) == 0 {
		return SpatialMetrics{}
	}

	bounds := computeBounds(locations)
	centroid := sphericalCentroid(locations)
	total, avg, maxDist := consecutiveDistances(locations)

	var dispersion float64
	if centroid != nil {
		var sum float64
		for _, loc := range locations {
			sum += narrative.Distance(loc, *centroid)
		}
		dispersion = sum / float64(len(locations))
	}

	var area *float64
	if bounds != nil {
		sw := narrative.Location{Latitude: bounds.MinLat, Longitude: bounds.MinLon}
		se := narrative.Location{Latitude: bounds.MinLat, Longitude: bounds.MaxLon}
		nw := narrative.Location{Latitude: bounds.MaxLat, Longitude: bounds.MinLon}
		a := narrative.Distance(sw, se) * narrative.Distance(sw, nw)
		area = &a
	}

	return SpatialMetrics{
		EventCount:    len(locations),
		Bounds:        bounds,
		Centroid:      centroid,
		TotalDistance: total,
		AvgDistance:   avg,
		MaxDistance:   maxDist,
		Dispersion:    dispersion,
		Area:          area,
	}
}

func computeBounds(locations []narrative.Location) *narrative.GeoBounds {
	if len(locations) == 0 {
		return nil
	}

	b := narrative.GeoBounds{
		MinLat: math.MaxFloat64, MaxLat: -math.MaxFloat64,
		MinLon: math.MaxFloat64, MaxLon: -math.MaxFloat64,
	}
	for _, loc := range locations {
		b.MinLat = math.Min(b.MinLat, loc.Latitude)
		b.MaxLat = math.Max(b.MaxLat, loc.Latitude)
		b.MinLon = math.Min(b.MinLon, loc.Longitude)
		b.MaxLon = math.Max(b.MaxLon, loc.Longitude)
	}
	return &b
}

// sphericalCentroid averages points as unit 3-D vectors and converts
// the mean back to a coordinate. Averaging raw degrees instead would
// misplace the centroid for point sets straddling the antimeridian
// or clustered near a pole. Elevation, when present on at least one
// point, is averaged over only the points that carry it.
func sphericalCentroid(locations []narrative.Location) *narrative.Location {
	if len(locations) == 0 {
		return nil
	}
	if len(locations) == 1 {
		// the Cartesian round trip is not exact at float64 precision;
		// a single point is its own centroid
		loc := locations[0]
		return &loc
	}

	var x, y, z float64
	for _, loc := range locations {
		latRad := loc.Latitude * (math.Pi / 180)
		lonRad := loc.Longitude * (math.Pi / 180)
		x += math.Cos(latRad) * math.Cos(lonRad)
		y += math.Cos(latRad) * math.Sin(lonRad)
		z += math.Sin(latRad)
	}

	n := float64(len(locations))
	x /= n
	y /= n
	z /= n

	lon := math.Atan2(y, x) * (180 / math.Pi)
	hyp := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, hyp) * (180 / math.Pi)

	centroid := narrative.Location{Latitude: lat, Longitude: lon}

	var elevSum float64
	var elevCount int
	for _, loc := range locations {
		if loc.Elevation != nil {
			elevSum += *loc.Elevation
			elevCount++
		}
	}
	if elevCount > 0 {
		elev := elevSum / float64(elevCount)
		centroid.Elevation = &elev
	}

	return &centroid
}

func consecutiveDistances(locations []narrative.Location) (total, avg, maxDist float64) {
	if len(locations) < 2 {
		return 0, 0, 0
	}
	for i := 1; i < len(locations); i++ {
		d := narrative.Distance(locations[i-1], locations[i])
		total += d
		maxDist = math.Max(maxDist, d)
	}
	avg = total / float64(len(locations)-1)
	return total, avg, maxDist
}

// DensityCell is one grid cell of a density map.
type DensityCell struct {
	// Center of the cell in degrees.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Number of events falling in the cell.
	Count int `json:"count"`

	// Events per square kilometer, using the cell's approximate
	// haversine-edge area.
	Density float64 `json:"density"`
}

// DensityMap partitions the events' bounding box into a rows x cols
// grid of equal-angle cells and counts events per cell. Cells are
// returned in row-major order. Empty input or a zero grid dimension
// yields an empty result.
func DensityMap(events []narrative.Event, rows, cols int) []DensityCell {
	if len(events) == 0 || rows <= 0 || cols <= 0 {
		return nil
	}

	locations := make([]narrative.Location, len(events))
	for i, e := range events {
		locations[i] = e.Location
	}
	bounds := computeBounds(locations)

	latStep := (bounds.MaxLat - bounds.MinLat) / float64(rows)
	lonStep := (bounds.MaxLon - bounds.MinLon) / float64(cols)

	counts := make([][]int, rows)
	for i := range counts {
		counts[i] = make([]int, cols)
	}

	for _, loc := range locations {
		var row, col int
		if latStep > 0 {
			row = int(math.Floor((loc.Latitude - bounds.MinLat) / latStep))
		}
		if lonStep > 0 {
			col = int(math.Floor((loc.Longitude - bounds.MinLon) / lonStep))
		}
		// a point exactly on the upper edge indexes one past the
		// last row/column; clamp it back in
		row = min(row, rows-1)
		col = min(col, cols-1)
		counts[row][col]++
	}

	cells := make([]DensityCell, 0, rows*cols)
	for row := range rows {
		for col := range cols {
			cellLat := bounds.MinLat + (float64(row)+0.5)*latStep
			cellLon := bounds.MinLon + (float64(col)+0.5)*lonStep

			width := narrative.Distance(
				narrative.Location{Latitude: cellLat, Longitude: bounds.MinLon},
				narrative.Location{Latitude: cellLat, Longitude: bounds.MinLon + lonStep},
			)
			height := narrative.Distance(
				narrative.Location{Latitude: bounds.MinLat, Longitude: cellLon},
				narrative.Location{Latitude: bounds.MinLat + latStep, Longitude: cellLon},
			)
			areaKm2 := (width * height) / 1_000_000.0

			var density float64
			if areaKm2 > 0 {
				density = float64(counts[row][col]) / areaKm2
			}

			cells = append(cells, DensityCell{
				Lat:     cellLat,
				Lon:     cellLon,
				Count:   counts[row][col],
				Density: density,
			})
		}
	}

	return cells
}
