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

// Package analysis is the analytics engine over resolved narrative
// events: spatial and temporal summaries, density-based and
// centroid-based clustering, trajectory and stop analysis, and
// cross-narrative similarity scoring.
//
// Every function here is a pure transformation: inputs are read-only
// caller-owned slices, outputs are freshly allocated, and degenerate
// inputs (empty slices, zero parameters) yield documented zero
// results rather than errors. Independent analyses are safe to run
// concurrently.
//
// Distance work is exhaustive pairwise geometry; nothing here builds
// a spatial index, so clustering and comparison are O(n^2) in the
// number of events.
package analysis

import (
	"github.com/geostory/geostory/narrative"
)

// Log is this package's logger, derived from the process log.
var Log = narrative.Log.Named("analysis")
