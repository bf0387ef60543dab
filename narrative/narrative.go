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

// Package narrative defines the core value types of a spatial
// narrative: located, timestamped events and the collections that
// own them. Producers (geoparsers, importers) build these values;
// the analysis package reads them and never writes them back.
package narrative

import (
	"github.com/google/uuid"
)

// SourceRef points at the material an event was derived from.
type SourceRef struct {
	// Kind of source, e.g. "document", "url", "dataset".
	Kind string `json:"kind"`

	// Value identifies the source within its kind.
	Value string `json:"value"`
}

// Event is something that happened at a place and time. Events are
// treated as immutable once handed to analysis: every analysis
// output is freshly allocated and input events are only read.
type Event struct {
	Location  Location  `json:"location"`
	Timestamp Timestamp `json:"timestamp"`

	// Short human-readable label for the event.
	Label string `json:"label,omitempty"`

	// Free-form tags. Source data may contain duplicates; similarity
	// scoring collapses them to a set.
	Tags []string `json:"tags,omitempty"`

	// Where this event came from, if known.
	Source *SourceRef `json:"source,omitempty"`
}

// NewEvent returns an event at the given place and time.
func NewEvent(loc Location, ts Timestamp, label string) Event {
	return Event{Location: loc, Timestamp: ts, Label: label}
}

// Narrative is an ordered collection of events with metadata.
// It owns its events; analyses borrow a read-only view of them.
type Narrative struct {
	// Unique identifier of the narrative.
	ID string `json:"id"`

	// Free-text description of what the narrative covers.
	Description string `json:"description,omitempty"`

	events []Event
}

// NewNarrative returns an empty narrative with a fresh random ID.
func NewNarrative(description string) *Narrative {
	return &Narrative{
		ID:          uuid.NewString(),
		Description: description,
	}
}

// AddEvent appends an event, preserving insertion order.
func (n *Narrative) AddEvent(e Event) {
	n.events = append(n.events, e)
}

// Events returns the narrative's events in insertion order. The
// returned slice is a view into the narrative; callers must not
// modify it.
func (n *Narrative) Events() []Event { return n.events }

// Len returns the number of events in the narrative.
func (n *Narrative) Len() int { return len(n.events) }
