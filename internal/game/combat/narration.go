package combat

import (
	"fmt"
	"strings"
)

// EventKind classifies a narration line for presentation.
type EventKind int

const (
	EventInfo EventKind = iota
	EventMove
	EventStatus
	EventSkip
)

// Event is one line of narration.
type Event struct {
	Side Side
	Kind EventKind
	Text string
}

// Narration is the running "what happened" buffer for a match. It is owned by
// the turn controller and handed to one component at a time.
type Narration struct {
	events []Event
}

// Add appends a formatted event.
func (n *Narration) Add(side Side, kind EventKind, format string, args ...any) {
	n.events = append(n.events, Event{Side: side, Kind: kind, Text: fmt.Sprintf(format, args...)})
}

// Events returns a copy of the buffered events in order.
func (n *Narration) Events() []Event {
	out := make([]Event, len(n.events))
	copy(out, n.events)
	return out
}

// Len returns the number of buffered events.
func (n *Narration) Len() int { return len(n.events) }

// Reset empties the buffer.
func (n *Narration) Reset() { n.events = n.events[:0] }

// String joins all event texts with newlines.
func (n *Narration) String() string {
	lines := make([]string, len(n.events))
	for i, e := range n.events {
		lines[i] = e.Text
	}
	return strings.Join(lines, "\n")
}
