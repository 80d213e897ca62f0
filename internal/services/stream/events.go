// Package stream delivers crawl visit events to a presentation layer.
package stream

import (
	"time"

	"pycrawl/internal/types"
)

// SchemaVersion identifies the event schema for downstream consumers.
const SchemaVersion = 1

// EventKind classifies a crawl visit event.
type EventKind string

const (
	EventKindStart      EventKind = "start"
	EventKindDirectory  EventKind = "directory"
	EventKindFile       EventKind = "file"
	EventKindSkip       EventKind = "skip"
	EventKindParseError EventKind = "parse_error"
	EventKindDone       EventKind = "done"
)

// Event is one immutable visit notification. Events are emitted in traversal
// order; the final Done event carries the totals of the whole crawl.
type Event struct {
	Version   int       `json:"version"`
	Kind      EventKind `json:"kind"`
	Path      string    `json:"path,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty"`

	Depth        int                      `json:"depth,omitempty"`
	Reason       string                   `json:"reason,omitempty"`
	Failure      string                   `json:"failure,omitempty"`
	Declarations []types.DeclarationEntry `json:"declarations,omitempty"`
	Totals       *TotalsEvent             `json:"totals,omitempty"`
}

// TotalsEvent summarizes a completed crawl.
type TotalsEvent struct {
	Directories  int `json:"directories"`
	Files        int `json:"files"`
	Declarations int `json:"declarations"`
	Skipped      int `json:"skipped"`
	Failures     int `json:"failures"`
}
