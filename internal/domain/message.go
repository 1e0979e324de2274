package domain

import "time"

// SystemAuthor marks transcript events that have no human author
// (encryption notices, subject changes, joins and leaves).
const SystemAuthor = "system"

// NotAvailable is returned by analytics when a tally is empty.
const NotAvailable = "n/a"

// Message is one parsed chat event. Messages are built once during
// transcript parsing and never mutated afterwards.
type Message struct {
	Timestamp time.Time
	Author    string
	Body      string

	// At most one of the two is set, and only when the body exactly
	// matches an entry enumerated in the archive's media listing.
	ImageRef string
	VideoRef string
}

// HasMedia reports whether the message carries a verified attachment.
func (m Message) HasMedia() bool {
	return m.ImageRef != "" || m.VideoRef != ""
}

// Timeline is the ordered message sequence for one archive plus the
// archive's media listing split by kind. Order is insertion order from
// the transcript; duplicate timestamps are preserved. A Timeline is
// rebuilt wholesale when a new archive is loaded.
type Timeline struct {
	Messages   []Message
	ImageFiles []string
	VideoFiles []string
}

// MediaFiles returns every enumerated media entry, images first,
// both in archive listing order.
func (t *Timeline) MediaFiles() []string {
	out := make([]string, 0, len(t.ImageFiles)+len(t.VideoFiles))
	out = append(out, t.ImageFiles...)
	out = append(out, t.VideoFiles...)
	return out
}

// TimeWindow selects a contiguous suffix of a timeline by wall-clock
// cutoff relative to now.
type TimeWindow string

const (
	WindowDay   TimeWindow = "24h"
	WindowWeek  TimeWindow = "7d"
	WindowMonth TimeWindow = "30d"
	WindowAll   TimeWindow = "all"
)

// Duration returns the window's fixed lookback, or false for WindowAll
// and unrecognized values.
func (w TimeWindow) Duration() (time.Duration, bool) {
	switch w {
	case WindowDay:
		return 24 * time.Hour, true
	case WindowWeek:
		return 7 * 24 * time.Hour, true
	case WindowMonth:
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

// Valid reports whether w is one of the supported windows.
func (w TimeWindow) Valid() bool {
	if w == WindowAll {
		return true
	}
	_, ok := w.Duration()
	return ok
}

// Label returns the human-readable name shown in the bot UI.
func (w TimeWindow) Label() string {
	switch w {
	case WindowDay:
		return "Last 24 hours"
	case WindowWeek:
		return "Last 7 days"
	case WindowMonth:
		return "Last 30 days"
	case WindowAll:
		return "All time"
	}
	return string(w)
}

// DetailLevel is an ordinal knob controlling requested summary length
// and the number of excerpts and media call-outs asked of the
// summarizer. Pure configuration, never persisted as domain data.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailStandard DetailLevel = "standard"
	DetailVerbose  DetailLevel = "verbose"
)

// Valid reports whether d is one of the supported detail levels.
func (d DetailLevel) Valid() bool {
	switch d {
	case DetailBrief, DetailStandard, DetailVerbose:
		return true
	}
	return false
}
