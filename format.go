package execlog

import (
	"time"

	"github.com/goccy/go-json"
)

// Format renders one human-readable line:
//
//	<level>: <message> (File: <file>, Line: <line>)
//
// It is pure; identical input always yields identical output.
func Format(sev Severity, message string, loc SourceLocation) string {
	return sev.Level() + ": " + message + " (File: " + loc.FileString() + ", Line: " + loc.LineString() + ")"
}

// Entry is one logged event. Text holds the Format rendering; SinkFailure
// marks diagnostics about the sink itself, which are never buffered.
// Entries are immutable once appended to a Buffer.
type Entry struct {
	Severity    Severity
	Text        string
	Message     string
	Location    SourceLocation
	Err         error
	Time        time.Time
	SinkFailure bool
}

// NewEntry renders an entry for an already resolved location.
func NewEntry(sev Severity, message string, loc SourceLocation, err error, at time.Time) Entry {
	return Entry{
		Severity: sev,
		Text:     Format(sev, message, loc),
		Message:  message,
		Location: loc,
		Err:      err,
		Time:     at,
	}
}

// MarshalJSON encodes the entry the way the snapshot lists it: the rendered
// text under its level name plus an RFC 3339 timestamp.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		e.Severity.Level(): e.Text,
		"timestamp":        e.Time.Format(time.RFC3339Nano),
	})
}
