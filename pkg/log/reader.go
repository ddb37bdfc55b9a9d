package log

import (
	"io"
	"os"
	"time"
)

// Filter specifies criteria for filtering log events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// ConnectionID filters by exact connection ID match.
	ConnectionID string

	// Direction filters by message direction.
	Direction *Direction

	// Layer filters by protocol layer.
	Layer *Layer

	// Category filters by event category.
	Category *Category

	// Channel filters by channel name.
	Channel string

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// matches returns true if the event matches all filter criteria.
func (f *Filter) matches(event Event) bool {
	if f.ConnectionID != "" && event.ConnectionID != f.ConnectionID {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.Channel != "" && event.Channel != f.Channel {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader reads protocol log events from a CBOR-encoded capture file.
// It provides an iterator interface for streaming large files.
type Reader struct {
	file   *os.File
	filter *Filter
}

// NewReader opens a capture file for reading. Pass nil to read all events.
func NewReader(path string, filter *Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, filter: filter}, nil
}

// ReadAll reads every event matching the filter and closes the file.
func (r *Reader) ReadAll() ([]Event, error) {
	defer r.file.Close()

	dec := NewDecoder(r.file)

	var events []Event
	for {
		var event Event
		if err := dec.Decode(&event); err != nil {
			if err == io.EOF {
				return events, nil
			}
			return events, err
		}
		if r.filter == nil || r.filter.matches(event) {
			events = append(events, event)
		}
	}
}
