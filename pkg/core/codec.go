package core

import (
	"encoding/json"
	"fmt"
)

// Record is the persisted form of the collection.
type Record struct {
	Notes    []Note `json:"notes"`
	ActiveID string `json:"activeId,omitempty"`
}

// Snapshot is a read-only copy of the store state. Notes are in display order.
type Snapshot = Record

// Encode serializes r as the JSON blob written to the KV store.
func Encode(r Record) ([]byte, error) {
	if r.Notes == nil {
		r.Notes = []Note{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode notes: %w", err)
	}
	return data, nil
}

// Decode parses a blob produced by Encode.
// A value that does not have the record shape is an error; a missing
// notes array decodes as an empty collection.
func Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode notes: %w", err)
	}
	if r.Notes == nil {
		r.Notes = []Note{}
	}
	return r, nil
}

// clone returns a deep copy of r (Notes hold only strings).
func (r Record) clone() Record {
	notes := make([]Note, len(r.Notes))
	copy(notes, r.Notes)
	return Record{Notes: notes, ActiveID: r.ActiveID}
}

// Find returns the note with the given id.
func (r Record) Find(id string) (Note, bool) {
	if i := r.index(id); i >= 0 {
		return r.Notes[i], true
	}
	return Note{}, false
}

// Active returns the active note, if any.
func (r Record) Active() (Note, bool) {
	if r.ActiveID == "" {
		return Note{}, false
	}
	return r.Find(r.ActiveID)
}

func (r Record) index(id string) int {
	for i := range r.Notes {
		if r.Notes[i].ID == id {
			return i
		}
	}
	return -1
}
