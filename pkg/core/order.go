package core

import (
	"sort"
	"strings"
)

// SortNotes returns a copy of notes ordered most-recently-updated first.
// UpdatedAt values are compared as strings; empty values sort last and
// equal values keep their relative order.
func SortNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	copy(out, notes)
	sortInPlace(out)
	return out
}

func sortInPlace(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt > notes[j].UpdatedAt
	})
}

// Matches reports whether term occurs, case-insensitively, in the note's
// title or content. An empty (or blank) term matches every note.
func Matches(n Note, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return matchesLower(n, term)
}

func matchesLower(n Note, term string) bool {
	hay := strings.ToLower(n.Title + "\n" + n.Content)
	return strings.Contains(hay, term)
}

// Search returns the notes matching term, in display order.
func Search(notes []Note, term string) []Note {
	term = strings.ToLower(strings.TrimSpace(term))
	sorted := SortNotes(notes)
	if term == "" {
		return sorted
	}
	out := make([]Note, 0, len(sorted))
	for _, n := range sorted {
		if matchesLower(n, term) {
			out = append(out, n)
		}
	}
	return out
}
