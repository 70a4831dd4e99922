// Package view projects the note collection into what a UI draws.
// Render is pure: the same inputs always give the same ViewModel.
package view

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/bloco/pkg/core"
)

// Status tokens shown next to the editor.
const (
	StatusReady   = "ready"
	StatusTyping  = "typing"
	StatusSaved   = "saved"
	StatusNoNote  = "create a note to begin"
	StatusFailed  = "save failed"
	EmptyMessage  = "No notes found."
	EmptySnippet  = "—"
	SnippetLength = 80
)

// UpdatedLayout formats the summary timestamp (local time).
const UpdatedLayout = "2006-01-02 15:04"

// Summary is one row of the note list.
type Summary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Updated string `json:"updated"`
	Active  bool   `json:"active"`
}

// Editor holds the fields of the active note.
type Editor struct {
	Enabled bool   `json:"enabled"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ViewModel is everything a UI needs to draw one frame.
type ViewModel struct {
	Notes        []Summary `json:"notes"`
	EmptyMessage string    `json:"empty_message,omitempty"`
	Editor       Editor    `json:"editor"`
	Status       string    `json:"status"`
	CharCount    int       `json:"char_count"`
	Meta         string    `json:"meta"`
}

// Render builds the view of notes filtered by term, with activeID highlighted.
func Render(notes []core.Note, activeID, term string) ViewModel {
	vm := ViewModel{Notes: List(notes, activeID, term)}
	if len(vm.Notes) == 0 {
		vm.EmptyMessage = EmptyMessage
	}

	for _, n := range notes {
		if activeID != "" && n.ID == activeID {
			vm.Editor = Editor{Enabled: true, Title: displayTitle(n.Title), Content: n.Content}
			break
		}
	}

	vm.Status = StatusNoNote
	if vm.Editor.Enabled {
		vm.Status = StatusReady
	}
	vm.CharCount = CharCount(vm.Editor.Content)
	vm.Meta = Meta(vm.Editor.Content)
	return vm
}

// RenderSnapshot is Render over a store snapshot.
func RenderSnapshot(snap core.Snapshot, term string) ViewModel {
	return Render(snap.Notes, snap.ActiveID, term)
}

// List returns the summaries of notes matching term, most recent first.
func List(notes []core.Note, activeID, term string) []Summary {
	matched := core.Search(notes, term)
	out := make([]Summary, 0, len(matched))
	for _, n := range matched {
		out = append(out, Summary{
			ID:      n.ID,
			Title:   displayTitle(n.Title),
			Snippet: Snippet(n.Content),
			Updated: FormatUpdated(n.UpdatedAt),
			Active:  n.ID == activeID,
		})
	}
	return out
}

// Snippet collapses whitespace and truncates content to SnippetLength runes.
func Snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	if s == "" {
		return EmptySnippet
	}
	if utf8.RuneCountInString(s) > SnippetLength {
		s = string([]rune(s)[:SnippetLength])
	}
	return s
}

// FormatUpdated renders a stored timestamp for the list, in local time.
// Unparseable or empty values render as "".
func FormatUpdated(stamp string) string {
	if stamp == "" {
		return ""
	}
	t, err := core.ParseTime(stamp)
	if err != nil {
		return ""
	}
	return "Updated: " + t.In(time.Local).Format(UpdatedLayout)
}

// CharCount counts the characters (runes) of content.
func CharCount(content string) int {
	return utf8.RuneCountInString(content)
}

// Meta is the character-count label.
func Meta(content string) string {
	return fmt.Sprintf("%d characters", CharCount(content))
}

func displayTitle(t string) string {
	if t == "" {
		return core.PlaceholderTitle
	}
	return t
}
