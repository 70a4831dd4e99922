package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// PlaceholderTitle replaces empty or whitespace-only titles at save time.
	PlaceholderTitle = "Untitled"

	// WelcomeTitle is the title of the note seeded into an empty collection.
	WelcomeTitle = "Welcome"

	// WelcomeContent is the body of the seeded welcome note.
	WelcomeContent = "Write your notes here.\n\nTips:\n- Ctrl+N creates a note\n- Ctrl+S saves\n- Ctrl+F focuses the search"

	// TimeLayout renders timestamps in UTC with fixed millisecond precision,
	// so lexicographic order matches chronological order.
	TimeLayout = "2006-01-02T15:04:05.000Z"
)

// Note is the only persisted entity: a titled text record with
// creation and update timestamps.
type Note struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Answer is a pre-resolved reply to a prompt (e.g. "new title?").
// The store never prompts by itself; callers resolve the dialog and hand
// over either a value or an abort.
type Answer struct {
	Value   string
	Aborted bool
}

// Submitted returns an answer carrying v.
func Submitted(v string) Answer {
	return Answer{Value: v}
}

// Aborted is the answer of a cancelled prompt.
var Aborted = Answer{Aborted: true}

// NormalizeTitle trims t and falls back to PlaceholderTitle when nothing is left.
func NormalizeTitle(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return PlaceholderTitle
	}
	return t
}

// FormatTime renders t using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp produced by FormatTime.
// RFC 3339 values written by other tools are accepted as well.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// NewID returns a fresh note id.
func NewID() string {
	return "n_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
