package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Store owns the note collection and the active-note pointer.
//
// Every mutating operation either performs exactly one write to the KV store
// or, for guarded no-ops, none at all. A failed write leaves the in-memory
// state untouched, so memory and storage never drift apart.
// Operations are serialized by an internal mutex; listeners run after it is
// released and may call back into the store.
type Store struct {
	mu     sync.RWMutex
	kv     KV
	key    string
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	state Record

	listeners       map[int]Listener
	nextListener    int
	watchers        map[chan Event]struct{}
	eventBufferSize int

	writes      int
	lastPersist *time.Time
}

// NewStore creates a Store persisting to kv. Call Load before use.
func NewStore(kv KV, opts ...StoreOption) *Store {
	s := &Store{
		kv:              kv,
		key:             DefaultKey,
		logger:          slog.New(slog.DiscardHandler),
		now:             time.Now,
		newID:           NewID,
		state:           Record{Notes: []Note{}},
		listeners:       make(map[int]Listener),
		watchers:        make(map[chan Event]struct{}),
		eventBufferSize: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// KV returns the underlying storage, e.g. to check for Watchable.
func (s *Store) KV() KV {
	return s.kv
}

// Close releases the underlying storage when it holds resources (io.Closer).
func (s *Store) Close() error {
	if c, ok := s.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Load reads the persisted collection.
//
// An absent or malformed value is treated as "no prior state". If the
// collection is empty afterwards a welcome note is seeded and activated.
// The resulting state is always written back. Read errors other than
// ErrNotFound are returned and nothing is written.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	rec, err := s.readLocked(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if len(rec.Notes) == 0 {
		stamp := s.stamp()
		welcome := Note{
			ID:        s.newID(),
			Title:     WelcomeTitle,
			Content:   WelcomeContent,
			CreatedAt: stamp,
			UpdatedAt: stamp,
		}
		rec = Record{Notes: []Note{welcome}, ActiveID: welcome.ID}
		s.logger.Debug("seeded welcome note", "id", welcome.ID)
	}

	ev, listeners, err := s.commitLocked(ctx, rec, EventLoad, rec.ActiveID)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(ev, listeners)
	return nil
}

// Reload replaces the in-memory state with the persisted one.
// Used after another process changed the store. It never seeds and never writes.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	rec, err := s.readLocked(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = rec
	ev := Event{Type: EventReload, NoteID: rec.ActiveID, Snapshot: rec.clone()}
	listeners := s.publishLocked(ev)
	s.mu.Unlock()

	s.notify(ev, listeners)
	return nil
}

// CreateNote inserts an empty note with the placeholder title and makes it active.
func (s *Store) CreateNote(ctx context.Context) (Note, error) {
	var created Note
	_, err := s.mutate(ctx, func(next *Record) (EventType, string, bool) {
		id := s.newID()
		for next.index(id) >= 0 {
			id = s.newID()
		}
		stamp := s.stamp()
		created = Note{
			ID:        id,
			Title:     PlaceholderTitle,
			CreatedAt: stamp,
			UpdatedAt: stamp,
		}
		next.Notes = append([]Note{created}, next.Notes...)
		next.ActiveID = id
		return EventCreate, id, true
	})
	if err != nil {
		return Note{}, err
	}
	return created, nil
}

// RenameActive sets the title of the active note.
// An aborted answer is a no-op; a blank submitted title becomes PlaceholderTitle.
func (s *Store) RenameActive(ctx context.Context, title Answer) (bool, error) {
	if title.Aborted {
		return false, nil
	}
	return s.mutate(ctx, func(next *Record) (EventType, string, bool) {
		i := next.index(next.ActiveID)
		if i < 0 {
			return "", "", false
		}
		n := &next.Notes[i]
		n.Title = NormalizeTitle(title.Value)
		n.UpdatedAt = s.touch(n.UpdatedAt)
		return EventRename, n.ID, true
	})
}

// DeleteActive removes the active note once the caller confirmed it.
// The most recently updated remaining note becomes active, if any.
func (s *Store) DeleteActive(ctx context.Context, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}
	return s.mutate(ctx, func(next *Record) (EventType, string, bool) {
		i := next.index(next.ActiveID)
		if i < 0 {
			return "", "", false
		}
		id := next.Notes[i].ID
		next.Notes = append(next.Notes[:i], next.Notes[i+1:]...)
		sortInPlace(next.Notes)
		next.ActiveID = ""
		if len(next.Notes) > 0 {
			next.ActiveID = next.Notes[0].ID
		}
		return EventDelete, id, true
	})
}

// SetActive selects the note with the given id. Unknown ids are ignored.
func (s *Store) SetActive(ctx context.Context, id string) (bool, error) {
	return s.mutate(ctx, func(next *Record) (EventType, string, bool) {
		if next.index(id) < 0 {
			return "", "", false
		}
		next.ActiveID = id
		return EventSelect, id, true
	})
}

// SaveActiveContent commits editor fields to the active note.
// The title is normalized, the content is stored verbatim. It never changes
// which note is active nor the collection membership.
func (s *Store) SaveActiveContent(ctx context.Context, title, content string) (bool, error) {
	return s.mutate(ctx, func(next *Record) (EventType, string, bool) {
		i := next.index(next.ActiveID)
		if i < 0 {
			return "", "", false
		}
		n := &next.Notes[i]
		n.Title = NormalizeTitle(title)
		n.Content = content
		n.UpdatedAt = s.touch(n.UpdatedAt)
		return EventSave, n.ID, true
	})
}

// Search returns the notes matching term in display order. It has no side effects.
func (s *Store) Search(term string) []Note {
	s.mu.RLock()
	notes := s.state.Notes
	s.mu.RUnlock()
	return Search(notes, term)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Active returns the active note.
func (s *Store) Active() (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Active()
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Notes)
}

// OnChange registers a listener for committed mutations.
// The returned function removes it.
func (s *Store) OnChange(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Watch returns a buffered channel of events, closed when ctx is done.
// Slow consumers lose events instead of blocking the store.
func (s *Store) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event, s.eventBufferSize)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

// mutate applies fn to a copy of the state and commits it.
// fn reports false for a no-op, in which case nothing is written.
func (s *Store) mutate(ctx context.Context, fn func(next *Record) (EventType, string, bool)) (bool, error) {
	s.mu.Lock()
	next := s.state.clone()
	typ, id, ok := fn(&next)
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	ev, listeners, err := s.commitLocked(ctx, next, typ, id)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	s.notify(ev, listeners)
	return true, nil
}

// commitLocked persists next and swaps it in. s.mu must be held.
func (s *Store) commitLocked(ctx context.Context, next Record, typ EventType, id string) (Event, []Listener, error) {
	sortInPlace(next.Notes)
	data, err := Encode(next)
	if err != nil {
		return Event{}, nil, err
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return Event{}, nil, fmt.Errorf("persist notes: %w", err)
	}

	s.state = next
	s.writes++
	now := s.now()
	s.lastPersist = &now
	s.logger.Debug("notes persisted", "op", typ, "id", id, "notes", len(next.Notes), "bytes", len(data))

	ev := Event{Type: typ, NoteID: id, Snapshot: next.clone()}
	return ev, s.publishLocked(ev), nil
}

// publishLocked fans ev out to watchers and returns the listeners to call.
func (s *Store) publishLocked(ev Event) []Listener {
	for ch := range s.watchers {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("event dropped, watcher buffer full", "op", ev.Type)
		}
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextListener; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	return listeners
}

func (s *Store) notify(ev Event, listeners []Listener) {
	for _, l := range listeners {
		l(ev)
	}
}

// readLocked fetches and repairs the persisted record. s.mu must be held.
func (s *Store) readLocked(ctx context.Context) (Record, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return Record{Notes: []Note{}}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("read notes: %w", err)
	}

	rec, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable notes", "key", s.key, "error", err)
		return Record{Notes: []Note{}}, nil
	}
	return s.repair(rec), nil
}

// repair enforces the collection invariants on data read from storage.
func (s *Store) repair(rec Record) Record {
	seen := make(map[string]bool, len(rec.Notes))
	notes := make([]Note, 0, len(rec.Notes))
	dropped, fixed := 0, 0

	for _, n := range rec.Notes {
		if n.ID == "" || seen[n.ID] {
			dropped++
			continue
		}
		seen[n.ID] = true
		if strings.TrimSpace(n.Title) == "" {
			n.Title = PlaceholderTitle
			fixed++
		}
		if n.UpdatedAt < n.CreatedAt {
			n.UpdatedAt = n.CreatedAt
			fixed++
		}
		notes = append(notes, n)
	}
	sortInPlace(notes)

	active := rec.ActiveID
	if active != "" && !seen[active] {
		active = ""
		if len(notes) > 0 {
			active = notes[0].ID
		}
		fixed++
	}

	if dropped > 0 || fixed > 0 {
		s.logger.Warn("repaired stored notes", "key", s.key, "dropped", dropped, "fixed", fixed)
	}
	return Record{Notes: notes, ActiveID: active}
}

func (s *Store) stamp() string {
	return FormatTime(s.now())
}

// touch returns a fresh timestamp that is never older than prev.
func (s *Store) touch(prev string) string {
	stamp := s.stamp()
	if stamp < prev {
		return prev
	}
	return stamp
}
