// Package tui is the terminal editor: a note list with search on the left,
// the active note on the right, autosaved while typing.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/bloco/pkg/autosave"
	"github.com/aretw0/bloco/pkg/core"
	"github.com/aretw0/bloco/pkg/view"
)

type focus int

const (
	focusList focus = iota
	focusSearch
	focusTitle
	focusContent
	focusCount
)

type mode int

const (
	modeNormal mode = iota
	modeRename
	modeConfirmDelete
)

// commitMsg carries a scheduler commit onto the bubbletea loop.
type commitMsg func()

// Option configures the Model.
type Option func(*Model)

// WithInterval sets the autosave quiet period.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		m.schedOpts = append(m.schedOpts, autosave.WithInterval(d))
	}
}

// WithLogger sets the logger for the model and its scheduler.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
			m.schedOpts = append(m.schedOpts, autosave.WithLogger(l))
		}
	}
}

// WithSchedulerOptions passes options through to the autosave scheduler.
func WithSchedulerOptions(opts ...autosave.Option) Option {
	return func(m *Model) {
		m.schedOpts = append(m.schedOpts, opts...)
	}
}

// Model is the bubbletea model. All store calls happen on the bubbletea
// goroutine, including autosave commits, which are dispatched back as messages.
type Model struct {
	ctx    context.Context
	store  *core.Store
	sched  *autosave.Scheduler
	logger *slog.Logger
	keys   keyMap

	schedOpts   []autosave.Option
	commitCh    chan func()
	pending     []core.Event
	unsubscribe func()

	search  textinput.Model
	title   textinput.Model
	content textarea.Model
	prompt  textinput.Model

	snap   core.Snapshot
	list   []view.Summary
	cursor int
	focus  focus
	mode   mode
	status string
	err    error

	width, height int
	quitting      bool
}

// New creates a Model over a loaded store. Call Close when done.
func New(ctx context.Context, store *core.Store, opts ...Option) *Model {
	m := &Model{
		ctx:      ctx,
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
		keys:     defaultKeyMap(),
		commitCh: make(chan func(), 16),
		width:    100,
		height:   30,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.search = textinput.New()
	m.search.Placeholder = "Search"
	m.search.Prompt = "/ "

	m.title = textinput.New()
	m.title.Placeholder = core.PlaceholderTitle
	m.title.Prompt = ""

	m.content = textarea.New()
	m.content.Placeholder = "Start typing..."
	m.content.ShowLineNumbers = false
	m.content.CharLimit = 0
	m.content.Prompt = ""

	m.prompt = textinput.New()
	m.prompt.Prompt = "Title: "

	schedOpts := append([]autosave.Option{
		autosave.WithDispatch(func(commit func()) {
			select {
			case m.commitCh <- commit:
			case <-ctx.Done():
			}
		}),
		autosave.WithOnCommit(m.onCommit),
	}, m.schedOpts...)
	m.sched = autosave.New(store, m.fields, schedOpts...)

	m.unsubscribe = store.OnChange(func(e core.Event) {
		m.pending = append(m.pending, e)
	})

	m.snap = store.Snapshot()
	m.refreshList()
	m.refreshEditor()
	m.status = view.RenderSnapshot(m.snap, "").Status
	m.layout()
	m.setFocus(focusContent)
	if _, ok := m.snap.Active(); !ok {
		m.setFocus(focusList)
	}
	return m
}

// Close stops autosave and detaches from the store. Pending edits are not flushed.
func (m *Model) Close() {
	m.sched.Stop()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) fields() (string, string) {
	return m.title.Value(), m.content.Value()
}

func (m *Model) onCommit(saved bool, err error) {
	if err != nil {
		m.err = err
		m.status = view.StatusFailed
		return
	}
	m.err = nil
	if saved {
		m.status = view.StatusSaved
	}
}

func (m *Model) waitForCommit() tea.Cmd {
	return func() tea.Msg {
		select {
		case c := <-m.commitCh:
			return commitMsg(c)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForCommit())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case commitMsg:
		msg()
		cmd = m.waitForCommit()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	default:
		cmd = m.updateFocused(msg)
	}
	m.applyEvents()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.sched.Flush()
		m.sched.Stop()
		m.quitting = true
		return tea.Quit
	}

	switch m.mode {
	case modeRename:
		return m.handleRenameKey(msg)
	case modeConfirmDelete:
		m.mode = modeNormal
		m.sched.Flush()
		_, err := m.store.DeleteActive(m.ctx, key.Matches(msg, m.keys.Confirm))
		m.report(err)
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.New):
		m.sched.Flush()
		_, err := m.store.CreateNote(m.ctx)
		m.report(err)
		return m.setFocus(focusTitle)
	case key.Matches(msg, m.keys.Save):
		m.sched.FlushNow()
		return nil
	case key.Matches(msg, m.keys.Search):
		return m.setFocus(focusSearch)
	case key.Matches(msg, m.keys.Rename):
		active, ok := m.store.Active()
		if !ok {
			return nil
		}
		m.sched.Flush()
		m.mode = modeRename
		m.prompt.SetValue(active.Title)
		m.prompt.CursorEnd()
		return m.prompt.Focus()
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.store.Active(); ok {
			m.mode = modeConfirmDelete
		}
		return nil
	case key.Matches(msg, m.keys.Focus):
		return m.setFocus((m.focus + 1) % focusCount)
	}

	if m.focus == focusList {
		switch {
		case key.Matches(msg, m.keys.Up):
			return m.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			return m.moveCursor(1)
		}
		return nil
	}
	return m.updateFocused(msg)
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) tea.Cmd {
	var answer core.Answer
	switch {
	case key.Matches(msg, m.keys.Submit):
		answer = core.Submitted(m.prompt.Value())
	case key.Matches(msg, m.keys.Cancel):
		answer = core.Aborted
	default:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return cmd
	}
	m.mode = modeNormal
	m.prompt.Blur()
	_, err := m.store.RenameActive(m.ctx, answer)
	m.report(err)
	return nil
}

// updateFocused forwards msg to the focused input and reacts to edits.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.refreshList()
		}
	case focusTitle:
		before := m.title.Value()
		m.title, cmd = m.title.Update(msg)
		if m.title.Value() != before {
			m.edited()
		}
	case focusContent:
		before := m.content.Value()
		m.content, cmd = m.content.Update(msg)
		if m.content.Value() != before {
			m.edited()
		}
	}
	return cmd
}

func (m *Model) edited() {
	if _, ok := m.store.Active(); !ok {
		return
	}
	m.status = view.StatusTyping
	m.sched.OnEdit()
}

func (m *Model) moveCursor(delta int) tea.Cmd {
	if len(m.list) == 0 {
		return nil
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.list) {
		return nil
	}
	m.cursor = next
	m.sched.Flush()
	_, err := m.store.SetActive(m.ctx, m.list[next].ID)
	m.report(err)
	return nil
}

func (m *Model) setFocus(f focus) tea.Cmd {
	if (f == focusTitle || f == focusContent) && !m.editorEnabled() {
		f = focusList
	}
	m.focus = f
	m.search.Blur()
	m.title.Blur()
	m.content.Blur()
	switch f {
	case focusSearch:
		return m.search.Focus()
	case focusTitle:
		return m.title.Focus()
	case focusContent:
		return m.content.Focus()
	}
	return nil
}

func (m *Model) editorEnabled() bool {
	_, ok := m.snap.Active()
	return ok
}

func (m *Model) report(err error) {
	if err != nil {
		m.logger.Error("operation failed", "error", err)
		m.err = err
		m.status = view.StatusFailed
	}
}

// applyEvents folds store notifications into the screen state.
// Save events leave the editor fields alone so the cursor is not disturbed.
func (m *Model) applyEvents() {
	events := m.pending
	m.pending = nil
	for _, e := range events {
		m.snap = e.Snapshot
		m.refreshList()
		if e.RefreshEditor() {
			m.refreshEditor()
			m.status = view.RenderSnapshot(m.snap, "").Status
			if !m.editorEnabled() && (m.focus == focusTitle || m.focus == focusContent) {
				m.setFocus(focusList)
			}
		} else {
			m.status = view.StatusSaved
		}
	}
}

func (m *Model) refreshList() {
	m.list = view.List(m.snap.Notes, m.snap.ActiveID, m.search.Value())
	m.cursor = 0
	for i, s := range m.list {
		if s.Active {
			m.cursor = i
			break
		}
	}
}

func (m *Model) refreshEditor() {
	active, ok := m.snap.Active()
	if !ok {
		m.title.SetValue("")
		m.content.SetValue("")
		return
	}
	m.title.SetValue(active.Title)
	m.title.CursorEnd()
	m.content.SetValue(active.Content)
}

func (m *Model) layout() {
	editorWidth := m.width - listWidth - 4
	if editorWidth < 10 {
		editorWidth = 10
	}
	m.title.Width = editorWidth
	m.search.Width = listWidth - 4
	m.content.SetWidth(editorWidth)
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.content.SetHeight(h)
}

// Run starts the TUI on the terminal and blocks until the user quits.
func Run(ctx context.Context, store *core.Store, opts ...Option) error {
	m := New(ctx, store, opts...)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
