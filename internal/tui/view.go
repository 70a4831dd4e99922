package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/aretw0/bloco/pkg/view"
)

const listWidth = 34

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	focusedPaneStyle = paneStyle.BorderForeground(lipgloss.Color("63"))
	activeStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle       = lipgloss.NewStyle().Bold(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	left := m.pane(m.focus == focusList || m.focus == focusSearch, listWidth, m.listView())
	right := m.pane(m.focus == focusTitle || m.focus == focusContent, m.width-listWidth-2, m.editorView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footerView())
}

func (m *Model) pane(focused bool, width int, content string) string {
	style := paneStyle
	if focused {
		style = focusedPaneStyle
	}
	if width < 12 {
		width = 12
	}
	return style.Width(width - 2).Height(m.height - 3).Render(content)
}

func (m *Model) listView() string {
	var b strings.Builder
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	if len(m.list) == 0 {
		b.WriteString(mutedStyle.Render(view.EmptyMessage))
		return b.String()
	}

	inner := listWidth - 6
	for i, s := range m.list {
		marker := "  "
		if i == m.cursor && m.focus == focusList {
			marker = cursorStyle.Render("> ")
		}
		title := runewidth.Truncate(s.Title, inner, "…")
		if s.Active {
			title = activeStyle.Render(title)
		}
		b.WriteString(marker + title + "\n")
		b.WriteString("  " + mutedStyle.Render(runewidth.Truncate(s.Snippet, inner, "…")) + "\n")
		if s.Updated != "" {
			b.WriteString("  " + mutedStyle.Render(s.Updated) + "\n")
		}
	}
	return b.String()
}

func (m *Model) editorView() string {
	if !m.editorEnabled() {
		return mutedStyle.Render(view.StatusNoNote)
	}
	var b strings.Builder
	if m.mode == modeRename {
		b.WriteString(m.prompt.View())
	} else {
		b.WriteString(titleStyle.Render(m.title.View()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.content.View())
	return b.String()
}

func (m *Model) footerView() string {
	status := m.status
	if m.err != nil {
		status = errorStyle.Render(fmt.Sprintf("%s: %v", m.status, m.err))
	}
	line := status
	if m.editorEnabled() {
		line += " · " + view.Meta(m.content.Value())
	}

	switch m.mode {
	case modeConfirmDelete:
		if active, ok := m.snap.Active(); ok {
			line = fmt.Sprintf("Delete %q? [y/N]", active.Title)
		}
	case modeRename:
		line = "enter to rename · esc to cancel"
	}
	return line + "  " + mutedStyle.Render(m.helpView())
}

func (m *Model) helpView() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		parts = append(parts, bindingHelp(b))
	}
	return strings.Join(parts, " · ")
}

func bindingHelp(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
