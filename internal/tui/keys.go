package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New     key.Binding
	Save    key.Binding
	Search  key.Binding
	Rename  key.Binding
	Delete  key.Binding
	Focus   key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Confirm key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		New:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Search:  key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "search")),
		Rename:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rename")),
		Delete:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Up:      key.NewBinding(key.WithKeys("up")),
		Down:    key.NewBinding(key.WithKeys("down")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
		Submit:  key.NewBinding(key.WithKeys("enter")),
		Cancel:  key.NewBinding(key.WithKeys("esc")),
		Confirm: key.NewBinding(key.WithKeys("y", "Y")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.New, k.Save, k.Search, k.Rename, k.Delete, k.Focus, k.Quit}
}
