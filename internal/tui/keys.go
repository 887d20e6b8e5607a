package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search      key.Binding
	Apply       key.Binding
	NextSpecies key.Binding
	PrevSpecies key.Binding
	Sort        key.Binding
	Reset       key.Binding
	Reload      key.Binding
	Up          key.Binding
	Down        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Apply:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply search")),
		NextSpecies: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next species")),
		PrevSpecies: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous species")),
		Sort:        key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "sort")),
		Reset:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "reset")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextSpecies, k.Sort, k.Reset, k.Reload, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Apply, k.Reset},
		{k.NextSpecies, k.PrevSpecies, k.Sort},
		{k.Up, k.Down, k.Reload, k.Quit},
	}
}
