package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Tailor  key.Binding
	Compile key.Binding
	Open    key.Binding
	Save    key.Binding
	Rescan  key.Binding
	Sources key.Binding
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Main    key.Binding
	Scroll  key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Tailor:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "tailor")),
		Compile: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "compile")),
		Open:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open folder")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save pdf")),
		Rescan:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rescan")),
		Sources: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "view sources")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "select file")),
		Main:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "main file")),
		Scroll:  key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll output")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tailor, k.Compile, k.Open, k.Save, k.Next, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tailor, k.Compile, k.Open, k.Save},
		{k.Rescan, k.Sources, k.Scroll},
		{k.Next, k.Prev, k.Up, k.Down, k.Toggle, k.Main},
		{k.Quit},
	}
}
