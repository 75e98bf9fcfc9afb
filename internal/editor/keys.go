package editor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Up        key.Binding
	Down      key.Binding
	Add       key.Binding
	Remove    key.Binding
	Direction key.Binding
	Lane      key.Binding
	Fill      key.Binding
	Save      key.Binding
	Reload    key.Binding
	Quit      key.Binding
	Help      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("tab", "enter"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select")),
		Add:       key.NewBinding(key.WithKeys("n", "+"), key.WithHelp("n", "add note")),
		Remove:    key.NewBinding(key.WithKeys("x", "delete", "-"), key.WithHelp("x", "remove note")),
		Direction: key.NewBinding(key.WithKeys(" ", "c"), key.WithHelp("space", "cycle direction")),
		Lane:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "cycle lane")),
		Fill:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "random notes")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Reload:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

// setNotesFocused enables note-list bindings only when typed text cannot
// collide with them.
func (k *keyMap) setNotesFocused(focused bool) {
	for _, b := range []*key.Binding{&k.Up, &k.Down, &k.Add, &k.Remove, &k.Direction, &k.Lane, &k.Fill, &k.Help} {
		b.SetEnabled(focused)
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Add, k.Direction, k.Save, k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Up, k.Down},
		{k.Add, k.Remove, k.Direction, k.Lane, k.Fill},
		{k.Save, k.Reload, k.Quit, k.Help},
	}
}
