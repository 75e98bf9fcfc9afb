package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

type keyMap struct {
	UpA    key.Binding
	DownA  key.Binding
	LeftA  key.Binding
	RightA key.Binding
	UpB    key.Binding
	DownB  key.Binding
	LeftB  key.Binding
	RightB key.Binding
	End    key.Binding
	Pause  key.Binding
	Retry  key.Binding
	Quit   key.Binding
	Help   key.Binding
}

func newKeyMap(v rhythm.Variant) keyMap {
	km := keyMap{
		UpA:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w/a/s/d", "swing hand A")),
		DownA:  key.NewBinding(key.WithKeys("s")),
		LeftA:  key.NewBinding(key.WithKeys("a")),
		RightA: key.NewBinding(key.WithKeys("d")),
		UpB:    key.NewBinding(key.WithKeys("up"), key.WithHelp("arrows", "swing hand B")),
		DownB:  key.NewBinding(key.WithKeys("down")),
		LeftB:  key.NewBinding(key.WithKeys("left")),
		RightB: key.NewBinding(key.WithKeys("right")),
		End:    key.NewBinding(key.WithKeys("m", "esc"), key.WithHelp("m", "end game")),
		Pause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Retry:  key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "play again")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
	if v == rhythm.VariantSingle {
		km.UpA.SetHelp("w/a/s/d", "hit arrow")
		km.UpB.SetHelp("arrows", "hit arrow")
	}
	km.Retry.SetEnabled(false)
	return km
}

// setPlaying toggles bindings between the game and the results screen.
func (k *keyMap) setPlaying(playing bool) {
	for _, b := range []*key.Binding{&k.UpA, &k.DownA, &k.LeftA, &k.RightA, &k.UpB, &k.DownB, &k.LeftB, &k.RightB, &k.End, &k.Pause} {
		b.SetEnabled(playing)
	}
	k.Retry.SetEnabled(!playing)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.UpA, k.UpB, k.End, k.Retry, k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.UpA, k.UpB},
		{k.End, k.Pause, k.Retry},
		{k.Quit, k.Help},
	}
}

type handKey struct {
	binding   *key.Binding
	lane      rhythm.Lane
	direction rhythm.Direction
}

func (k *keyMap) handKeys() []handKey {
	return []handKey{
		{&k.UpA, rhythm.LaneA, rhythm.DirUp},
		{&k.DownA, rhythm.LaneA, rhythm.DirDown},
		{&k.LeftA, rhythm.LaneA, rhythm.DirLeft},
		{&k.RightA, rhythm.LaneA, rhythm.DirRight},
		{&k.UpB, rhythm.LaneB, rhythm.DirUp},
		{&k.DownB, rhythm.LaneB, rhythm.DirDown},
		{&k.LeftB, rhythm.LaneB, rhythm.DirLeft},
		{&k.RightB, rhythm.LaneB, rhythm.DirRight},
	}
}
