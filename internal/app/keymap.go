package app

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the recorder's bindings. It implements help.KeyMap.
type keyMap struct {
	Record    key.Binding
	Play      key.Binding
	Prev      key.Binding
	Next      key.Binding
	PrevPair  key.Binding
	NextPair  key.Binding
	Mode      key.Binding
	Append    key.Binding
	Prepend   key.Binding
	ReRecord  key.Binding
	Delete    key.Binding
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Yes       key.Binding
	No        key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Play, k.Mode, k.Delete, k.Save, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.Play, k.Delete, k.Save},
		{k.Prev, k.Next, k.PrevPair, k.NextPair},
		{k.Mode, k.Append, k.Prepend, k.ReRecord},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Record: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "record/stop"),
	),
	Play: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "play"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "previous"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "next"),
	),
	PrevPair: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑", "previous pair"),
	),
	NextPair: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "next pair"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "cycle mode"),
	),
	Append: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "append"),
	),
	Prepend: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "prepend"),
	),
	ReRecord: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "re-record"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete", "backspace"),
		key.WithHelp("d", "delete"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save track"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("Q", "q"),
		key.WithHelp("Q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	Yes: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "yes"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n", "no"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}
