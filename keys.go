package main

import (
	"github.com/charmbracelet/bubbles/key"
)

type Keymap struct {
	Quit          key.Binding
	RowDown       key.Binding
	RowUp         key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	WiderWindow   key.Binding
	NarrowWindow  key.Binding
	Refresh       key.Binding
	Jump          key.Binding
	Search        key.Binding
	NextMatch     key.Binding
	Filter        key.Binding
	ClearFilter   key.Binding
	Sort          key.Binding
	MarkMode      key.Binding
	ShowMarksOnly key.Binding
	NextMark      key.Binding
	PrevMark      key.Binding
	CopyRow       key.Binding
	CopyQuery     key.Binding
	ExportToFile  key.Binding
	OpenHelp      key.Binding
}

var Keys = Keymap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	RowDown: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "move down"),
	),
	RowUp: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "move up"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("u", "pgup"),
		key.WithHelp("u/pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("d", "pgdown"),
		key.WithHelp("d/pgdown", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g/home", "first monitor"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G/end", "last monitor"),
	),
	WiderWindow: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "longer time window"),
	),
	NarrowWindow: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "shorter time window"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh, jump to now"),
	),
	Jump: key.NewBinding(
		key.WithKeys(":"),
		key.WithHelp(":", "jump to row"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search monitors"),
	),
	NextMatch: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "next search match"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "regex filter"),
	),
	ClearFilter: key.NewBinding(
		key.WithKeys("F"),
		key.WithHelp("F", "clear filter"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort by file/name/status"),
	),
	MarkMode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mark monitor"),
	),
	ShowMarksOnly: key.NewBinding(
		key.WithKeys("M"),
		key.WithHelp("M", "toggle show only marked"),
	),
	NextMark: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next mark"),
	),
	PrevMark: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "previous mark"),
	),
	CopyRow: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy monitor slug"),
	),
	CopyQuery: key.NewBinding(
		key.WithKeys("Y"),
		key.WithHelp("Y", "copy current query"),
	),
	ExportToFile: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export buckets to CSV"),
	),
	OpenHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help / keys"),
	),
}

func (k Keymap) Legend() []key.Binding {
	return []key.Binding{
		k.Quit,
		k.RowDown,
		k.RowUp,
		k.PageUp,
		k.PageDown,
		k.Top,
		k.Bottom,
		k.WiderWindow,
		k.NarrowWindow,
		k.Refresh,
		k.Jump,
		k.Search,
		k.NextMatch,
		k.Filter,
		k.ClearFilter,
		k.Sort,
		k.MarkMode,
		k.ShowMarksOnly,
		k.NextMark,
		k.PrevMark,
		k.CopyRow,
		k.CopyQuery,
		k.ExportToFile,
	}
}
