package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/andareed/siftly-timeline/provider"
)

const (
	rowTextFGColor         = "#c0c0c0"
	rowSelectedTextFGColor = "#e0e0e0"
	rowSelectedBGColor     = "#3a3a3a"
	searchHighlightBGColor = "#f5c542"
	searchHighlightFGColor = "#000000"
	axisFGColor            = "#8a8a8a"
)

var (
	appstyle    = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(axisFGColor))

	rowTextStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color(rowTextFGColor))
	rowSelectedTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(rowSelectedTextFGColor)).
				Background(lipgloss.Color(rowSelectedBGColor))

	redMarker     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	greenMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	amberMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	defaultMarker = " " // used in place of pillMarker for unmarked rows
	pillMarker    = "▐"

	searchHighlight = lipgloss.NewStyle().
			Background(lipgloss.Color(searchHighlightBGColor)).
			Foreground(lipgloss.Color(searchHighlightFGColor))

	emptyStateStyle = lipgloss.NewStyle().Faint(true)
)

// statusStyles colours one bucket of the strip by its worst outcome.
var statusStyles = map[provider.Status]lipgloss.Style{
	provider.StatusNone:       lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	provider.StatusOK:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	provider.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	provider.StatusMissed:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	provider.StatusTimeout:    lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	provider.StatusError:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

var statusGlyphs = map[provider.Status]string{
	provider.StatusNone:       "·",
	provider.StatusOK:         "█",
	provider.StatusInProgress: "▒",
	provider.StatusMissed:     "▄",
	provider.StatusTimeout:    "▀",
	provider.StatusError:      "█",
}
