package main

import "regexp"

type sortMode int

const (
	sortOriginal sortMode = iota
	sortName
	sortStatus
)

func (s sortMode) String() string {
	switch s {
	case sortName:
		return "name"
	case sortStatus:
		return "status"
	default:
		return "file"
	}
}

func (s sortMode) next() sortMode {
	return (s + 1) % 3
}

type dataState struct {
	monitors        []monitorRow
	markedRows      map[uint64]MarkColor // keyed by monitorRow.id
	showOnlyMarked  bool
	filterRegex     *regexp.Regexp
	sort            sortMode
	filteredIndices []int // into monitors, in display order; row i of the grid
}
