package main

import (
	"hash/fnv"
	"strings"
)

// monitorRow is one monitor loaded from the monitors file.
type monitorRow struct {
	slug          string
	name          string
	id            uint64
	originalIndex int // position in the source file, 1-based
}

func newMonitorRow(slug, name string, index int) monitorRow {
	r := monitorRow{
		slug:          strings.TrimSpace(slug),
		name:          strings.TrimSpace(name),
		originalIndex: index,
	}
	r.id = r.ComputeID()
	return r
}

// ComputeID hashes the slug so marks survive reloads and reordering.
func (r monitorRow) ComputeID() uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(r.slug)))
	return h.Sum64()
}

// Label is what the name column shows.
func (r monitorRow) Label() string {
	if r.name != "" {
		return r.name
	}
	return r.slug
}

// String is used for regex filtering and clipboard copies.
func (r monitorRow) String() string {
	if r.name == "" || r.name == r.slug {
		return r.slug
	}
	return r.slug + "\t" + r.name
}
