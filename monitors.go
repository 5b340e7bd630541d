package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andareed/siftly-timeline/logging"
)

// loadMonitors reads a monitor list from a .csv or .json file.
func loadMonitors(path string) ([]monitorRow, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return loadMonitorsJSON(path)
	case ".csv":
		return loadMonitorsCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %q (want .csv or .json)", ext)
	}
}

func loadMonitorsCSV(path string) ([]monitorRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV %q has no rows", path)
	}
	return monitorsFromRecords(records), nil
}

// monitorsFromRecords builds rows from CSV records. When the first record
// names a slug column it is treated as a header; otherwise column 0 is the
// slug and column 1, if any, the name.
func monitorsFromRecords(records [][]string) []monitorRow {
	cols := headerColumns(records[0])
	keyCol := columnFor(cols, RoleKey)
	nameCol := columnFor(cols, RoleName)
	data := records[1:]
	if keyCol < 0 {
		logging.Debugf("monitors: no slug column in %v, reading positionally", records[0])
		keyCol, nameCol = 0, 1
		data = records
	}

	rows := make([]monitorRow, 0, len(data))
	for i, rec := range data {
		if keyCol >= len(rec) || strings.TrimSpace(rec[keyCol]) == "" {
			continue
		}
		name := ""
		if nameCol >= 0 && nameCol < len(rec) {
			name = rec[nameCol]
		}
		rows = append(rows, newMonitorRow(rec[keyCol], name, i+1))
	}
	return dedupeMonitors(rows)
}

type monitorDTO struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// loadMonitorsJSON accepts either ["slug", ...] or [{"slug": ..., "name": ...}].
func loadMonitorsJSON(path string) ([]monitorRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	var slugs []string
	if err := json.Unmarshal(data, &slugs); err == nil {
		rows := make([]monitorRow, 0, len(slugs))
		for i, s := range slugs {
			if strings.TrimSpace(s) != "" {
				rows = append(rows, newMonitorRow(s, "", i+1))
			}
		}
		return dedupeMonitors(rows), nil
	}

	var dtos []monitorDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("error reading JSON %q: %w", path, err)
	}
	rows := make([]monitorRow, 0, len(dtos))
	for i, d := range dtos {
		if strings.TrimSpace(d.Slug) != "" {
			rows = append(rows, newMonitorRow(d.Slug, d.Name, i+1))
		}
	}
	return dedupeMonitors(rows), nil
}

// monitorsFromResult lists the keys of a bucket data file, sorted. Used when
// no monitors file is given.
func monitorsFromResult(path string) ([]monitorRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error reading bucket data %q: %w", path, err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	rows := make([]monitorRow, len(keys))
	for i, k := range keys {
		rows[i] = newMonitorRow(k, "", i+1)
	}
	return rows, nil
}

// dedupeMonitors keeps the first occurrence of each slug.
func dedupeMonitors(rows []monitorRow) []monitorRow {
	seen := make(map[uint64]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if _, ok := seen[r.id]; ok {
			logging.Warnf("monitors: duplicate slug %q at row %d ignored", r.slug, r.originalIndex)
			continue
		}
		seen[r.id] = struct{}{}
		out = append(out, r)
	}
	return out
}
