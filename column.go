package main

import "strings"

type ColumnRole int

const (
	RoleNormal ColumnRole = iota
	RoleKey               // monitor slug, sent to the provider
	RoleName              // display name
)

type ColumnMeta struct {
	Name  string
	Index int
	Role  ColumnRole
}

func detectRole(name string) ColumnRole {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "\ufeff")
	switch n {
	case "slug", "key", "monitor", "monitor_slug", "id":
		return RoleKey
	case "name", "title", "display_name":
		return RoleName
	default:
		return RoleNormal
	}
}

func headerColumns(header []string) []ColumnMeta {
	cols := make([]ColumnMeta, len(header))
	for i, name := range header {
		cols[i] = ColumnMeta{Name: name, Index: i, Role: detectRole(name)}
	}
	return cols
}

// columnFor returns the index of the first column with role, or -1.
func columnFor(cols []ColumnMeta, role ColumnRole) int {
	for _, c := range cols {
		if c.Role == role {
			return c.Index
		}
	}
	return -1
}
