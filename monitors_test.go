package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func slugsOf(rows []monitorRow) string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.slug + "=" + r.Label()
	}
	return strings.Join(out, ",")
}

func TestLoadMonitors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "csv with header",
			file:    "m.csv",
			content: "name,slug,team\nWeb,web,a\nAPI,api,b\n",
			want:    "web=Web,api=API",
		},
		{
			name:    "csv with bom and alias",
			file:    "m.csv",
			content: "\ufeffmonitor_slug,title\nweb,Web\n",
			want:    "web=Web",
		},
		{
			name:    "csv positional",
			file:    "m.csv",
			content: "web,Web frontend\napi\n",
			want:    "web=Web frontend,api=api",
		},
		{
			name:    "csv duplicates and blanks",
			file:    "m.csv",
			content: "slug\nweb\n\nWEB\napi\n",
			want:    "web=web,api=api",
		},
		{
			name:    "json strings",
			file:    "m.json",
			content: `["web", "api", "web"]`,
			want:    "web=web,api=api",
		},
		{
			name:    "json objects",
			file:    "m.json",
			content: `[{"slug": "web", "name": "Web"}, {"slug": ""}, {"slug": "api"}]`,
			want:    "web=Web,api=api",
		},
		{name: "bad json", file: "m.json", content: `{"slug": 1}`, wantErr: true},
		{name: "empty csv", file: "m.csv", content: "", wantErr: true},
		{name: "unknown extension", file: "m.txt", content: "web", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := loadMonitors(writeFile(t, tc.file, tc.content))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", rows)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := slugsOf(rows); got != tc.want {
				t.Fatalf("rows = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMonitorsFromResult(t *testing.T) {
	path := writeFile(t, "data.json", `{"web": [], "api": [[0, {}]]}`)
	rows, err := monitorsFromResult(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := slugsOf(rows); got != "api=api,web=web" {
		t.Fatalf("rows = %s", got)
	}
}

func TestMonitorRowIdentity(t *testing.T) {
	a := newMonitorRow(" Web ", "Frontend", 1)
	b := newMonitorRow("web", "", 7)
	if a.id != b.id {
		t.Fatal("id should ignore case, spacing and name")
	}
	if a.String() != "Web\tFrontend" {
		t.Fatalf("String() = %q", a.String())
	}
	if b.String() != "web" || b.Label() != "web" {
		t.Fatalf("unnamed row renders as %q/%q", b.String(), b.Label())
	}
}

func TestDetectRole(t *testing.T) {
	tests := map[string]ColumnRole{
		"slug":          RoleKey,
		" Monitor_Slug": RoleKey,
		"\ufeffid":      RoleKey,
		"Display_Name":  RoleName,
		"team":          RoleNormal,
	}
	for in, want := range tests {
		if got := detectRole(in); got != want {
			t.Errorf("detectRole(%q) = %v, want %v", in, got, want)
		}
	}
}
