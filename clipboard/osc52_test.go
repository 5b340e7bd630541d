package clipboard

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestWriteOSC52(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("nightly-backup"))
	tests := []struct {
		name   string
		term   string
		tmux   bool
		prefix string
	}{
		{"plain", "xterm-256color", false, "\x1b]52;c;"},
		{"tmux", "screen-256color", true, "\x1bPtmux;"},
		{"screen", "screen", false, "\x1bP"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := writeOSC52(&buf, "nightly-backup", tt.term, tt.tmux); err != nil {
			t.Fatalf("%s: writeOSC52: %v", tt.name, err)
		}
		out := buf.String()
		if !strings.HasPrefix(out, tt.prefix) {
			t.Errorf("%s: sequence %q does not start with %q", tt.name, out, tt.prefix)
		}
		if !strings.Contains(out, encoded) {
			t.Errorf("%s: sequence %q does not carry the payload", tt.name, out)
		}
	}
}
