package clipboard

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/mattn/go-isatty"

	"github.com/andareed/siftly-timeline/logging"
)

var errOSC52Unsupported = errors.New("clipboard unavailable (OSC52 unsupported by terminal)")

func copyOSC52(text string) error {
	if !osc52Supported() {
		logging.Warnf("Clipboard: OSC52 unavailable (stdout not TTY or TERM=dumb)")
		return errOSC52Unsupported
	}
	if err := writeOSC52(os.Stdout, text, os.Getenv("TERM"), os.Getenv("TMUX") != ""); err != nil {
		logging.Warnf("Clipboard: OSC52 write failed: %v", err)
		return err
	}
	logging.Infof("Clipboard: copied via OSC52")
	return nil
}

// writeOSC52 emits the escape for text, wrapped for tmux or screen when
// needed.
func writeOSC52(w io.Writer, text, term string, inTmux bool) error {
	seq := osc52.New(text)
	switch {
	case inTmux:
		seq = seq.Tmux()
	case strings.HasPrefix(term, "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}

func osc52Supported() bool {
	if term := os.Getenv("TERM"); term == "" || strings.EqualFold(term, "dumb") {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
