// Package clipboard copies text to the system clipboard, falling back to
// the OSC52 terminal escape when no native clipboard is reachable.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/andareed/siftly-timeline/logging"
)

// Copy writes text to the clipboard. With forceOSC52 the native clipboard
// is skipped, which is what remote sessions usually want.
func Copy(text string, forceOSC52 bool) error {
	if !forceOSC52 && !clipboard.Unsupported {
		err := clipboard.WriteAll(text)
		if err == nil {
			logging.Infof("Clipboard: copied %d bytes natively", len(text))
			return nil
		}
		logging.Warnf("Clipboard: native copy failed, trying OSC52: %v", err)
	}
	if err := copyOSC52(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
