package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/timewindow"
)

var exportHeader = []string{"monitor", "name", "bucket_start", "ok", "error", "missed", "timeout", "in_progress"}

func defaultExportName(tok timewindow.Token) string {
	return fmt.Sprintf("timeline-%s.csv", tok)
}

// ExportBuckets writes one CSV line per displayed monitor and bucket, in
// display order. Monitors without data are written with zero counts.
func (m *model) ExportBuckets(out io.Writer) error {
	cfg := m.engine.CurrentTimeWindowConfig()
	w := csv.NewWriter(out)

	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for row, idx := range m.data.filteredIndices {
		if idx < 0 || idx >= len(m.data.monitors) {
			return fmt.Errorf("filtered index %d out of range", idx)
		}
		mon := m.data.monitors[idx]
		buckets := m.engine.Buckets(mon.slug)
		for i := 0; i < cfg.BucketCount; i++ {
			rec := []string{mon.slug, mon.Label(), cfg.BucketStart(i).UTC().Format(time.RFC3339), "0", "0", "0", "0", "0"}
			if i < len(buckets) {
				c := buckets[i]
				rec[3] = strconv.Itoa(c.OK)
				rec[4] = strconv.Itoa(c.Error)
				rec[5] = strconv.Itoa(c.Missed)
				rec[6] = strconv.Itoa(c.Timeout)
				rec[7] = strconv.Itoa(c.InProgress)
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func (m *model) exportTo(path string) tea.Cmd {
	if err := m.exportFile(path); err != nil {
		logging.Errorf("export %s: %v", path, err)
		return m.startNotice(fmt.Sprintf("Export failed: %v", err), "error", 2*noticeDuration)
	}
	logging.Infof("exported buckets to %s", path)
	return m.startNotice("Exported to "+path, "success", noticeDuration)
}

func (m *model) exportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open export file: %w", err)
	}
	if err := m.ExportBuckets(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
