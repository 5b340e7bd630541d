package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/andareed/siftly-timeline/config"
	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/provider"
	"github.com/andareed/siftly-timeline/watch"
)

// Version is set at build time via ldflags.
var Version = "dev"

const defaultPrintWidth = 120

type options struct {
	configPath string
	logFile    string
	window     string
	endpoint   string
	token      string
	dataFile   string
	print      bool
	width      int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "siftly-timeline [monitors-file]",
		Short: "Browse monitor check history as a status timeline",
		Long: `siftly-timeline draws one row per monitor and one coloured strip per row,
bucketed to fit the terminal width.

Monitors come from a .csv or .json file, or from the keys of --data.
Buckets come from --endpoint (a monitors-stats API) or --data (a local
JSON document of the same shape).`,
		Args:         cobra.MaximumNArgs(1),
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml)")
	f.StringVar(&opts.logFile, "debug", "", "write debug logs to file")
	f.StringVarP(&opts.window, "window", "w", "", "time window: 1h, 24h, 7d, 14d, 30d, 90d")
	f.StringVar(&opts.endpoint, "endpoint", "", "monitors-stats API base URL")
	f.StringVar(&opts.token, "token", "", "bearer token for --endpoint")
	f.StringVar(&opts.dataFile, "data", "", "read buckets from a local JSON file")
	f.BoolVarP(&opts.print, "print", "p", false, "print one frame to stdout and exit")
	f.IntVar(&opts.width, "width", 0, "frame width for --print (default: terminal width)")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts options) error {
	cleanup, err := logging.SetupLogging(opts.logFile)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer cleanup()
	logging.SetDebugMode(opts.logFile != "")
	log.Println("siftly-timeline: started")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, opts)

	prov, err := newProvider(cfg)
	if err != nil {
		return err
	}

	source := ""
	if len(args) > 0 {
		source = args[0]
	}
	rows, err := loadRows(source, cfg.Provider.DataFile)
	if err != nil {
		return err
	}

	m := newModel(cfg, prov, rows, source)

	out := cmd.OutOrStdout()
	fd := os.Stdout.Fd()
	if opts.print || !term.IsTerminal(fd) {
		width := opts.width
		if width <= 0 {
			if w, _, err := term.GetSize(fd); err == nil && w > 0 {
				width = w
			} else {
				width = defaultPrintWidth
			}
		}
		return printFrame(m, out, width)
	}

	if cfg.UI.WatchMonitors && source != "" {
		w, err := watch.New(source)
		if err != nil {
			logging.Warnf("not watching %s: %v", source, err)
		} else {
			defer w.Close()
			m.watcher = w
		}
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		log.Printf("tea program error: %v", err)
		return err
	}
	return nil
}

// applyFlags lays explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	f := cmd.Flags()
	if f.Changed("window") {
		cfg.Timeline.Window = opts.window
	}
	if f.Changed("endpoint") {
		cfg.Provider.Endpoint = opts.endpoint
	}
	if f.Changed("token") {
		cfg.Provider.Token = opts.token
	}
	if f.Changed("data") {
		cfg.Provider.DataFile = opts.dataFile
	}
}

func newProvider(cfg *config.Config) (provider.Provider, error) {
	switch {
	case cfg.Provider.DataFile != "":
		logging.Infof("buckets from file %s", cfg.Provider.DataFile)
		return provider.File{Path: cfg.Provider.DataFile}, nil
	case cfg.Provider.Endpoint != "":
		logging.Infof("buckets from %s", cfg.Provider.Endpoint)
		return provider.NewHTTP(cfg.HTTPConfig(), nil), nil
	default:
		return nil, errors.New("no bucket source: set --endpoint or --data (or provider.endpoint in the config)")
	}
}

// loadRows reads the monitors file, or lists the keys of the data file when
// no monitors file was given.
func loadRows(source, dataFile string) ([]monitorRow, error) {
	switch {
	case source != "":
		rows, err := loadMonitors(source)
		if err != nil {
			return nil, fmt.Errorf("failed to load %q: %w", source, err)
		}
		return rows, nil
	case dataFile != "":
		return monitorsFromResult(dataFile)
	default:
		return nil, errors.New("no monitors: pass a monitors file or --data")
	}
}

// printFrame lays the model out for every row at the given width, runs the
// first fetch inline and writes the resulting frame.
func printFrame(m *model, out io.Writer, width int) error {
	height := len(m.data.filteredIndices) + headerLines + footerLines
	_, cmd := m.Update(tea.WindowSizeMsg{Width: width, Height: max(height, headerLines+footerLines+1)})
	if cmd != nil {
		if msg, ok := cmd().(fetchedMsg); ok {
			m.Update(msg)
		}
	}
	if _, err := fmt.Fprintln(out, m.View()); err != nil {
		return err
	}
	return m.engine.LastError()
}
