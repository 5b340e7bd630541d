package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

var debugMode atomic.Bool

// SetDebugMode turns debug-level output on or off.
func SetDebugMode(on bool) {
	debugMode.Store(on)
}

// IsDebugMode reports whether debug-level output is enabled.
func IsDebugMode() bool {
	return debugMode.Load()
}

// SetupLogging configures logging.
// If filename is empty, logging is disabled (except log.Fatal/panic).
// If filename is set, logs go to that file and Bubble Tea logs are enabled too.
func SetupLogging(filename string) (cleanup func(), err error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if filename == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)

	tf, err := tea.LogToFile(filename, "debug")
	if err != nil {
		f.Close()
		return nil, err
	}

	cleanup = func() {
		tf.Close()
		f.Close()
	}
	return cleanup, nil
}

// Debug logs v when debug mode is on.
func Debug(v ...any) {
	if !IsDebugMode() {
		return
	}
	log.Output(2, "DEBUG "+fmt.Sprint(v...))
}

// Debugf logs a formatted message when debug mode is on.
func Debugf(format string, v ...any) {
	if !IsDebugMode() {
		return
	}
	log.Output(2, "DEBUG "+fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	log.Output(2, "INFO "+fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	log.Output(2, "WARN "+fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	log.Output(2, "ERROR "+fmt.Sprintf(format, v...))
}
