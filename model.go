package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/config"
	"github.com/andareed/siftly-timeline/dialogs"
	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/provider"
	"github.com/andareed/siftly-timeline/timeline"
	"github.com/andareed/siftly-timeline/watch"
)

const (
	headerLines = 1
	footerLines = 2
	wheelStep   = 3
)

type model struct {
	cfg     *config.Config
	engine  *timeline.Engine
	prov    provider.Provider
	source  string // monitors file; empty when the keys come from the data file
	watcher *watch.Watcher
	now     func() time.Time

	data dataState
	ui   uiState

	cursor         int // grid row
	terminalWidth  int
	terminalHeight int
	ready          bool

	spinner      spinner.Model
	activeDialog dialogs.Dialog
	cancelFetch  context.CancelFunc
	lastQuery    provider.Query

	measureChanged bool // set by cell renderers during one render pass
}

func newModel(cfg *config.Config, prov provider.Provider, monitors []monitorRow, source string) *model {
	m := &model{
		cfg:    cfg,
		engine: timeline.New(cfg.EngineOptions(), cfg.Timeline.Window, time.Now()),
		prov:   prov,
		source: source,
		now:    time.Now,
		data: dataState{
			monitors:   monitors,
			markedRows: make(map[uint64]MarkColor),
		},
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	// no size yet, so this only installs the rows
	m.applyFilter()
	return m
}

func (m *model) Init() tea.Cmd {
	logging.Infof("siftly-timeline: initialised with %d monitors, window %s", len(m.data.monitors), m.engine.Token())
	return tea.Batch(m.spinner.Tick, m.refreshTick(), m.waitForMonitors())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.terminalWidth, m.terminalHeight = msg.Width, msg.Height
		m.ready = true
		return m, m.resize()

	case tea.KeyMsg:
		if m.activeDialog != nil && m.activeDialog.IsVisible() {
			return m.updateDialog(msg)
		}
		return m.updateKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case fetchedMsg:
		return m, m.applyFetch(msg.resp)

	case retryMsg:
		return m, m.retry(msg)

	case refreshTickMsg:
		return m, tea.Batch(m.refresh(false), m.refreshTick())

	case monitorsChangedMsg:
		logging.Debugf("monitors file changed: %s", msg.path)
		return m, tea.Batch(m.reloadMonitors(), m.waitForMonitors())

	case watchErrMsg:
		logging.Warnf("watch: %v", msg.err)
		return m, tea.Batch(m.startNotice("Watch error: "+msg.err.Error(), "warn", noticeDuration), m.waitForMonitors())

	case clearNoticeMsg:
		m.clearNotice(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dialogs.ExportConfirmedMsg:
		m.closeDialog()
		return m, m.exportTo(msg.Path)

	case dialogs.ExportCanceledMsg, dialogs.HelpCanceledMsg:
		m.closeDialog()
		return m, nil
	}
	return m, nil
}

func (m *model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.ui.mode {
	case modeCommand:
		return m.handleCommandKey(msg)
	default:
		return m.handleViewModeKey(msg)
	}
}

func (m *model) handleViewModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		if m.cancelFetch != nil {
			m.cancelFetch()
		}
		return m, tea.Quit
	case key.Matches(msg, Keys.RowDown):
		m.moveCursor(1)
	case key.Matches(msg, Keys.RowUp):
		m.moveCursor(-1)
	case key.Matches(msg, Keys.PageDown):
		m.moveCursor(m.pageSize())
	case key.Matches(msg, Keys.PageUp):
		m.moveCursor(-m.pageSize())
	case key.Matches(msg, Keys.Top):
		m.jumpToStart()
	case key.Matches(msg, Keys.Bottom):
		m.jumpToEnd()
	case key.Matches(msg, Keys.WiderWindow):
		return m, m.setWindow(m.engine.Token().Next())
	case key.Matches(msg, Keys.NarrowWindow):
		return m, m.setWindow(m.engine.Token().Prev())
	case key.Matches(msg, Keys.Refresh):
		return m, tea.Batch(m.refresh(true), m.startNotice("Refreshing", "info", noticeDuration))
	case key.Matches(msg, Keys.Jump):
		m.enterCommand(CmdJump)
	case key.Matches(msg, Keys.Search):
		m.enterCommand(CmdSearch)
	case key.Matches(msg, Keys.NextMatch):
		if !m.searchNext(m.ui.searchQuery) {
			return m, m.startNotice("No match", "warn", noticeDuration)
		}
	case key.Matches(msg, Keys.Filter):
		m.enterCommand(CmdFilter)
		if m.data.filterRegex != nil {
			m.ui.command.buf = m.data.filterRegex.String()
		}
	case key.Matches(msg, Keys.ClearFilter):
		m.data.filterRegex = nil
		return m, m.applyFilter()
	case key.Matches(msg, Keys.Sort):
		m.data.sort = m.data.sort.next()
		return m, tea.Batch(m.applyFilter(), m.startNotice("Sorted by "+m.data.sort.String(), "info", noticeDuration))
	case key.Matches(msg, Keys.MarkMode):
		m.enterCommand(CmdMark)
	case key.Matches(msg, Keys.ShowMarksOnly):
		m.data.showOnlyMarked = !m.data.showOnlyMarked
		return m, m.applyFilter()
	case key.Matches(msg, Keys.NextMark):
		m.jumpToNextMark()
	case key.Matches(msg, Keys.PrevMark):
		m.jumpToPreviousMark()
	case key.Matches(msg, Keys.CopyRow):
		return m, m.copyCurrentRow()
	case key.Matches(msg, Keys.CopyQuery):
		return m, m.copyQuery()
	case key.Matches(msg, Keys.ExportToFile):
		return m, m.openDialog(dialogs.NewExportDialog(defaultExportName(m.engine.Token()), ""))
	case key.Matches(msg, Keys.OpenHelp):
		return m, m.openDialog(dialogs.NewHelpDialog(Keys.Legend()))
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.engine.Grid().ScrollBy(-wheelStep)
	case tea.MouseButtonWheelDown:
		m.engine.Grid().ScrollBy(wheelStep)
	default:
		return
	}
	m.clampCursorToView()
}

// bodySize is the grid area: the terminal minus padding, header and footer.
func (m *model) bodySize() (int, int) {
	w := m.terminalWidth - appstyle.GetHorizontalFrameSize()
	h := m.terminalHeight - headerLines - footerLines
	return max(0, w), max(0, h)
}

func (m *model) resize() tea.Cmd {
	w, h := m.bodySize()
	logging.Debugf("resize: terminal %dx%d body %dx%d", m.terminalWidth, m.terminalHeight, w, h)
	req := m.engine.Resize(float64(w), float64(h))
	m.ensureCursorVisible()
	return m.issue(req)
}

func (m *model) openDialog(d dialogs.Dialog) tea.Cmd {
	m.activeDialog = d
	m.ui.mode = modeDialog
	return d.Focus()
}

func (m *model) closeDialog() {
	if m.activeDialog != nil {
		m.activeDialog.Hide()
	}
	m.activeDialog = nil
	m.ui.mode = modeView
}

func (m *model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d, cmd := m.activeDialog.Update(msg)
	m.activeDialog = d
	if !d.IsVisible() {
		m.closeDialog()
	}
	return m, cmd
}
