package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andareed/siftly-timeline/logging"
	"github.com/andareed/siftly-timeline/provider"
	"github.com/andareed/siftly-timeline/timeline"
)

const (
	maxRetries = 3
	retryDelay = 5 * time.Second
)

type (
	fetchedMsg         struct{ resp timeline.FetchResponse }
	retryMsg           struct{ gen uint64 }
	refreshTickMsg     struct{}
	monitorsChangedMsg struct{ path string }
	watchErrMsg        struct{ err error }
)

// fetchCmd runs one provider fetch off the update loop.
func fetchCmd(ctx context.Context, cancel context.CancelFunc, p provider.Provider, req timeline.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		res, err := p.FetchBuckets(ctx, req.Query)
		return fetchedMsg{resp: timeline.FetchResponse{Generation: req.Generation, Result: res, Err: err}}
	}
}

// issue starts the fetch for req, cancelling the one in flight. The
// cancelled fetch still reports back and is dropped as stale.
func (m *model) issue(req *timeline.FetchRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	if m.cancelFetch != nil {
		m.cancelFetch()
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if t := m.cfg.Provider.Timeout; t > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), t)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	m.cancelFetch = cancel
	m.lastQuery = req.Query
	return fetchCmd(ctx, cancel, m.prov, *req)
}

func (m *model) applyFetch(resp timeline.FetchResponse) tea.Cmd {
	applied, err := m.engine.Apply(resp)
	if err != nil {
		if provider.IsRetryable(err) && m.ui.retries < maxRetries {
			m.ui.retries++
			gen := m.engine.Generation()
			logging.Infof("fetch failed, retry %d/%d in %s: %v", m.ui.retries, maxRetries, retryDelay, err)
			return tea.Batch(
				m.startNotice(fmt.Sprintf("%v (retry %d/%d)", err, m.ui.retries, maxRetries), "warn", retryDelay),
				tea.Tick(retryDelay, func(time.Time) tea.Msg { return retryMsg{gen: gen} }),
			)
		}
		logging.Errorf("fetch failed: %v", err)
		return m.startNotice(err.Error(), "error", 2*noticeDuration)
	}
	if applied {
		m.ui.retries = 0
	}
	return nil
}

func (m *model) retry(msg retryMsg) tea.Cmd {
	if msg.gen != m.engine.Generation() {
		return nil
	}
	return m.issue(m.engine.Refresh(m.now()))
}

// refresh re-resolves the window against the clock. Scheduled refreshes
// skip while a fetch is out; forced ones replace it.
func (m *model) refresh(force bool) tea.Cmd {
	if !force && m.engine.Loading() {
		return nil
	}
	m.ui.retries = 0
	return m.issue(m.engine.Refresh(m.now()))
}

func (m *model) refreshTick() tea.Cmd {
	d := m.cfg.UI.RefreshInterval
	if d <= 0 {
		return nil
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// waitForMonitors blocks on the watcher until the monitors file changes.
func (m *model) waitForMonitors() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			return monitorsChangedMsg{path: ev.Path}
		case err := <-w.Errors():
			return watchErrMsg{err: err}
		}
	}
}

func (m *model) reloadMonitors() tea.Cmd {
	rows, err := loadMonitors(m.source)
	if err != nil {
		logging.Warnf("reload %s: %v", m.source, err)
		return m.startNotice(fmt.Sprintf("Reload failed: %v", err), "error", 2*noticeDuration)
	}
	m.data.monitors = rows
	logging.Infof("reloaded %d monitors from %s", len(rows), m.source)
	return tea.Batch(
		m.applyFilter(),
		m.startNotice(fmt.Sprintf("Reloaded %d monitors", len(rows)), "success", noticeDuration),
	)
}
