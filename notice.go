package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const noticeDuration = 2 * time.Second

// noticeIcons prefixes a notice by kind; errors are also coloured.
var noticeIcons = map[string]string{
	"info":    "ℹ",
	"success": "✓",
	"warn":    "!",
	"error":   "×",
}

type clearNoticeMsg struct{ id int }

func noticeText(msg string, kind string) string {
	if msg == "" {
		return ""
	}
	if icon, ok := noticeIcons[kind]; ok {
		return icon + " " + msg
	}
	return msg
}

// startNotice shows msg for d. A newer notice bumps the sequence, so the
// timer of an older one clears nothing.
func (m *model) startNotice(msg string, kind string, d time.Duration) tea.Cmd {
	m.ui.noticeSeq++
	m.ui.noticeMsg, m.ui.noticeType = msg, kind
	id := m.ui.noticeSeq
	return tea.Tick(d, func(time.Time) tea.Msg { return clearNoticeMsg{id: id} })
}

func (m *model) clearNotice(msg clearNoticeMsg) {
	if msg.id == m.ui.noticeSeq {
		m.ui.noticeMsg, m.ui.noticeType = "", ""
	}
}
