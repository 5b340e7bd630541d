package main

import "fmt"

type Command int

const (
	CmdNone Command = iota
	CmdJump
	CmdSearch
	CmdFilter
	CmdMark
)

// commandInfo is how a command shows up in the footer.
type commandInfo struct {
	label  string
	prompt string
}

var commands = map[Command]commandInfo{
	CmdJump:   {label: "JUMP", prompt: "row: "},
	CmdSearch: {label: "SEARCH", prompt: "search: "},
	CmdFilter: {label: "FILTER", prompt: "filter: "},
	CmdMark:   {label: "MARK", prompt: "r/g/a mark, c clear"},
}

// CommandInput is the command being typed.
type CommandInput struct {
	cmd Command
	buf string
}

// activeCommandLine returns the prompt and typed text for the footer.
func (m *model) activeCommandLine() string {
	c, ok := commands[m.ui.command.cmd]
	if !ok {
		return ""
	}
	return fmt.Sprintf("[%s] %s%s", c.label, c.prompt, m.ui.command.buf)
}

func (m *model) commandRightContext() string {
	return fmt.Sprintf("%d/%d", m.cursor+1, len(m.data.filteredIndices))
}
