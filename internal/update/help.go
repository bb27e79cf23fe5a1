package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/pomodoro/internal/views"
)

const helpGuide = `## How it works

Work in **25 minute** focus blocks. When the clock reaches zero the session
is logged against the active task and an alarm sounds for a few seconds.

- Pick a task on the Tasks view with ` + "`enter`" + `.
- Press ` + "`space`" + ` to start or pause, ` + "`r`" + ` to reset.
- Today's total appears on the Stats view.

Palette commands: ` + "`add <text>`, `done <n>`, `delete <n>`, `select <n>`, `start`, `pause`, `reset`, `stop-alarm`" + `.
A task is named by its list position (` + "`#3`" + ` or ` + "`3`" + `) or an id prefix.
`

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
		Guide: m.guideViewport.View(),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Timer, Action: "switch to Timer"},
		{Key: m.Keys.Tasks, Action: "switch to Tasks"},
		{Key: m.Keys.Stats, Action: "switch to Stats"},
		{Key: "space", Action: "start/pause timer"},
		{Key: "s", Action: "stop alarm"},
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: "pgup/pgdown", Action: "scroll help guide"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewTimer:
		return []KeyBinding{
			{Key: "space", Action: "start/pause timer"},
			{Key: "r", Action: "reset timer"},
			{Key: "s", Action: "stop alarm"},
		}
	case ViewTasks:
		return []KeyBinding{
			{Key: "a", Action: "add task"},
			{Key: "j/k", Action: "move cursor"},
			{Key: "enter", Action: "make task active"},
			{Key: "x", Action: "toggle done"},
			{Key: "d", Action: "delete task"},
		}
	case ViewStats:
		return []KeyBinding{
			{Key: "j/k", Action: "scroll session table"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
