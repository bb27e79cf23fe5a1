package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/pomodoro/internal/timer"
)

func (m Model) handleTimerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if m.Ctrl.Timer().Running() {
			return m.pauseTimer()
		}
		return m.startTimer()
	case "r":
		return m.resetTimer()
	case "s":
		return m.stopAlarm()
	}
	return m, nil
}

func (m Model) startTimer() (Model, tea.Cmd) {
	h, ok := m.Ctrl.Start()
	if !ok {
		return m, nil
	}
	m.handle = h
	m.Status = StatusBar{Text: "focus running", IsError: false}
	return m, tea.Batch(focusTickCmd(h), m.runSpinner.Tick, m.titleCmd())
}

func (m Model) pauseTimer() (Model, tea.Cmd) {
	if !m.Ctrl.Timer().Running() {
		return m, nil
	}
	m.Ctrl.Pause()
	m.handle = timer.Handle{}
	m.Status = StatusBar{Text: "focus paused", IsError: false}
	return m, m.titleCmd()
}

func (m Model) resetTimer() (Model, tea.Cmd) {
	m.Ctrl.Reset()
	m.handle = timer.Handle{}
	m.Status = StatusBar{Text: "focus reset", IsError: false}
	return m, m.titleCmd()
}

func (m Model) stopAlarm() (Model, tea.Cmd) {
	if !m.Ctrl.AlarmActive() {
		return m, nil
	}
	m.Ctrl.StopAlarm()
	m.Status = StatusBar{Text: "alarm stopped", IsError: false}
	return m, nil
}

func (m Model) onFocusTick(msg TickMsg) (Model, tea.Cmd) {
	outcome, err := m.Ctrl.Tick(m.ctx, msg.Handle)
	switch outcome {
	case timer.Stale:
		return m, nil
	case timer.Ticked:
		return m, tea.Batch(focusTickCmd(msg.Handle), m.titleCmd())
	}

	m.handle = timer.Handle{}
	body := "25 minute session recorded"
	if task, ok := m.Ctrl.ActiveTask(); ok {
		body = fmt.Sprintf("25 minute session recorded for %q", task.Text)
	}
	m.Status = StatusBar{Text: "session complete, press s to silence", IsError: false}
	m.notify("Pomodoro complete", body, "info")
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	}
	return m, m.titleCmd()
}

// titleCmd mirrors the clock into the terminal title.
func (m Model) titleCmd() tea.Cmd {
	return tea.SetWindowTitle(fmt.Sprintf("%s - Focus", m.Ctrl.Timer().Display()))
}

func focusTickCmd(h timer.Handle) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return TickMsg{Handle: h} })
}
