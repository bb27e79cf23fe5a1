package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/pomodoro/internal/model"
	"github.com/sandeepkv93/pomodoro/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEventCmd(m.Events), m.titleCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m.handlePaletteKey(typed)
		}
		if m.Capturing {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m.handleCaptureKey(typed)
		}

		switch keyStr := typed.String(); keyStr {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Timer:
			m.CurrentView = ViewTimer
			return m, nil
		case m.Keys.Tasks:
			m.CurrentView = ViewTasks
			return m, nil
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "pgup", "pgdown":
			if m.HelpVisible {
				var cmd tea.Cmd
				m.guideViewport, cmd = m.guideViewport.Update(typed)
				return m, cmd
			}
			return m, nil
		case " ", "r", "s":
			return m.handleTimerKey(typed)
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewTasks:
			return m.handleTasksKey(typed)
		case ViewStats:
			var cmd tea.Cmd
			m.sessionTable, cmd = m.sessionTable.Update(typed)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		width := typed.Width - 24
		if width < 10 {
			width = 10
		}
		if width > 60 {
			width = 60
		}
		m.timerProgress.Width = width
		return m, nil
	case spinner.TickMsg:
		if m.Ctrl.Timer().Running() {
			var cmd tea.Cmd
			m.runSpinner, cmd = m.runSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case TickMsg:
		return m.onFocusTick(typed)
	case SchedulerEventMsg:
		wasActive := m.Ctrl.AlarmActive()
		if _, err := m.Ctrl.HandleEvent(typed.Event); err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		} else if wasActive && !m.Ctrl.AlarmActive() {
			m.Status = StatusBar{Text: "alarm finished", IsError: false}
		}
		return m, waitForEventCmd(m.Events)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	switch m.CurrentView {
	case ViewTimer:
		leftPane = m.renderTimerView()
	case ViewTasks:
		leftPane = m.renderTasksView()
	case ViewStats:
		leftPane = m.renderStatsView()
	}
	rightPane := strings.TrimSpace(strings.Join([]string{m.renderCommandPalette(), m.renderHelpIfVisible()}, "\n"))

	alarm := ""
	if m.Ctrl.AlarmActive() {
		alarm = "ALARM: focus session complete, press s to silence"
	}

	t := m.Ctrl.Timer()
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("pomodoro | view: %s | %s %s | today: %s", m.CurrentView, t.Display(), t.State().Label(), m.todayTotal()),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Alarm:        alarm,
		Notification: m.renderNotificationsView(),
		Footer:       fmt.Sprintf("keys: %s timer | %s tasks | %s stats | space start/pause | / cmd | %s help | %s quit", m.Keys.Timer, m.Keys.Tasks, m.Keys.Stats, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) todayTotal() string {
	return model.FormatMinutes(m.Ctrl.TodayMinutes())
}

func isKnownView(v View) bool {
	switch v {
	case ViewTimer, ViewTasks, ViewStats:
		return true
	default:
		return false
	}
}
