package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/pomodoro/internal/pomodoro"
	"github.com/sandeepkv93/pomodoro/internal/scheduler"
	"github.com/sandeepkv93/pomodoro/internal/timer"
	"github.com/sandeepkv93/pomodoro/internal/views"
)

type View string

const (
	ViewTimer View = "Timer"
	ViewTasks View = "Tasks"
	ViewStats View = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Timer string
	Tasks string
	Stats string
	Help  string
	Quit  string
}

// Model is the bubbletea model. Application state lives in the controller;
// the model only holds presentation state and the current tick handle.
type Model struct {
	CurrentView    View
	Ctrl           *pomodoro.Controller
	Events         <-chan scheduler.Event
	Cursor         int
	Capturing      bool
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	notifier       DesktopNotifier
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	ctx    context.Context
	handle timer.Handle

	quickAddInput textinput.Model
	commandInput  textinput.Model
	timerProgress progress.Model
	runSpinner    spinner.Model
	sessionTable  table.Model
	helpModel     help.Model
	guideViewport viewport.Model
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// TickMsg is one elapsed second for the countdown armed under Handle.
type TickMsg struct {
	Handle timer.Handle
}

type SchedulerEventMsg struct {
	Event scheduler.Event
}

func NewModel(ctx context.Context, ctrl *pomodoro.Controller, events <-chan scheduler.Event) Model {
	return NewModelWithConfig(ctx, ctrl, events, nil, DefaultRuntimeConfig())
}

func NewModelWithConfig(ctx context.Context, ctrl *pomodoro.Controller, events <-chan scheduler.Event, notifier DesktopNotifier, cfg RuntimeConfig) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		CurrentView:    ViewTimer,
		Ctrl:           ctrl,
		Events:         events,
		DesktopEnabled: cfg.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		Keys: GlobalKeyMap{
			Timer: "1",
			Tasks: "2",
			Stats: "3",
			Help:  "?",
			Quit:  "q",
		},
		ctx: ctx,
	}
	if notifier != nil {
		m.notifier = notifier
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.Placeholder = "what are you working on?"
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 38

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.timerProgress = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	m.timerProgress.Width = 30

	m.runSpinner = spinner.New()
	m.runSpinner.Spinner = spinner.Dot

	cols := []table.Column{
		{Title: "Done at", Width: 8},
		{Title: "Min", Width: 4},
		{Title: "Task", Width: 30},
	}
	m.sessionTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.helpModel = help.New()
	m.guideViewport = viewport.New(48, 10)
	m.guideViewport.SetContent(views.RenderMarkdown(helpGuide, 46))
}

func (m *Model) syncBubbleData() {
	if m.Ctrl == nil {
		return
	}
	ordered := m.Ctrl.OrderedTasks()
	if m.Cursor >= len(ordered) {
		m.Cursor = len(ordered) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	sessions := m.Ctrl.TodaySessions()
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, table.Row{
			s.Date.Local().Format("15:04"),
			fmt.Sprintf("%d", s.Duration),
			views.Truncate(m.taskLabel(s.TaskID), 30),
		})
	}
	m.sessionTable.SetRows(rows)
}

// taskLabel resolves a weak task reference for display.
func (m Model) taskLabel(id string) string {
	if task, ok := m.Ctrl.ResolveTask(id); ok {
		return task.Text
	}
	return "(no task)"
}
