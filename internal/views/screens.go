package views

import (
	"fmt"
	"strings"
)

type TimerPanelData struct {
	Clock        string
	Label        string
	ProgressView string
	ProgressPct  int
	ActiveTask   string
	SpinnerView  string
	Running      bool
	AlarmActive  bool
}

type TaskItemData struct {
	ID     string
	Text   string
	Done   bool
	Active bool
}

type TaskPanelData struct {
	Items     []TaskItemData
	Cursor    int
	Pending   int
	InputView string
	Capturing bool
}

type SessionRowData struct {
	Time string
	Task string
}

type StatsPanelData struct {
	Today     string
	Sessions  int
	TableView string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
	Guide       string
}

func RenderTimerPanel(data TimerPanelData) string {
	var b strings.Builder
	b.WriteString("timer:\n")
	b.WriteString(fmt.Sprintf("clock: %s\n", data.Clock))
	label := data.Label
	if data.Running && data.SpinnerView != "" {
		label = data.SpinnerView + " " + label
	}
	b.WriteString(fmt.Sprintf("state: %s\n", label))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	if data.ActiveTask != "" {
		b.WriteString(fmt.Sprintf("task: %s\n", data.ActiveTask))
	} else {
		b.WriteString("task: (none selected)\n")
	}
	b.WriteString("actions: [space]start/pause [r]reset [s]stop alarm\n")
	if data.AlarmActive {
		b.WriteString("prompt: session complete, press [s] to silence")
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks: %d pending\n", data.Pending))
	b.WriteString("actions: [a]add [enter]select [x]done [d]delete [j/k]move\n")
	if data.Capturing {
		b.WriteString(data.InputView + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString("(no tasks)")
		return strings.TrimSpace(b.String())
	}
	for i, item := range data.Items {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		check := "[ ]"
		if item.Done {
			check = "[x]"
		}
		marker := " "
		if item.Active {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s %s%s %d. %s\n", cursor, marker, check, i+1, Truncate(item.Text, 34)))
	}
	return strings.TrimSpace(b.String())
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("today: %s (%d sessions)\n", data.Today, data.Sessions))
	if data.Sessions == 0 {
		b.WriteString("(no sessions today)")
		return strings.TrimSpace(b.String())
	}
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("help (%s view):\n", strings.ToLower(data.CurrentView)))
	b.WriteString(strings.Join(data.Bindings, "\n"))
	b.WriteString("\n" + data.HelpView)
	if data.Guide != "" {
		b.WriteString("\n\n" + data.Guide)
	}
	return b.String()
}

// SessionLogMarkdown lists sessions as a markdown bullet list.
func SessionLogMarkdown(rows []SessionRowData) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("### Today\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("- **%s** %s\n", r.Time, r.Task))
	}
	return b.String()
}
