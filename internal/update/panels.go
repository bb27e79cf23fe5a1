package update

import (
	"strings"
	"time"

	"github.com/sandeepkv93/pomodoro/internal/model"
	"github.com/sandeepkv93/pomodoro/internal/views"
)

const maxNotifications = 40

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) renderTimerView() string {
	t := m.Ctrl.Timer()
	active := ""
	if task, ok := m.Ctrl.ActiveTask(); ok {
		active = task.Text
	}
	return views.RenderTimerPanel(views.TimerPanelData{
		Clock:        t.Display(),
		Label:        t.State().Label(),
		ProgressView: m.timerProgress.ViewAs(t.Progress()),
		ProgressPct:  int(t.Progress() * 100),
		ActiveTask:   active,
		SpinnerView:  m.runSpinner.View(),
		Running:      t.Running(),
		AlarmActive:  m.Ctrl.AlarmActive(),
	})
}

func (m Model) renderTasksView() string {
	ordered := m.Ctrl.OrderedTasks()
	activeID := m.Ctrl.ActiveTaskID()
	items := make([]views.TaskItemData, 0, len(ordered))
	for _, task := range ordered {
		items = append(items, views.TaskItemData{
			ID:     task.ID,
			Text:   task.Text,
			Done:   task.IsDone,
			Active: activeID != "" && task.ID == activeID,
		})
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		Items:     items,
		Cursor:    m.Cursor,
		Pending:   m.Ctrl.PendingCount(),
		InputView: m.quickAddInput.View(),
		Capturing: m.Capturing,
	})
}

func (m Model) renderStatsView() string {
	return views.RenderStatsPanel(views.StatsPanelData{
		Today:     model.FormatMinutes(m.Ctrl.TodayMinutes()),
		Sessions:  len(m.Ctrl.TodaySessions()),
		TableView: m.sessionTable.View(),
	})
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}
