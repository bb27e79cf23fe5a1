package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/pomodoro/internal/model"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ordered := m.Ctrl.OrderedTasks()
	switch msg.String() {
	case "j", "down":
		if m.Cursor < len(ordered)-1 {
			m.Cursor++
		}
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "a":
		m.Capturing = true
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		m.Status = StatusBar{Text: "type a task, enter to add, esc to cancel", IsError: false}
	case "enter":
		if task, ok := m.cursorTask(ordered); ok {
			m.applyResult(fmt.Sprintf("active task: %s", task.Text), m.Ctrl.SelectTask(m.ctx, task.ID))
		}
	case "x":
		if task, ok := m.cursorTask(ordered); ok {
			_, err := m.Ctrl.ToggleTask(m.ctx, task.ID)
			state := "done"
			if task.IsDone {
				state = "reopened"
			}
			m.applyResult(fmt.Sprintf("%s: %s", state, task.Text), err)
		}
	case "d":
		if task, ok := m.cursorTask(ordered); ok {
			_, err := m.Ctrl.DeleteTask(m.ctx, task.ID)
			m.applyResult(fmt.Sprintf("deleted: %s", task.Text), err)
		}
	}
	return m, nil
}

func (m Model) handleCaptureKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Capturing = false
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
		m.Status = StatusBar{Text: "add cancelled", IsError: false}
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.quickAddInput.Value())
		m.Capturing = false
		m.quickAddInput.SetValue("")
		m.quickAddInput.Blur()
		task, ok, err := m.Ctrl.AddTask(m.ctx, text)
		if !ok {
			m.Status = StatusBar{Text: "empty task ignored", IsError: false}
			return m, nil
		}
		m.applyResult(fmt.Sprintf("added: %s", task.Text), err)
		return m, nil
	}
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		m.quickAddInput.SetValue(m.quickAddInput.Value() + string(msg.Runes))
		return m, nil
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	return m, cmd
}

func (m Model) cursorTask(ordered []model.Task) (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(ordered) {
		return model.Task{}, false
	}
	return ordered[m.Cursor], true
}

// applyResult reports a mutation outcome; persistence failures keep the
// in-memory change and surface on the status bar.
func (m *Model) applyResult(okText string, err error) {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Error", err.Error(), "error")
		return
	}
	m.Status = StatusBar{Text: okText, IsError: false}
}
