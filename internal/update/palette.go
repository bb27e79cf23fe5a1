package update

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/pomodoro/internal/commands"
	"github.com/sandeepkv93/pomodoro/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
	return m, nil
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, ok, err := m.Ctrl.AddTask(m.ctx, a.Text)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "add requires task text"}
			}
			return commands.Result{Message: fmt.Sprintf("added: %s", task.Text)}, err
		},
		Done: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.resolveRef(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			_, err = m.Ctrl.ToggleTask(m.ctx, task.ID)
			return commands.Result{Message: fmt.Sprintf("toggled: %s", task.Text)}, err
		},
		Delete: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.resolveRef(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			_, err = m.Ctrl.DeleteTask(m.ctx, task.ID)
			return commands.Result{Message: fmt.Sprintf("deleted: %s", task.Text)}, err
		},
		Select: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.resolveRef(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("active task: %s", task.Text)}, m.Ctrl.SelectTask(m.ctx, task.ID)
		},
		Start: func() (commands.Result, error) {
			if m.Ctrl.Timer().Running() {
				return commands.Result{Message: "timer already running"}, nil
			}
			m, follow = m.startTimer()
			return commands.Result{Message: "focus running"}, nil
		},
		Pause: func() (commands.Result, error) {
			m, follow = m.pauseTimer()
			return commands.Result{Message: "focus paused"}, nil
		},
		Reset: func() (commands.Result, error) {
			m, follow = m.resetTimer()
			return commands.Result{Message: "focus reset"}, nil
		},
		StopAlarm: func() (commands.Result, error) {
			m.Ctrl.StopAlarm()
			return commands.Result{Message: "alarm stopped"}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, follow
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	return m, follow
}

// resolveRef finds a task by position in display order or by a unique id
// prefix. "#3" is always a position; a bare number is a position when it is
// in range and an id prefix otherwise.
func (m Model) resolveRef(ref string) (model.Task, error) {
	ordered := m.Ctrl.OrderedTasks()
	if pos, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.Atoi(pos)
		if err != nil || n < 1 || n > len(ordered) {
			return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task at position %s", pos)}
		}
		return ordered[n-1], nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(ordered) {
		return ordered[n-1], nil
	}
	var found []model.Task
	for _, task := range ordered {
		if strings.HasPrefix(task.ID, ref) {
			found = append(found, task)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", ref)}
	case 1:
		return found[0], nil
	default:
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("%q matches %d tasks", ref, len(found))}
	}
}
