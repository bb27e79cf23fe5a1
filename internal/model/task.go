package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyTaskID   = errors.New("model: task id is required")
	ErrEmptyTaskText = errors.New("model: task text is required")
)

type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsDone    bool      `json:"isDone"`
	CreatedAt time.Time `json:"createdAt"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyTaskID
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyTaskText
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task createdAt is required")
	}
	return nil
}
