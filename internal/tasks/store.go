package tasks

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/pomodoro/internal/model"
)

// Store is the ordered task collection plus the active-task pointer. The
// active id is a weak reference and is never validated on Select.
type Store struct {
	items    []model.Task
	activeID string
	newID    func() string
}

func New(items []model.Task, activeID string) Store {
	cp := make([]model.Task, len(items))
	copy(cp, items)
	return Store{items: cp, activeID: activeID, newID: uuid.NewString}
}

// WithIDGenerator replaces the UUID source; used by tests.
func (s *Store) WithIDGenerator(gen func() string) {
	s.newID = gen
}

// Add appends a task. Text that is empty after trimming is ignored.
func (s *Store) Add(text string, now time.Time) (model.Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, false
	}
	gen := s.newID
	if gen == nil {
		gen = uuid.NewString
	}
	id := gen()
	for s.indexOf(id) >= 0 {
		id = gen()
	}
	task := model.Task{
		ID:        id,
		Text:      text,
		IsDone:    false,
		CreatedAt: now,
	}
	s.items = append(s.items, task)
	return task, true
}

func (s *Store) Toggle(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items[i].IsDone = !s.items[i].IsDone
	return true
}

// Delete removes the task and clears the active pointer if it referenced it.
func (s *Store) Delete(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}
	return true
}

func (s *Store) Select(id string) {
	s.activeID = id
}

func (s Store) ActiveID() string {
	return s.activeID
}

// Active resolves the active pointer; a dangling id resolves to no task.
func (s Store) Active() (model.Task, bool) {
	return s.Resolve(s.activeID)
}

func (s Store) Resolve(id string) (model.Task, bool) {
	if id == "" {
		return model.Task{}, false
	}
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.items[i], true
}

func (s Store) Len() int {
	return len(s.items)
}

// All returns tasks in insertion order.
func (s Store) All() []model.Task {
	out := make([]model.Task, len(s.items))
	copy(out, s.items)
	return out
}

// Ordered returns tasks with not-done before done, otherwise insertion order.
func (s Store) Ordered() []model.Task {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].IsDone && out[j].IsDone
	})
	return out
}

func (s Store) PendingCount() int {
	n := 0
	for _, t := range s.items {
		if !t.IsDone {
			n++
		}
	}
	return n
}

func (s Store) indexOf(id string) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}
