package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/pomodoro/internal/model"
)

const (
	KeyTasks      = "pomodoro_tasks"
	KeyHistory    = "pomodoro_history"
	KeyActiveTask = "pomodoro_active_task"
)

// Snapshot is everything that survives a restart.
type Snapshot struct {
	Tasks        []model.Task
	History      []model.Session
	ActiveTaskID string
}

func EmptySnapshot() Snapshot {
	return Snapshot{
		Tasks:   []model.Task{},
		History: []model.Session{},
	}
}

// Store persists a Snapshot as three independent slots of a KV backend.
// There is no atomicity across slots; each Save replaces every slot whole.
type Store struct {
	kv KV
}

func NewStore(kv KV) (*Store, error) {
	if kv == nil {
		return nil, errors.New("storage: nil kv backend")
	}
	return &Store{kv: kv}, nil
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// Load reads all slots. The returned snapshot is always usable: absent slots
// take their defaults, and slots that cannot be read or decoded also take
// their defaults and are reported in the returned error. Records that fail
// validation are dropped and reported the same way.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	out := EmptySnapshot()
	var errs []error

	if raw, ok, err := s.read(ctx, KeyTasks); err != nil {
		errs = append(errs, err)
	} else if ok {
		var tasks []model.Task
		if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", KeyTasks, err))
		} else if tasks != nil {
			out.Tasks = keepValid(KeyTasks, tasks, model.Task.Validate, &errs)
		}
	}

	if raw, ok, err := s.read(ctx, KeyHistory); err != nil {
		errs = append(errs, err)
	} else if ok {
		var history []model.Session
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", KeyHistory, err))
		} else if history != nil {
			out.History = keepValid(KeyHistory, history, model.Session.Validate, &errs)
		}
	}

	if raw, ok, err := s.read(ctx, KeyActiveTask); err != nil {
		errs = append(errs, err)
	} else if ok {
		var id string
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", KeyActiveTask, err))
		} else {
			out.ActiveTaskID = strings.TrimSpace(id)
		}
	}

	return out, errors.Join(errs...)
}

// keepValid drops records that fail validate and reports each one.
func keepValid[T any](key string, items []T, validate func(T) error, errs *[]error) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		if err := validate(item); err != nil {
			*errs = append(*errs, fmt.Errorf("%s[%d]: %w", key, i, err))
			continue
		}
		out = append(out, item)
	}
	return out
}

// Save writes the three slots in order. An absent active task deletes its slot.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	tasks := snap.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	history := snap.History
	if history == nil {
		history = []model.Session{}
	}
	if err := s.write(ctx, KeyTasks, tasks); err != nil {
		return err
	}
	if err := s.write(ctx, KeyHistory, history); err != nil {
		return err
	}
	if snap.ActiveTaskID == "" {
		if err := s.kv.Delete(ctx, KeyActiveTask); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("clear %s: %w", KeyActiveTask, err)
		}
		return nil
	}
	return s.write(ctx, KeyActiveTask, snap.ActiveTaskID)
}

func (s *Store) read(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", false, nil
	}
	return raw, true, nil
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
