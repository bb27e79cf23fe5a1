// Package pomodoro owns the application state: the countdown, the task list
// and the session history. Every mutating operation persists the full
// snapshot before returning.
package pomodoro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sandeepkv93/pomodoro/internal/alarm"
	"github.com/sandeepkv93/pomodoro/internal/history"
	"github.com/sandeepkv93/pomodoro/internal/model"
	"github.com/sandeepkv93/pomodoro/internal/scheduler"
	"github.com/sandeepkv93/pomodoro/internal/storage"
	"github.com/sandeepkv93/pomodoro/internal/tasks"
	"github.com/sandeepkv93/pomodoro/internal/timer"
)

// Persister is the persistence contract; storage.Store implements it.
type Persister interface {
	Load(ctx context.Context) (storage.Snapshot, error)
	Save(ctx context.Context, snap storage.Snapshot) error
}

// State is the whole in-memory application state.
type State struct {
	Timer   timer.Timer
	Tasks   tasks.Store
	History history.Log
}

type Options struct {
	Alarm  *alarm.Alarm
	Logger *slog.Logger
	Now    func() time.Time
	// OnComplete runs after a session has been recorded and persisted.
	OnComplete func(model.Session, model.Task, bool)
	NewID      func() string
}

type Controller struct {
	state      State
	store      Persister
	alarm      *alarm.Alarm
	logger     *slog.Logger
	now        func() time.Time
	onComplete func(model.Session, model.Task, bool)
}

// Open loads persisted state and returns a ready controller. Load problems are
// logged and reported through the second return value; the controller is
// usable either way, starting from whatever could be read.
func Open(ctx context.Context, store Persister, opts Options) (*Controller, error) {
	if store == nil {
		return nil, errors.New("pomodoro: nil store")
	}
	c := &Controller{
		store:      store,
		alarm:      opts.Alarm,
		logger:     opts.Logger,
		now:        opts.Now,
		onComplete: opts.OnComplete,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.alarm == nil {
		c.alarm = alarm.New(nil, alarm.NoopTone{})
	}

	snap, loadErr := store.Load(ctx)
	if loadErr != nil {
		c.logger.Warn("state partially reset to defaults", "err", loadErr)
	}
	c.state = State{
		Timer:   timer.New(),
		Tasks:   tasks.New(snap.Tasks, snap.ActiveTaskID),
		History: history.New(snap.History),
	}
	if opts.NewID != nil {
		c.state.Tasks.WithIDGenerator(opts.NewID)
	}
	c.logger.Info("state loaded", "tasks", c.state.Tasks.Len(), "sessions", c.state.History.Len())
	return c, loadErr
}

// Start begins or resumes the countdown. The returned handle must accompany
// every Tick; ok is false when the timer was already running.
func (c *Controller) Start() (timer.Handle, bool) {
	return c.state.Timer.Start()
}

func (c *Controller) Pause() {
	c.state.Timer.Pause()
}

// Reset stops the countdown and any sounding alarm and rewinds to 25:00.
func (c *Controller) Reset() {
	c.state.Timer.Reset()
	c.alarm.Stop()
}

// Tick applies one elapsed second. On the completing tick it records the
// session, persists, and starts the alarm. The returned error only reports
// side-effect failures; the outcome is valid regardless.
func (c *Controller) Tick(ctx context.Context, h timer.Handle) (timer.Outcome, error) {
	outcome := c.state.Timer.Tick(h)
	if outcome != timer.Completed {
		return outcome, nil
	}
	return outcome, c.completeSession(ctx)
}

func (c *Controller) completeSession(ctx context.Context) error {
	session := model.Session{
		Date:     c.now().UTC(),
		Duration: model.PomodoroMinutes,
		TaskID:   c.state.Tasks.ActiveID(),
	}
	c.state.History.Record(session)
	task, hasTask := c.state.Tasks.Resolve(session.TaskID)
	c.logger.Info("session completed", "task_id", session.TaskID, "task_found", hasTask)

	var errs []error
	if err := c.persist(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.alarm.Start(); err != nil {
		c.logger.Warn("alarm start failed", "err", err)
		errs = append(errs, fmt.Errorf("alarm: %w", err))
	}
	if c.onComplete != nil {
		c.onComplete(session, task, hasTask)
	}
	return errors.Join(errs...)
}

// HandleEvent routes a scheduler event. It reports whether the event was
// addressed to this controller.
func (c *Controller) HandleEvent(ev scheduler.Event) (bool, error) {
	consumed, err := c.alarm.Handle(ev)
	if err != nil {
		c.logger.Warn("alarm event failed", "event", ev.ID, "err", err)
	}
	return consumed, err
}

func (c *Controller) StopAlarm() {
	c.alarm.Stop()
}

func (c *Controller) AlarmActive() bool {
	return c.alarm.Active()
}

// AddTask appends a task; blank text is ignored without error.
func (c *Controller) AddTask(ctx context.Context, text string) (model.Task, bool, error) {
	task, ok := c.state.Tasks.Add(text, c.now().UTC())
	if !ok {
		return model.Task{}, false, nil
	}
	return task, true, c.persist(ctx)
}

// ToggleTask flips a task's done flag; unknown ids are ignored without error.
func (c *Controller) ToggleTask(ctx context.Context, id string) (bool, error) {
	if !c.state.Tasks.Toggle(id) {
		return false, nil
	}
	return true, c.persist(ctx)
}

// DeleteTask removes a task and clears the active selection if it pointed at it.
func (c *Controller) DeleteTask(ctx context.Context, id string) (bool, error) {
	if !c.state.Tasks.Delete(id) {
		return false, nil
	}
	return true, c.persist(ctx)
}

// SelectTask makes id the active task. The id is not validated.
func (c *Controller) SelectTask(ctx context.Context, id string) error {
	c.state.Tasks.Select(id)
	return c.persist(ctx)
}

func (c *Controller) Timer() timer.Timer { return c.state.Timer }

func (c *Controller) ActiveTaskID() string { return c.state.Tasks.ActiveID() }

func (c *Controller) ActiveTask() (model.Task, bool) { return c.state.Tasks.Active() }

func (c *Controller) ResolveTask(id string) (model.Task, bool) { return c.state.Tasks.Resolve(id) }

func (c *Controller) OrderedTasks() []model.Task { return c.state.Tasks.Ordered() }

func (c *Controller) PendingCount() int { return c.state.Tasks.PendingCount() }

func (c *Controller) Sessions() []model.Session { return c.state.History.All() }

// TodayMinutes sums the sessions completed on the local calendar day.
func (c *Controller) TodayMinutes() int {
	return c.state.History.SumDurationForDay(c.now().Local())
}

func (c *Controller) TodaySessions() []model.Session {
	return c.state.History.ForDay(c.now().Local())
}

func (c *Controller) Snapshot() storage.Snapshot {
	return storage.Snapshot{
		Tasks:        c.state.Tasks.All(),
		History:      c.state.History.All(),
		ActiveTaskID: c.state.Tasks.ActiveID(),
	}
}

func (c *Controller) persist(ctx context.Context) error {
	if err := c.store.Save(ctx, c.Snapshot()); err != nil {
		c.logger.Error("persist state failed", "err", err)
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}
