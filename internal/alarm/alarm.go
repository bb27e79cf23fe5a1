// Package alarm plays the bounded completion signal: a short tone repeated
// every Period until Stop is called or Limit elapses.
package alarm

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sandeepkv93/pomodoro/internal/scheduler"
)

const (
	Group = "alarm"

	KindBeep = "beep"
	KindStop = "stop"

	DefaultPeriod = 500 * time.Millisecond
	DefaultLimit  = 5 * time.Second
)

// Scheduler is the subset of scheduler.Engine the alarm needs.
type Scheduler interface {
	Schedule(ev scheduler.Event) error
	Cancel(group string) int
}

type Tone interface {
	Beep() error
}

type NoopTone struct{}

func (NoopTone) Beep() error { return nil }

// BellTone rings the terminal bell on W.
type BellTone struct {
	W io.Writer
}

func (b BellTone) Beep() error {
	if b.W == nil {
		return nil
	}
	_, err := io.WriteString(b.W, "\a")
	return err
}

type Alarm struct {
	sched      Scheduler
	tone       Tone
	now        func() time.Time
	Period     time.Duration
	Limit      time.Duration
	active     bool
	generation uint64
	deadline   time.Time
	beeps      int
}

func New(sched Scheduler, tone Tone) *Alarm {
	if tone == nil {
		tone = NoopTone{}
	}
	return &Alarm{
		sched:  sched,
		tone:   tone,
		now:    time.Now,
		Period: DefaultPeriod,
		Limit:  DefaultLimit,
	}
}

// WithClock replaces the time source; used by tests.
func (a *Alarm) WithClock(now func() time.Time) {
	a.now = now
}

// Active reports whether the alarm is sounding. An activation never outlives
// its deadline, even if the scheduled stop was lost.
func (a *Alarm) Active() bool {
	return a.active && a.now().Before(a.deadline)
}

// Beeps counts tones emitted by the current or most recent activation.
func (a *Alarm) Beeps() int { return a.beeps }

// Start activates the alarm unless it is already active. The first tone is
// emitted immediately; further tones and the auto-stop are scheduled.
func (a *Alarm) Start() error {
	if a.Active() {
		return nil
	}
	a.Stop()
	a.active = true
	a.generation++
	a.beeps = 0
	now := a.now()
	a.deadline = now.Add(a.Limit)

	var errs []error
	if err := a.beep(); err != nil {
		errs = append(errs, err)
	}
	if a.sched == nil {
		return errors.Join(errs...)
	}
	if err := a.schedule(KindStop, a.deadline); err != nil {
		errs = append(errs, err)
	}
	if next := now.Add(a.Period); next.Before(a.deadline) {
		if err := a.schedule(KindBeep, next); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop silences the alarm and cancels its pending events. Calling Stop on an
// inactive alarm does nothing.
func (a *Alarm) Stop() {
	if !a.active {
		return
	}
	a.active = false
	if a.sched != nil {
		a.sched.Cancel(Group)
	}
}

// Handle consumes a scheduler event addressed to the alarm. It reports false
// for events of other groups. Events from an earlier activation are consumed
// and ignored.
func (a *Alarm) Handle(ev scheduler.Event) (bool, error) {
	if ev.Group != Group {
		return false, nil
	}
	if !a.active || ev.Generation != a.generation {
		return true, nil
	}
	switch ev.Kind {
	case KindStop:
		a.Stop()
		return true, nil
	case KindBeep:
		if !ev.TriggerAt.Before(a.deadline) {
			return true, nil
		}
		if err := a.beep(); err != nil {
			return true, err
		}
		if next := ev.TriggerAt.Add(a.Period); next.Before(a.deadline) {
			return true, a.schedule(KindBeep, next)
		}
		return true, nil
	default:
		return true, fmt.Errorf("alarm: unknown event kind %q", ev.Kind)
	}
}

func (a *Alarm) beep() error {
	a.beeps++
	return a.tone.Beep()
}

func (a *Alarm) schedule(kind string, at time.Time) error {
	return a.sched.Schedule(scheduler.Event{
		ID:         fmt.Sprintf("%s-%s-%d", Group, kind, a.generation),
		Group:      Group,
		Kind:       kind,
		Generation: a.generation,
		TriggerAt:  at,
	})
}
