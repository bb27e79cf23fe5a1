// Package timer implements the pomodoro countdown state machine.
//
// The timer never sleeps or spawns goroutines. Each Start arms a tick chain
// identified by a Handle; the caller delivers one Tick per elapsed second
// carrying that handle. Pause and Reset cancel the chain, after which ticks
// for the old handle are reported as Stale and change nothing.
package timer

import "github.com/sandeepkv93/pomodoro/internal/model"

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

func (s State) Label() string {
	switch s {
	case StateRunning:
		return "FOCUSING..."
	case StatePaused:
		return "PAUSED"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "READY"
	}
}

type Outcome int

const (
	// Stale means the tick belonged to a cancelled chain and was dropped.
	Stale Outcome = iota
	// Ticked means one second elapsed and the chain should be re-armed.
	Ticked
	// Completed means the countdown reached zero on this tick.
	Completed
)

// Handle identifies one armed tick chain.
type Handle struct {
	id uint64
}

func (h Handle) Valid() bool { return h.id != 0 }

type Timer struct {
	total     int
	remaining int
	running   bool
	armed     uint64
	lastID    uint64
}

func New() Timer {
	return Timer{total: model.PomodoroSeconds, remaining: model.PomodoroSeconds}
}

// Start begins or resumes the countdown and returns the handle of the new
// tick chain. A completed countdown restarts from the full duration. Starting
// a running timer is a no-op and returns false.
func (t *Timer) Start() (Handle, bool) {
	t.ensureTotal()
	if t.running {
		return Handle{}, false
	}
	if t.remaining <= 0 {
		t.remaining = t.total
	}
	t.running = true
	t.lastID++
	t.armed = t.lastID
	return Handle{id: t.armed}, true
}

func (t *Timer) Pause() {
	if !t.running {
		return
	}
	t.running = false
	t.armed = 0
}

func (t *Timer) Reset() {
	t.ensureTotal()
	t.running = false
	t.armed = 0
	t.remaining = t.total
}

// Tick applies one elapsed second for h.
func (t *Timer) Tick(h Handle) Outcome {
	if !t.running || !h.Valid() || h.id != t.armed {
		return Stale
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.running = false
		t.armed = 0
		return Completed
	}
	return Ticked
}

func (t Timer) Remaining() int { return t.remaining }

func (t Timer) Running() bool { return t.running }

func (t Timer) Total() int {
	if t.total <= 0 {
		return model.PomodoroSeconds
	}
	return t.total
}

func (t Timer) State() State {
	switch {
	case t.running:
		return StateRunning
	case t.remaining <= 0:
		return StateCompleted
	case t.remaining == t.Total():
		return StateIdle
	default:
		return StatePaused
	}
}

// Display renders the remaining time as MM:SS.
func (t Timer) Display() string {
	return model.FormatClock(t.remaining)
}

// Progress is the elapsed fraction of the countdown in [0, 1].
func (t Timer) Progress() float64 {
	total := t.Total()
	p := float64(total-t.remaining) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (t *Timer) ensureTotal() {
	if t.total <= 0 {
		t.total = model.PomodoroSeconds
	}
}
