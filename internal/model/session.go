package model

import (
	"errors"
	"fmt"
	"time"
)

// PomodoroMinutes is the credited length of every completed session.
const PomodoroMinutes = 25

// PomodoroSeconds is the full countdown length.
const PomodoroSeconds = PomodoroMinutes * 60

var ErrInvalidDuration = errors.New("model: invalid session duration")

// Session is one completed pomodoro. TaskID is a weak reference: it may be
// empty or point at a task that no longer exists.
type Session struct {
	Date     time.Time `json:"date"`
	Duration int       `json:"duration"`
	TaskID   string    `json:"taskId,omitempty"`
}

func (s Session) Validate() error {
	if s.Date.IsZero() {
		return errors.New("model: session date is required")
	}
	if s.Duration <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, s.Duration)
	}
	return nil
}

// OnDay reports whether the session completed on the calendar day of day,
// using day's location for the wall-clock boundaries.
func (s Session) OnDay(day time.Time) bool {
	return SameDay(s.Date.In(day.Location()), day)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatMinutes renders a minute total as "45m" or, from one hour up, "1.5h".
// Hours are rounded to the nearest tenth with halves rounded up.
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	tenths := (minutes*10 + 30) / 60
	return fmt.Sprintf("%d.%dh", tenths/10, tenths%10)
}

// FormatClock renders seconds as MM:SS.
func FormatClock(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}
