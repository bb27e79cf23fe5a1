package history

import (
	"time"

	"github.com/sandeepkv93/pomodoro/internal/model"
)

// Log is the append-only record of completed sessions.
type Log struct {
	sessions []model.Session
}

func New(sessions []model.Session) Log {
	cp := make([]model.Session, len(sessions))
	copy(cp, sessions)
	return Log{sessions: cp}
}

func (l *Log) Record(s model.Session) {
	l.sessions = append(l.sessions, s)
}

func (l Log) Len() int {
	return len(l.sessions)
}

func (l Log) All() []model.Session {
	out := make([]model.Session, len(l.sessions))
	copy(out, l.sessions)
	return out
}

// ForDay returns the sessions completed on day's calendar date in day's location.
func (l Log) ForDay(day time.Time) []model.Session {
	out := make([]model.Session, 0)
	for _, s := range l.sessions {
		if s.OnDay(day) {
			out = append(out, s)
		}
	}
	return out
}

func (l Log) SumDurationForDay(day time.Time) int {
	total := 0
	for _, s := range l.sessions {
		if s.OnDay(day) {
			total += s.Duration
		}
	}
	return total
}
