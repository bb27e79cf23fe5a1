package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/pomodoro/internal/alarm"
	"github.com/sandeepkv93/pomodoro/internal/model"
	"github.com/sandeepkv93/pomodoro/internal/pomodoro"
	"github.com/sandeepkv93/pomodoro/internal/scheduler"
	"github.com/sandeepkv93/pomodoro/internal/storage"
)

type failingStore struct{}

func (failingStore) Load(context.Context) (storage.Snapshot, error) {
	return storage.EmptySnapshot(), nil
}

func (failingStore) Save(context.Context, storage.Snapshot) error {
	return errors.New("disk full")
}

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func newController(t *testing.T, store pomodoro.Persister, opts pomodoro.Options) *pomodoro.Controller {
	t.Helper()
	if store == nil {
		s, err := storage.NewStore(storage.NewMemoryKV())
		if err != nil {
			t.Fatalf("new store: %v", err)
		}
		store = s
	}
	if opts.NewID == nil {
		n := 0
		opts.NewID = func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		}
	}
	ctrl, err := pomodoro.Open(context.Background(), store, opts)
	if err != nil {
		t.Fatalf("open controller: %v", err)
	}
	return ctrl
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	return NewModel(context.Background(), newController(t, nil, pomodoro.Options{}), nil)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = press(t, m, string(r))
	}
	return m
}

func runCommand(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = press(t, m, "/")
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	m = typeText(t, m, line)
	return press(t, m, "enter")
}

func tick(t *testing.T, m Model, msg TickMsg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t)
	if m.CurrentView != ViewTimer {
		t.Fatalf("expected default view %q, got %q", ViewTimer, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	out := m.View()
	if !strings.Contains(out, "25:00") || !strings.Contains(out, "READY") {
		t.Fatalf("expected idle clock in view, got %q", out)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "2")
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected tasks view, got %q", m.CurrentView)
	}
	m, _ = press(t, m, "3")
	if m.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", m.CurrentView)
	}
	m, _ = press(t, m, "1")
	if m.CurrentView != ViewTimer {
		t.Fatalf("expected timer view, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(SwitchViewMsg{View: ViewStats})
	next := updated.(Model)
	if next.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewStats {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestSpaceStartsAndPausesTimer(t *testing.T) {
	m := newTestModel(t)
	m, cmd := press(t, m, " ")
	if !m.Ctrl.Timer().Running() || cmd == nil {
		t.Fatal("expected running timer and a tick command")
	}
	h := m.handle
	if !h.Valid() {
		t.Fatal("expected a valid tick handle")
	}

	m = tick(t, m, TickMsg{Handle: h})
	if got := m.Ctrl.Timer().Remaining(); got != model.PomodoroSeconds-1 {
		t.Fatalf("expected one second elapsed, got remaining %d", got)
	}

	m, _ = press(t, m, " ")
	if m.Ctrl.Timer().Running() {
		t.Fatal("expected paused timer")
	}
	m = tick(t, m, TickMsg{Handle: h})
	if got := m.Ctrl.Timer().Remaining(); got != model.PomodoroSeconds-1 {
		t.Fatalf("stale tick after pause changed remaining to %d", got)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Fatalf("expected paused label in view: %q", m.View())
	}

	m, _ = press(t, m, " ")
	if m.handle == h {
		t.Fatal("expected a fresh handle after resume")
	}
	m = tick(t, m, TickMsg{Handle: m.handle})
	if got := m.Ctrl.Timer().Remaining(); got != model.PomodoroSeconds-2 {
		t.Fatalf("expected resume from paused value, got %d", got)
	}
}

func TestFullCountdownThroughUpdate(t *testing.T) {
	notifier := &recordingNotifier{}
	cfg := DefaultRuntimeConfig()
	cfg.DesktopNotifications = true
	m := NewModelWithConfig(context.Background(), newController(t, nil, pomodoro.Options{}), nil, notifier, cfg)

	m, _ = press(t, m, " ")
	h := m.handle
	for i := 0; i < model.PomodoroSeconds-1; i++ {
		m = tick(t, m, TickMsg{Handle: h})
	}
	if len(m.Ctrl.Sessions()) != 0 {
		t.Fatal("expected no session before the final tick")
	}
	if m.Ctrl.Timer().Display() != "00:01" {
		t.Fatalf("expected 00:01, got %s", m.Ctrl.Timer().Display())
	}

	m = tick(t, m, TickMsg{Handle: h})
	sessions := m.Ctrl.Sessions()
	if len(sessions) != 1 || sessions[0].Duration != model.PomodoroMinutes {
		t.Fatalf("expected one 25 minute session, got %+v", sessions)
	}
	if m.Ctrl.Timer().Running() || m.handle.Valid() {
		t.Fatal("expected stopped timer after completion")
	}
	if !m.Ctrl.AlarmActive() {
		t.Fatal("expected alarm active after completion")
	}
	if !strings.Contains(m.Status.Text, "session complete") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].Title != "Pomodoro complete" {
		t.Fatalf("expected one desktop notification, got %+v", notifier.sent)
	}
	if !strings.Contains(m.View(), "COMPLETED") {
		t.Fatalf("expected completed label in view: %q", m.View())
	}

	m = tick(t, m, TickMsg{Handle: h})
	if len(m.Ctrl.Sessions()) != 1 {
		t.Fatal("extra tick must not record another session")
	}

	m, _ = press(t, m, "s")
	if m.Ctrl.AlarmActive() {
		t.Fatal("expected alarm stopped")
	}
}

func TestResetKey(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, " ")
	h := m.handle
	for i := 0; i < 10; i++ {
		m = tick(t, m, TickMsg{Handle: h})
	}
	m, _ = press(t, m, "r")
	if m.Ctrl.Timer().Running() || m.Ctrl.Timer().Remaining() != model.PomodoroSeconds {
		t.Fatalf("expected reset timer, got %s running=%v", m.Ctrl.Timer().Display(), m.Ctrl.Timer().Running())
	}
	m = tick(t, m, TickMsg{Handle: h})
	if m.Ctrl.Timer().Remaining() != model.PomodoroSeconds {
		t.Fatal("tick after reset must be ignored")
	}
}

func TestTaskQuickAdd(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "2")
	m, _ = press(t, m, "a")
	if !m.Capturing {
		t.Fatal("expected capture mode")
	}
	m = typeText(t, m, "write tests")
	m, _ = press(t, m, "enter")
	if m.Capturing {
		t.Fatal("expected capture mode closed")
	}
	tasks := m.Ctrl.OrderedTasks()
	if len(tasks) != 1 || tasks[0].Text != "write tests" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	m, _ = press(t, m, "a")
	m = typeText(t, m, "   ")
	m, _ = press(t, m, "enter")
	if len(m.Ctrl.OrderedTasks()) != 1 {
		t.Fatal("blank task must be ignored")
	}
	if m.Status.Text != "empty task ignored" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m, _ = press(t, m, "a")
	m = typeText(t, m, "never mind")
	m, _ = press(t, m, "esc")
	if m.Capturing || len(m.Ctrl.OrderedTasks()) != 1 {
		t.Fatal("esc must cancel without adding")
	}
}

func TestCaptureModeSwallowsGlobalKeys(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "2")
	m, _ = press(t, m, "a")
	m = typeText(t, m, "q1 s")
	if m.Quitting || m.CurrentView != ViewTasks {
		t.Fatal("typing must not trigger global keys")
	}
	m, _ = press(t, m, "enter")
	if got := m.Ctrl.OrderedTasks()[0].Text; got != "q1 s" {
		t.Fatalf("unexpected task text %q", got)
	}
}

func TestTaskListKeys(t *testing.T) {
	m := newTestModel(t)
	ctx := context.Background()
	if _, _, err := m.Ctrl.AddTask(ctx, "first"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := m.Ctrl.AddTask(ctx, "second"); err != nil {
		t.Fatalf("add: %v", err)
	}
	m, _ = press(t, m, "2")

	m, _ = press(t, m, "enter")
	if m.Ctrl.ActiveTaskID() != "task-1" {
		t.Fatalf("expected task-1 active, got %q", m.Ctrl.ActiveTaskID())
	}

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "x")
	ordered := m.Ctrl.OrderedTasks()
	if !ordered[1].IsDone || ordered[1].ID != "task-2" {
		t.Fatalf("expected task-2 done and last, got %+v", ordered)
	}
	if !strings.Contains(m.View(), "1 pending") {
		t.Fatalf("expected pending count in view: %q", m.View())
	}

	m, _ = press(t, m, "d")
	if len(m.Ctrl.OrderedTasks()) != 1 || m.Ctrl.ActiveTaskID() != "task-1" {
		t.Fatal("deleting another task must keep the active one")
	}
	if m.Cursor != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", m.Cursor)
	}

	m, _ = press(t, m, "d")
	if len(m.Ctrl.OrderedTasks()) != 0 || m.Ctrl.ActiveTaskID() != "" {
		t.Fatal("deleting the active task must clear the selection")
	}
	m, _ = press(t, m, "x")
	if !strings.Contains(m.View(), "(no tasks)") {
		t.Fatalf("expected empty list in view: %q", m.View())
	}
}

func TestPaletteCommands(t *testing.T) {
	m := newTestModel(t)

	m, _ = runCommand(t, m, "add hello world")
	if m.Palette.Active {
		t.Fatal("expected palette closed after enter")
	}
	tasks := m.Ctrl.OrderedTasks()
	if len(tasks) != 1 || tasks[0].Text != "hello world" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	m, _ = runCommand(t, m, "select 1")
	if m.Ctrl.ActiveTaskID() != "task-1" {
		t.Fatalf("expected task-1 active, got %q", m.Ctrl.ActiveTaskID())
	}

	m, _ = runCommand(t, m, "done task-1")
	if !m.Ctrl.OrderedTasks()[0].IsDone {
		t.Fatal("expected task done via id prefix")
	}

	m, cmd := runCommand(t, m, "start")
	if !m.Ctrl.Timer().Running() || cmd == nil {
		t.Fatal("expected running timer with a tick command")
	}
	m, _ = runCommand(t, m, "pause")
	if m.Ctrl.Timer().Running() {
		t.Fatal("expected paused timer")
	}
	m, _ = runCommand(t, m, "reset")
	if m.Ctrl.Timer().Remaining() != model.PomodoroSeconds {
		t.Fatal("expected reset timer")
	}

	m, _ = runCommand(t, m, "delete 1")
	if len(m.Ctrl.OrderedTasks()) != 0 {
		t.Fatal("expected task deleted")
	}
}

func TestPaletteErrors(t *testing.T) {
	m := newTestModel(t)

	m, _ = runCommand(t, m, "bogus")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}

	m, _ = runCommand(t, m, "select #3")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task at position 3") {
		t.Fatalf("expected position error, got %+v", m.Status)
	}

	m, _ = runCommand(t, m, "select 3")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, `no task matches "3"`) {
		t.Fatalf("expected out-of-range number to be tried as a prefix, got %+v", m.Status)
	}

	m, _ = press(t, m, "/")
	m = typeText(t, m, "start")
	m, _ = press(t, m, "esc")
	if m.Palette.Active || m.Ctrl.Timer().Running() {
		t.Fatal("esc must close the palette without running")
	}
}

func TestResolveRefPrefix(t *testing.T) {
	ids := []string{"abc1", "abd2"}
	n := 0
	ctrl := newController(t, nil, pomodoro.Options{NewID: func() string {
		id := ids[n]
		n++
		return id
	}})
	ctx := context.Background()
	ctrl.AddTask(ctx, "one")
	ctrl.AddTask(ctx, "two")
	m := NewModel(ctx, ctrl, nil)

	if _, err := m.resolveRef("ab"); err == nil || !strings.Contains(err.Error(), "matches 2 tasks") {
		t.Fatalf("expected ambiguous prefix error, got %v", err)
	}
	task, err := m.resolveRef("abd")
	if err != nil || task.Text != "two" {
		t.Fatalf("expected task two, got %+v %v", task, err)
	}
	if _, err := m.resolveRef("zz"); err == nil {
		t.Fatal("expected no-match error")
	}
}

func TestResolveRefNumericIDPrefix(t *testing.T) {
	ids := []string{"12ab", "34cd"}
	n := 0
	ctrl := newController(t, nil, pomodoro.Options{NewID: func() string {
		id := ids[n]
		n++
		return id
	}})
	ctx := context.Background()
	ctrl.AddTask(ctx, "first")
	ctrl.AddTask(ctx, "second")
	m := NewModel(ctx, ctrl, nil)

	cases := []struct {
		ref  string
		want string
	}{
		{ref: "1", want: "first"},
		{ref: "#2", want: "second"},
		{ref: "12", want: "first"},
		{ref: "34", want: "second"},
	}
	for _, tc := range cases {
		task, err := m.resolveRef(tc.ref)
		if err != nil || task.Text != tc.want {
			t.Fatalf("resolveRef(%q) = %+v, %v; want %q", tc.ref, task, err, tc.want)
		}
	}
	if _, err := m.resolveRef("#12"); err == nil {
		t.Fatal("expected explicit position out of range to fail")
	}
}

func TestSchedulerEventStopsAlarm(t *testing.T) {
	engine := scheduler.NewEngine(8)
	al := alarm.New(engine, alarm.NoopTone{})
	ctrl := newController(t, nil, pomodoro.Options{Alarm: al})
	m := NewModel(context.Background(), ctrl, engine.C())

	if err := al.Start(); err != nil {
		t.Fatalf("start alarm: %v", err)
	}
	updated, cmd := m.Update(SchedulerEventMsg{Event: scheduler.Event{
		ID:         "alarm-stop-1",
		Group:      alarm.Group,
		Kind:       alarm.KindStop,
		Generation: 1,
		TriggerAt:  time.Now(),
	}})
	m = updated.(Model)
	if m.Ctrl.AlarmActive() {
		t.Fatal("expected alarm stopped by its stop event")
	}
	if m.Status.Text != "alarm finished" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if cmd == nil {
		t.Fatal("expected the event wait to be re-armed")
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected pending alarm events cancelled, got %d", engine.Pending())
	}
}

func TestPersistenceErrorSurfacesOnStatus(t *testing.T) {
	m := NewModel(context.Background(), newController(t, failingStore{}, pomodoro.Options{}), nil)
	m, _ = runCommand(t, m, "add survive")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "disk full") {
		t.Fatalf("expected persistence error on status, got %+v", m.Status)
	}
	if len(m.Ctrl.OrderedTasks()) != 1 {
		t.Fatal("mutation must survive a failed write")
	}
}

func TestStatsViewListsTodaySessions(t *testing.T) {
	m := newTestModel(t)
	m, _ = runCommand(t, m, "add deep work")
	m, _ = runCommand(t, m, "select 1")
	m, _ = press(t, m, " ")
	h := m.handle
	for i := 0; i < model.PomodoroSeconds; i++ {
		m = tick(t, m, TickMsg{Handle: h})
	}
	m, _ = press(t, m, "3")
	out := m.View()
	if !strings.Contains(out, "today: 25m (1 sessions)") {
		t.Fatalf("expected daily total in view: %q", out)
	}
	if !strings.Contains(out, "deep work") {
		t.Fatalf("expected resolved task text in table: %q", out)
	}

	m, _ = runCommand(t, m, "delete 1")
	if !strings.Contains(m.View(), "(no task)") {
		t.Fatalf("expected dangling reference shown as no task: %q", m.View())
	}
}

func TestHelpToggleAndQuit(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "?")
	if !m.HelpVisible || !strings.Contains(m.View(), "help (timer view)") {
		t.Fatalf("expected help panel, got %q", m.View())
	}
	m, _ = press(t, m, "?")
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
	m, cmd := press(t, m, "q")
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}
