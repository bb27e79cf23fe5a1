package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/pomodoro/internal/alarm"
	"github.com/sandeepkv93/pomodoro/internal/model"
	"github.com/sandeepkv93/pomodoro/internal/pomodoro"
	"github.com/sandeepkv93/pomodoro/internal/scheduler"
	"github.com/sandeepkv93/pomodoro/internal/storage"
	"github.com/sandeepkv93/pomodoro/internal/update"
	"github.com/sandeepkv93/pomodoro/internal/views"
)

type globalFlags struct {
	store      string
	path       string
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "pomodoro",
		Short:         "25 minute focus timer with a task list",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.store, "store", "", "storage backend: sqlite, file or memory")
	root.PersistentFlags().StringVar(&flags.path, "path", "", "database file (sqlite) or state directory (file)")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")

	root.AddCommand(newTasksCmd(&flags))
	root.AddCommand(newAddCmd(&flags))
	root.AddCommand(newStatsCmd(&flags))
	return root
}

func newTasksCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List tasks, pending first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withController(cmd.Context(), *flags, func(ctrl *pomodoro.Controller) error {
				out := cmd.OutOrStdout()
				ordered := ctrl.OrderedTasks()
				if len(ordered) == 0 {
					_, err := fmt.Fprintln(out, "(no tasks)")
					return err
				}
				activeID := ctrl.ActiveTaskID()
				for i, task := range ordered {
					check := "[ ]"
					if task.IsDone {
						check = "[x]"
					}
					marker := ""
					if activeID != "" && task.ID == activeID {
						marker = " *"
					}
					if _, err := fmt.Fprintf(out, "%d. %s %s (%s)%s\n", i+1, check, task.Text, shortID(task.ID), marker); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), *flags, func(ctrl *pomodoro.Controller) error {
				text := strings.Join(args, " ")
				task, ok, err := ctrl.AddTask(cmd.Context(), text)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("task text is empty")
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s\n", shortID(task.ID), task.Text)
				return err
			})
		},
	}
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's focus total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withController(cmd.Context(), *flags, func(ctrl *pomodoro.Controller) error {
				sessions := ctrl.TodaySessions()
				out := cmd.OutOrStdout()
				if _, err := fmt.Fprintf(out, "today: %s (%d sessions)\n", model.FormatMinutes(ctrl.TodayMinutes()), len(sessions)); err != nil {
					return err
				}
				rows := make([]views.SessionRowData, 0, len(sessions))
				for _, s := range sessions {
					label := "(no task)"
					if task, ok := ctrl.ResolveTask(s.TaskID); ok {
						label = task.Text
					}
					rows = append(rows, views.SessionRowData{Time: s.Date.Local().Format("15:04"), Task: label})
				}
				if md := views.SessionLogMarkdown(rows); md != "" {
					_, err := fmt.Fprintln(out, views.RenderMarkdown(md, 72))
					return err
				}
				return nil
			})
		},
	}
}

func runTUI(ctx context.Context, flags globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()
	defer func() {
		engine.Stop()
		if dropped := engine.Dropped(); dropped > 0 {
			logger.Warn("scheduler dropped events", "count", dropped)
		}
	}()

	var tone alarm.Tone = alarm.NoopTone{}
	if cfg.AlarmBell {
		tone = alarm.BellTone{W: os.Stderr}
	}
	ctrl, err := pomodoro.Open(ctx, store, pomodoro.Options{
		Alarm:  alarm.New(engine, tone),
		Logger: logger,
		OnComplete: func(s model.Session, task model.Task, ok bool) {
			label := "(no task)"
			if ok {
				label = task.Text
			}
			logger.Info("focus session logged", "task", label, "minutes", s.Duration, "at", s.Date.Local().Format("15:04"))
		},
	})
	if err != nil {
		logger.Warn("starting with partially restored state", "err", err)
	}

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	m := update.NewModelWithConfig(ctx, ctrl, engine.C(), notifier, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("pomodoro failed: %w", err)
	}
	return nil
}

func withController(ctx context.Context, flags globalFlags, fn func(*pomodoro.Controller) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctrl, err := pomodoro.Open(ctx, store, pomodoro.Options{Logger: logger})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return fn(ctrl)
}

func loadConfig(flags globalFlags) (update.RuntimeConfig, error) {
	cfg := update.DefaultRuntimeConfig()
	path := flags.configPath
	if path == "" {
		path = update.ConfigPathFromEnv()
	}
	if path != "" {
		loaded, err := update.LoadRuntimeConfigFile(path, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg = update.RuntimeConfigFromEnv(cfg)
	if flags.store != "" {
		cfg.Store = flags.store
	}
	if flags.path != "" {
		cfg.StatePath = flags.path
	}
	return cfg, cfg.Validate()
}

func openStore(cfg update.RuntimeConfig) (*storage.Store, error) {
	kv, err := openKV(cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewStore(kv)
}

func openKV(cfg update.RuntimeConfig) (storage.KV, error) {
	switch cfg.Store {
	case update.StoreMemory:
		return storage.NewMemoryKV(), nil
	case update.StoreFile:
		dir := cfg.StatePath
		if dir == "" {
			base, err := dataDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(base, "state")
		}
		return storage.NewFileKV(dir)
	default:
		path := cfg.StatePath
		if path == "" {
			base, err := dataDir()
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(base, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
			path = filepath.Join(base, "pomodoro.db")
		}
		return storage.OpenSQLite(path)
	}
}

func dataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "pomodoro"), nil
}

// newLogger writes to path when set. The terminal belongs to the TUI, so an
// unset path discards log output.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return logger, func() { _ = f.Close() }, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
