package update

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

var ErrUnknownStore = errors.New("unknown store backend")

type RuntimeConfig struct {
	DesktopNotifications bool   `yaml:"desktop_notifications"`
	Store                string `yaml:"store"`
	StatePath            string `yaml:"state_path"`
	AlarmBell            bool   `yaml:"alarm_bell"`
	LogFile              string `yaml:"log_file"`
	SchedulerBuffer      int    `yaml:"scheduler_buffer"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DesktopNotifications: false,
		Store:                StoreSQLite,
		AlarmBell:            true,
		SchedulerBuffer:      64,
	}
}

// LoadRuntimeConfigFile overlays the YAML file at path onto base. Keys absent
// from the file keep their base values.
func LoadRuntimeConfigFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return base, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvBool("POMODORO_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString("POMODORO_STORE"); ok && validStore(v) {
		cfg.Store = v
	}
	if v, ok := getEnvString("POMODORO_STATE_PATH"); ok {
		cfg.StatePath = v
	}
	if v, ok := getEnvBool("POMODORO_ALARM_BELL"); ok {
		cfg.AlarmBell = v
	}
	if v, ok := getEnvString("POMODORO_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvInt("POMODORO_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	return cfg
}

// ConfigPathFromEnv returns POMODORO_CONFIG when set.
func ConfigPathFromEnv() string {
	v, _ := getEnvString("POMODORO_CONFIG")
	return v
}

func (c RuntimeConfig) Validate() error {
	if !validStore(c.Store) {
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("scheduler buffer must be positive, got %d", c.SchedulerBuffer)
	}
	return nil
}

func validStore(name string) bool {
	switch name {
	case StoreSQLite, StoreFile, StoreMemory:
		return true
	default:
		return false
	}
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
