// File: internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/berrythewa/clipdeck/internal/inject"
	"gopkg.in/yaml.v3"
)

const appName = "clipdeck"

// ConfigPaths holds all relevant paths for the application
type ConfigPaths struct {
	BaseDir    string // Base directory for config files
	ConfigFile string // Path to the config file
	DataDir    string // Directory for application data
	DBFile     string // Path to database file
	LogDir     string // Directory for log files
	RuntimeDir string // Directory for the IPC socket
}

// Config holds all application configuration
type Config struct {
	// Resolved at load time, never written to disk
	SystemPaths ConfigPaths `json:"-" yaml:"-"`

	Log     LogConfig     `json:"log" yaml:"log"`
	History HistoryConfig `json:"history" yaml:"history"`
	Monitor MonitorConfig `json:"monitor" yaml:"monitor"`
	Paste   PasteConfig   `json:"paste" yaml:"paste"`
	Hotkeys HotkeyConfig  `json:"hotkeys" yaml:"hotkeys"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	IPC     IPCConfig     `json:"ipc" yaml:"ipc"`
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	Format            string `json:"format" yaml:"format"` // "json" or "console"
	EnableFileLogging bool   `json:"enable_file_logging" yaml:"enable_file_logging"`
}

// HistoryConfig bounds the in-memory history
type HistoryConfig struct {
	MaxSize int `json:"max_size" yaml:"max_size"`
}

// MonitorConfig controls clipboard polling
type MonitorConfig struct {
	PollingInterval int64 `json:"polling_interval_ms" yaml:"polling_interval_ms"`
	CaptureImages   bool  `json:"capture_images" yaml:"capture_images"`
}

// PasteConfig controls replay timing and the keystroke injection chain
type PasteConfig struct {
	SettleDelay    int64    `json:"settle_delay_ms" yaml:"settle_delay_ms"`
	PostPasteDelay int64    `json:"post_paste_delay_ms" yaml:"post_paste_delay_ms"`
	PreInjectDelay int64    `json:"pre_inject_delay_ms" yaml:"pre_inject_delay_ms"`
	Tiers          []string `json:"tiers" yaml:"tiers"`
	UinputPath     string   `json:"uinput_path" yaml:"uinput_path"`
	DeviceName     string   `json:"device_name" yaml:"device_name"`
}

// HotkeyConfig controls the raw keyboard listener
type HotkeyConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	DeviceDir string `json:"device_dir" yaml:"device_dir"`
	// PickerCommand is started on Toggle and stopped on Close
	PickerCommand string `json:"picker_command" yaml:"picker_command"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DBPath  string `json:"db_path" yaml:"db_path"`
}

// IPCConfig holds the control socket location
type IPCConfig struct {
	SocketPath string `json:"socket_path" yaml:"socket_path"`
}

// GetConfigPaths returns the XDG based paths, honoring CLIPDECK_CONFIG_DIR
// and CLIPDECK_DATA_DIR, and creates the directories
func GetConfigPaths() (*ConfigPaths, error) {
	baseDir := os.Getenv("CLIPDECK_CONFIG_DIR")
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		baseDir = filepath.Join(configDir, appName)
	}

	dataDir := os.Getenv("CLIPDECK_DATA_DIR")
	if dataDir == "" {
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dataDir = filepath.Join(homeDir, ".local", "share", appName)
		}
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%d", appName, os.Getuid()))
	}

	paths := &ConfigPaths{
		BaseDir:    baseDir,
		ConfigFile: filepath.Join(baseDir, "config.yaml"),
		DataDir:    dataDir,
		DBFile:     filepath.Join(dataDir, appName+".db"),
		LogDir:     filepath.Join(dataDir, "logs"),
		RuntimeDir: runtimeDir,
	}

	for _, dir := range []string{paths.BaseDir, paths.DataDir, paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(paths.RuntimeDir, 0o700); err != nil {
		return nil, err
	}

	return paths, nil
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	paths, err := GetConfigPaths()
	if err != nil {
		paths = &ConfigPaths{
			RuntimeDir: os.TempDir(),
			DBFile:     filepath.Join(os.TempDir(), appName+".db"),
		}
	}
	return defaultsFor(*paths)
}

func defaultsFor(paths ConfigPaths) *Config {
	return &Config{
		SystemPaths: paths,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		History: HistoryConfig{
			MaxSize: 50,
		},
		Monitor: MonitorConfig{
			PollingInterval: 500,
			CaptureImages:   true,
		},
		Paste: PasteConfig{
			SettleDelay:    60,
			PostPasteDelay: 250,
			PreInjectDelay: 10,
			Tiers:          append([]string(nil), inject.DefaultTiers...),
			UinputPath:     "/dev/uinput",
			DeviceName:     inject.DefaultDeviceName,
		},
		Hotkeys: HotkeyConfig{
			Enabled:   true,
			DeviceDir: "/dev/input",
		},
		Storage: StorageConfig{
			Enabled: true,
			DBPath:  paths.DBFile,
		},
		IPC: IPCConfig{
			SocketPath: filepath.Join(paths.RuntimeDir, appName+".sock"),
		},
	}
}

// ResolvePath picks the config file: explicit path, then CLIPDECK_CONFIG,
// then the default location
func ResolvePath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	if env := os.Getenv("CLIPDECK_CONFIG"); env != "" {
		return env, nil
	}
	paths, err := GetConfigPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// Load loads the configuration from the specified file or creates default if not exists
func Load(configPath string) (*Config, error) {
	configPath, err := ResolvePath(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to the specified file
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects settings the daemon cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.History.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("history.max_size must be positive, got %d", c.History.MaxSize))
	}
	if c.Monitor.PollingInterval <= 0 {
		errs = append(errs, fmt.Errorf("monitor.polling_interval_ms must be positive, got %d", c.Monitor.PollingInterval))
	}
	for _, d := range []int64{c.Paste.SettleDelay, c.Paste.PostPasteDelay, c.Paste.PreInjectDelay} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("paste delays must not be negative, got %d", d))
			break
		}
	}
	for _, tier := range c.Paste.Tiers {
		if !inject.ValidTier(tier) {
			errs = append(errs, fmt.Errorf("unknown paste tier %q", tier))
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.IPC.SocketPath == "" {
		errs = append(errs, errors.New("ipc.socket_path must be set"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// PollingDuration returns the clipboard polling interval
func (c *Config) PollingDuration() time.Duration {
	return time.Duration(c.Monitor.PollingInterval) * time.Millisecond
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// SettleDuration is the wait between the clipboard write and the keystroke
func (p PasteConfig) SettleDuration() time.Duration { return millis(p.SettleDelay) }

// PostPasteDuration is the wait after the keystroke
func (p PasteConfig) PostPasteDuration() time.Duration { return millis(p.PostPasteDelay) }

// PreInjectDuration is the wait before the first injection tier runs
func (p PasteConfig) PreInjectDuration() time.Duration { return millis(p.PreInjectDelay) }

// overrideFromEnv overrides configuration values from environment variables
func overrideFromEnv(config *Config) {
	if val := os.Getenv("CLIPDECK_LOG_LEVEL"); val != "" {
		config.Log.Level = val
	}
	if val := os.Getenv("CLIPDECK_POLLING_INTERVAL"); val != "" {
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Monitor.PollingInterval = ms
		}
	}
	if val := os.Getenv("CLIPDECK_MAX_HISTORY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.History.MaxSize = n
		}
	}
	if val := os.Getenv("CLIPDECK_HOTKEYS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.Hotkeys.Enabled = enabled
		}
	}
	if val := os.Getenv("CLIPDECK_SOCKET"); val != "" {
		config.IPC.SocketPath = val
	}
}
