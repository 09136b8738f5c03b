package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"taskcal/internal/logging"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskcal.db"
	DefaultDataFileName   = "tasks.json"
	DefaultListen         = "127.0.0.1:8080"
	appDirName            = "taskcal"
)

type Keymap struct {
	Quit            string `toml:"quit"`
	Add             string `toml:"add"`
	Up              string `toml:"up"`
	Down            string `toml:"down"`
	Left            string `toml:"left"`
	Right           string `toml:"right"`
	Toggle          string `toml:"toggle"`
	Delete          string `toml:"delete"`
	Confirm         string `toml:"confirm"`
	Cancel          string `toml:"cancel"`
	Edit            string `toml:"edit"`
	FilterAll       string `toml:"filter_all"`
	FilterActive    string `toml:"filter_active"`
	FilterCompleted string `toml:"filter_completed"`
	SwitchView      string `toml:"switch_view"`
	CalendarMode    string `toml:"calendar_mode"`
	Prev            string `toml:"prev"`
	Next            string `toml:"next"`
	Today           string `toml:"today"`
}

type Server struct {
	Listen string `toml:"listen"`
	// Secret signs action tokens. Empty means a fresh random key per run.
	Secret string `toml:"secret"`
}

type Calendar struct {
	InitialView string `toml:"initial_view"`
	WeekStart   string `toml:"week_start"`
}

type Config struct {
	DBPath        string          `toml:"db_path"`
	Storage       string          `toml:"storage"`
	DataFile      string          `toml:"data_file"`
	DefaultFilter string          `toml:"default_filter"`
	Locale        string          `toml:"locale"`
	Server        Server          `toml:"server"`
	Log           logging.Options `toml:"log"`
	Calendar      Calendar        `toml:"calendar"`
	Keys          Keymap          `toml:"keys"`
}

// ResolveConfigPath returns $TASKCAL_CONFIG, or config.toml under the
// user config directory. It falls back to the working directory when no
// user config directory is known.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvPrefix + "CONFIG")); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDirName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first
// if the file does not exist yet. Relative paths in the file are taken
// relative to the file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.resolve(filepath.Dir(path))
}

func (c Config) resolve(base string) (Config, error) {
	if c.DBPath == "" {
		c.DBPath = DefaultDBName
	}
	if c.DataFile == "" {
		c.DataFile = DefaultDataFileName
	}
	c.DBPath = relativeTo(base, c.DBPath)
	c.DataFile = relativeTo(base, c.DataFile)
	if c.Log.File != "" {
		c.Log.File = relativeTo(base, c.Log.File)
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	return c, c.Validate()
}

func relativeTo(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate rejects values no component could start with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Storage) {
	case "", "sqlite", "file":
	default:
		return fmt.Errorf("storage %q: want sqlite or file", c.Storage)
	}
	switch strings.ToLower(c.DefaultFilter) {
	case "", "all", "active", "completed":
	default:
		return fmt.Errorf("default_filter %q: want all, active or completed", c.DefaultFilter)
	}
	switch strings.ToLower(c.Calendar.InitialView) {
	case "", "list", "calendar":
	default:
		return fmt.Errorf("calendar.initial_view %q: want list or calendar", c.Calendar.InitialView)
	}
	return nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:        DefaultDBName,
		Storage:       "sqlite",
		DataFile:      DefaultDataFileName,
		DefaultFilter: "active",
		Locale:        "en",
		Server: Server{
			Listen: DefaultListen,
		},
		Log: logging.Options{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Calendar: Calendar{
			InitialView: "list",
			WeekStart:   "sunday",
		},
		Keys: DefaultKeymap(),
	}
}

// DefaultKeymap is the vi-style binding set written on first run.
func DefaultKeymap() Keymap {
	return Keymap{
		Quit:            "q",
		Add:             "a",
		Up:              "k",
		Down:            "j",
		Left:            "h",
		Right:           "l",
		Toggle:          " ",
		Delete:          "d",
		Confirm:         "enter",
		Cancel:          "esc",
		Edit:            "e",
		FilterAll:       "1",
		FilterActive:    "2",
		FilterCompleted: "3",
		SwitchView:      "v",
		CalendarMode:    "m",
		Prev:            "[",
		Next:            "]",
		Today:           "t",
	}
}
