package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const EnvPrefix = "TASKCAL_"

// Load reads the config file, then applies TASKCAL_* overrides from the
// process environment and from envFile. Process variables win over the
// file; a missing envFile is not an error.
func Load(path, envFile string) (Config, error) {
	cfg, err := LoadOrCreate(path)
	if err != nil {
		return cfg, err
	}
	dotenv, err := readDotEnv(envFile)
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
	return cfg, cfg.Validate()
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

// ApplyEnv overwrites fields whose TASKCAL_* variable is set and non-empty.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	for name, field := range map[string]*string{
		"DB_PATH":        &cfg.DBPath,
		"STORAGE":        &cfg.Storage,
		"DATA_FILE":      &cfg.DataFile,
		"DEFAULT_FILTER": &cfg.DefaultFilter,
		"LOCALE":         &cfg.Locale,
		"LISTEN":         &cfg.Server.Listen,
		"SECRET":         &cfg.Server.Secret,
		"LOG_LEVEL":      &cfg.Log.Level,
		"LOG_FORMAT":     &cfg.Log.Format,
		"LOG_FILE":       &cfg.Log.File,
		"INITIAL_VIEW":   &cfg.Calendar.InitialView,
		"WEEK_START":     &cfg.Calendar.WeekStart,
	} {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*field = v
		}
	}
}
