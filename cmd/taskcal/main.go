package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskcal/internal/app"
	"taskcal/internal/calendar"
	"taskcal/internal/config"
	"taskcal/internal/logging"
	"taskcal/internal/storage"
	"taskcal/internal/task"
	"taskcal/internal/view"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	rootCmd := &cobra.Command{
		Use:           "taskcal",
		Short:         "Task list with a calendar, in the browser or the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $TASKCAL_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with TASKCAL_* overrides")

	rootCmd.AddCommand(serveCmd(&opts))
	rootCmd.AddCommand(tuiCmd(&opts))
	rootCmd.AddCommand(exportCmd(&opts))
	rootCmd.AddCommand(importCmd(&opts))
	return rootCmd
}

type rootOptions struct {
	configPath string
	envFile    string
}

// env is everything a subcommand needs once config, logging and storage
// are up.
type env struct {
	cfg     config.Config
	log     zerolog.Logger
	adapter *storage.Adapter
	closers []func() error
}

// setup loads config and opens storage. quietConsole drops console log
// output so the terminal UI owns the screen.
func setup(opts *rootOptions, quietConsole bool) (*env, error) {
	path := opts.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.Load(path, opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	e := &env{cfg: cfg}
	if quietConsole && cfg.Log.File == "" {
		e.log = zerolog.Nop()
	} else {
		log, closeLog, err := logging.New(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("set up logging: %w", err)
		}
		e.log = log
		e.closers = append(e.closers, closeLog)
	}

	blobs, closeStore, err := storage.Open(strings.ToLower(cfg.Storage), cfg.DBPath, cfg.DataFile)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, closeStore)
	e.adapter = storage.NewAdapter(blobs, e.log)
	e.log.Debug().Str("storage", cfg.Storage).Str("config", path).Msg("storage opened")
	return e, nil
}

// Close runs closers in reverse order.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *env) labels() view.Labels {
	return view.LabelsFor(e.cfg.Locale)
}

// newApp loads the collection and builds the command layer over it.
func (e *env) newApp(ctx context.Context) *app.App {
	tasks := e.adapter.Load(ctx)
	e.log.Info().Int("tasks", len(tasks)).Msg("tasks loaded")

	var storeOpts []task.Option
	if f, ok := task.ParseFilter(e.cfg.DefaultFilter); ok {
		storeOpts = append(storeOpts, task.WithFilter(f))
	}
	store := task.NewStore(tasks, storeOpts...)

	var widgetOpts []calendar.Option
	if wd, ok := calendar.ParseWeekday(e.cfg.Calendar.WeekStart); ok {
		widgetOpts = append(widgetOpts, calendar.WithWeekStart(wd))
	}

	return app.New(store, e.adapter,
		app.WithLogger(e.log),
		app.WithLabels(e.labels()),
		app.WithWidget(calendar.New(widgetOpts...)),
		app.WithView(e.cfg.Calendar.InitialView),
	)
}
