package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskcal/internal/export"
	"taskcal/internal/storage"
	"taskcal/internal/task"
	"taskcal/internal/ui"
	"taskcal/internal/view"
	"taskcal/internal/web"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tokens, err := web.NewTokens([]byte(e.cfg.Server.Secret))
			if err != nil {
				return fmt.Errorf("action tokens: %w", err)
			}
			if e.cfg.Server.Secret == "" {
				e.log.Warn().Msg("no server secret configured, action links expire on restart")
			}
			if listen == "" {
				listen = e.cfg.Server.Listen
			}
			srv := web.New(e.newApp(ctx), tokens, web.WithLogger(e.log))
			return srv.Run(ctx, listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config)")
	return cmd
}

func tuiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(opts, true)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			if err := ui.Run(ctx, e.newApp(ctx), e.cfg.Keys); err != nil {
				return fmt.Errorf("run terminal ui: %w", err)
			}
			return nil
		},
	}
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task as json, ics or xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case "json", "ics", "xlsx":
			default:
				return fmt.Errorf("unknown export format %q: want json, ics or xlsx", format)
			}

			e, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()
			tasks := e.adapter.Load(cmd.Context())

			if out == "" || out == "-" {
				return writeExport(cmd.OutOrStdout(), format, tasks, e.labels())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := writeExport(f, format, tasks, e.labels()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, ics or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func writeExport(w io.Writer, format string, tasks []task.Task, labels view.Labels) error {
	switch format {
	case "json":
		blob, err := storage.Encode(tasks)
		if err != nil {
			return err
		}
		_, err = w.Write(append(blob, '\n'))
		return err
	case "ics":
		_, err := io.WriteString(w, export.ICS(tasks, labels, time.Now()))
		return err
	default:
		return export.XLSX(w, tasks, labels)
	}
}

func importCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the stored collection with a JSON task array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			tasks, err := storage.Decode(blob)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			e, err := setup(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.adapter.Save(cmd.Context(), tasks); err != nil {
				return fmt.Errorf("save tasks: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks\n", len(tasks))
			return nil
		},
	}
}
