package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chazu/bimgen/pkg/config"
)

const defaultDebounce = 300 * time.Millisecond

func watchCmd() *cobra.Command {
	f := &runFlags{}
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the IFC file whenever the configuration changes",
		Long: `Watch generates once, then again every time the configuration file or
its layout script changes. Runs are sequential; failures are logged and
watching continues. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.config == "" {
				return fmt.Errorf("watch requires --config")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newWatcher(f, debounce, slog.Default())
			if err != nil {
				return err
			}
			defer w.Close()
			return w.Run(ctx, func() {
				report, err := f.run(f.outputPath())
				if err != nil {
					slog.Error("Generation failed", "error", err)
					return
				}
				_ = printReport(cmd.OutOrStdout(), report)
			})
		},
	}
	f.register(cmd, true)
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "Wait this long after a change before regenerating")
	return cmd
}

// watcher re-runs a generation when the configuration or its layout
// script changes.
type watcher struct {
	flags    *runFlags
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	// files holds the cleaned absolute paths that trigger a run.
	files map[string]bool
	dirs  map[string]bool
}

func newWatcher(f *runFlags, debounce time.Duration, logger *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w := &watcher{
		flags:    f,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
	if err := w.refresh(); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *watcher) Close() error { return w.fsw.Close() }

// refresh recomputes the watched files. Editors often replace files, so
// the parent directories are watched rather than the files themselves.
func (w *watcher) refresh() error {
	cfgPath, err := filepath.Abs(w.flags.config)
	if err != nil {
		return err
	}
	files := map[string]bool{cfgPath: true}
	if cfg, err := config.LoadFromFile(cfgPath); err == nil && cfg.LayoutScript != "" {
		script := cfg.LayoutScript
		if !filepath.IsAbs(script) {
			script = filepath.Join(filepath.Dir(cfgPath), script)
		}
		files[filepath.Clean(script)] = true
	}
	w.files = files

	for f := range files {
		dir := filepath.Dir(f)
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
		w.logger.Debug("Watching directory", "path", dir)
	}
	return nil
}

// relevant reports whether ev touches a watched file.
func (w *watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return w.files[filepath.Clean(ev.Name)]
}

// Run calls generate once and then after every debounced change until
// ctx is done.
func (w *watcher) Run(ctx context.Context, generate func()) error {
	generate()
	w.logger.Info("Watching for changes", "files", len(w.files), "debounce", w.debounce)

	// fire is nil while no change is pending.
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("Change detected", "path", ev.Name, "op", ev.Op.String())
			fire = time.After(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-fire:
			fire = nil
			// The layout script may have been added or renamed.
			if err := w.refresh(); err != nil {
				w.logger.Warn("Failed to refresh watched files", "error", err)
			}
			generate()
		}
	}
}
