package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/reqflat/batch"
)

const defaultDebounce = 100 * time.Millisecond

var metricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch [worlds...]",
	Short: "Flatten world files again whenever they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errNoWorlds
		}
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		log := currentLogger()
		if metricsAddr != "" {
			srv := serveMetrics(metricsAddr, log)
			defer srv.Shutdown(context.Background())
		}

		w, err := newWatcher(log, config, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer w.close()
		if err := w.add(args); err != nil {
			return err
		}

		// first pass over everything, later passes only over changed files
		if err := runWorlds(ctx, log, config, args, cmd.OutOrStdout()); err != nil {
			log.Warn("Initial run failed", zap.Error(err))
		}
		return w.loop(ctx)
	},
}

func init() {
	addOutputFlags(watchCmd)
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", addr))
	return srv
}

// watcher re-runs a world whenever fsnotify reports a write to it. Bursts
// of events are merged by waiting debounce after the last one.
type watcher struct {
	logger   *zap.Logger
	config   batch.Config
	out      io.Writer
	fs       *fsnotify.Watcher
	debounce time.Duration

	// files named explicitly, and directories watched as a whole
	files map[string]bool
	dirs  map[string]bool
}

func newWatcher(logger *zap.Logger, config batch.Config, out io.Writer) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	return &watcher{
		logger:   logger,
		config:   config,
		out:      out,
		fs:       fsw,
		debounce: defaultDebounce,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

func (w *watcher) add(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			w.files[filepath.Clean(path)] = true
			if err := w.fs.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("error watching %s: %w", path, err)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				w.dirs[filepath.Clean(p)] = true
				return w.fs.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return nil
}

func (w *watcher) accepts(name string) bool {
	name = filepath.Clean(name)
	return w.files[name] || (w.dirs[filepath.Dir(name)] && batch.IsWorldFile(name))
}

func (w *watcher) loop(ctx context.Context) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && w.accepts(event.Name) {
				pending[event.Name] = true
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		case <-timer.C:
			w.flush(ctx, pending)
			clear(pending)
		}
	}
}

func (w *watcher) flush(ctx context.Context, pending map[string]bool) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		res, err := batch.Run(ctx, w.logger, w.config, path)
		if err != nil {
			w.logger.Error("Error processing world", zap.String("file", path), zap.Error(err))
			continue
		}
		if err := writeReport(w.config.Format, []*batch.Result{res}, w.out); err != nil {
			w.logger.Error("Error writing report", zap.Error(err))
		}
	}
}

func (w *watcher) close() error {
	return w.fs.Close()
}
