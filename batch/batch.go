// Package batch flattens world files: one at a time, or many concurrently.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnoswap-labs/reqflat/internal/equiv"
	"github.com/gnoswap-labs/reqflat/internal/flatten"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
	"github.com/gnoswap-labs/reqflat/internal/simplify"
	"github.com/gnoswap-labs/reqflat/internal/world"
)

var tracer = otel.Tracer("reqflat.batch")

// Engine flattens the world stored at path.
type Engine interface {
	Run(ctx context.Context, path string) (*Result, error)
}

// Entry is the minimized requirement of one location or area.
type Entry struct {
	Name        string
	Requirement requirement.Requirement
	// Terms is the size of the DNF the requirement was minimized from.
	Terms int
}

// Result is the outcome of flattening one world.
type Result struct {
	RunID     string
	Path      string
	World     string
	Stats     flatten.Stats
	Duration  time.Duration
	Verified  bool
	Locations []Entry
	Areas     []Entry
}

// Flattener is the default Engine.
type Flattener struct {
	logger *zap.Logger
	config Config
}

// New returns a Flattener using config. A nil logger disables logging.
func New(logger *zap.Logger, config Config) *Flattener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flattener{logger: logger, config: config}
}

// Run loads, flattens and minimizes the world at path. With Config.Verify
// set, every location requirement is checked against its DNF and a mismatch
// fails the run.
func (f *Flattener) Run(ctx context.Context, path string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "batch.Run", trace.WithAttributes(
		attribute.String("path", path),
		attribute.Bool("verify", f.config.Verify),
	))
	defer span.End()

	res, err := f.run(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("run_id", res.RunID),
		attribute.Int("rounds", res.Stats.Rounds),
		attribute.Int("atoms", res.Stats.Atoms),
		attribute.Int("locations", len(res.Locations)),
	)
	span.SetStatus(codes.Ok, "")
	return res, nil
}

func (f *Flattener) run(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := f.logger.With(zap.String("run_id", runID), zap.String("path", path))
	start := time.Now()

	w, err := world.Load(path, world.WithRoot(f.config.Root))
	if err != nil {
		return nil, err
	}

	s, stats, err := flatten.Flatten(w)
	if err != nil {
		return nil, fmt.Errorf("world %q: %w", w.Name, err)
	}
	trace.SpanFromContext(ctx).AddEvent("fixpoint reached")

	res := &Result{
		RunID:    runID,
		Path:     path,
		World:    w.Name,
		Stats:    stats,
		Verified: f.config.Verify,
	}
	for i, loc := range w.Locations {
		d := s.LocationDNF(world.LocationID(i))
		if f.config.Verify {
			if err := equiv.Check(s.Index(), d, loc.Computed); err != nil {
				return nil, fmt.Errorf("world %q, location %s: %w", w.Name, loc.Name, err)
			}
		}
		res.Locations = append(res.Locations, Entry{Name: loc.Name, Requirement: loc.Computed, Terms: d.Len()})
	}
	for _, area := range w.Areas {
		d, _ := s.AreaDNF(area.Name)
		res.Areas = append(res.Areas, Entry{
			Name:        area.Name,
			Requirement: simplify.ToRequirement(s.Index(), d),
			Terms:       d.Len(),
		})
	}
	res.Duration = time.Since(start)

	logger.Info("World flattened",
		zap.String("world", w.Name),
		zap.Int("locations", len(res.Locations)),
		zap.Int("rounds", stats.Rounds),
		zap.Int("updates", stats.Updates),
		zap.Int("atoms", stats.Atoms),
		zap.Int("max_terms", stats.MaxTerms),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// Run flattens a single world with a fresh Flattener.
func Run(ctx context.Context, logger *zap.Logger, config Config, path string) (*Result, error) {
	return New(logger, config).Run(ctx, path)
}

// ProcessWorlds flattens every world file found under paths, running at
// most config.Workers worlds at a time.
func ProcessWorlds(ctx context.Context, logger *zap.Logger, config Config, paths []string) ([]*Result, error) {
	return ProcessFiles(ctx, logger, New(logger, config), config.Workers, paths)
}

// ProcessFiles runs engine over every world file found under paths. Results
// keep the order of the discovered files. The first failure cancels the
// remaining runs.
func ProcessFiles(ctx context.Context, logger *zap.Logger, engine Engine, workers int, paths []string) ([]*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := WorldFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(len(files) > 1),
		progressbar.OptionSetDescription("flattening"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	defer bar.Finish()

	results := make([]*Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			res, err := engine.Run(ctx, file)
			if err != nil {
				logger.Error("Error processing world", zap.String("file", file), zap.Error(err))
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = res
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

var worldExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".zst":  true,
}

// IsWorldFile reports whether path looks like a world file.
func IsWorldFile(path string) bool {
	if filepath.Base(path) == DefaultConfigPath {
		return false
	}
	return worldExtensions[strings.ToLower(filepath.Ext(path))]
}

// WorldFiles expands directories in paths into the world files they
// contain. Plain files are kept as given.
func WorldFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsWorldFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
	}
	return files, nil
}
