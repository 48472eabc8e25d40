package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/imaging"
	"github.com/ironsheep/searchstims/internal/ledger"
	"github.com/ironsheep/searchstims/internal/stimulus"
)

// Group identifies one (stimulus, set size, condition) loop.
type Group struct {
	Stimulus  string
	SetSize   int
	NumTarget int
	NumImages int
}

// Condition returns "present" or "absent".
func (g Group) Condition() string {
	return ledger.Condition(g.NumTarget)
}

// GroupError reports the group a failure happened in.
type GroupError struct {
	Group Group
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("stimulus %q set size %d target %s: %v",
		e.Group.Stimulus, e.Group.SetSize, e.Group.Condition(), e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Root     string        `json:"root"`
	CSVPath  string        `json:"csv_path"`
	Groups   int           `json:"groups"`
	Images   int           `json:"images"`
	Duration time.Duration `json:"duration_ns"`
}

// Orchestrator runs one batch.
type Orchestrator struct {
	cfg     *config.Config
	specs   []config.StimulusSpec
	palette *stimulus.Palette
	logger  *zap.Logger
	runID   string
	seed    int64
}

// New resolves cfg and prepares a run. A zero seed is replaced by the current time.
func New(cfg *config.Config, logger *zap.Logger) (*Orchestrator, error) {
	specs, err := cfg.ResolveAll()
	if err != nil {
		return nil, err
	}
	pal, err := stimulus.NewPalette(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to build palette: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := cfg.General.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := uuid.New().String()[:8]
	return &Orchestrator{
		cfg:     cfg,
		specs:   specs,
		palette: pal,
		logger:  logger.With(zap.String("run_id", runID)),
		runID:   runID,
		seed:    seed,
	}, nil
}

// RunID returns the short id attached to every log entry and index row of the run.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Seed returns the seed actually used.
func (o *Orchestrator) Seed() int64 {
	return o.seed
}

// Run generates every group in config order. It stops at the first failing
// group; groups finished before it stay on disk and in the ledger.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	root := o.cfg.General.OutputDir
	sum := &Summary{
		RunID:   o.runID,
		Root:    root,
		CSVPath: filepath.Join(root, o.cfg.General.CSVFilename),
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	csvw, err := ledger.CreateCSV(sum.CSVPath)
	if err != nil {
		return nil, err
	}
	defer csvw.Close()

	var index *ledger.Index
	if o.cfg.General.SQLiteIndex {
		index, err = ledger.OpenIndex(filepath.Join(root, ledger.IndexFilename))
		if err != nil {
			return nil, err
		}
		defer index.Close()
	}

	o.logger.Info("batch started",
		zap.String("output_dir", root),
		zap.Int64("seed", o.seed),
		zap.Int("stimuli", len(o.specs)),
		zap.Int("workers", o.cfg.General.Workers))

	for i, spec := range o.specs {
		// Each stimulus gets its own source so adding a stimulus does not
		// change the images of the ones before it.
		rng := rand.New(rand.NewSource(o.seed + int64(i)))
		maker, err := NewMaker(spec, o.palette, rng)
		if err != nil {
			return sum, err
		}

		for j, setSize := range spec.SetSizes {
			for _, g := range []Group{
				{Stimulus: spec.Name, SetSize: setSize, NumTarget: 1, NumImages: spec.Present[j]},
				{Stimulus: spec.Name, SetSize: setSize, NumTarget: 0, NumImages: spec.Absent[j]},
			} {
				if g.NumImages == 0 {
					continue
				}
				recs, err := o.runGroup(ctx, maker, g, root)
				if err != nil {
					sum.Duration = time.Since(start)
					return sum, &GroupError{Group: g, Err: err}
				}
				if err := csvw.Write(recs...); err != nil {
					return sum, err
				}
				if index != nil {
					if err := index.Insert(ctx, o.runID, recs); err != nil {
						return sum, err
					}
				}
				sum.Groups++
				sum.Images += len(recs)
			}
		}
	}

	sum.Duration = time.Since(start)
	o.logger.Info("batch finished",
		zap.Int("groups", sum.Groups),
		zap.Int("images", sum.Images),
		zap.Duration("duration", sum.Duration))
	return sum, nil
}

type job struct {
	imgNum int
	layout stimulus.Layout
}

// runGroup plans one group, then renders and writes it on the worker pool.
func (o *Orchestrator) runGroup(ctx context.Context, maker *stimulus.Maker, g Group, root string) ([]ledger.Record, error) {
	log := o.logger.With(
		zap.String("stimulus", g.Stimulus),
		zap.Int("set_size", g.SetSize),
		zap.String("condition", g.Condition()))

	layouts, err := maker.PlanGroup(g.SetSize, g.NumTarget, g.NumImages, o.cfg.General.Unique())
	if err != nil {
		log.Error("planning failed", zap.Error(err))
		return nil, err
	}
	log.Debug("group planned", zap.Int("images", len(layouts)))

	dir := filepath.Join(root, GroupDir(g.Stimulus, g.SetSize, g.Condition()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create group directory: %w", err)
	}

	recs := make([]ledger.Record, len(layouts))
	jobs := make(chan job)
	errs := make(chan error, len(layouts))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < o.cfg.General.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				rec, err := o.writeImage(maker, g, root, j)
				if err != nil {
					errs <- fmt.Errorf("image %d: %w", j.imgNum, err)
					cancel()
					continue
				}
				recs[j.imgNum] = rec
			}
		}()
	}

feed:
	for i, l := range layouts {
		select {
		case jobs <- job{imgNum: i, layout: l}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	var failed []error
	for err := range errs {
		failed = append(failed, err)
	}
	if len(failed) == 0 && ctx.Err() != nil {
		failed = append(failed, ctx.Err())
	}
	if len(failed) > 0 {
		removeGroup(root, recs)
		os.Remove(dir)
		log.Error("group failed", zap.Int("errors", len(failed)), zap.Error(failed[0]))
		return nil, errors.Join(failed...)
	}

	log.Info("group written", zap.Int("images", len(recs)))
	return recs, nil
}

func (o *Orchestrator) writeImage(maker *stimulus.Maker, g Group, root string, j job) (ledger.Record, error) {
	s, err := maker.Render(j.layout)
	if err != nil {
		return ledger.Record{}, err
	}
	rec := ledger.Record{
		Stimulus:        g.Stimulus,
		SetSize:         g.SetSize,
		TargetCondition: g.Condition(),
		ImgNum:          j.imgNum,
		RootOutputDir:   root,
		ImgFile:         ImagePath(g.Stimulus, g.SetSize, g.Condition(), j.imgNum),
	}
	rec.MetaFile = MetaPath(rec.ImgFile)

	if err := imaging.SavePNG(filepath.Join(root, rec.ImgFile), s.Surface); err != nil {
		os.Remove(filepath.Join(root, rec.ImgFile))
		return ledger.Record{}, err
	}
	if err := ledger.WriteMeta(filepath.Join(root, rec.MetaFile), ledger.NewMeta(rec.ImgFile, s)); err != nil {
		os.Remove(filepath.Join(root, rec.ImgFile))
		return ledger.Record{}, err
	}
	return rec, nil
}

// removeGroup deletes every file written for a failed group. The group
// directory itself is removed by the caller when it is left empty.
func removeGroup(root string, recs []ledger.Record) {
	for _, r := range recs {
		if r.ImgFile == "" {
			continue
		}
		os.Remove(filepath.Join(root, r.ImgFile))
		os.Remove(filepath.Join(root, r.MetaFile))
	}
}
