package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/dupesweep/sweep/config"
	"github.com/ZanzyTHEbar/dupesweep/sweep/dedupe"
	"github.com/ZanzyTHEbar/dupesweep/sweep/disposition"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/fileops"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/options"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/services"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/traversal"

	"github.com/rs/zerolog"
)

// ErrNoRoot is returned when neither the caller nor the config names a root
var ErrNoRoot = errors.New("no root directory given")

// ModeChooser decides the disposition once the groups are known
type ModeChooser func(ctx context.Context, scan *dedupe.ScanResult) (disposition.Mode, error)

// FixedMode returns a chooser that always answers m
func FixedMode(m disposition.Mode) ModeChooser {
	return func(context.Context, *dedupe.ScanResult) (disposition.Mode, error) {
		return m, nil
	}
}

// Result is everything one run produced. Disposition is nil when nothing was found.
type Result struct {
	Scan        *dedupe.ScanResult
	Mode        disposition.Mode
	Disposition *disposition.Report
}

// Pipeline runs one scan followed by one disposition
type Pipeline struct {
	cfg      *config.Config
	scanner  *dedupe.Scanner
	disposer *disposition.Disposer
	ops      *fileops.FileOps
	logger   zerolog.Logger
}

// New wires the scanner and disposer from cfg
func New(cfg *config.Config, logger zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	conflict, err := options.ParseConflictStrategy(cfg.Disposition.Conflict)
	if err != nil {
		return nil, fmt.Errorf("invalid disposition.conflict: %w", err)
	}

	walker := traversal.NewWalker(options.TraversalOptions{
		IgnoreFile:     cfg.Scan.IgnoreFile,
		IgnorePatterns: cfg.Scan.IgnorePatterns,
		// Quarantined files would otherwise be found again on the next run
		ExcludeDirs: []string{cfg.Disposition.TrashDirName},
	}, logger)

	scanner := dedupe.NewScanner(walker, dedupe.Options{
		Workers:   cfg.Scan.Workers,
		BlockSize: cfg.Scan.BlockSize,
		Threshold: cfg.Scan.SimilarityThreshold,
		MinSize:   cfg.Scan.MinSize,
	}, logger)

	ops := fileops.NewFileOps(services.NewConflictResolverService(), logger)
	disposer := disposition.NewDisposer(ops, disposition.Options{
		TrashDirName: cfg.Disposition.TrashDirName,
		Conflict:     conflict,
		DryRun:       cfg.Disposition.DryRun,
	}, logger)

	return &Pipeline{cfg: cfg, scanner: scanner, disposer: disposer, ops: ops, logger: logger}, nil
}

// Run scans root (or the configured root when empty), asks choose for a
// mode and applies it. choose is not consulted when no groups are found.
func (p *Pipeline) Run(ctx context.Context, root string, choose ModeChooser) (*Result, error) {
	if root == "" {
		root = p.cfg.Scan.Root
	}
	if root == "" {
		return nil, ErrNoRoot
	}

	scan, err := p.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	res := &Result{Scan: scan}
	if len(scan.Groups) == 0 {
		return res, nil
	}

	mode, err := choose(ctx, scan)
	if err != nil {
		return res, fmt.Errorf("failed to choose disposition: %w", err)
	}
	res.Mode = mode

	res.Disposition = p.disposer.Apply(ctx, scan.Root, scan.Groups, mode)
	p.logger.Debug().Str("scan", scan.ID.String()).Fields(p.ops.GetMetrics()).Msg("File operation metrics")
	return res, nil
}
