package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/common"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/traversal"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PathSource produces the regular files under a root
type PathSource interface {
	Walk(ctx context.Context, root string) ([]string, traversal.WalkStats, error)
}

// Options tunes the detection stages
type Options struct {
	Workers   int     // hashing goroutines; <= 0 means one per CPU
	BlockSize int     // hashing read size; <= 0 means 8 KiB
	Threshold float64 // near-duplicate ratio; outside (0,1] means 0.85
	MinSize   int64   // files smaller than this are never candidates
}

// Scanner runs traversal and every detection stage for one root
type Scanner struct {
	source     PathSource
	grouper    *SizeGrouper
	exact      *ExactResolver
	near       *NearResolver
	validation *common.ValidationUtils
	logger     zerolog.Logger
}

// NewScanner wires the detection stages from opts
func NewScanner(source PathSource, opts Options, logger zerolog.Logger) *Scanner {
	return NewScannerWithDigester(source, NewHasher(opts.BlockSize, logger), opts, logger)
}

// NewScannerWithDigester is NewScanner with a caller-supplied digester
func NewScannerWithDigester(source PathSource, digester Digester, opts Options, logger zerolog.Logger) *Scanner {
	return &Scanner{
		source:     source,
		grouper:    NewSizeGrouper(opts.MinSize, logger),
		exact:      NewExactResolver(digester, opts.Workers, logger),
		near:       NewNearResolver(NewMatcher(opts.Threshold), logger),
		validation: common.NewValidationUtils(),
		logger:     logger,
	}
}

// Scan validates root and returns its duplicate groups, exact groups first.
// An invalid root fails with common.ErrInvalidRoot before any work starts;
// after that, per-file problems only exclude the file concerned.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	start := time.Now()

	absRoot, err := s.validation.ValidateRoot(root)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	logger := s.logger.With().Str("scan", id.String()).Str("root", absRoot).Logger()
	logger.Info().Msg("Starting duplicate scan")

	paths, _, err := s.source.Walk(ctx, absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to traverse %s: %w", absRoot, err)
	}

	buckets := s.grouper.Group(paths)
	logger.Debug().
		Int("files", len(paths)).
		Int("sizes", len(buckets.order)).
		Int("candidate_buckets", buckets.Candidates()).
		Msg("Grouped files by size")

	exact, err := s.exact.Resolve(ctx, buckets)
	if err != nil {
		return nil, fmt.Errorf("exact duplicate resolution interrupted: %w", err)
	}

	near := s.near.Resolve(buckets.Records(), exact.Claimed)

	result := &ScanResult{
		ID:     id,
		Root:   absRoot,
		Groups: Merge(exact.Groups, near),
		Stats: ScanStats{
			FilesSeen:     len(paths),
			FilesGrouped:  len(buckets.records),
			FilesExcluded: len(paths) - len(buckets.records),
			FilesHashed:   exact.Hashed,
			HashAbsent:    exact.Absent,
			Claimed:       exact.Claimed.Len(),
		},
		Duration: time.Since(start),
	}

	logger.Info().
		Int("files", result.Stats.FilesSeen).
		Int("exact_groups", len(exact.Groups)).
		Int("near_groups", len(near)).
		Dur("duration", result.Duration).
		Msg("Duplicate scan completed")

	return result, nil
}
