package disposition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	internal "github.com/ZanzyTHEbar/dupesweep/sweep"
	"github.com/ZanzyTHEbar/dupesweep/sweep/dedupe"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/common"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/fileops"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/options"

	"github.com/rs/zerolog"
)

// Options configures a Disposer
type Options struct {
	TrashDirName string                   // quarantine folder created under the scan root
	Conflict     options.ConflictStrategy // collision handling inside the quarantine folder
	DryRun       bool                     // record intended actions without touching disk
}

// Disposer applies a Mode to duplicate groups. Every group keeps its first
// member; failures are per file and never stop the batch.
type Disposer struct {
	ops    fileops.FileOperations
	opts   Options
	logger zerolog.Logger
}

// NewDisposer creates a disposer backed by ops
func NewDisposer(ops fileops.FileOperations, opts Options, logger zerolog.Logger) *Disposer {
	if opts.TrashDirName == "" {
		opts.TrashDirName = internal.DefaultTrashDirName
	}
	if opts.Conflict == "" {
		opts.Conflict = options.ConflictRename
	}
	return &Disposer{ops: ops, opts: opts, logger: logger}
}

// TrashDir returns the quarantine folder for root
func (d *Disposer) TrashDir(root string) string {
	return filepath.Join(root, d.opts.TrashDirName)
}

// Apply handles every member but the first of each group according to mode
func (d *Disposer) Apply(ctx context.Context, root string, groups []dedupe.Group, mode Mode) *Report {
	rep := &Report{Mode: mode, DryRun: d.opts.DryRun}

	switch mode {
	case ModeDelete:
		d.each(groups, rep, func(group int, path string) Outcome {
			return d.delete(ctx, group, path)
		})

	case ModeQuarantine:
		rep.TrashDir = d.TrashDir(root)
		if err := d.ensureTrash(ctx, rep.TrashDir); err != nil {
			d.each(groups, rep, func(group int, path string) Outcome {
				return Outcome{Group: group, Path: path, Action: ActionFailed, Err: err}
			})
			break
		}
		// A dry run moves nothing, so destinations already handed out are tracked here
		reserved := make(map[string]bool)
		d.each(groups, rep, func(group int, path string) Outcome {
			return d.quarantine(ctx, group, path, rep.TrashDir, reserved)
		})

	default:
		d.each(groups, rep, func(group int, path string) Outcome {
			return Outcome{Group: group, Path: path, Action: ActionKept}
		})
	}

	d.logger.Info().
		Str("mode", string(mode)).
		Bool("dry_run", d.opts.DryRun).
		Int("deleted", rep.Count(ActionDeleted)).
		Int("moved", rep.Count(ActionMoved)).
		Int("kept", rep.Count(ActionKept)).
		Int("missing", rep.Count(ActionMissing)).
		Int("failed", rep.Count(ActionFailed)).
		Msg("Disposition completed")

	return rep
}

func (d *Disposer) each(groups []dedupe.Group, rep *Report, fn func(group int, path string) Outcome) {
	for i, g := range groups {
		for _, path := range g.Extras() {
			rep.Outcomes = append(rep.Outcomes, fn(i+1, path))
		}
	}
}

func (d *Disposer) delete(ctx context.Context, group int, path string) Outcome {
	out := Outcome{Group: group, Path: path}

	if d.opts.DryRun {
		if _, err := os.Lstat(path); err != nil {
			out.Action, out.Err = ActionMissing, common.ClassifyError(err)
			return out
		}
		d.logger.Info().Str("path", path).Msg("Dry run: would delete file")
		out.Action = ActionDeleted
		return out
	}

	err := d.ops.DeleteFile(ctx, path)
	switch {
	case err == nil:
		d.logger.Info().Str("path", path).Msg("Deleted")
		out.Action = ActionDeleted
	case errors.Is(err, common.ErrSourceNotExist):
		// An earlier near-duplicate pair may already have removed it
		d.logger.Warn().Str("path", path).Msg("File not found, skipping deletion")
		out.Action, out.Err = ActionMissing, err
	default:
		out.Action = ActionFailed
		out.Err = common.LogAndWrapError(d.logger, err, zerolog.WarnLevel, "failed to delete %s", path)
	}
	return out
}

func (d *Disposer) quarantine(ctx context.Context, group int, path, trashDir string, reserved map[string]bool) Outcome {
	out := Outcome{Group: group, Path: path}

	dst := filepath.Join(trashDir, filepath.Base(path))
	moved, err := d.ops.MoveFile(ctx, path, dst, options.MoveOptions{
		DryRun:         d.opts.DryRun,
		Conflict:       d.opts.Conflict,
		FallbackToCopy: true,
	})
	if err == nil && d.opts.DryRun {
		moved, err = d.reserve(moved, reserved)
	}
	switch {
	case err == nil:
		d.logger.Info().Str("path", path).Str("destination", moved).Msg("Moved to Trash")
		out.Action, out.Destination = ActionMoved, moved
	case errors.Is(err, common.ErrSourceNotExist):
		d.logger.Warn().Str("path", path).Msg("File not found, skipping move")
		out.Action, out.Err = ActionMissing, err
	case errors.Is(err, fileops.ErrSkipped):
		d.logger.Info().Str("path", path).Str("destination", dst).Msg("Destination exists, skipping move")
		out.Action, out.Destination = ActionSkipped, dst
	default:
		out.Action = ActionFailed
		out.Err = common.LogAndWrapError(d.logger, err, zerolog.WarnLevel, "failed to move %s", path)
	}
	return out
}

// reserve settles a dry-run destination against the ones handed out earlier
// in the same run, the way the conflict strategy would on disk
func (d *Disposer) reserve(dst string, reserved map[string]bool) (string, error) {
	if reserved[dst] {
		switch d.opts.Conflict {
		case options.ConflictSkip:
			return "", fmt.Errorf("%s: %w", dst, fileops.ErrSkipped)
		case options.ConflictRename:
			dir := filepath.Dir(dst)
			stem, ext := common.SplitExt(filepath.Base(dst))
			for n := 1; ; n++ {
				candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
				if reserved[candidate] {
					continue
				}
				if _, err := os.Lstat(candidate); err == nil {
					continue
				}
				dst = candidate
				break
			}
		}
	}
	reserved[dst] = true
	return dst, nil
}

func (d *Disposer) ensureTrash(ctx context.Context, dir string) error {
	if d.opts.DryRun {
		return nil
	}
	if err := d.ops.CreateDirectory(ctx, dir, 0o755); err != nil {
		return common.LogAndWrapError(d.logger, err, zerolog.ErrorLevel, "failed to create quarantine folder %s", dir)
	}
	return nil
}

// String implements fmt.Stringer for log and table output
func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s %s: %v", o.Action, o.Path, o.Err)
	case o.Destination != "":
		return fmt.Sprintf("%s %s -> %s", o.Action, o.Path, o.Destination)
	default:
		return fmt.Sprintf("%s %s", o.Action, o.Path)
	}
}
