package fileops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/common"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/options"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/services"

	"github.com/rs/zerolog"
)

// ErrSkipped reports that a move was not performed because the conflict strategy said so
var ErrSkipped = errors.New("skipped: destination exists")

// FileOperations defines the per-file mutations a disposition needs
type FileOperations interface {
	DeleteFile(ctx context.Context, path string) error
	MoveFile(ctx context.Context, srcPath, dstPath string, opts options.MoveOptions) (string, error)
	CreateDirectory(ctx context.Context, path string, perms os.FileMode) error
}

// FileOps provides low-level file system operations
type FileOps struct {
	conflictResolver services.ConflictResolver
	validation       *common.ValidationUtils
	metrics          *common.FileOperationMetrics
	logger           zerolog.Logger
}

// NewFileOps creates a new file operations instance
func NewFileOps(conflictResolver services.ConflictResolver, logger zerolog.Logger) *FileOps {
	return &FileOps{
		conflictResolver: conflictResolver,
		validation:       common.NewValidationUtils(),
		metrics:          &common.FileOperationMetrics{},
		logger:           logger,
	}
}

// DeleteFile deletes a single file. A missing file is reported as common.ErrSourceNotExist.
func (fo *FileOps) DeleteFile(ctx context.Context, path string) (err error) {
	start := time.Now()
	var size int64
	defer func() { fo.metrics.UpdateMetrics(start, err == nil, size) }()

	if err := fo.validation.ValidateContextCancellation(ctx); err != nil {
		return err
	}
	if err := fo.validation.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("failed to access file %s: %w", path, common.ClassifyError(err))
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to delete directory %s: %w", path, common.ErrNotRegularFile)
	}
	size = info.Size()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, common.ClassifyError(err))
	}

	fo.logger.Debug().Str("path", path).Msg("Deleted file")
	return nil
}

// MoveFile moves a single file and returns the destination actually used.
// Collisions at dstPath are settled by the conflict resolver; cross-device
// moves fall back to copy+delete when opts.FallbackToCopy is set.
func (fo *FileOps) MoveFile(ctx context.Context, srcPath, dstPath string, opts options.MoveOptions) (moved string, err error) {
	start := time.Now()
	var size int64
	defer func() {
		if !opts.DryRun {
			fo.metrics.UpdateMetrics(start, err == nil, size)
		}
	}()

	if err := fo.validation.ValidateContextCancellation(ctx); err != nil {
		return "", err
	}
	if err := fo.validation.ValidatePath(srcPath); err != nil {
		return "", fmt.Errorf("invalid source path: %w", err)
	}
	if err := fo.validation.ValidatePath(dstPath); err != nil {
		return "", fmt.Errorf("invalid destination path: %w", err)
	}

	srcInfo, err := os.Lstat(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to access file %s: %w", srcPath, common.ClassifyError(err))
	}
	if !srcInfo.Mode().IsRegular() {
		return "", fmt.Errorf("cannot move %s: %w", srcPath, common.ErrNotRegularFile)
	}
	size = srcInfo.Size()

	resolvedDstPath, err := fo.conflictResolver.ResolveConflict(ctx, srcPath, dstPath, opts.Conflict)
	if err != nil {
		return "", fmt.Errorf("failed to handle file conflict: %w", err)
	}
	if resolvedDstPath == "" {
		return "", fmt.Errorf("%s -> %s: %w", srcPath, dstPath, ErrSkipped)
	}

	if opts.DryRun {
		fo.logger.Info().Str("src", srcPath).Str("dst", resolvedDstPath).Msg("Dry run: would move file")
		return resolvedDstPath, nil
	}

	err = os.Rename(srcPath, resolvedDstPath)
	if err == nil {
		return resolvedDstPath, nil
	}
	if !isCrossDeviceError(err) || !opts.FallbackToCopy {
		return "", fmt.Errorf("failed to move file: %w", common.ClassifyError(err))
	}

	if err := copyFile(srcPath, resolvedDstPath, srcInfo.Mode().Perm()); err != nil {
		return "", fmt.Errorf("failed to copy file during move: %w", err)
	}
	if err := os.Remove(srcPath); err != nil {
		return "", fmt.Errorf("failed to remove source file after copy: %w", common.ClassifyError(err))
	}

	return resolvedDstPath, nil
}

// GetMetrics returns counters for the deletes and moves performed so far
func (fo *FileOps) GetMetrics() map[string]interface{} {
	return fo.metrics.GetMetrics()
}

// CreateDirectory creates a directory with the specified permissions
func (fo *FileOps) CreateDirectory(ctx context.Context, path string, perms os.FileMode) error {
	if err := fo.validation.ValidateContextCancellation(ctx); err != nil {
		return err
	}
	if err := fo.validation.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	if err := os.MkdirAll(path, perms); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, common.ClassifyError(err))
	}

	return nil
}

func isCrossDeviceError(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return false
}

// copyFile streams src to dst, removing a partial dst on failure
func copyFile(src, dst string, mode os.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

var _ FileOperations = (*FileOps)(nil)
