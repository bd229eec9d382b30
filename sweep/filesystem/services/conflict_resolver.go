package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/common"
	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/options"
)

// ConflictResolver decides where a file goes when its destination is taken
type ConflictResolver interface {
	ResolveConflict(ctx context.Context, srcPath, dstPath string, strategy options.ConflictStrategy) (string, error)
	GenerateUniqueFilename(path string) string
}

// ConflictResolverService handles file conflict resolution with various strategies
type ConflictResolverService struct{}

// NewConflictResolverService creates a new conflict resolver service
func NewConflictResolverService() *ConflictResolverService {
	return &ConflictResolverService{}
}

// ResolveConflict resolves a file conflict using the specified strategy.
// It returns dstPath unchanged when nothing occupies it, and an empty path when the move should be skipped.
func (cr *ConflictResolverService) ResolveConflict(ctx context.Context, srcPath, dstPath string, strategy options.ConflictStrategy) (string, error) {
	if !exists(dstPath) {
		return dstPath, nil
	}

	switch strategy {
	case options.ConflictOverwrite:
		return cr.resolveByOverwrite(ctx, srcPath, dstPath)
	case options.ConflictSkip:
		return "", nil
	case options.ConflictRename, "":
		return cr.GenerateUniqueFilename(dstPath), nil
	default:
		return "", fmt.Errorf("unknown conflict strategy: %s", strategy)
	}
}

// GenerateUniqueFilename generates a unique filename by appending a _N suffix before the extension
func (cr *ConflictResolverService) GenerateUniqueFilename(path string) string {
	if !exists(path) {
		return path
	}

	dir := filepath.Dir(path)
	baseName, ext := common.SplitExt(filepath.Base(path))

	counter := 1
	for {
		newPath := filepath.Join(dir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		if !exists(newPath) {
			return newPath
		}
		counter++

		// Prevent infinite loops
		if counter > 9999 {
			return filepath.Join(dir, fmt.Sprintf("%s_%d_%d%s", baseName, counter, time.Now().Unix(), ext))
		}
	}
}

func (cr *ConflictResolverService) resolveByOverwrite(_ context.Context, srcPath, dstPath string) (string, error) {
	if srcPath == dstPath {
		return "", fmt.Errorf("cannot overwrite %s with itself", dstPath)
	}
	info, err := os.Lstat(dstPath)
	if err != nil {
		return dstPath, nil
	}
	if info.IsDir() {
		return "", fmt.Errorf("destination %s is a directory", dstPath)
	}
	if info.Mode().Perm()&0o200 == 0 {
		return "", fmt.Errorf("destination file %s is read-only", dstPath)
	}
	return dstPath, nil
}

// exists treats dangling symlinks as occupied so they are never clobbered
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

var _ ConflictResolver = (*ConflictResolverService)(nil)
