package traversal

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/options"

	"github.com/armon/go-radix"
	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreChecker reports whether a root-relative, slash-separated path is ignored
type IgnoreChecker interface {
	MatchesPath(path string) bool
}

// WalkStats counts what a walk saw and why entries were left out
type WalkStats struct {
	Files    int
	Dirs     int
	Symlinks int
	Ignored  int
	Excluded int
	Special  int
	Errors   int
}

// Walker yields every regular file under a root in lexical order.
// It never follows symbolic links.
type Walker struct {
	opts   options.TraversalOptions
	logger zerolog.Logger
}

// NewWalker creates a sequential walker
func NewWalker(opts options.TraversalOptions, logger zerolog.Logger) *Walker {
	return &Walker{opts: opts, logger: logger}
}

// Walk returns the regular files under root. Only a failure to read root
// itself is returned; unreadable subdirectories are logged and skipped.
func (w *Walker) Walk(ctx context.Context, root string) ([]string, WalkStats, error) {
	var stats WalkStats

	walkRoot, err := resolveRoot(root)
	if err != nil {
		return nil, stats, err
	}

	excluded := w.excludeIndex(walkRoot)

	ignored, err := w.ignoreChecker(walkRoot)
	if err != nil {
		// A broken ignore file should not hide duplicates elsewhere; carry on without it
		w.logger.Warn().Err(err).Str("root", walkRoot).Msg("Failed to load ignore patterns")
	}

	var paths []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if path == walkRoot {
				return fmt.Errorf("failed to read root %s: %w", walkRoot, walkErr)
			}
			stats.Errors++
			w.logger.Warn().Err(walkErr).Str("path", path).Msg("Skipping unreadable path")
			return nil
		}

		if path == walkRoot {
			return nil
		}

		rel, _ := filepath.Rel(walkRoot, path)
		rel = filepath.ToSlash(rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			stats.Symlinks++
			w.logger.Debug().Str("path", path).Msg("Skipping symbolic link")
			return nil

		case d.IsDir():
			if isExcluded(excluded, path) {
				stats.Excluded++
				w.logger.Info().Str("path", path).Msg("Skipping excluded directory")
				return filepath.SkipDir
			}
			if ignored != nil && ignored.MatchesPath(rel+"/") {
				stats.Ignored++
				w.logger.Debug().Str("path", path).Msg("Ignoring directory")
				return filepath.SkipDir
			}
			stats.Dirs++
			return nil

		case !d.Type().IsRegular():
			stats.Special++
			return nil
		}

		if ignored != nil && ignored.MatchesPath(rel) {
			stats.Ignored++
			w.logger.Debug().Str("path", path).Msg("Ignoring file")
			return nil
		}

		stats.Files++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	w.logger.Debug().
		Str("root", walkRoot).
		Int("files", stats.Files).
		Int("dirs", stats.Dirs).
		Int("symlinks", stats.Symlinks).
		Int("ignored", stats.Ignored).
		Int("excluded", stats.Excluded).
		Int("errors", stats.Errors).
		Msg("Traversal completed")

	return paths, stats, nil
}

// resolveRoot follows a symlinked root once so WalkDir descends into it
func resolveRoot(root string) (string, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return "", fmt.Errorf("failed to read root %s: %w", root, err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return root, nil
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	return resolved, nil
}

// excludeIndex stores excluded directories with a trailing separator so a
// longest-prefix hit is always on a path boundary
func (w *Walker) excludeIndex(root string) *radix.Tree {
	tree := radix.New()
	for _, dir := range w.opts.ExcludeDirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		tree.Insert(filepath.Clean(dir)+string(filepath.Separator), struct{}{})
	}
	return tree
}

func isExcluded(tree *radix.Tree, dir string) bool {
	if tree.Len() == 0 {
		return false
	}
	_, _, ok := tree.LongestPrefix(filepath.Clean(dir) + string(filepath.Separator))
	return ok
}

// ignoreChecker compiles configured patterns plus the ignore file at root, if present
func (w *Walker) ignoreChecker(root string) (IgnoreChecker, error) {
	patterns := make([]string, 0, len(w.opts.IgnorePatterns))
	for _, p := range w.opts.IgnorePatterns {
		if strings.TrimSpace(p) != "" {
			patterns = append(patterns, p)
		}
	}

	if w.opts.IgnoreFile != "" {
		ignorePath := filepath.Join(root, w.opts.IgnoreFile)
		if _, err := os.Stat(ignorePath); err == nil {
			ignored, err := ignore.CompileIgnoreFileAndLines(ignorePath, patterns...)
			if err != nil {
				return compileLines(patterns), fmt.Errorf("error reading %s: %w", ignorePath, err)
			}
			return ignored, nil
		} else if !os.IsNotExist(err) {
			return compileLines(patterns), fmt.Errorf("error checking for %s: %w", ignorePath, err)
		}
	}

	return compileLines(patterns), nil
}

func compileLines(patterns []string) IgnoreChecker {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}
