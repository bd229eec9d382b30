package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/dupesweep/sweep/filesystem/options"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestGenerateUniqueFilename(t *testing.T) {
	cr := NewConflictResolverService()
	dir := t.TempDir()

	free := filepath.Join(dir, "paper.pdf")
	assert.Equal(t, free, cr.GenerateUniqueFilename(free))

	touch(t, free)
	assert.Equal(t, filepath.Join(dir, "paper_1.pdf"), cr.GenerateUniqueFilename(free))

	touch(t, filepath.Join(dir, "paper_1.pdf"))
	touch(t, filepath.Join(dir, "paper_2.pdf"))
	assert.Equal(t, filepath.Join(dir, "paper_3.pdf"), cr.GenerateUniqueFilename(free))

	noExt := filepath.Join(dir, "README")
	touch(t, noExt)
	assert.Equal(t, filepath.Join(dir, "README_1"), cr.GenerateUniqueFilename(noExt))

	dotfile := filepath.Join(dir, ".bashrc")
	touch(t, dotfile)
	assert.Equal(t, filepath.Join(dir, ".bashrc_1"), cr.GenerateUniqueFilename(dotfile))
}

func TestResolveConflict(t *testing.T) {
	ctx := context.Background()
	cr := NewConflictResolverService()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	touch(t, src)

	t.Run("free destination is returned unchanged", func(t *testing.T) {
		for _, strategy := range []options.ConflictStrategy{options.ConflictRename, options.ConflictSkip, options.ConflictOverwrite} {
			got, err := cr.ResolveConflict(ctx, src, dst, strategy)
			require.NoError(t, err)
			assert.Equal(t, dst, got)
		}
	})

	touch(t, dst)

	t.Run("rename", func(t *testing.T) {
		got, err := cr.ResolveConflict(ctx, src, dst, options.ConflictRename)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "dst_1.txt"), got)
	})

	t.Run("skip", func(t *testing.T) {
		got, err := cr.ResolveConflict(ctx, src, dst, options.ConflictSkip)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		got, err := cr.ResolveConflict(ctx, src, dst, options.ConflictOverwrite)
		require.NoError(t, err)
		assert.Equal(t, dst, got)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := cr.ResolveConflict(ctx, src, dst, options.ConflictStrategy("prompt"))
		assert.Error(t, err)
	})
}

func TestParseConflictStrategy(t *testing.T) {
	got, err := options.ParseConflictStrategy("")
	require.NoError(t, err)
	assert.Equal(t, options.ConflictRename, got)

	got, err = options.ParseConflictStrategy("skip")
	require.NoError(t, err)
	assert.Equal(t, options.ConflictSkip, got)

	_, err = options.ParseConflictStrategy("merge")
	assert.Error(t, err)
}
