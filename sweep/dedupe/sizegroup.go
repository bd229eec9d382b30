package dedupe

import (
	"io/fs"
	"os"

	"github.com/rs/zerolog"
)

// SizeBuckets maps byte size to the records of that size. Sizes and
// records both keep encounter order.
type SizeBuckets struct {
	order   []int64
	buckets map[int64][]FileRecord
	records []FileRecord
}

// Sizes returns the distinct sizes in the order they were first seen
func (b SizeBuckets) Sizes() []int64 {
	return append([]int64(nil), b.order...)
}

// Bucket returns the records of the given size
func (b SizeBuckets) Bucket(size int64) []FileRecord {
	return b.buckets[size]
}

// Records returns every grouped record in encounter order
func (b SizeBuckets) Records() []FileRecord {
	return b.records
}

// Candidates counts buckets with at least two members
func (b SizeBuckets) Candidates() int {
	n := 0
	for _, size := range b.order {
		if len(b.buckets[size]) > 1 {
			n++
		}
	}
	return n
}

// SizeGrouper partitions paths into equal-size buckets
type SizeGrouper struct {
	minSize int64
	logger  zerolog.Logger
}

// NewSizeGrouper creates a grouper that drops files smaller than minSize
func NewSizeGrouper(minSize int64, logger zerolog.Logger) *SizeGrouper {
	return &SizeGrouper{minSize: minSize, logger: logger}
}

// Group stats every path. Symbolic links, non-regular files, files below the
// minimum size and paths that cannot be stat'ed are left out of every bucket.
func (g *SizeGrouper) Group(paths []string) SizeBuckets {
	out := SizeBuckets{buckets: make(map[int64][]FileRecord)}

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil {
			g.logger.Warn().Err(err).Str("path", path).Msg("Error getting size")
			continue
		}
		if info.Mode()&fs.ModeSymlink != 0 || !info.Mode().IsRegular() {
			continue
		}
		size := info.Size()
		if size < g.minSize {
			continue
		}

		rec := FileRecord{Index: uint32(len(out.records)), Path: path, Size: size}
		if _, seen := out.buckets[size]; !seen {
			out.order = append(out.order, size)
		}
		out.buckets[size] = append(out.buckets[size], rec)
		out.records = append(out.records, rec)
	}

	return out
}
