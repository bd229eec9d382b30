package dedupe

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDigester hashes the path string, so tests control equality without touching disk
type fakeDigester struct {
	mu       sync.Mutex
	digests  map[string]string // path -> content key; missing means absent
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeDigester) Hash(path string) (Digest, bool) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	key, ok := f.digests[path]
	f.mu.Unlock()
	if !ok {
		return Digest{}, false
	}
	return Digest(sha256.Sum256([]byte(key))), true
}

func records(specs ...FileRecord) SizeBuckets {
	out := SizeBuckets{buckets: make(map[int64][]FileRecord)}
	for i, rec := range specs {
		rec.Index = uint32(i)
		if _, seen := out.buckets[rec.Size]; !seen {
			out.order = append(out.order, rec.Size)
		}
		out.buckets[rec.Size] = append(out.buckets[rec.Size], rec)
		out.records = append(out.records, rec)
	}
	return out
}

func TestSizeGrouper_Group(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.txt"), "12345")
	b := writeFile(t, filepath.Join(dir, "b.txt"), "123")
	c := writeFile(t, filepath.Join(dir, "c.txt"), "abcde")
	empty := writeFile(t, filepath.Join(dir, "empty.txt"), "")
	missing := filepath.Join(dir, "missing.txt")

	paths := []string{a, b, missing, c, empty}
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(a, link); err == nil {
		paths = append(paths, link)
	}

	buckets := NewSizeGrouper(0, zerolog.Nop()).Group(paths)

	assert.Equal(t, []int64{5, 3, 0}, buckets.Sizes())
	assert.Equal(t, 1, buckets.Candidates())

	five := buckets.Bucket(5)
	require.Len(t, five, 2)
	assert.Equal(t, a, five[0].Path)
	assert.Equal(t, c, five[1].Path)
	for _, rec := range five {
		assert.Equal(t, int64(5), rec.Size)
	}

	all := buckets.Records()
	require.Len(t, all, 4)
	for i, rec := range all {
		assert.Equal(t, uint32(i), rec.Index)
		assert.NotEqual(t, missing, rec.Path)
		assert.NotEqual(t, link, rec.Path)
	}
}

func TestSizeGrouper_MinSize(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, filepath.Join(dir, "small"), "ab")
	large := writeFile(t, filepath.Join(dir, "large"), "abcdef")

	buckets := NewSizeGrouper(3, zerolog.Nop()).Group([]string{small, large})

	require.Len(t, buckets.Records(), 1)
	assert.Equal(t, large, buckets.Records()[0].Path)
}

func TestExactResolver_GroupsByDigest(t *testing.T) {
	digester := &fakeDigester{digests: map[string]string{
		"/r/a1": "A", "/r/b1": "B", "/r/a2": "A", "/r/b2": "B", "/r/a3": "A",
		"/r/solo": "S", "/r/other": "S",
	}}
	buckets := records(
		FileRecord{Path: "/r/a1", Size: 10},
		FileRecord{Path: "/r/b1", Size: 10},
		FileRecord{Path: "/r/a2", Size: 10},
		FileRecord{Path: "/r/solo", Size: 3},
		FileRecord{Path: "/r/b2", Size: 10},
		FileRecord{Path: "/r/a3", Size: 10},
		FileRecord{Path: "/r/other", Size: 4},
	)

	res, err := NewExactResolver(digester, 2, zerolog.Nop()).Resolve(context.Background(), buckets)
	require.NoError(t, err)

	require.Len(t, res.Groups, 2)
	assert.Equal(t, []string{"/r/a1", "/r/a2", "/r/a3"}, res.Groups[0].Paths())
	assert.Equal(t, []string{"/r/b1", "/r/b2"}, res.Groups[1].Paths())
	assert.Equal(t, GroupExact, res.Groups[0].Kind)
	assert.Equal(t, Digest(sha256.Sum256([]byte("A"))), res.Groups[0].Digest)

	// Same content but different sizes never meet: single-member buckets are not hashed
	assert.Equal(t, 5, res.Hashed)
	assert.Equal(t, 5, res.Claimed.Len())
	for _, rec := range buckets.Records() {
		want := rec.Path != "/r/solo" && rec.Path != "/r/other"
		assert.Equal(t, want, res.Claimed.Contains(rec), rec.Path)
	}

	assert.LessOrEqual(t, digester.peak.Load(), int32(2))
}

func TestExactResolver_AbsentHashesExcluded(t *testing.T) {
	digester := &fakeDigester{digests: map[string]string{
		"/r/a": "same", "/r/c": "same", "/r/d": "lonely",
	}}
	buckets := records(
		FileRecord{Path: "/r/a", Size: 8},
		FileRecord{Path: "/r/b", Size: 8}, // absent
		FileRecord{Path: "/r/c", Size: 8},
		FileRecord{Path: "/r/d", Size: 8},
		FileRecord{Path: "/r/e", Size: 9}, // absent
		FileRecord{Path: "/r/f", Size: 9}, // absent
	)

	res, err := NewExactResolver(digester, 4, zerolog.Nop()).Resolve(context.Background(), buckets)
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, []string{"/r/a", "/r/c"}, res.Groups[0].Paths())
	assert.Equal(t, 3, res.Hashed)
	assert.Equal(t, 3, res.Absent)
}

func TestExactResolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buckets := records(FileRecord{Path: "/a", Size: 1}, FileRecord{Path: "/b", Size: 1})
	_, err := NewExactResolver(&fakeDigester{}, 1, zerolog.Nop()).Resolve(ctx, buckets)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNearResolver_PairsWithoutTransitiveMerge(t *testing.T) {
	buckets := records(
		FileRecord{Path: "/r/invoice1.pdf", Size: 50},
		FileRecord{Path: "/r/notes.txt", Size: 7},
		FileRecord{Path: "/r/sub/Invoice2.PDF", Size: 60},
		FileRecord{Path: "/r/invoice3.pdf", Size: 70},
	)

	groups := NewNearResolver(NewMatcher(0.85), zerolog.Nop()).Resolve(buckets.Records(), newClaimedSet())

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"/r/invoice1.pdf", "/r/sub/Invoice2.PDF"}, groups[0].Paths())
	assert.Equal(t, []string{"/r/invoice1.pdf", "/r/invoice3.pdf"}, groups[1].Paths())
	assert.Equal(t, []string{"/r/sub/Invoice2.PDF", "/r/invoice3.pdf"}, groups[2].Paths())
	for _, g := range groups {
		assert.Equal(t, GroupNear, g.Kind)
		assert.True(t, g.Digest.IsZero())
	}
}

func TestNearResolver_SkipsClaimed(t *testing.T) {
	buckets := records(
		FileRecord{Path: "/r/report1.txt", Size: 5},
		FileRecord{Path: "/r/report2.txt", Size: 5},
		FileRecord{Path: "/r/report3.txt", Size: 6},
	)
	claimed := newClaimedSet()
	claimed.add(buckets.Records()[0])
	claimed.add(buckets.Records()[1])

	groups := NewNearResolver(NewMatcher(0.85), zerolog.Nop()).Resolve(buckets.Records(), claimed)
	assert.Empty(t, groups)

	// A nil claimed set excludes nothing
	groups = NewNearResolver(NewMatcher(0.85), zerolog.Nop()).Resolve(buckets.Records(), nil)
	assert.Len(t, groups, 3)
}

func TestMerge(t *testing.T) {
	exact := []Group{{Kind: GroupExact, Members: []FileRecord{{Path: "a"}, {Path: "b"}}}}
	near := []Group{
		{Kind: GroupNear, Members: []FileRecord{{Path: "c1"}, {Path: "c2"}}},
		{Kind: GroupNear, Members: []FileRecord{{Path: "c1"}, {Path: "c3"}}},
	}

	merged := Merge(exact, near)

	require.Len(t, merged, 3)
	assert.Equal(t, GroupExact, merged[0].Kind)
	assert.Equal(t, []string{"c1", "c3"}, merged[2].Paths())
	assert.Empty(t, Merge(nil, nil))

	// Inputs are left untouched
	assert.Len(t, exact, 1)
	assert.Len(t, near, 2)
}

func TestGroupAccessors(t *testing.T) {
	g := Group{Members: []FileRecord{{Path: "keep"}, {Path: "x"}, {Path: "y"}}}
	assert.Equal(t, "keep", g.Keep())
	assert.Equal(t, []string{"x", "y"}, g.Extras())
	assert.Equal(t, []string{"keep", "x", "y"}, g.Paths())

	var empty Group
	assert.Empty(t, empty.Keep())
	assert.Nil(t, empty.Extras())
}
