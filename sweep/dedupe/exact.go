package dedupe

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// ExactResult holds verified duplicate groups and the records they claim
type ExactResult struct {
	Groups  []Group
	Claimed *ClaimedSet
	Hashed  int
	Absent  int
}

// ExactResolver finds byte-identical files inside each size bucket
type ExactResolver struct {
	hasher  Digester
	workers int
	logger  zerolog.Logger
}

// NewExactResolver creates a resolver hashing with at most workers goroutines.
// A non-positive worker count uses one per CPU.
func NewExactResolver(hasher Digester, workers int, logger zerolog.Logger) *ExactResolver {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ExactResolver{hasher: hasher, workers: workers, logger: logger}
}

type hashResult struct {
	digest Digest
	ok     bool
}

// Resolve hashes every bucket with two or more members and groups them by
// digest. The first member of each group is the earliest encountered file.
// Cancellation is checked between buckets, never during one.
func (r *ExactResolver) Resolve(ctx context.Context, buckets SizeBuckets) (*ExactResult, error) {
	result := &ExactResult{Claimed: newClaimedSet()}

	for _, size := range buckets.order {
		members := buckets.buckets[size]
		if len(members) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hashes := r.hashBucket(members)

		var digestOrder []Digest
		byDigest := make(map[Digest][]FileRecord)
		for i, rec := range members {
			if !hashes[i].ok {
				result.Absent++
				continue
			}
			result.Hashed++
			d := hashes[i].digest
			if _, seen := byDigest[d]; !seen {
				digestOrder = append(digestOrder, d)
			}
			byDigest[d] = append(byDigest[d], rec)
		}

		for _, d := range digestOrder {
			same := byDigest[d]
			if len(same) < 2 {
				continue
			}
			for _, rec := range same {
				result.Claimed.add(rec)
			}
			result.Groups = append(result.Groups, Group{Kind: GroupExact, Members: same, Digest: d})
		}

		r.logger.Debug().
			Int64("size", size).
			Int("members", len(members)).
			Int("digests", len(digestOrder)).
			Msg("Resolved size bucket")
	}

	return result, nil
}

// hashBucket fans the bucket out over a bounded pool. Each task writes only
// its own slot, and the pool is drained before the slice is read.
func (r *ExactResolver) hashBucket(members []FileRecord) []hashResult {
	results := make([]hashResult, len(members))

	p := pool.New().WithMaxGoroutines(min(r.workers, len(members)))
	for i, rec := range members {
		p.Go(func() {
			d, ok := r.hasher.Hash(rec.Path)
			results[i] = hashResult{digest: d, ok: ok}
		})
	}
	p.Wait()

	return results
}
