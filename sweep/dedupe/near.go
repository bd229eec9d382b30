package dedupe

import (
	"path/filepath"

	"github.com/rs/zerolog"
)

// NearResolver pairs unclaimed files whose names are near duplicates
type NearResolver struct {
	matcher *Matcher
	logger  zerolog.Logger
}

// NewNearResolver creates a resolver using matcher for pairwise comparison
func NewNearResolver(matcher *Matcher, logger zerolog.Logger) *NearResolver {
	return &NearResolver{matcher: matcher, logger: logger}
}

// Resolve groups unclaimed records by normalized base name and compares every
// pair inside each name group. Each accepted pair is its own group; pairs are
// not merged transitively, so one file may appear in several pairs.
func (r *NearResolver) Resolve(records []FileRecord, claimed *ClaimedSet) []Group {
	var keyOrder []string
	byKey := make(map[string][]FileRecord)

	for _, rec := range records {
		if claimed.Contains(rec) {
			continue
		}
		key := NormalizeName(filepath.Base(rec.Path))
		if _, seen := byKey[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		byKey[key] = append(byKey[key], rec)
	}

	var groups []Group
	for _, key := range keyOrder {
		members := byKey[key]
		if len(members) < 2 {
			continue
		}
		// O(n^2) per key; name collisions are expected to be few
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				if !r.matcher.Similar(filepath.Base(a.Path), filepath.Base(b.Path)) {
					continue
				}
				groups = append(groups, Group{Kind: GroupNear, Members: []FileRecord{a, b}})
			}
		}
	}

	r.logger.Debug().Int("keys", len(keyOrder)).Int("pairs", len(groups)).Msg("Resolved near duplicates")
	return groups
}
