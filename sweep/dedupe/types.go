package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
)

// Digest is a SHA-256 content fingerprint
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero value, as carried by near-duplicate groups
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// FileRecord is one file that survived size grouping. Index is its position
// in encounter order and identifies it within a single scan.
type FileRecord struct {
	Index uint32
	Path  string
	Size  int64
}

// GroupKind tells how a group's members were judged equivalent
type GroupKind string

const (
	GroupExact GroupKind = "exact"
	GroupNear  GroupKind = "near"
)

// Group is an ordered set of two or more equivalent files.
// Members[0] is the survivor; dispositions only touch the rest.
type Group struct {
	Kind    GroupKind
	Members []FileRecord
	Digest  Digest
}

// Keep returns the path of the survivor
func (g Group) Keep() string {
	if len(g.Members) == 0 {
		return ""
	}
	return g.Members[0].Path
}

// Extras returns every path except the survivor
func (g Group) Extras() []string {
	if len(g.Members) < 2 {
		return nil
	}
	out := make([]string, 0, len(g.Members)-1)
	for _, m := range g.Members[1:] {
		out = append(out, m.Path)
	}
	return out
}

// Paths returns every member path in order
func (g Group) Paths() []string {
	out := make([]string, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Path
	}
	return out
}

// ClaimedSet holds the records already placed in an exact group
type ClaimedSet struct {
	bm *roaring.Bitmap
}

func newClaimedSet() *ClaimedSet {
	return &ClaimedSet{bm: roaring.New()}
}

func (c *ClaimedSet) add(rec FileRecord) {
	c.bm.Add(rec.Index)
}

// Contains reports whether rec belongs to an exact group. A nil set claims nothing.
func (c *ClaimedSet) Contains(rec FileRecord) bool {
	if c == nil || c.bm == nil {
		return false
	}
	return c.bm.Contains(rec.Index)
}

// Len returns the number of claimed records
func (c *ClaimedSet) Len() int {
	if c == nil || c.bm == nil {
		return 0
	}
	return int(c.bm.GetCardinality())
}

// ScanResult is the outcome of one full pass of the pipeline
type ScanResult struct {
	ID       uuid.UUID
	Root     string
	Groups   []Group
	Stats    ScanStats
	Duration time.Duration
}

// ExactGroups counts groups of kind exact
func (r *ScanResult) ExactGroups() int {
	return r.countKind(GroupExact)
}

// NearGroups counts groups of kind near
func (r *ScanResult) NearGroups() int {
	return r.countKind(GroupNear)
}

func (r *ScanResult) countKind(kind GroupKind) int {
	n := 0
	for _, g := range r.Groups {
		if g.Kind == kind {
			n++
		}
	}
	return n
}

// ScanStats counts files through each stage
type ScanStats struct {
	FilesSeen     int // produced by traversal
	FilesGrouped  int // survived size grouping
	FilesExcluded int // dropped by size grouping (stat failure, link, below min size)
	FilesHashed   int // hashed successfully
	HashAbsent    int // hash came back absent
	Claimed       int // members of exact groups
}
