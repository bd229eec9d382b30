package options

import "fmt"

// ConflictStrategy defines how to handle file conflicts
type ConflictStrategy string

const (
	ConflictOverwrite ConflictStrategy = "overwrite"
	ConflictSkip      ConflictStrategy = "skip"
	ConflictRename    ConflictStrategy = "rename"
)

// ParseConflictStrategy maps a config value onto a strategy; empty means rename
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case "", ConflictRename:
		return ConflictRename, nil
	case ConflictSkip, ConflictOverwrite:
		return ConflictStrategy(s), nil
	default:
		return "", fmt.Errorf("unknown conflict strategy: %q", s)
	}
}

// MoveOptions configures file move operations
type MoveOptions struct {
	DryRun         bool             // Preview operations without executing
	Conflict       ConflictStrategy // How to handle file conflicts
	FallbackToCopy bool             // Use copy+delete for cross-device moves
}

// TraversalOptions configures directory traversal
type TraversalOptions struct {
	IgnoreFile     string   // Name of a gitignore-style file looked up at the root
	IgnorePatterns []string // Extra gitignore-style patterns
	ExcludeDirs    []string // Directories skipped entirely, absolute or relative to the root
}
