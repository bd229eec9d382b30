package disposition

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects what happens to the extras of every duplicate group
type Mode string

const (
	ModeDelete     Mode = "delete"
	ModeQuarantine Mode = "quarantine"
	ModeKeepAll    Mode = "keep-all"
)

// ErrInvalidMode is returned by ParseMode for anything it does not recognise
var ErrInvalidMode = errors.New("invalid disposition mode")

// Modes lists the modes in menu order
var Modes = []Mode{ModeDelete, ModeQuarantine, ModeKeepAll}

// ParseMode accepts a mode name or its menu number (1, 2 or 3)
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", string(ModeDelete):
		return ModeDelete, nil
	case "2", string(ModeQuarantine):
		return ModeQuarantine, nil
	case "3", string(ModeKeepAll):
		return ModeKeepAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Describe returns the menu label for m
func (m Mode) Describe() string {
	switch m {
	case ModeDelete:
		return "Delete duplicates (keep one)"
	case ModeQuarantine:
		return "Move duplicates to Trash (keep one)"
	case ModeKeepAll:
		return "Keep all duplicates"
	default:
		return string(m)
	}
}

// Action records what happened to one extra
type Action string

const (
	ActionDeleted Action = "deleted"
	ActionMoved   Action = "moved"
	ActionKept    Action = "kept"
	ActionMissing Action = "missing"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// Outcome is the result for one extra of one group. Group is 1-indexed.
type Outcome struct {
	Group       int
	Path        string
	Action      Action
	Destination string
	Err         error
}

// Report collects the outcomes of one Apply call
type Report struct {
	Mode     Mode
	DryRun   bool
	TrashDir string
	Outcomes []Outcome
}

// Count returns how many outcomes carry action a
func (r *Report) Count(a Action) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == a {
			n++
		}
	}
	return n
}

// Failures returns the outcomes that carry an error
func (r *Report) Failures() []Outcome {
	if r == nil {
		return nil
	}
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
