package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/dupesweep/sweep/dedupe"
	"github.com/ZanzyTHEbar/dupesweep/sweep/disposition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGroups() []dedupe.Group {
	return []dedupe.Group{
		{Kind: dedupe.GroupExact, Members: []dedupe.FileRecord{
			{Path: "/data/report.txt", Size: 2048},
			{Path: "/data/report_copy.txt", Size: 2048},
		}},
		{Kind: dedupe.GroupNear, Members: []dedupe.FileRecord{
			{Path: "/data/invoice1.pdf", Size: 50},
			{Path: "/data/invoice2.pdf", Size: 60},
		}},
	}
}

func TestWriteGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGroups(&buf, sampleGroups()))

	want := "Duplicate files found:\n" +
		"Set 1:\n - /data/report.txt\n - /data/report_copy.txt\n\n" +
		"Set 2:\n - /data/invoice1.pdf\n - /data/invoice2.pdf\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteGroups_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGroups(&buf, nil))
	assert.Equal(t, "No duplicate files found.\n", buf.String())
}

func TestWriteSummary(t *testing.T) {
	scan := &dedupe.ScanResult{
		Groups:   sampleGroups(),
		Stats:    dedupe.ScanStats{FilesSeen: 1234},
		Duration: 1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, scan))
	out := buf.String()

	assert.Contains(t, out, "/data/report.txt")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "60 B")
	assert.Contains(t, out, "2.1 KiB")
	assert.NotContains(t, out, "KIB")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Reclaimable")
	assert.Contains(t, out, "Scanned 1,234 files in 1.5s: 1 exact, 1 near-duplicate sets")

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, &dedupe.ScanResult{}))
	assert.Empty(t, buf.String())
}

func TestWriteDisposition(t *testing.T) {
	rep := &disposition.Report{
		Mode: disposition.ModeQuarantine,
		Outcomes: []disposition.Outcome{
			{Group: 1, Path: "/data/report_copy.txt", Action: disposition.ActionMoved, Destination: "/data/Trash/report_copy.txt"},
			{Group: 2, Path: "/data/invoice2.pdf", Action: disposition.ActionFailed, Err: errors.New("permission denied")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDisposition(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "/data/Trash/report_copy.txt")
	assert.Contains(t, out, "permission denied")
	assert.True(t, strings.HasSuffix(out, "0 deleted, 1 moved, 0 missing, 0 skipped, 1 failed\n"), out)
	assert.NotContains(t, out, "Dry run")
}

func TestWriteDisposition_KeepAllAndDryRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDisposition(&buf, &disposition.Report{Mode: disposition.ModeKeepAll}))
	assert.Equal(t, "Keeping all duplicates.\n", buf.String())

	buf.Reset()
	rep := &disposition.Report{
		Mode:     disposition.ModeDelete,
		DryRun:   true,
		Outcomes: []disposition.Outcome{{Group: 1, Path: "/x", Action: disposition.ActionDeleted}},
	}
	require.NoError(t, WriteDisposition(&buf, rep))
	assert.Contains(t, buf.String(), "Dry run: 1 deleted")

	buf.Reset()
	require.NoError(t, WriteDisposition(&buf, nil))
	assert.Empty(t, buf.String())
}
