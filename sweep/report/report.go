package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/dupesweep/sweep/dedupe"
	"github.com/ZanzyTHEbar/dupesweep/sweep/disposition"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NoDuplicatesMessage is printed when a scan finds nothing
const NoDuplicatesMessage = "No duplicate files found."

// WriteGroups enumerates groups as numbered sets, survivor first
func WriteGroups(w io.Writer, groups []dedupe.Group) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, NoDuplicatesMessage)
		return err
	}

	var b strings.Builder
	b.WriteString("Duplicate files found:\n")
	for i, g := range groups {
		fmt.Fprintf(&b, "Set %d:\n", i+1)
		for _, p := range g.Paths() {
			fmt.Fprintf(&b, " - %s\n", p)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSummary renders one row per group plus scan totals
func WriteSummary(w io.Writer, scan *dedupe.ScanResult) error {
	if scan == nil || len(scan.Groups) == 0 {
		return nil
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"Set", "Kind", "Files", "Keep", "Reclaimable"})

	var reclaimable uint64
	for i, g := range scan.Groups {
		extra := extraBytes(g)
		reclaimable += extra
		tw.AppendRow(table.Row{i + 1, string(g.Kind), len(g.Members), g.Keep(), humanize.IBytes(extra)})
	}
	tw.AppendFooter(table.Row{"", "", "", "Total", humanize.IBytes(reclaimable)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	_, err := fmt.Fprintf(w, "%s\nScanned %s files in %s: %d exact, %d near-duplicate sets\n",
		tw.Render(),
		humanize.Comma(int64(scan.Stats.FilesSeen)),
		scan.Duration.Round(time.Millisecond),
		scan.ExactGroups(),
		scan.NearGroups(),
	)
	return err
}

// WriteDisposition renders the outcome of a disposition
func WriteDisposition(w io.Writer, rep *disposition.Report) error {
	if rep == nil {
		return nil
	}

	if rep.Mode == disposition.ModeKeepAll {
		_, err := fmt.Fprintln(w, "Keeping all duplicates.")
		return err
	}
	if len(rep.Outcomes) == 0 {
		return nil
	}

	tw := newTable()
	tw.AppendHeader(table.Row{"Set", "Action", "Path", "Detail"})
	for _, o := range rep.Outcomes {
		detail := o.Destination
		if o.Err != nil {
			detail = o.Err.Error()
		}
		tw.AppendRow(table.Row{strconv.Itoa(o.Group), string(o.Action), o.Path, detail})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})

	prefix := ""
	if rep.DryRun {
		prefix = "Dry run: "
	}
	_, err := fmt.Fprintf(w, "%s\n%s%d deleted, %d moved, %d missing, %d skipped, %d failed\n",
		tw.Render(),
		prefix,
		rep.Count(disposition.ActionDeleted),
		rep.Count(disposition.ActionMoved),
		rep.Count(disposition.ActionMissing),
		rep.Count(disposition.ActionSkipped),
		rep.Count(disposition.ActionFailed),
	)
	return err
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// Units such as KiB must print as written
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	return tw
}

func extraBytes(g dedupe.Group) uint64 {
	var n uint64
	for _, m := range g.Members[min(1, len(g.Members)):] {
		if m.Size > 0 {
			n += uint64(m.Size)
		}
	}
	return n
}
