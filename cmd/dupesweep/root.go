package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	internal "github.com/ZanzyTHEbar/dupesweep/sweep"
	"github.com/ZanzyTHEbar/dupesweep/sweep/config"
	"github.com/ZanzyTHEbar/dupesweep/sweep/dedupe"
	"github.com/ZanzyTHEbar/dupesweep/sweep/disposition"
	"github.com/ZanzyTHEbar/dupesweep/sweep/pipeline"
	"github.com/ZanzyTHEbar/dupesweep/sweep/ports"
	"github.com/ZanzyTHEbar/dupesweep/sweep/report"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	config    string
	mode      string
	dryRun    bool
	workers   int
	threshold float64
	minSize   int64
	trashDir  string
	logLevel  string
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "dupesweep [flags] <root>",
		Short: "Find duplicate files by content and by name, then delete, quarantine or keep them",
		Long: "dupesweep walks a directory tree, groups files with identical content (SHA-256)\n" +
			"and files whose names differ only by a trailing number, and then applies one\n" +
			"disposition to every group: delete, quarantine into a Trash folder, or keep all.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, args, &flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "Disposition: delete, quarantine or keep-all (prompts when omitted)")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Report what would happen without changing any file")
	rootCmd.Flags().IntVar(&flags.workers, "workers", internal.DefaultHashWorkers, "Concurrent hashing workers")
	rootCmd.Flags().Float64Var(&flags.threshold, "threshold", internal.DefaultSimilarityThreshold, "Name similarity threshold for near duplicates")
	rootCmd.Flags().Int64Var(&flags.minSize, "min-size", 0, "Ignore files smaller than this many bytes")
	rootCmd.Flags().StringVar(&flags.trashDir, "trash-dir", internal.DefaultTrashDirName, "Quarantine folder name, created under the root")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", internal.DefaultLogLevel, "Log level (debug, info, warn, error)")

	return rootCmd
}

func runSweep(cmd *cobra.Command, args []string, flags *rootFlags) error {
	cfg, err := config.LoadConfig(strings.TrimSpace(flags.config))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	out := cmd.OutOrStdout()
	ui := newTerminal(cmd.InOrStdin(), out, cmd.ErrOrStderr())

	var declined bool
	decide, err := resolveChooser(cfg.Disposition.Mode, ui, isInteractive(cmd.InOrStdin()), &declined, logger)
	if err != nil {
		return err
	}

	root := cfg.Scan.Root
	if len(args) == 1 {
		root = args[0]
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := p.Run(ctx, root, announce(out, decide))
	if err != nil {
		return err
	}
	return writeResult(out, res, declined)
}

// writeResult prints the closing lines of a run. A declined prompt has
// already said that nothing happens.
func writeResult(out io.Writer, res *pipeline.Result, declined bool) error {
	if len(res.Scan.Groups) == 0 {
		return report.WriteGroups(out, nil)
	}
	if declined {
		return nil
	}
	return report.WriteDisposition(out, res.Disposition)
}

// applyFlags lets explicitly set flags win over file and environment values
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags *rootFlags) {
	changed := cmd.Flags().Changed
	if changed("mode") {
		cfg.Disposition.Mode = flags.mode
	}
	if changed("dry-run") {
		cfg.Disposition.DryRun = flags.dryRun
	}
	if changed("workers") {
		cfg.Scan.Workers = flags.workers
	}
	if changed("threshold") {
		cfg.Scan.SimilarityThreshold = flags.threshold
	}
	if changed("min-size") {
		cfg.Scan.MinSize = flags.minSize
	}
	if changed("trash-dir") {
		cfg.Disposition.TrashDirName = flags.trashDir
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
}

// resolveChooser picks the configured mode, the interactive menu, or keep-all
// when nobody can answer. declined is set when the menu got no usable answer.
func resolveChooser(mode string, ui ports.Interactor, interactive bool, declined *bool, logger zerolog.Logger) (pipeline.ModeChooser, error) {
	if strings.TrimSpace(mode) != "" {
		m, err := disposition.ParseMode(mode)
		if err != nil {
			return nil, fmt.Errorf("--mode: %w", err)
		}
		return pipeline.FixedMode(m), nil
	}

	if !interactive {
		logger.Info().Msg("Input is not a terminal and no mode was given; keeping all duplicates")
		return pipeline.FixedMode(disposition.ModeKeepAll), nil
	}

	return func(context.Context, *dedupe.ScanResult) (disposition.Mode, error) {
		m, answered := promptMode(ui)
		*declined = !answered
		return m, nil
	}, nil
}

// announce prints the groups before the mode is decided
func announce(out io.Writer, decide pipeline.ModeChooser) pipeline.ModeChooser {
	return func(ctx context.Context, scan *dedupe.ScanResult) (disposition.Mode, error) {
		if err := report.WriteGroups(out, scan.Groups); err != nil {
			return "", err
		}
		if err := report.WriteSummary(out, scan); err != nil {
			return "", err
		}
		return decide(ctx, scan)
	}
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		return internal.GetLogger(level)
	}
	return internal.NewLogger(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}, level)
}
