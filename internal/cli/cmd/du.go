package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"iecsize/internal/logger"
	"iecsize/internal/metrics"
	"iecsize/internal/progress"
	"iecsize/internal/scan"
	"iecsize/internal/ui"
	"iecsize/internal/util/format"
)

func newDuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "du [paths...]",
		Short:         "Report the size of files and directory trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runDu,
	}
	cmd.Flags().Bool("no-ui", false, "Disable TUI; use plain textual output")
	cmd.Flags().String("textfile", "", "Write Prometheus metrics for the scanned paths to this file")
	return cmd
}

func runDu(cmd *cobra.Command, args []string) error {
	s := settingsFrom(cmd.Context())

	var (
		results []progress.Result
		err     error
	)
	// TUI path (auto if TTY and not disabled)
	if !s.NoUI && isTerminal() {
		results, err = ui.Run(cmd.Context(), args, ui.Options{Jobs: s.Jobs, Logger: logger.Log})
	} else {
		results, err = scan.Scan(cmd.Context(), args, scan.Options{Jobs: s.Jobs, Logger: logger.Log})
		printResults(cmd.OutOrStdout(), results)
	}

	if s.Textfile != "" && len(results) > 0 {
		rec := metrics.NewRecorder()
		for _, r := range results {
			rec.Record(r)
		}
		if werr := rec.WriteTextfile(s.Textfile); werr != nil {
			return &ExitError{Code: ExitCLIError, Err: werr}
		}
		logger.Log.Info("Metrics written", zap.String("textfile", s.Textfile), zap.Int("paths", len(results)))
	}

	if err != nil {
		return &ExitError{Code: ExitScanError, Err: err}
	}
	return nil
}

// printResults writes du-style lines for every successful path, plus a total
// when more than one path was given.
func printResults(w io.Writer, results []progress.Result) {
	var total int64
	var files int
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		total += r.Bytes
		files += r.Files
		fmt.Fprintf(w, "%s\t%d files\t%s\n", format.HumanizeBytes(r.Bytes), r.Files, r.Path)
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "%s\t%d files\ttotal\n", format.HumanizeBytes(total), files)
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
