package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"iecsize/internal/progress"
)

// Run launches the TUI, scans paths and returns one result per path.
func Run(ctx context.Context, paths []string, opts Options) ([]progress.Result, error) {
	m := NewModel(ctx, paths, opts)
	defer m.cancel()

	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected final model %T", final)
	}
	if !fm.finished {
		// Quit before the scan returned.
		return nil, context.Canceled
	}
	return fm.results, summarizeFailures(fm.results)
}

func summarizeFailures(results []progress.Result) error {
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("- %s: %s", r.Path, r.Err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d path(s) failed:\n%s", len(failed), strings.Join(failed, "\n"))
	}
	return nil
}
