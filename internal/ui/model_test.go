package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iecsize/internal/progress"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_LiveUpdates(t *testing.T) {
	m := NewModel(context.Background(), []string{"/data", "/logs"}, Options{})
	assert.Contains(t, m.View(), "Paths: 0/2 done")
	assert.Contains(t, m.View(), "waiting")

	m, _ = update(t, m, jobUpdateMsg{U: progress.Update{
		JobID: "job-0", Stage: progress.StageScanning, Bytes: 5000, Files: 3,
	}})
	view := m.View()
	assert.Contains(t, view, "scanning")
	assert.Contains(t, view, "4.88KiB in 3 files")
	assert.Contains(t, view, "4.88KiB so far")
}

func TestModel_ResultsAndSummary(t *testing.T) {
	m := NewModel(context.Background(), []string{"/data", "/logs", "/gone"}, Options{})

	m, _ = update(t, m, jobResultMsg{R: progress.Result{JobID: "job-0", Path: "/data", Bytes: 3 << 30, Files: 10}})
	assert.Contains(t, m.View(), "Paths: 1/3 done")

	results := []progress.Result{
		{JobID: "job-0", Path: "/data", Bytes: 3 << 30, Files: 10},
		{JobID: "job-1", Path: "/logs", Bytes: 1 << 30, Files: 5},
		{JobID: "job-2", Path: "/gone", Err: errors.New("no such file or directory")},
	}
	m, cmd := update(t, m, scanDoneMsg{Results: results, Err: errors.New("one failed")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	assert.True(t, m.finished)
	assert.Equal(t, results, m.results)

	view := m.View()
	assert.Contains(t, view, "Paths: 3/3 done")
	assert.Contains(t, view, "3.00GiB in 10 files")
	assert.Contains(t, view, "1.00GiB in 5 files")
	assert.Contains(t, view, "✗ no such file or directory")
	assert.Contains(t, view, "Total: 4.00GiB in 15 files")
	assert.Contains(t, view, "75%")
}

func TestModel_QuitCancels(t *testing.T) {
	m := NewModel(context.Background(), []string{"/data"}, Options{})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.ctx.Err(), context.Canceled)
}

func TestTeaReporter_DoesNotBlockAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rep := teaReporter{ctx: ctx, ch: make(chan tea.Msg)}
	cancel()

	done := make(chan struct{})
	go func() {
		rep.Update(progress.Update{JobID: "job-0", Stage: progress.StageScanning})
		rep.Update(progress.Update{JobID: "job-0", Stage: progress.StageCompleted})
		rep.Result(progress.Result{JobID: "job-0"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter blocked after cancel")
	}
}

func TestSummarizeFailures(t *testing.T) {
	assert.NoError(t, summarizeFailures([]progress.Result{{Path: "/ok"}}))

	err := summarizeFailures([]progress.Result{
		{Path: "/ok"},
		{Path: "/bad", Err: errors.New("permission denied")},
	})
	require.Error(t, err)
	assert.Equal(t, "1 path(s) failed:\n- /bad: permission denied", err.Error())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "same", truncate("same", 0))
}

func TestModel_ListenerRearmedOnlyAfterEvents(t *testing.T) {
	m := NewModel(context.Background(), []string{"/data"}, Options{})

	_, cmd := update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)

	next := jobResultMsg{R: progress.Result{JobID: "job-0", Path: "/data"}}
	for _, msg := range []tea.Msg{
		jobUpdateMsg{U: progress.Update{JobID: "job-0", Stage: progress.StageScanning}},
		jobResultMsg{R: progress.Result{JobID: "job-0", Path: "/data"}},
	} {
		var cmd tea.Cmd
		m, cmd = update(t, m, msg)
		require.NotNil(t, cmd)
		batch, ok := cmd().(tea.BatchMsg)
		require.True(t, ok)
		require.Len(t, batch, 1)

		m.eventCh <- next
		assert.Equal(t, next, batch[0]())
	}
}
