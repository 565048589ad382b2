package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"iecsize/internal/progress"
)

type recordingReporter struct {
	mu      sync.Mutex
	updates []progress.Update
	results []progress.Result
}

func (r *recordingReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingReporter) Result(res progress.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recordingReporter) stages(jobID string) []progress.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []progress.Stage
	for _, u := range r.updates {
		if u.JobID == jobID {
			out = append(out, u.Stage)
		}
	}
	return out
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestScan_Tree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.bin"), 1000)
	writeFile(t, filepath.Join(root, "sub", "b.bin"), 24)
	writeFile(t, filepath.Join(root, "sub", "deeper", "c.bin"), 4096)

	rep := &recordingReporter{}
	results, err := Scan(context.Background(), []string{root}, Options{Jobs: 1, Reporter: rep})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "job-0", results[0].JobID)
	assert.Equal(t, root, results[0].Path)
	assert.Equal(t, int64(5120), results[0].Bytes)
	assert.Equal(t, 3, results[0].Files)
	assert.NoError(t, results[0].Err)

	require.Len(t, rep.results, 1)
	assert.Equal(t, []progress.Stage{progress.StageQueued, progress.StageScanning, progress.StageCompleted}, rep.stages("job-0"))
	last := rep.updates[len(rep.updates)-1]
	assert.Equal(t, "5.00KiB in 3 files", last.Message)
}

func TestScan_SingleFileRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "one.bin")
	writeFile(t, file, 5000)

	results, err := Scan(context.Background(), []string{file}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(5000), results[0].Bytes)
	assert.Equal(t, 1, results[0].Files)
}

func TestScan_ResultsKeepInputOrder(t *testing.T) {
	var paths []string
	for i := 0; i < 8; i++ {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "f.bin"), (i+1)*100)
		paths = append(paths, dir)
	}

	results, err := Scan(context.Background(), paths, Options{Jobs: 3})
	require.NoError(t, err)
	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, JobID(i), r.JobID)
		assert.Equal(t, int64((i+1)*100), r.Bytes)
	}
}

func TestScan_ProgressUpdatesWhileWalking(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < updateEvery; i++ {
		writeFile(t, filepath.Join(root, "f"+JobID(i)), 4)
	}

	rep := &recordingReporter{}
	_, err := Scan(context.Background(), []string{root}, Options{Reporter: rep})
	require.NoError(t, err)

	var scanningWithFiles int
	for _, u := range rep.updates {
		if u.Stage == progress.StageScanning && u.Files == updateEvery {
			scanningWithFiles++
			assert.Equal(t, int64(4*updateEvery), u.Bytes)
		}
	}
	assert.Equal(t, 1, scanningWithFiles)
}

func TestScan_MissingPath(t *testing.T) {
	good := t.TempDir()
	writeFile(t, filepath.Join(good, "f.bin"), 10)
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	core, logs := observer.New(zapcore.WarnLevel)
	rep := &recordingReporter{}
	results, err := Scan(context.Background(), []string{good, missing}, Options{Reporter: rep, Logger: zap.New(core)})

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, int64(10), results[0].Bytes)
	assert.ErrorIs(t, results[1].Err, fs.ErrNotExist)
	assert.Contains(t, rep.stages("job-1"), progress.StageError)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Scan failed", entry.Message)
	assert.Equal(t, missing, entry.ContextMap()["path"])
}

func TestScan_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f.bin"), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Scan(ctx, []string{root}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestScan_SymlinkRoot(t *testing.T) {
	target := t.TempDir()
	writeFile(t, filepath.Join(target, "f.bin"), 5000)
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	results, err := Scan(context.Background(), []string{link}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, link, results[0].Path)
	assert.Equal(t, int64(5000), results[0].Bytes)
	assert.Equal(t, 1, results[0].Files)
}

// panickyReporter panics as soon as a walk starts scanning.
type panickyReporter struct {
	recordingReporter
}

func (r *panickyReporter) Update(u progress.Update) {
	if u.Stage == progress.StageScanning {
		panic("reporter exploded")
	}
	r.recordingReporter.Update(u)
}

func TestScan_PanicBecomesFailedResult(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f.bin"), 10)

	core, logs := observer.New(zapcore.ErrorLevel)
	rep := &panickyReporter{}
	results, err := Scan(context.Background(), []string{root}, Options{Reporter: rep, Logger: zap.New(core)})

	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, root, results[0].Path)
	assert.Equal(t, "job-0", results[0].JobID)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "reporter exploded")

	require.Len(t, rep.results, 1)
	assert.Error(t, rep.results[0].Err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Panic recovered in scan walk", logs.All()[0].Message)
}
