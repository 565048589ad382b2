// Package scan totals the size of directory trees on a bounded worker pool.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"iecsize/internal/progress"
	"iecsize/internal/util/format"
)

// updateEvery is how many files a walk counts between progress updates.
const updateEvery = 256

// Options controls a Scan.
type Options struct {
	Jobs     int               // concurrent walks; <= 0 means 2
	Reporter progress.Reporter // optional
	Logger   *zap.Logger       // optional
}

type task struct {
	ctx   context.Context
	index int
	path  string
}

// JobID returns the progress job identifier for the i-th path.
func JobID(i int) string {
	return "job-" + strconv.Itoa(i)
}

// Scan walks every path and returns one Result per path, in input order.
// Symlinks below a root are not followed. The returned error joins every
// per-path failure; results for successful paths are valid regardless.
func Scan(ctx context.Context, paths []string, opts Options) ([]progress.Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = 2
	}
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Discard
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scan")

	results := make([]progress.Result, len(paths))
	var wg sync.WaitGroup

	pool, err := ants.NewPoolWithFunc(jobs, func(i interface{}) {
		defer wg.Done()
		t, ok := i.(task)
		if !ok {
			log.Error("Invalid task type received", zap.Any("data", i))
			return
		}
		res := run(t, rep, log)
		results[t.index] = res
		rep.Result(res)
	},
		ants.WithPanicHandler(func(p interface{}) {
			log.Error("Panic recovered in scan worker", zap.Any("panic_error", p), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan pool: %w", err)
	}
	defer pool.Release()

	log.Debug("Scan started", zap.Int("paths", len(paths)), zap.Int("jobs", jobs))
	for i, p := range paths {
		rep.Update(progress.Update{JobID: JobID(i), Stage: progress.StageQueued, Message: "Queued"})
		wg.Add(1)
		if err := pool.Invoke(task{ctx: ctx, index: i, path: p}); err != nil {
			wg.Done()
			res := progress.Result{JobID: JobID(i), Path: p, Err: fmt.Errorf("failed to submit scan: %w", err)}
			results[i] = res
			rep.Result(res)
		}
	}
	wg.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			log.Warn("Scan failed", zap.String("path", r.Path), zap.Error(r.Err))
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
			continue
		}
		log.Debug("Scan finished", zap.String("path", r.Path), zap.Int64("bytes", r.Bytes), zap.Int("files", r.Files))
	}
	return results, errors.Join(errs...)
}

// run walks one task, turning a panic into a failed Result for that path.
func run(t task, rep progress.Reporter, log *zap.Logger) (res progress.Result) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("Panic recovered in scan walk", zap.String("path", t.path), zap.Any("panic_error", p), zap.Stack("stack"))
			res = progress.Result{JobID: JobID(t.index), Path: t.path, Err: fmt.Errorf("scan panicked: %v", p)}
		}
	}()
	return walk(t.ctx, JobID(t.index), t.path, rep)
}

func walk(ctx context.Context, id, root string, rep progress.Reporter) progress.Result {
	res := progress.Result{JobID: id, Path: root}
	fail := func(err error) progress.Result {
		res.Err = err
		rep.Update(progress.Update{JobID: id, Stage: progress.StageError, Bytes: res.Bytes, Files: res.Files, Message: err.Error()})
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fail(err)
	}
	rep.Update(progress.Update{JobID: id, Stage: progress.StageScanning, Message: "Scanning"})

	if !info.IsDir() {
		if info.Mode().IsRegular() {
			res.Bytes, res.Files = info.Size(), 1
		}
		rep.Update(completed(res))
		return res
	}

	// WalkDir does not descend through a symlinked root.
	dir, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fail(err)
	}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == dir {
				return err
			}
			// Unreadable entries below the root are skipped, like du does.
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		res.Bytes += fi.Size()
		res.Files++
		if res.Files%updateEvery == 0 {
			rep.Update(progress.Update{
				JobID:   id,
				Stage:   progress.StageScanning,
				Bytes:   res.Bytes,
				Files:   res.Files,
				Message: summary(res),
			})
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}
	rep.Update(completed(res))
	return res
}

func completed(res progress.Result) progress.Update {
	return progress.Update{
		JobID:   res.JobID,
		Stage:   progress.StageCompleted,
		Bytes:   res.Bytes,
		Files:   res.Files,
		Message: summary(res),
	}
}

func summary(res progress.Result) string {
	return fmt.Sprintf("%s in %d files", format.HumanizeBytes(res.Bytes), res.Files)
}
