package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"iecsize/internal/progress"
)

type jobState struct {
	id     string
	path   string
	stage  progress.Stage
	status string
	err    error
	done   bool

	bytes int64
	files int

	spinner spinner.Model
	bar     bubblesprogress.Model // share of the grand total once done
}

func newJobState(id, path string, styles Styles) jobState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(30),
	)
	return jobState{
		id:      id,
		path:    path,
		stage:   progress.StageQueued,
		status:  "Queued",
		spinner: sp,
		bar:     bar,
	}
}

func (js *jobState) apply(r progress.Result) {
	js.done = true
	js.err = r.Err
	js.bytes = r.Bytes
	js.files = r.Files
	if r.Err != nil {
		js.stage = progress.StageError
		js.status = r.Err.Error()
		return
	}
	js.stage = progress.StageCompleted
}
