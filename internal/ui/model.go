package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"iecsize/internal/progress"
	"iecsize/internal/scan"
)

// Options controls the scan driven by the TUI.
type Options struct {
	Jobs   int
	Logger *zap.Logger
}

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	// Jobs
	paths    []string
	opts     Options
	jobOrder []string
	jobs     map[string]*jobState

	// Set once the scan returns
	finished bool
	results  []progress.Result
	scanErr  error

	// UI
	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, paths []string, opts Options) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	jobs := make(map[string]*jobState, len(paths))
	order := make([]string, 0, len(paths))
	for i, p := range paths {
		id := scan.JobID(i)
		js := newJobState(id, p, sty)
		jobs[id] = &js
		order = append(order, id)
	}

	return Model{
		ctx:      c,
		cancel:   cancel,
		paths:    paths,
		opts:     opts,
		jobs:     jobs,
		jobOrder: order,
		styles:   sty,
		eventCh:  make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.jobOrder {
		cmds = append(cmds, m.jobs[id].spinner.Tick)
	}
	cmds = append(cmds, m.listenEventsCmd())
	cmds = append(cmds, m.startScanCmd())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case jobUpdateMsg:
		u := msg.U
		if js, ok := m.jobs[u.JobID]; ok && !js.done {
			js.stage = u.Stage
			js.status = u.Message
			js.bytes = u.Bytes
			js.files = u.Files
		}
		cmds = append(cmds, m.listenEventsCmd())
	case jobResultMsg:
		if js, ok := m.jobs[msg.R.JobID]; ok {
			js.apply(msg.R)
		}
		cmds = append(cmds, m.listenEventsCmd())
	case scanDoneMsg:
		m.finished = true
		m.results = msg.Results
		m.scanErr = msg.Err
		for _, r := range msg.Results {
			if js, ok := m.jobs[r.JobID]; ok {
				js.apply(r)
			}
		}
		return m, tea.Quit
	case allDoneMsg:
		return m, tea.Quit
	}

	// Update per-job components (spinner)
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		var c tea.Cmd
		js.spinner, c = js.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.finished {
		return m.viewHeader() + "\n\n" + m.viewJobs() + "\n" + m.viewSummary()
	}
	return m.viewHeader() + "\n\n" + m.viewJobs()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func (m Model) startScanCmd() tea.Cmd {
	return func() tea.Msg {
		results, err := scan.Scan(m.ctx, m.paths, scan.Options{
			Jobs:     m.opts.Jobs,
			Reporter: teaReporter{ctx: m.ctx, ch: m.eventCh},
			Logger:   m.opts.Logger,
		})
		return scanDoneMsg{Results: results, Err: err}
	}
}

// teaReporter forwards scan events into the program. Sends give up once the
// program's context is done so walks never block on a closed UI.
type teaReporter struct {
	ctx context.Context
	ch  chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Block on terminal stages to ensure they're delivered
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		select {
		case r.ch <- jobUpdateMsg{U: u}:
		case <-r.ctx.Done():
		}
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	select {
	case r.ch <- jobResultMsg{R: res}:
	case <-r.ctx.Done():
	}
}
