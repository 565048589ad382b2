package progress

// Stage identifies where a scan job currently is.
type Stage string

const (
	StageQueued    Stage = "queued"
	StageScanning  Stage = "scanning"
	StageCompleted Stage = "completed"
	StageError     Stage = "error"
)

// Update conveys a running total or stage change for a job.
type Update struct {
	JobID   string
	Stage   Stage
	Bytes   int64 // cumulative bytes seen so far
	Files   int   // cumulative regular files seen so far
	Message string
}

// Result is emitted once per job when it completes or fails.
type Result struct {
	JobID string
	Path  string
	Bytes int64
	Files int
	Err   error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
// Implementations must be safe for concurrent use.
type Reporter interface {
	Update(u Update)
	Result(r Result)
}

// Discard is a Reporter that drops every event.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Update(Update) {}
func (discard) Result(Result) {}
