package events

import "time"

// Event is implemented by every event published on the bus, so a single
// Subscribe[Event] observes the whole stream.
type Event interface {
	EventName() string
}

// FileTouched is emitted by the file listener for every relevant change.
// Path is slash separated and relative to the project root.
type FileTouched struct {
	Path string
	Op   string
	At   time.Time
}

// FilesChanged is emitted by the watcher once a debounce window closes.
type FilesChanged struct {
	Paths       []string
	Tasks       []string
	Cause       string // "quiet" or "max_delay"
	TriggeredAt time.Time
}

// BuildStarted is emitted before the first task of a run executes.
type BuildStarted struct {
	RunID     string
	Mode      string
	Tasks     []string
	StartedAt time.Time
}

// BuildCompleted is emitted after a run finished, whatever its outcome.
type BuildCompleted struct {
	RunID    string
	Mode     string
	Outcome  string
	Err      error
	Duration time.Duration
}

func (FileTouched) EventName() string    { return "file_touched" }
func (FilesChanged) EventName() string   { return "files_changed" }
func (BuildStarted) EventName() string   { return "build_started" }
func (BuildCompleted) EventName() string { return "build_completed" }
