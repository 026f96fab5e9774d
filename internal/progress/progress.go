package progress

import "time"

// Stage identifies where a queued file is in its conversion.
type Stage string

const (
	StageProbing    Stage = "probing"
	StageQueued     Stage = "queued"
	StageConverting Stage = "converting"
	StageCompleted  Stage = "completed"
	StageSkipped    Stage = "skipped"
	StageStopped    Stage = "stopped"
	StageError      Stage = "error"
)

// LogStream indicates which stream produced a log line.
type LogStream int

const (
	StreamStdout LogStream = iota
	StreamStderr
)

// Update conveys progress or stage changes for a file.
// Percent is 0..100 when known; set to a negative value (e.g., -1) to mean unknown.
type Update struct {
	FileID  string
	Stage   Stage
	Percent float64 // 0..100, or <0 if unknown
	Overall float64 // whole queue, 0..100, or <0 if unknown

	Elapsed time.Duration // converter-reported time position inside the file
	ETA     *time.Duration
	Speed   *string // e.g. "1.2x"
	Message string  // short human-friendly status line
}

// Log is a structured log line associated with a file.
type Log struct {
	FileID string
	Stream LogStream
	Line   string
}

// Result is emitted once per file when it completes, fails or is skipped.
type Result struct {
	FileID     string
	Stage      Stage
	OutputPath string
	Bytes      int64
	Err        error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}
