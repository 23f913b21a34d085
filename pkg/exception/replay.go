package exception

import "github.com/yanun0323/errors"

// Replay errors are configuration faults; they are returned before any record is emitted.
var (
	ErrReplayNoFiles     = errors.New("replay: no record files configured")
	ErrReplayNoDelimiter = errors.New("replay: record delimiter is empty")
	ErrReplayEncoding    = errors.New("replay: unsupported text encoding")
	ErrReplayUnreadable  = errors.New("replay: record file is unreadable")
	ErrReplayRunning     = errors.New("replay: already running")
)

// Recorder errors
var (
	ErrRecorderQueueFull      = errors.New("recorder: queue full")
	ErrRecorderClosed         = errors.New("recorder: writer closed")
	ErrRecorderNotStarted     = errors.New("recorder: writer not started")
	ErrRecorderAlreadyStarted = errors.New("recorder: writer already started")
)

var (
	ErrRecorderConfig         = errors.New("recorder: invalid config")
	ErrRecorderDelimiterInRec = errors.New("recorder: record contains the delimiter")
)
