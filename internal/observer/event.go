// Package observer watches container log streams and turns raw lines into
// batches of events worth showing the reasoner.
package observer

import "time"

// Stream identifies which stream a LogEvent came from.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// LogEvent is one observed log line.
type LogEvent struct {
	Container string
	Stream    Stream
	Line      string
	Timestamp time.Time
}
