package observer

import (
	"context"
	"time"

	"github.com/nightwatch-sre/nightwatch/internal/runtime"
)

// Coordinator watches one container's stdout and stderr streams, filters
// each line, and feeds anything worth surfacing into a Batcher.
type Coordinator struct {
	container string
	rt        runtime.ContainerRuntime
	batcher   *Batcher
}

// NewCoordinator returns a Coordinator for container, backed by rt, flushing
// filtered events through batcher.
func NewCoordinator(container string, rt runtime.ContainerRuntime, batcher *Batcher) *Coordinator {
	return &Coordinator{container: container, rt: rt, batcher: batcher}
}

// Run follows the container's logs until ctx is cancelled or the stream
// ends. It demultiplexes stdout and stderr into a single filtered feed.
func (c *Coordinator) Run(ctx context.Context) error {
	stdout, stderr, err := c.rt.FollowLogs(ctx, c.container)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-stdout:
			if !ok {
				stdout = nil
				if stderr == nil {
					return nil
				}
				continue
			}
			c.handle(StreamStdout, line)
		case line, ok := <-stderr:
			if !ok {
				stderr = nil
				if stdout == nil {
					return nil
				}
				continue
			}
			c.handle(StreamStderr, line)
		}
	}
}

func (c *Coordinator) handle(stream Stream, line string) {
	event := LogEvent{
		Container: c.container,
		Stream:    stream,
		Line:      line,
		Timestamp: time.Now(),
	}
	if Filter(event) {
		c.batcher.Add(event)
	}
}
