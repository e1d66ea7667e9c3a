// Package runtime talks to the container runtime. The only implementation
// shipped here drives the docker CLI as a subprocess; there is no SDK
// client because none of the commands it issues need more than the CLI's
// stdout and stderr.
package runtime

import "context"

// Container is the subset of runtime state nightwatch's capabilities need.
type Container struct {
	Name   string
	Image  string
	Status string
	State  string
}

// ContainerRuntime is the interface capabilities and the log observer use to
// learn about and stream from the environment they are watching.
type ContainerRuntime interface {
	ListContainers(ctx context.Context) ([]Container, error)
	InspectContainer(ctx context.Context, name string) (Container, error)
	FollowLogs(ctx context.Context, name string) (stdout <-chan string, stderr <-chan string, err error)
}
