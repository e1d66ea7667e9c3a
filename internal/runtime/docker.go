package runtime

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"

	"github.com/nightwatch-sre/nightwatch/internal/apperr"
)

// DockerRuntime drives the docker CLI directly. It never shells out through
// sh -c; every invocation is a plain argv to exec.CommandContext, the same
// discipline the command validator enforces on remediation steps.
type DockerRuntime struct {
	binary string
}

// NewDockerRuntime returns a DockerRuntime that invokes binary (usually
// "docker") for every call.
func NewDockerRuntime(binary string) *DockerRuntime {
	if binary == "" {
		binary = "docker"
	}
	return &DockerRuntime{binary: binary}
}

type psLine struct {
	Names  string `json:"Names"`
	Image  string `json:"Image"`
	Status string `json:"Status"`
	State  string `json:"State"`
}

func (d *DockerRuntime) ListContainers(ctx context.Context) ([]Container, error) {
	const op = "runtime.ListContainers"
	cmd := exec.CommandContext(ctx, d.binary, "ps", "--all", "--format", "{{json .}}")
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.New(op, "docker ps failed", err)
	}
	return parsePSOutput(out)
}

func parsePSOutput(out []byte) ([]Container, error) {
	const op = "runtime.parsePSOutput"
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	containers := make([]Container, 0)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var parsed psLine
		if err := json.Unmarshal(line, &parsed); err != nil {
			return nil, apperr.New(op, "malformed docker ps line", err)
		}
		containers = append(containers, Container{
			Name:   parsed.Names,
			Image:  parsed.Image,
			Status: parsed.Status,
			State:  parsed.State,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.New(op, "scanning docker ps output", err)
	}
	return containers, nil
}

func (d *DockerRuntime) InspectContainer(ctx context.Context, name string) (Container, error) {
	const op = "runtime.InspectContainer"
	cmd := exec.CommandContext(ctx, d.binary, "inspect", name)
	out, err := cmd.Output()
	if err != nil {
		return Container{}, apperr.New(op, fmt.Sprintf("docker inspect %s failed", name), err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(out, &entries); err != nil {
		return Container{}, apperr.New(op, "malformed docker inspect output", err)
	}
	if len(entries) == 0 {
		return Container{}, apperr.New(op, fmt.Sprintf("no such container: %s", name), nil)
	}

	var raw struct {
		Name   string `json:"Name"`
		Config struct {
			Image string `json:"Image"`
		} `json:"Config"`
		State struct {
			Status string `json:"Status"`
		} `json:"State"`
	}
	if err := json.Unmarshal(entries[0], &raw); err != nil {
		return Container{}, apperr.New(op, "malformed docker inspect entry", err)
	}

	return Container{
		Name:   trimLeadingSlash(raw.Name),
		Image:  raw.Config.Image,
		Status: raw.State.Status,
		State:  raw.State.Status,
	}, nil
}

func (d *DockerRuntime) FollowLogs(ctx context.Context, name string) (<-chan string, <-chan string, error) {
	const op = "runtime.FollowLogs"
	cmd := exec.CommandContext(ctx, d.binary, "logs", "--follow", "--tail", "0", name)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, apperr.New(op, "opening stdout pipe", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, apperr.New(op, "opening stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, apperr.New(op, fmt.Sprintf("starting docker logs for %s", name), err)
	}

	stdout := make(chan string, 64)
	stderr := make(chan string, 64)

	pump := func(src io.Reader, dst chan<- string) {
		defer close(dst)
		scanner := bufio.NewScanner(src)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			dst <- scanner.Text()
		}
	}

	go pump(stdoutPipe, stdout)
	go pump(stderrPipe, stderr)
	go func() { _ = cmd.Wait() }()

	return stdout, stderr, nil
}

func trimLeadingSlash(name string) string {
	if len(name) > 0 && name[0] == '/' {
		return name[1:]
	}
	return name
}
