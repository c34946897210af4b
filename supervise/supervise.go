// Package supervise runs a workload process as another user with a fully
// replaced environment and owns its output streams until it exits.
package supervise

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"sync"

	"github.com/A2-ai/polyjuice/identity"
)

// Stream tags which output pipe a line was read from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// LineFunc receives every completed output line of the workload together
// with the stream it came from. It is called from the two reader
// goroutines and must be safe for concurrent use.
type LineFunc func(stream Stream, line string)

// Outcome is the terminal state of a workload.
type Outcome struct {
	// Code is the exit code, or -1 when the process was terminated by a
	// signal.
	Code     int
	Signaled bool
	Signal   string
}

const (
	readerBufferSize  = 64 * 1024
	readerMaxLineSize = 1024 * 1024
)

// Supervisor spawns workloads and drains their output.
type Supervisor struct {
	onLine LineFunc
}

// New creates a Supervisor emitting output lines through onLine. A nil
// onLine discards the output.
func New(onLine LineFunc) *Supervisor {
	if onLine == nil {
		onLine = func(Stream, string) {}
	}
	return &Supervisor{onLine: onLine}
}

// Run executes program with args as id. The child's environment is fully
// replaced by env, its identity and environment are part of the process
// creation configuration and never change after the spawn. The child gets
// no stdin. Run returns after the process has exited and both output
// streams were read to end-of-stream, so no output is lost.
func (s *Supervisor) Run(ctx context.Context, program string, args []string, id identity.Identity, env map[string]string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Env = flattenEnv(env)
	if id.HomeDir != "" {
		cmd.Dir = id.HomeDir
	}

	if err := setCredential(cmd, id); err != nil {
		return Outcome{}, &SpawnError{Program: program, Err: err}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Outcome{}, &SpawnError{Program: program, Err: err}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Outcome{}, &SpawnError{Program: program, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return Outcome{}, &SpawnError{Program: program, Err: err}
	}

	// One reader goroutine per pipe, each owning its pipe exclusively.
	// Draining the pipes in sequence would deadlock as soon as the child
	// fills the OS pipe buffer of the stream not currently being read.
	var (
		wg       sync.WaitGroup
		readErrs = make(chan *StreamError, 2)
	)

	for _, r := range []struct {
		stream Stream
		pipe   io.Reader
	}{
		{Stdout, stdout},
		{Stderr, stderr},
	} {
		wg.Add(1)
		go func(stream Stream, pipe io.Reader) {
			defer wg.Done()

			scanner := bufio.NewScanner(pipe)
			scanner.Buffer(make([]byte, readerBufferSize), readerMaxLineSize)

			for scanner.Scan() {
				s.onLine(stream, scanner.Text())
			}

			if err := scanner.Err(); err != nil {
				// Keep draining the pipe so the child is not blocked
				// writing into a full buffer and can run to exit. The
				// remaining content is lost, the error is what gets
				// reported.
				io.Copy(io.Discard, pipe)
				readErrs <- &StreamError{Stream: stream, Err: err}
			}
		}(r.stream, r.pipe)
	}

	// Both readers must reach end-of-stream before Wait closes the pipes.
	wg.Wait()
	close(readErrs)

	waitErr := cmd.Wait()

	// A stream which could not be read to completion means the outcome
	// cannot be trusted.
	for streamErr := range readErrs {
		return Outcome{}, streamErr
	}

	if waitErr == nil {
		return Outcome{Code: 0}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return outcomeFromState(exitErr.ProcessState), nil
	}

	return Outcome{}, fmt.Errorf("waiting for %q: %w", program, waitErr)
}

// flattenEnv turns the environment map into the KEY=VALUE slice exec.Cmd
// expects. The result is never nil so an empty map really clears the
// child's environment instead of inheriting ours. Keys are sorted to keep
// the spawn configuration deterministic.
func flattenEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
