package supervise

import "fmt"

// SpawnError means the workload process could not be configured or
// started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("unable to start %q: %s", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// StreamError means one of the output streams could not be read to
// end-of-stream.
type StreamError struct {
	Stream Stream
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("reading %s: %s", e.Stream, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
