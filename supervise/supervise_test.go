package supervise

import (
	"bufio"
	"context"
	"os/user"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A2-ai/polyjuice/identity"
)

type lineCollector struct {
	mu    sync.Mutex
	lines map[Stream][]string
}

func newLineCollector() *lineCollector {
	return &lineCollector{lines: map[Stream][]string{}}
}

func (l *lineCollector) add(stream Stream, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines[stream] = append(l.lines[stream], line)
}

func (l *lineCollector) get(stream Stream) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines[stream]...)
}

func currentIdentity(t *testing.T) identity.Identity {
	t.Helper()

	u, err := user.Current()
	require.NoError(t, err)

	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	require.NoError(t, err)
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	require.NoError(t, err)

	return identity.Identity{
		Username: u.Username,
		UID:      uint32(uid),
		GID:      uint32(gid),
		HomeDir:  t.TempDir(),
	}
}

func requireUnixTools(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test requires unix shell tools")
	}
}

func TestRunCapturesStdout(t *testing.T) {
	requireUnixTools(t)

	col := newLineCollector()
	sup := New(col.add)

	outcome, err := sup.Run(context.Background(), "echo", []string{"hi"}, currentIdentity(t), map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.Code)
	assert.False(t, outcome.Signaled)
	assert.Equal(t, []string{"hi"}, col.get(Stdout))
	assert.Empty(t, col.get(Stderr))
}

func TestRunReplacesEnvironment(t *testing.T) {
	requireUnixTools(t)

	// LEAKCHECK is set in our own environment but must never reach the
	// child since its environment is replaced, not extended.
	t.Setenv("LEAKCHECK", "leaked")

	col := newLineCollector()
	sup := New(col.add)

	outcome, err := sup.Run(context.Background(),
		"sh", []string{"-c", `echo "$GREETING:$LEAKCHECK"`},
		currentIdentity(t),
		map[string]string{"GREETING": "hello"})
	require.NoError(t, err)

	assert.Equal(t, 0, outcome.Code)
	assert.Equal(t, []string{"hello:"}, col.get(Stdout))
}

func TestRunDoesNotDeadlockOnLargeOutput(t *testing.T) {
	requireUnixTools(t)

	// 20k numbered lines are well beyond the OS pipe buffer, so the test
	// hangs if the stream not being written to blocks the drain.
	for _, tc := range []struct {
		name   string
		script string
		full   Stream
		empty  Stream
	}{
		{"stderr only", "seq 1 20000 >&2", Stderr, Stdout},
		{"stdout only", "seq 1 20000", Stdout, Stderr},
	} {
		t.Run(tc.name, func(t *testing.T) {
			col := newLineCollector()
			sup := New(col.add)

			outcome, err := sup.Run(context.Background(),
				"sh", []string{"-c", tc.script}, currentIdentity(t), map[string]string{})
			require.NoError(t, err)
			assert.Equal(t, 0, outcome.Code)

			lines := col.get(tc.full)
			require.Len(t, lines, 20000)
			assert.Equal(t, "1", lines[0])
			assert.Equal(t, "20000", lines[19999])
			assert.Empty(t, col.get(tc.empty))
		})
	}
}

func TestRunSurfacesStreamReadErrors(t *testing.T) {
	requireUnixTools(t)

	col := newLineCollector()
	sup := New(col.add)
	id := currentIdentity(t)

	// A single line beyond the reader's line limit stops the scanner
	// mid-stream. The rest of the output must still be drained so the
	// child can exit instead of blocking on a full pipe.
	script := `head -c 2097152 /dev/zero | tr "\0" "x"; echo; seq 1 20000`

	done := make(chan error, 1)
	go func() {
		_, err := sup.Run(context.Background(),
			"sh", []string{"-c", script}, id, map[string]string{})
		done <- err
	}()

	select {
	case err := <-done:
		var streamErr *StreamError
		require.ErrorAs(t, err, &streamErr)
		assert.Equal(t, Stdout, streamErr.Stream)
		assert.ErrorIs(t, err, bufio.ErrTooLong)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after an over-long output line")
	}
}

func TestRunReportsExitCode(t *testing.T) {
	requireUnixTools(t)

	sup := New(nil)

	outcome, err := sup.Run(context.Background(),
		"sh", []string{"-c", "exit 3"}, currentIdentity(t), map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 3, outcome.Code)
	assert.False(t, outcome.Signaled)
}

func TestRunReportsSignalTermination(t *testing.T) {
	requireUnixTools(t)

	sup := New(nil)

	outcome, err := sup.Run(context.Background(),
		"sh", []string{"-c", "kill -KILL $$"}, currentIdentity(t), map[string]string{})
	require.NoError(t, err)

	assert.True(t, outcome.Signaled)
	assert.Equal(t, -1, outcome.Code)
	assert.Equal(t, "killed", outcome.Signal)
}

func TestRunSpawnFailure(t *testing.T) {
	requireUnixTools(t)

	sup := New(nil)

	_, err := sup.Run(context.Background(),
		"/definitely/not/here", nil, currentIdentity(t), map[string]string{})

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "/definitely/not/here", spawnErr.Program)
}

func TestFlattenEnv(t *testing.T) {
	assert.Equal(t,
		[]string{"A=1", "B=2", "C=3"},
		flattenEnv(map[string]string{"C": "3", "A": "1", "B": "2"}))

	empty := flattenEnv(map[string]string{})
	assert.NotNil(t, empty, "an empty map must clear the environment, not inherit it")
	assert.Len(t, empty, 0)
}

func TestStreamString(t *testing.T) {
	assert.Equal(t, "stdout", Stdout.String())
	assert.Equal(t, "stderr", Stderr.String())
}
