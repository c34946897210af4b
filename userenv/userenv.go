// Package userenv captures the complete login environment of another user.
//
// There is no OS API to read the environment a login would produce for an
// arbitrary user; shell initialization files make it only observable by
// actually starting a login shell as that user. The harvester therefore
// runs the platform switch-user helper ("su - <user> -c printenv") and
// parses its output.
package userenv

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"

	"github.com/A2-ai/polyjuice/privilege"
)

const defaultSuPath = "su"

type runner interface {
	run(name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

type execRunner struct{}

func (execRunner) run(name string, args ...string) ([]byte, []byte, int, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, nil, 0, err
	}

	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

// Harvester obtains login environments by impersonating a login shell.
type Harvester struct {
	priv privilege.Token
	su   string
	run  runner
}

// Option modifies the Harvester created by New.
type Option func(*Harvester)

// WithSuPath overrides the switch-user helper binary (default "su").
func WithSuPath(path string) Option {
	return func(h *Harvester) {
		if path != "" {
			h.su = path
		}
	}
}

// New creates a Harvester. The privilege token is required as switching
// users without a password only works for root.
func New(priv privilege.Token, opts ...Option) *Harvester {
	h := &Harvester{
		priv: priv,
		su:   defaultSuPath,
		run:  execRunner{},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Harvest returns the login environment of username. The privilege token
// is checked before any helper process is spawned. The helper's standard
// output is captured to completion before parsing, its standard error is
// preserved verbatim in the error when it exits non-zero.
func (h *Harvester) Harvest(username string) (map[string]string, error) {
	if !h.priv.Elevated() {
		return nil, privilege.ErrInsufficient
	}

	stdout, stderr, exitCode, err := h.run.run(h.su, "-", username, "-c", "printenv")
	if err != nil {
		return nil, &HelperUnavailableError{Helper: h.su, Err: err}
	}

	if exitCode != 0 {
		return nil, &HelperFailedError{Helper: h.su, ExitCode: exitCode, Stderr: stderr}
	}

	return Parse(stdout), nil
}

// Parse converts newline-separated KEY=VALUE records into a map. Each line
// is split at the first "=", lines without one are dropped, a repeated key
// keeps the value of its last occurrence and bytes that are not valid
// UTF-8 are replaced with the replacement rune. Values containing raw
// newlines are not representable in this format and come out truncated at
// the newline; that is a limitation of the capture protocol.
func Parse(out []byte) map[string]string {
	env := map[string]string{}

	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		env[strings.ToValidUTF8(key, "�")] = strings.ToValidUTF8(value, "�")
	}

	return env
}

// Merge combines a harvested login environment with a fallback set (for
// example variables a session bootstrap exported). Harvested values always
// win, the fallback only fills keys the login shell did not set.
func Merge(harvested, fallback map[string]string) map[string]string {
	merged := make(map[string]string, len(harvested)+len(fallback))

	for k, v := range fallback {
		merged[k] = v
	}
	for k, v := range harvested {
		merged[k] = v
	}

	return merged
}
