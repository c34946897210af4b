//go:build unix

package supervise

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/A2-ai/polyjuice/identity"
)

// setCredential switches the child to the target uid/gid. When the target
// is the user the supervisor already runs as there is nothing to switch,
// which also keeps unprivileged invocations working.
func setCredential(cmd *exec.Cmd, id identity.Identity) error {
	if int(id.UID) == os.Geteuid() {
		return nil
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{
			Uid: id.UID,
			Gid: id.GID,
		},
	}
	return nil
}

func outcomeFromState(state *os.ProcessState) Outcome {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Outcome{Code: -1, Signaled: true, Signal: ws.Signal().String()}
	}
	return Outcome{Code: state.ExitCode()}
}
