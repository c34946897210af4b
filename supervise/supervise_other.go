//go:build !unix

package supervise

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/A2-ai/polyjuice/identity"
)

func setCredential(cmd *exec.Cmd, id identity.Identity) error {
	if int(id.UID) == os.Geteuid() {
		return nil
	}
	return fmt.Errorf("running as another user is unsupported on %s", runtime.GOOS)
}

func outcomeFromState(state *os.ProcessState) Outcome {
	return Outcome{Code: state.ExitCode()}
}
