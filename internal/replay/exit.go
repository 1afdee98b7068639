package replay

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// exitStatus extracts the exit code from an exec.Cmd.Wait() error. exited is
// false when the process never produced a status (it failed to start or
// could not be waited on).
//
// A process killed by a signal reports 128+signum (POSIX convention).
func exitStatus(err error) (code int, exited bool) {
	if err == nil {
		return 0, true
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}
	return stateCode(exitErr.ProcessState), true
}

// commandStatus is exitStatus for a finished command. When the shell exited
// but a leftover child kept its output pipes open past WaitDelay, the status
// recorded in ProcessState still counts.
func commandStatus(cmd *exec.Cmd, err error) (code int, exited bool) {
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		return stateCode(cmd.ProcessState), true
	}
	return exitStatus(err)
}

func stateCode(ps *os.ProcessState) int {
	if ps == nil {
		return 1
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return ws.ExitStatus()
	}
	if code := ps.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
