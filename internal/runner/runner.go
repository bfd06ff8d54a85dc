// Package runner supervises the companion process tsbridge dev restarts
// after each successful re-extraction, typically the developer's agent
// host consuming the regenerated payloads.
package runner

import (
	"os"
	"os/exec"
	"sync"
	"time"
)

// DefaultStopGrace is how long Stop waits for a graceful exit before
// force-killing.
const DefaultStopGrace = 5 * time.Second

// Runner manages one child process across restarts.
type Runner struct {
	command string
	args    []string
	workDir string

	// DisableStdin detaches the child from the terminal's stdin, so the
	// parent can keep it for its own command input.
	DisableStdin bool

	// StopGrace overrides DefaultStopGrace when positive.
	StopGrace time.Duration

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// New creates a runner for the given command. workDir may be empty.
func New(command string, args []string, workDir string) *Runner {
	return &Runner{
		command: command,
		args:    args,
		workDir: workDir,
	}
}

func (r *Runner) newCmd() *exec.Cmd {
	cmd := exec.Command(r.command, r.args...)
	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if !r.DisableStdin {
		cmd.Stdin = os.Stdin
	}
	return cmd
}

func (r *Runner) stopGrace() time.Duration {
	if r.StopGrace > 0 {
		return r.StopGrace
	}
	return DefaultStopGrace
}

// Restart stops and restarts the child process.
func (r *Runner) Restart() error {
	if err := r.Stop(); err != nil {
		return err
	}
	return r.Start()
}

// Wait blocks until the child process exits.
func (r *Runner) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running returns true if the child process is running.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil || r.cmd.Process == nil {
		return false
	}
	return r.cmd.ProcessState == nil || !r.cmd.ProcessState.Exited()
}
