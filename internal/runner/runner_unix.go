//go:build !windows

package runner

import (
	"fmt"
	"syscall"
	"time"
)

// Start starts the child process in its own process group, so Stop can
// take down anything it forked.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cmd = r.newCmd()
	r.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	r.done = make(chan struct{})

	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("starting process: %w", err)
	}

	go func() {
		r.cmd.Wait()
		close(r.done)
	}()

	return nil
}

// Stop terminates the child process group, escalating from SIGTERM to
// SIGKILL after the grace period.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}

	pgid, err := syscall.Getpgid(r.cmd.Process.Pid)
	if err == nil {
		syscall.Kill(-pgid, syscall.SIGTERM)
	} else {
		r.cmd.Process.Signal(syscall.SIGTERM)
	}

	select {
	case <-r.done:
		return nil
	case <-time.After(r.stopGrace()):
		if err == nil {
			syscall.Kill(-pgid, syscall.SIGKILL)
		} else {
			r.cmd.Process.Kill()
		}
		<-r.done
		return nil
	}
}
