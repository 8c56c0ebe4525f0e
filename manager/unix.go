//go:build !windows

package manager

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/dreamsxin/iorate/types"
)

// Poll reports whether the child has terminated without blocking
func (c *Child) Poll() (bool, error) {
	if c.state == types.StateExited {
		return true, nil
	}

	wpid, ws, err := c.wait(unix.WNOHANG)
	if err != nil {
		return false, errors.Wrap(err, "poll child")
	}
	if wpid == 0 {
		return false, nil
	}
	if c.reap(ws) {
		return true, nil
	}
	return false, errors.Wrapf(ErrUnexpectedWaitStatus, "%#x", uint32(ws))
}

// Pause stops the child and blocks until the stop is confirmed. It reports
// true if the child terminated instead.
func (c *Child) Pause() (bool, error) {
	switch c.state {
	case types.StateExited:
		return true, nil
	case types.StateStopped:
		return false, nil
	}

	if err := unix.Kill(c.PID, unix.SIGSTOP); err != nil {
		return false, errors.Wrap(err, "stop child")
	}

	_, ws, err := c.wait(unix.WUNTRACED)
	if err != nil {
		return false, errors.Wrap(err, "wait for child to stop")
	}
	if ws.Stopped() {
		c.state = types.StateStopped
		return false, nil
	}
	if c.reap(ws) {
		return true, nil
	}
	return false, errors.Wrapf(ErrUnexpectedWaitStatus, "%#x", uint32(ws))
}

// Resume continues a stopped child
func (c *Child) Resume() error {
	if c.state != types.StateStopped {
		return nil
	}

	if err := unix.Kill(c.PID, unix.SIGCONT); err != nil {
		// 进程已经不存在
		if err == unix.ESRCH {
			c.markExited(-1)
			return nil
		}
		return errors.Wrap(err, "continue child")
	}
	c.state = types.StateRunning
	return nil
}

// Close kills and reaps the child if it is still alive, then releases its handle
func (c *Child) Close() error {
	var err error
	if c.state != types.StateExited {
		// SIGKILL also terminates a stopped process
		if kerr := unix.Kill(c.PID, unix.SIGKILL); kerr != nil && kerr != unix.ESRCH {
			err = multierr.Append(err, errors.Wrap(kerr, "kill child"))
		} else {
			_, ws, werr := c.wait(0)
			switch {
			case werr == unix.ECHILD:
				c.markExited(-1)
			case werr != nil:
				err = multierr.Append(err, errors.Wrap(werr, "reap child"))
			default:
				c.reap(ws)
			}
		}
	}
	if !c.released {
		c.released = true
		err = multierr.Append(err, c.cmd.Process.Release())
	}
	return err
}

// wait calls wait4 for the child, retrying on EINTR
func (c *Child) wait(options int) (int, unix.WaitStatus, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(c.PID, &ws, options, nil)
		if err == unix.EINTR {
			continue
		}
		return wpid, ws, err
	}
}

// reap records a terminal wait status, returning false for any other status
func (c *Child) reap(ws unix.WaitStatus) bool {
	switch {
	case ws.Exited():
		c.markExited(ws.ExitStatus())
		return true
	case ws.Signaled():
		c.markExited(-1)
		return true
	}
	return false
}
