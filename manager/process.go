package manager

import (
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"

	"github.com/dreamsxin/iorate/types"
)

// ErrUnexpectedWaitStatus is returned when the OS reports a status other than
// stopped or terminated while waiting for a pause to take effect.
var ErrUnexpectedWaitStatus = errors.New("unexpected wait status")

// Child is a spawned command exclusively owned by one sampling loop
type Child struct {
	cmd       *exec.Cmd
	Name      string
	Args      []string
	PID       int
	StartTime time.Time
	EndTime   time.Time

	state      types.ProcessState
	exitStatus int
	released   bool
}

// StartChild spawns name with args. The child inherits stdin and stderr; its
// stdout goes to stdout, or to ours when stdout is nil.
func StartChild(name string, args []string, stdout *os.File) (*Child, error) {
	cmd := createCommand(name, args)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	if stdout != nil {
		cmd.Stdout = stdout
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", name)
	}

	return &Child{
		cmd:       cmd,
		Name:      name,
		Args:      args,
		PID:       cmd.Process.Pid,
		StartTime: time.Now(),
		state:     types.StateRunning,
	}, nil
}

// createCommand creates the command without a new process group so the child
// keeps receiving terminal signals
func createCommand(name string, args []string) *exec.Cmd {
	return exec.Command(name, args...)
}

// Pid returns the child's process id
func (c *Child) Pid() int {
	return c.PID
}

// State returns the current state of the child
func (c *Child) State() types.ProcessState {
	return c.state
}

// ExitStatus returns the exit code, or -1 if the child was killed by a signal
// or has not exited yet
func (c *Child) ExitStatus() int {
	if c.state != types.StateExited {
		return -1
	}
	return c.exitStatus
}

// Uptime returns the duration the child has been running
func (c *Child) Uptime() time.Duration {
	if c.state != types.StateExited {
		return time.Since(c.StartTime)
	}
	return c.EndTime.Sub(c.StartTime)
}

func (c *Child) markExited(exitStatus int) {
	c.state = types.StateExited
	c.exitStatus = exitStatus
	c.EndTime = time.Now()
}
