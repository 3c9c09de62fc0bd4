package game

import (
	"errors"
	"io"
	"os/exec"
)

// Process is a started game process. Output merges stdout and stderr and
// reaches EOF once the process is gone.
type Process interface {
	Output() io.Reader
	Wait() (exitCode int, err error)
	Kill() error
	Pid() int
}

// Starter spawns processes.
type Starter interface {
	Start(cmd Command) (Process, error)
}

// ExecStarter starts real operating system processes.
type ExecStarter struct{}

func (ExecStarter) Start(cmd Command) (Process, error) {
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir

	out, err := c.StdoutPipe()
	if err != nil {
		return nil, err
	}
	c.Stderr = c.Stdout

	if err := c.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: c, out: out}, nil
}

type execProcess struct {
	cmd *exec.Cmd
	out io.Reader
}

func (p *execProcess) Output() io.Reader {
	return p.out
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return -1, err
	}
	return p.cmd.ProcessState.ExitCode(), nil
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}
