package game

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

// PidFileName is the pid file below the launcher directory.
const PidFileName = "game.pid"

// WritePidFile records pid in path.
func WritePidFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// ReadPidFile returns the pid stored in path.
func ReadPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pid file %s: %w", path, err)
	}
	return pid, nil
}

// CheckPidFile reports whether the process recorded in path is alive. A
// missing pid file is not an error.
func CheckPidFile(path string) (int, bool, error) {
	pid, err := ReadPidFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	proc, err := ps.FindProcess(pid)
	if err != nil {
		return pid, false, err
	}
	return pid, proc != nil, nil
}

// RemovePidFile deletes path if it still belongs to pid.
func RemovePidFile(path string, pid int) error {
	stored, err := ReadPidFile(path)
	if err != nil {
		return err
	}
	if stored != pid {
		return fmt.Errorf("pid file %s belongs to pid %d", path, stored)
	}
	return os.Remove(path)
}
