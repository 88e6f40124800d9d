package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrInstanceLocked is returned by InstanceLock.Acquire when another live
// process holds the lock
var ErrInstanceLocked = errors.New("another wildwise instance is running")

// InstanceLock keeps two interactive clients from writing the same data
// directory. Lock file: <data_dir>/wildwise.lock, content: PID of the holder.
type InstanceLock struct {
	path string
}

func NewInstanceLock(dataDir string) *InstanceLock {
	return &InstanceLock{path: filepath.Join(dataDir, "wildwise.lock")}
}

// Holder returns the PID of a live process holding the lock, or 0.
// Stale and unreadable lock files are removed.
func (l *InstanceLock) Holder() (int, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read lock file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || !processAlive(pid) {
		_ = os.Remove(l.path)
		return 0, nil
	}
	if pid == os.Getpid() {
		return 0, nil
	}
	return pid, nil
}

// Acquire takes the lock for this process
func (l *InstanceLock) Acquire() error {
	pid, err := l.Holder()
	if err != nil {
		return err
	}
	if pid != 0 {
		return fmt.Errorf("%w (PID %d)", ErrInstanceLocked, pid)
	}

	// Write PID to lock file (0600 - user-only access)
	return os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0600)
}

// Release removes the lock file
func (l *InstanceLock) Release() error {
	err := os.Remove(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// processAlive probes pid with signal 0. Platforms without signal support
// report every process as gone, which only weakens the lock.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
