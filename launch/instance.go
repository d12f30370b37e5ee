package launch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/process"
)

var ErrAlreadyRunning = errors.New("another instance owns the data directory")

// LockInfo is the content of the lock file.
type LockInfo struct {
	PID  int32  `json:"pid"`
	Exe  string `json:"exe"`
	Addr string `json:"addr,omitempty"`
}

// InstanceLock keeps a second tray app away from the same data directory.
type InstanceLock struct {
	path string
	held bool
}

func NewInstanceLock(path string) *InstanceLock {
	return &InstanceLock{path: path}
}

func (l *InstanceLock) Path() string { return l.path }

// Acquire creates the lock file, taking over a lock left by a dead process.
func (l *InstanceLock) Acquire(addr string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("Acquire: %w", err)
	}
	data, err := json.Marshal(LockInfo{PID: int32(os.Getpid()), Exe: executableName(), Addr: addr})
	if err != nil {
		return fmt.Errorf("Acquire: %w", err)
	}
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.Write(data)
			cerr := f.Close()
			if err := errors.Join(werr, cerr); err != nil {
				_ = os.Remove(l.path)
				return fmt.Errorf("Acquire: %w", err)
			}
			l.held = true
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("Acquire: %w", err)
		}
		if info, alive := LiveInstance(l.path); alive {
			return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, info.PID)
		}
		// verrou orphelin
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("Acquire: %w", err)
		}
	}
	return fmt.Errorf("%w: lock file keeps coming back", ErrAlreadyRunning)
}

func (l *InstanceLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}

// LiveInstance reads the lock at path and reports whether its owner is
// still running. An unreadable lock counts as stale.
func LiveInstance(path string) (LockInfo, bool) {
	var info LockInfo
	data, err := os.ReadFile(path)
	if err != nil {
		return info, false
	}
	if err := json.Unmarshal(data, &info); err != nil || info.PID <= 0 {
		return info, false
	}
	return info, processAlive(info.PID, info.Exe)
}

// processAlive checks the pid exists and still runs the same program, since
// pids get reused after a crash.
func processAlive(pid int32, exe string) bool {
	p, err := process.NewProcess(pid)
	if err != nil {
		return false
	}
	if exe == "" {
		return true
	}
	name, err := p.Name()
	if err != nil {
		return false
	}
	if strings.EqualFold(name, exe) {
		return true
	}
	// /proc/<pid>/status truncates names to 15 bytes
	return len(name) >= 15 && strings.HasPrefix(strings.ToLower(exe), strings.ToLower(name))
}

func executableName() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Base(exe)
}
