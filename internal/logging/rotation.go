package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig bounds the size of pulse.log.
type RotationConfig struct {
	// MaxSizeMB is the size at which the log is rotated. 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files (pulse.log.1 .. pulse.log.N) are
	// kept. 0 discards the old log on rotation.
	MaxBackups int
}

// DefaultRotationConfig returns the rotation used when nothing is configured.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

var errLogClosed = errors.New("log file is closed")

// rotatingFile is an append-only log file that is renamed aside once it
// would grow past its limit. It is safe for concurrent use.
type rotatingFile struct {
	mu      sync.Mutex
	path    string
	limit   int64
	backups int

	f    *os.File
	size int64
}

func openRotating(path string, rc RotationConfig) (*rotatingFile, error) {
	r := &rotatingFile{
		path:    path,
		limit:   int64(rc.MaxSizeMB) * 1024 * 1024,
		backups: rc.MaxBackups,
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// open opens path for appending. The caller must hold mu or own r exclusively.
func (r *rotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	r.f = f
	r.size = info.Size()
	return nil
}

// Write appends p, rotating first when p would push the file past its
// limit. A single record larger than the limit is still written whole.
func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return 0, errLogClosed
	}
	if r.limit > 0 && r.size > 0 && r.size+int64(len(p)) > r.limit {
		// A failed rename keeps appending to the current file; only a
		// failed reopen loses the record.
		_ = r.rotate()
		if r.f == nil {
			return 0, errLogClosed
		}
	}

	n, err := r.f.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) rotate() error {
	closeErr := r.f.Close()
	r.f = nil
	shiftErr := r.shift()
	if err := r.open(); err != nil {
		return err
	}
	return errors.Join(closeErr, shiftErr)
}

// shift moves pulse.log to pulse.log.1, pulse.log.1 to pulse.log.2 and so
// on, dropping the oldest backup.
func (r *rotatingFile) shift() error {
	if r.backups <= 0 {
		return os.Remove(r.path)
	}
	_ = os.Remove(backupPath(r.path, r.backups))
	for i := r.backups - 1; i >= 1; i-- {
		// Missing intermediate backups are expected after a fresh start.
		_ = os.Rename(backupPath(r.path, i), backupPath(r.path, i+1))
	}
	return os.Rename(r.path, backupPath(r.path, 1))
}

func backupPath(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

func (r *rotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	return r.f.Sync()
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
