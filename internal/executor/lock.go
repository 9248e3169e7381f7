// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Harlan22/kilu/internal/logging"
)

// errLockBusy is returned by tryLock when another process holds the lock.
var errLockBusy = errors.New("lock is held by another process")

// fileLock is an exclusive advisory lock on a file.
type fileLock struct {
	path string
	f    *os.File
}

// acquireLock takes the lock at path, polling every poll until it is free.
// A positive timeout bounds the wait; ErrLockTimeout is returned once it
// has elapsed.
func acquireLock(ctx context.Context, path string, timeout, poll time.Duration) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	start := time.Now()
	for {
		err := tryLock(f)
		if err == nil {
			break
		}
		if !errors.Is(err, errLockBusy) {
			f.Close()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if timeout > 0 && time.Since(start) >= timeout {
			f.Close()
			return nil, ErrLockTimeout
		}
		logging.Debugf("waiting for lock %s", path)
		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(poll):
		}
	}

	// The pid is informational only.
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	logging.Debugf("lock %s acquired", path)
	return &fileLock{path: path, f: f}, nil
}

// Release drops the lock and closes the file. The file itself is kept so
// that concurrent waiters keep locking the same inode.
func (l *fileLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = l.f.Truncate(0)
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	logging.Debugf("lock %s released", l.path)
	return err
}
