package os

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the device.
var ErrLocked = errors.New("device is locked by another process")

type Flock struct {
	f *flock.Flock
}

// LockPath is the default lock file of a device.
func LockPath(device string) string {
	name := strings.ReplaceAll(strings.Trim(device, string(os.PathSeparator)), string(os.PathSeparator), "_")
	return filepath.Join(os.TempDir(), "defe_"+name+".lock")
}

func NewFileLock(path string) (*Flock, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), "defe.lock")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return nil, err
	}
	return &Flock{f: flock.New(path)}, nil
}

// TryLock takes the lock without waiting.
func (f *Flock) TryLock() error {
	ok, err := f.f.TryLock()
	if err != nil {
		return fmt.Errorf("lock %v: %w", f.f.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%v: %w", f.f.Path(), ErrLocked)
	}
	return nil
}

func (f *Flock) Lock() error   { return f.f.Lock() }
func (f *Flock) Unlock() error { return f.f.Unlock() }
func (f *Flock) Path() string  { return f.f.Path() }
