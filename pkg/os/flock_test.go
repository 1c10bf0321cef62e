package os

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev", "defe.lock")

	a, err := NewFileLock(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFileLock(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.TryLock(); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if err := b.TryLock(); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock: %v, want ErrLocked", err)
	}
	if err := a.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := b.TryLock(); err != nil {
		t.Fatalf("lock after unlock: %v", err)
	}
	_ = b.Unlock()
}

func TestLockPath(t *testing.T) {
	p := LockPath("/dev/mem")
	if !strings.HasSuffix(p, "defe_dev_mem.lock") {
		t.Errorf("lock path %v", p)
	}
}
