//go:build linux

package regio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempDevice(t *testing.T, size int64) string {
	path := filepath.Join(t.TempDir(), "mem")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	return path
}

func TestMMIO(t *testing.T) {
	page := uint32(os.Getpagesize())
	path := tempDevice(t, int64(4*page))

	// an unaligned base lands in the middle of the first page
	m, err := OpenMMIO(path, page+0x40, 0x100)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Write(0x8, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	v, err := m.Read(0x8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeef {
		t.Errorf("read %#x, want 0xdeadbeef", v)
	}
	if err := m.Write(0x100, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("out of range write: %v", err)
	}
	if err := m.Write(0x2, 1); !errors.Is(err, ErrUnaligned) {
		t.Errorf("unaligned write: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(0x8, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("write after close: %v", err)
	}

	// the value went to base + offset in the file
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	at := page + 0x40 + 0x8
	if got := uint32(data[at]) | uint32(data[at+1])<<8 | uint32(data[at+2])<<16 | uint32(data[at+3])<<24; got != 0xdeadbeef {
		t.Errorf("file holds %#x at %#x", got, at)
	}
}

func TestOpenMMIOMissing(t *testing.T) {
	if _, err := OpenMMIO(filepath.Join(t.TempDir(), "nope"), 0, 0x100); err == nil {
		t.Errorf("no error for a missing device")
	}
}
