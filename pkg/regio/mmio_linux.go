//go:build linux

package regio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MMIO is a register block mapped from a memory device, usually /dev/mem.
type MMIO struct {
	mem   []byte
	delta uint32
	size  uint32
}

// OpenMMIO maps size bytes of path starting at the physical address base.
// base doesn't have to be page aligned.
func OpenMMIO(path string, base, size uint32) (*MMIO, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	// the mapping outlives the descriptor
	defer func() { _ = f.Close() }()

	page := uint32(os.Getpagesize())
	start := base &^ (page - 1)
	delta := base - start
	mem, err := unix.Mmap(int(f.Fd()), int64(start), int(delta+size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %v@%#x: %w", path, base, err)
	}
	return &MMIO{mem: mem, delta: delta, size: size}, nil
}

func (m *MMIO) reg(offset uint32) (*uint32, error) {
	if m.mem == nil {
		return nil, ErrClosed
	}
	if err := check(offset, m.size); err != nil {
		return nil, err
	}
	return (*uint32)(unsafe.Pointer(&m.mem[m.delta+offset])), nil
}

func (m *MMIO) Write(offset, value uint32) error {
	r, err := m.reg(offset)
	if err != nil {
		return fmt.Errorf("write %#x: %w", offset, err)
	}
	atomic.StoreUint32(r, value)
	return nil
}

func (m *MMIO) Read(offset uint32) (uint32, error) {
	r, err := m.reg(offset)
	if err != nil {
		return 0, fmt.Errorf("read %#x: %w", offset, err)
	}
	return atomic.LoadUint32(r), nil
}

func (m *MMIO) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	return err
}
