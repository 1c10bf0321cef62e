package regio

import (
	"fmt"
	"sync"
)

// Mem is an in-memory register file. It keeps every write in order, which
// makes it the sink for dry runs and tests.
type Mem struct {
	mu     sync.Mutex
	size   uint32
	regs   map[uint32]uint32
	log    []Write
	failAt int
	err    error
}

// NewMem returns a register file of the given size in bytes. Zero means
// any aligned offset is accepted.
func NewMem(size uint32) *Mem {
	return &Mem{size: size, regs: make(map[uint32]uint32), failAt: -1}
}

// FailAt makes the n-th write from now (counting from 0) fail with err,
// and every write after it too.
func (m *Mem) FailAt(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt = len(m.log) + n
	m.err = err
}

func (m *Mem) Write(offset, value uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := check(offset, m.size); err != nil {
		return fmt.Errorf("write %#x: %w", offset, err)
	}
	if m.failAt >= 0 && len(m.log) >= m.failAt {
		return m.err
	}
	m.regs[offset] = value
	m.log = append(m.log, Write{Offset: offset, Value: value})
	return nil
}

func (m *Mem) Read(offset uint32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := check(offset, m.size); err != nil {
		return 0, fmt.Errorf("read %#x: %w", offset, err)
	}
	return m.regs[offset], nil
}

// Writes returns a copy of the successful writes in order.
func (m *Mem) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Write(nil), m.log...)
}

// Reset drops all values, the log and any pending failure.
func (m *Mem) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs = make(map[uint32]uint32)
	m.log = nil
	m.failAt = -1
	m.err = nil
}
