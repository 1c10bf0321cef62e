package regio

import (
	"errors"
	"testing"
)

func TestMem(t *testing.T) {
	m := NewMem(0x100)

	if err := m.Write(0x10, 42); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(0x10, 43); err != nil {
		t.Fatal(err)
	}
	v, err := m.Read(0x10)
	if err != nil {
		t.Fatal(err)
	}
	if v != 43 {
		t.Errorf("read %v, want 43", v)
	}
	if n := len(m.Writes()); n != 2 {
		t.Errorf("%v writes logged, want 2", n)
	}

	if err := m.Write(0x11, 1); !errors.Is(err, ErrUnaligned) {
		t.Errorf("unaligned write: %v", err)
	}
	if err := m.Write(0x100, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("out of range write: %v", err)
	}
	if _, err := m.Read(0xfc); err != nil {
		t.Errorf("last register: %v", err)
	}
}

func TestMemFailAt(t *testing.T) {
	m := NewMem(0)
	boom := errors.New("boom")

	_ = m.Write(0, 1)
	m.FailAt(2, boom)
	for i, want := range []error{nil, nil, boom, boom} {
		if err := m.Write(4, uint32(i)); err != want {
			t.Errorf("write %v: %v, want %v", i, err, want)
		}
	}
	if n := len(m.Writes()); n != 3 {
		t.Errorf("%v writes logged, want 3", n)
	}

	m.Reset()
	if err := m.Write(0, 1); err != nil {
		t.Errorf("write after reset: %v", err)
	}
}
