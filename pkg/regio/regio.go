// Package regio provides register sinks for the front end: an in-memory
// register file, memory-mapped I/O and register access over a websocket.
package regio

import "errors"

// Sink is a 32-bit register file.
type Sink interface {
	Write(offset, value uint32) error
	Read(offset uint32) (uint32, error)
}

var (
	ErrUnaligned  = errors.New("unaligned register offset")
	ErrOutOfRange = errors.New("register offset out of range")
	ErrClosed     = errors.New("register sink closed")
)

// Write is one register write.
type Write struct {
	Offset uint32 `json:"off"`
	Value  uint32 `json:"val"`
}

func check(offset, size uint32) error {
	if offset&3 != 0 {
		return ErrUnaligned
	}
	if size > 0 && offset > size-4 {
		return ErrOutOfRange
	}
	return nil
}
