package defe

import (
	"errors"
	"fmt"
)

var (
	// ErrIO reports a failed register write. Match it with errors.Is and
	// use errors.As with *IOError for the failing step.
	ErrIO = errors.New("register write failed")
	// ErrUnsupported reports a pixel format or channel role the front end
	// cannot be configured for.
	ErrUnsupported = errors.New("unsupported configuration")
	// ErrInvalidGeometry reports a zero dimension.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrNotConfigured reports an operation that needs a configured
	// pipeline.
	ErrNotConfigured = errors.New("pipeline not configured")
)

// Step names a single register write in the configuration sequence.
type Step uint8

const (
	StepCoefficient Step = iota
	StepInputFormat
	StepOutputFormat
	StepBypass
	StepTileOffset
	StepLineStride
	StepInputSize
	StepOutputSize
	StepHorzFactor
	StepVertFactor
	StepBufferAddr
	StepCommit
	StepFrameStart
)

var stepNames = [...]string{
	StepCoefficient:  "csc coefficient",
	StepInputFormat:  "input format",
	StepOutputFormat: "output format",
	StepBypass:       "csc bypass",
	StepTileOffset:   "tile offset",
	StepLineStride:   "line stride",
	StepInputSize:    "input size",
	StepOutputSize:   "output size",
	StepHorzFactor:   "horizontal factor",
	StepVertFactor:   "vertical factor",
	StepBufferAddr:   "buffer address",
	StepCommit:       "commit",
	StepFrameStart:   "frame start",
}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return fmt.Sprintf("step(%d)", uint8(s))
}

// IOError is a register write rejected by the sink.
type IOError struct {
	Step Step
	// Index is the coefficient index (row*4 + column) for
	// StepCoefficient, the DMA channel for per-channel steps
	// and -1 otherwise.
	Index  int
	Offset uint32
	Err    error
}

func (e *IOError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %v[%d] @ %#x: %v", ErrIO, e.Step, e.Index, e.Offset, e.Err)
	}
	return fmt.Sprintf("%v: %v @ %#x: %v", ErrIO, e.Step, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error        { return e.Err }
func (e *IOError) Is(target error) bool { return target == ErrIO }
