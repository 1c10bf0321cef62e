package defe

import (
	"errors"
	"fmt"

	"github.com/sunxi-defe/defe/pkg/defe/regs"
	"github.com/sunxi-defe/defe/pkg/logger"
)

// ErrFrameInFlight reports an operation that must wait for the current
// frame to complete.
var ErrFrameInFlight = errors.New("frame in flight")

// State is the position of a Pipeline in its configuration cycle.
type State uint8

const (
	Unconfigured State = iota
	Configuring
	Configured
	Running
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configuring:
		return "configuring"
	case Configured:
		return "configured"
	case Running:
		return "running"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

const (
	commitValue     = regs.RegReady | regs.CoefReady
	frameStartValue = regs.FrameStart | commitValue
)

// Pipeline sequences the front end configuration.
//
// A Pipeline is not safe for concurrent use. Configure must have returned
// before StartFrame is called, and a new Configure must wait until the
// frame started last has completed.
type Pipeline struct {
	bus
	state State
}

type Option func(*Pipeline)

// WithLogger sets the logger. Register writes are logged at debug level.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// New returns an unconfigured pipeline writing through w.
func New(w RegisterWriter, options ...Option) *Pipeline {
	p := &Pipeline{bus: bus{w: w, log: logger.Default()}}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Pipeline) State() State { return p.state }

// Configure programs the front end to convert frames of the given input
// format and size into ARGB8888 frames of the output size.
//
// The request is validated before the first write, so an unsupported
// format or a bad geometry leaves the registers untouched. A pipeline with
// a frame in flight is refused with ErrFrameInFlight. Any other failure
// leaves the pipeline Unconfigured, registers written up to the failure
// keep their new values.
func (p *Pipeline) Configure(format PixelFormat, in, out Geometry) (err error) {
	if p.state == Running {
		return ErrFrameInFlight
	}
	p.state = Configuring
	defer func() {
		if err != nil {
			p.state = Unconfigured
			p.log.Error().Err(err).Msgf("configure %v %v -> %v", format, in, out)
		}
	}()

	plan, err := Plan(format, in, out)
	if err != nil {
		return err
	}
	if err = p.setupCSC(BT601, format, FormatARGB8888); err != nil {
		return err
	}
	for _, c := range plan {
		if err = p.programInput(c); err != nil {
			return err
		}
	}
	for _, c := range plan {
		if err = p.programOutput(c); err != nil {
			return err
		}
	}
	if err = p.write(StepCommit, -1, regs.FrameCtrlReg, commitValue); err != nil {
		return err
	}

	p.state = Configured
	p.log.Info().Msgf("configured %v %v -> %v %v", format, in, FormatARGB8888, out)
	return nil
}

// SetBuffers points the luma and chroma input channels at frame buffers.
// The addresses are physical and already resolved by the caller.
func (p *Pipeline) SetBuffers(luma, chroma uint32) error {
	switch p.state {
	case Configured:
	case Running:
		return ErrFrameInFlight
	default:
		return fmt.Errorf("%w: %v", ErrNotConfigured, p.state)
	}
	for ch, addr := range []uint32{luma, chroma} {
		off, err := regs.Channel(regs.BufAddr, ch)
		if err != nil {
			return err
		}
		if err := p.write(StepBufferAddr, ch, off, addr); err != nil {
			return err
		}
	}
	return p.write(StepCommit, -1, regs.FrameCtrlReg, commitValue)
}

// StartFrame triggers the conversion of one frame with the current
// configuration. It may be called once per frame.
func (p *Pipeline) StartFrame() error {
	switch p.state {
	case Configured, Running:
	default:
		return fmt.Errorf("%w: %v", ErrNotConfigured, p.state)
	}
	if err := p.write(StepFrameStart, -1, regs.FrameCtrlReg, frameStartValue); err != nil {
		return err
	}
	p.state = Running
	return nil
}

// FrameDone records the completion of the frame in flight, reported by the
// interrupt side of the device layer.
func (p *Pipeline) FrameDone() {
	if p.state == Running {
		p.state = Configured
	}
}
