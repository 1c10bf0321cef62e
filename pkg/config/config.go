package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/sunxi-defe/defe/pkg/defe"
)

type Config struct {
	Debug      bool
	Device     Device
	Pipeline   Pipeline
	Agent      Agent
	Monitoring Monitoring
}

// Device is where the front end registers are.
type Device struct {
	// memory device to map
	Path string `default:"/dev/mem"`
	// physical address and length of the register block, 0x prefix allowed
	Base string `default:"0x01e80000"`
	Size string `default:"0x20000"`
	// lock file serialising access to the device, empty for the default
	Lock string
}

type Frame struct {
	Format string
	Width  uint32
	Height uint32
}

type Pipeline struct {
	Input   Frame
	Output  Frame
	Buffers struct {
		Luma   string
		Chroma string
	}
}

type Agent struct {
	// listen address of defeagent
	Address string `default:":6600"`
	// ws:// address of a defeagent, used instead of the local device
	Remote string
}

// NewConfig loads the configuration from the given directory, or from the
// default search dirs if it's empty.
func NewConfig(path string) (conf Config, err error) {
	if err = LoadConfig(&conf, path); err != nil {
		return
	}
	conf.fixValues()
	return
}

// fixValues fills in what a shared struct can't have as a tag default.
func (c *Config) fixValues() {
	if c.Pipeline.Input.Format == "" {
		c.Pipeline.Input.Format = defe.FormatYUV420TiledUVCombined.String()
	}
	if c.Pipeline.Output.Format == "" {
		c.Pipeline.Output.Format = defe.FormatARGB8888.String()
	}
}

// WithFlags defines flags with default values set to the current config
// params. Call Parse on fs afterwards.
func (c *Config) WithFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.Debug, "debug", "d", c.Debug, "Log every register write")
	fs.StringVar(&c.Device.Path, "device", c.Device.Path, "Memory device with the registers")
	fs.StringVar(&c.Device.Base, "device.base", c.Device.Base, "Physical address of the registers")
	fs.StringVar(&c.Device.Lock, "device.lock", c.Device.Lock, "Device lock file")
	fs.StringVar(&c.Pipeline.Input.Format, "in.format", c.Pipeline.Input.Format, "Input pixel format")
	fs.Uint32Var(&c.Pipeline.Input.Width, "in.width", c.Pipeline.Input.Width, "Input width")
	fs.Uint32Var(&c.Pipeline.Input.Height, "in.height", c.Pipeline.Input.Height, "Input height")
	fs.StringVar(&c.Pipeline.Output.Format, "out.format", c.Pipeline.Output.Format, "Output pixel format")
	fs.Uint32Var(&c.Pipeline.Output.Width, "out.width", c.Pipeline.Output.Width, "Output width")
	fs.Uint32Var(&c.Pipeline.Output.Height, "out.height", c.Pipeline.Output.Height, "Output height")
	fs.StringVar(&c.Pipeline.Buffers.Luma, "buf.luma", c.Pipeline.Buffers.Luma, "Physical address of the Y buffer")
	fs.StringVar(&c.Pipeline.Buffers.Chroma, "buf.chroma", c.Pipeline.Buffers.Chroma, "Physical address of the UV buffer")
	fs.StringVar(&c.Agent.Address, "agent.address", c.Agent.Address, "Agent listen address")
	fs.StringVar(&c.Agent.Remote, "remote", c.Agent.Remote, "Program the registers through a remote agent (ws://host:port/regs)")
	c.Monitoring.WithFlags(fs)
}

func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%v %q: %w", name, s, err)
	}
	return uint32(v), nil
}

// Region returns the physical address and size of the register block.
func (d Device) Region() (base, size uint32, err error) {
	if base, err = parseUint32("device base", d.Base); err != nil {
		return
	}
	size, err = parseUint32("device size", d.Size)
	return
}

// Frames returns the validated pipeline request.
func (p Pipeline) Frames() (format defe.PixelFormat, in, out defe.Geometry, err error) {
	if format, err = defe.ParseFormat(p.Input.Format); err != nil {
		return
	}
	outFormat, err := defe.ParseFormat(p.Output.Format)
	if err != nil {
		return
	}
	if outFormat != defe.FormatARGB8888 {
		err = fmt.Errorf("%w: output format %v", defe.ErrUnsupported, outFormat)
		return
	}
	in = defe.Geometry{Width: p.Input.Width, Height: p.Input.Height}
	out = defe.Geometry{Width: p.Output.Width, Height: p.Output.Height}
	return
}

// BufferAddrs returns the configured input buffer addresses. ok is false
// if none are set.
func (p Pipeline) BufferAddrs() (luma, chroma uint32, ok bool, err error) {
	if p.Buffers.Luma == "" && p.Buffers.Chroma == "" {
		return
	}
	if luma, err = parseUint32("luma buffer", p.Buffers.Luma); err != nil {
		return
	}
	if chroma, err = parseUint32("chroma buffer", p.Buffers.Chroma); err != nil {
		return
	}
	return luma, chroma, true, nil
}
