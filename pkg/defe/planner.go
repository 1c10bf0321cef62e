package defe

import (
	"fmt"

	"github.com/sunxi-defe/defe/pkg/defe/regs"
	"github.com/sunxi-defe/defe/pkg/fixed"
)

// MaxDimension is the largest width or height the size registers hold.
const MaxDimension = 0x1fff

// roles returns the role of each active DMA channel for an input format,
// indexed by channel.
//
// In planar mode with U and V combined, channel 0 carries Y and channel 1
// the interleaved UV plane. Channel 2 stays inactive.
func roles(f PixelFormat) ([]Role, error) {
	switch f {
	case FormatYUV420TiledUVCombined:
		return []Role{Luma, Chroma}, nil
	}
	return nil, fmt.Errorf("%w: input format %v", ErrUnsupported, f)
}

// Plan computes the configuration of every DMA channel the input format
// uses. Nothing is written.
func Plan(format PixelFormat, in, out Geometry) ([]ChannelConfig, error) {
	rs, err := roles(format)
	if err != nil {
		return nil, err
	}
	if !in.valid() || !out.valid() {
		return nil, fmt.Errorf("%w: %v -> %v", ErrInvalidGeometry, in, out)
	}
	configs := make([]ChannelConfig, 0, len(rs))
	for ch, role := range rs {
		c, err := planChannel(format, ch, role, in, out)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, nil
}

func planChannel(format PixelFormat, ch int, role Role, in, out Geometry) (ChannelConfig, error) {
	c := ChannelConfig{
		Channel: ch,
		Role:    role,
		Tile:    TileOffsets{XTopLeft: regs.TileLen, YTopLeft: 0, XBottomRight: regs.TileLen},
		OutSize: out,
	}
	if format != FormatYUV420TiledUVCombined {
		return c, fmt.Errorf("%w: input format %v", ErrUnsupported, format)
	}

	switch role {
	case Luma:
		c.InSize = in
		c.HorzFactor = fixed.ScaleFactor(in.Width, out.Width)
		c.VertFactor = fixed.ScaleFactor(in.Height, out.Height)
	case Chroma:
		c.InSize = Geometry{Width: in.Width / 2, Height: in.Height / 2}
		// the hardware wants one more pixel on the UV output
		c.OutSize.Width++
		c.HorzFactor = fixed.ChromaScaleFactor(in.Width, out.Width)
		c.VertFactor = fixed.ChromaScaleFactor(in.Height, out.Height)
	default:
		return c, fmt.Errorf("%w: %v channel with %v input", ErrUnsupported, role, format)
	}

	if !c.InSize.valid() {
		return c, fmt.Errorf("%w: %v channel input %v", ErrInvalidGeometry, role, c.InSize)
	}
	for _, g := range []Geometry{c.InSize, c.OutSize} {
		if g.Width > MaxDimension || g.Height > MaxDimension {
			return c, fmt.Errorf("%w: %v channel size %v is over %d", ErrInvalidGeometry, role, g, MaxDimension)
		}
	}
	c.LineStride = regs.TiledLineStride(c.InSize.Width, regs.TileLen)
	return c, nil
}

type channelWrite struct {
	step Step
	reg  regs.Reg
	val  uint32
}

func (b bus) programInput(c ChannelConfig) error {
	return b.programChannel(c.Channel, []channelWrite{
		{StepTileOffset, regs.TileOffset, regs.TileOffsets(c.Tile.XBottomRight, c.Tile.YTopLeft, c.Tile.XTopLeft)},
		{StepLineStride, regs.LineStride, c.LineStride},
		{StepInputSize, regs.InSize, regs.FrameSize(c.InSize.Width, c.InSize.Height)},
	})
}

func (b bus) programOutput(c ChannelConfig) error {
	return b.programChannel(c.Channel, []channelWrite{
		{StepOutputSize, regs.OutSize, regs.FrameSize(c.OutSize.Width, c.OutSize.Height)},
		{StepHorzFactor, regs.HorzFactor, c.HorzFactor},
		{StepVertFactor, regs.VertFactor, c.VertFactor},
	})
}

// programChannel resolves every offset before the first write so a bad
// channel leaves its registers untouched.
func (b bus) programChannel(ch int, writes []channelWrite) error {
	offsets := make([]uint32, len(writes))
	for i, w := range writes {
		off, err := regs.Channel(w.reg, ch)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		offsets[i] = off
	}
	for i, w := range writes {
		if err := b.write(w.step, ch, offsets[i], w.val); err != nil {
			return err
		}
	}
	return nil
}
