// Package defe configures the Allwinner display engine front end: a
// fixed-function scaler and YUV to RGB converter fed by input DMA channels
// and drained by output DMA channels.
//
// The package only computes register values and pushes them through a
// RegisterWriter. It keeps no copy of hardware state and does no locking,
// callers serialise access to one front end.
package defe

import "fmt"

// RegisterWriter is the register-write primitive of the device layer.
type RegisterWriter interface {
	Write(offset, value uint32) error
}

// RegisterReader reads a register back. The configuration code never
// reads, it is there for callers that verify.
type RegisterReader interface {
	Read(offset uint32) (uint32, error)
}

// PixelFormat tags the pixel layout on one side of the pipeline.
type PixelFormat uint8

const (
	FormatUnknown PixelFormat = iota
	// FormatYUV420TiledUVCombined is planar 4:2:0 with a Y plane and an
	// interleaved UV plane, both stored in 32x32 tiles.
	FormatYUV420TiledUVCombined
	// FormatARGB8888 is interleaved 32-bit ARGB, alpha padded to 0xff.
	FormatARGB8888
)

var formatNames = map[PixelFormat]string{
	FormatYUV420TiledUVCombined: "yuv420-tiled-uv",
	FormatARGB8888:              "argb8888",
}

func (f PixelFormat) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat returns the pixel format with the given name.
func ParseFormat(name string) (PixelFormat, error) {
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: pixel format %q", ErrUnsupported, name)
}

// Geometry is a frame size in pixels. For YUV formats these are the luma
// plane dimensions.
type Geometry struct {
	Width, Height uint32
}

func (g Geometry) String() string { return fmt.Sprintf("%dx%d", g.Width, g.Height) }

func (g Geometry) valid() bool { return g.Width > 0 && g.Height > 0 }

// Role is the kind of samples a DMA channel carries.
type Role uint8

const (
	Luma Role = iota
	Chroma
)

func (r Role) String() string {
	switch r {
	case Luma:
		return "luma"
	case Chroma:
		return "chroma"
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// TileOffsets are the offsets of the first and the last tile of a
// tile-based plane.
type TileOffsets struct {
	XTopLeft, YTopLeft, XBottomRight uint32
}

// ChannelConfig is everything programmed into one DMA channel during one
// configuration pass.
type ChannelConfig struct {
	Channel    int
	Role       Role
	Tile       TileOffsets
	LineStride uint32
	InSize     Geometry
	OutSize    Geometry
	HorzFactor uint32
	VertFactor uint32
}
