// Package regs holds the DEFE (display engine front end) register map.
//
// Offsets and field layouts follow the A20 user manual, chapter 5.3
// "Front End", DEFE register list. Everything here is data: callers look a
// register up by what it does and pack values with the helpers below.
package regs

import "fmt"

// Base is the physical address of the front end register block.
const Base = 0x01e80000

// Size is the length of the register block.
const Size = 0x20000

// Global registers.
const (
	EnableReg    = 0x00
	FrameCtrlReg = 0x04
	BypassReg    = 0x08
	InputFmtReg  = 0x4c
	OutputFmtReg = 0x5c
)

// Frame control bits.
const (
	RegReady   = 1 << 0
	CoefReady  = 1 << 1
	FrameStart = 1 << 16
)

// CSCBypass is the bypass register bit that skips colour space conversion.
const CSCBypass = 1 << 1

// Channels is the number of DMA channels on each side.
const Channels = 3

// TileLen is the fixed tile dimension of tile-based input.
const TileLen = 32

// Reg names a register that exists once per DMA channel.
type Reg uint8

const (
	BufAddr Reg = iota
	TileOffset
	LineStride
	InSize
	OutSize
	HorzFactor
	VertFactor
)

var regNames = [...]string{
	BufAddr:    "buffer address",
	TileOffset: "tile offset",
	LineStride: "line stride",
	InSize:     "input size",
	OutSize:    "output size",
	HorzFactor: "horizontal factor",
	VertFactor: "vertical factor",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("reg(%d)", uint8(r))
}

// channelRegs maps a per-channel register to its channel 0 offset and the
// distance between two channels.
var channelRegs = [...]struct{ base, stride uint32 }{
	BufAddr:    {0x20, 0x4},
	TileOffset: {0x30, 0x4},
	LineStride: {0x40, 0x4},
	InSize:     {0x100, 0x100},
	OutSize:    {0x104, 0x100},
	HorzFactor: {0x108, 0x100},
	VertFactor: {0x10c, 0x100},
}

// Channel returns the offset of register r for DMA channel ch.
func Channel(r Reg, ch int) (uint32, error) {
	if int(r) >= len(channelRegs) {
		return 0, fmt.Errorf("regs: unknown channel register %v", r)
	}
	if ch < 0 || ch >= Channels {
		return 0, fmt.Errorf("regs: no DMA channel %d", ch)
	}
	e := channelRegs[r]
	return e.base + uint32(ch)*e.stride, nil
}

// Manual names of the CSC coefficient registers. The numbering is the
// hardware's, not row = colour.
const (
	CSCCoef00Reg = 0x70
	CSCCoef01Reg = 0x74
	CSCCoef02Reg = 0x78
	CSCCoef03Reg = 0x7c
	CSCCoef10Reg = 0x80
	CSCCoef11Reg = 0x84
	CSCCoef12Reg = 0x88
	CSCCoef13Reg = 0x8c
	CSCCoef20Reg = 0x90
	CSCCoef21Reg = 0x94
	CSCCoef22Reg = 0x98
	CSCCoef23Reg = 0x9c
)

// Coef maps [colour][Y, U, V, const] for colours R, G, B to coefficient
// registers.
var Coef = [3][4]uint32{
	{CSCCoef10Reg, CSCCoef12Reg, CSCCoef11Reg, CSCCoef13Reg},
	{CSCCoef00Reg, CSCCoef01Reg, CSCCoef02Reg, CSCCoef03Reg},
	{CSCCoef20Reg, CSCCoef22Reg, CSCCoef21Reg, CSCCoef23Reg},
}

func bits(x, mask, pos uint32) uint32 { return (x & mask) << pos }

// TileOffsets packs the tile-based offset register. Every field is 5 bits
// wide, so a full tile (32) wraps to 0.
func TileOffsets(xBottomRight, yTopLeft, xTopLeft uint32) uint32 {
	return bits(xBottomRight, 0x1f, 16) | bits(yTopLeft, 0x1f, 8) | bits(xTopLeft, 0x1f, 0)
}

// TiledLineStride is the line stride of a tile-based plane of the given
// width.
func TiledLineStride(width, tileLen uint32) uint32 {
	return tileLen*width - tileLen*tileLen + tileLen
}

// FrameSize packs a width/height pair of the in/out size registers.
func FrameSize(w, h uint32) uint32 { return bits(w, 0x1fff, 0) | bits(h, 0x1fff, 16) }

// Input data modes.
const (
	ModNonTilePlanar  = 0x0
	ModTileUVCombined = 0x6
)

// Input data formats.
const (
	InYUV444 = 0x0
	InYUV422 = 0x1
	InYUV420 = 0x2
	InYUV411 = 0x3
	InCSIRGB = 0x4
	InRGB888 = 0x5
)

// Input pixel sequences. U1V1U0V0 and ARGB share a value in the manual.
const (
	PSV1U1V0U0 = 0x0
	PSU1V1U0V0 = 0x1
	PSARGB     = 0x1
)

// InputFormat packs the input format register.
func InputFormat(mod, format, ps uint32) uint32 {
	return bits(mod, 0x7, 8) | bits(format, 0x7, 4) | bits(ps, 0x3, 0)
}

// OutInterleavedARGB8888 is the output data format with alpha padded
// to 0xff.
const OutInterleavedARGB8888 = 0x2

// OutputFormat packs the output format register.
func OutputFormat(format uint32) uint32 { return bits(format, 0x3, 0) }
