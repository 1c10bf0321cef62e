// Package fixed implements the fixed-point arithmetic used by the front end
// scaler without relying on a native 64-bit divide.
package fixed

// FracBits is the number of fraction bits in a scaler factor.
// 1<<FracBits is 1.0, anything below it upscales, above it downscales.
const FracBits = 16

// One is the scaler value for no scaling.
const One = 1 << FracBits

const topBit = uint64(1) << 63

// DivU64 returns n / d using binary long division.
// d must not be zero.
func DivU64(n uint64, d uint32) uint64 {
	if d == 0 {
		panic("fixed: division by zero")
	}

	dd, unit := uint64(d), uint64(1)
	// stop doubling before the divisor runs out of bits
	for dd < n && dd&topBit == 0 {
		dd <<= 1
		unit <<= 1
	}

	var q uint64
	for unit > 0 {
		for n >= dd {
			n -= dd
			q += unit
		}
		dd >>= 1
		unit >>= 1
	}
	return q
}

// ScaleFactor converts an input/output dimension ratio into the scaler's
// integer.fraction format, rounding down.
// out must not be zero.
func ScaleFactor(in, out uint32) uint32 {
	return uint32(DivU64(uint64(in)<<FracBits, out))
}

// ChromaScaleFactor is ScaleFactor for a 2x sub-sampled chroma plane:
// the input is halved, the output is compared at luma resolution.
func ChromaScaleFactor(in, out uint32) uint32 { return ScaleFactor(in/2, out) }
