package defe

// The CSC registers have no two's complement fields: a negative coefficient
// is stored as value + bias, where bias is one past the field's top bit.
const (
	// MagnitudeBias biases the 13-bit Y/U/V magnitude fields.
	MagnitudeBias = 0x2000
	// ConstantBias biases the 14-bit constant fields.
	ConstantBias = 0x4000
)

// Encode stores a signed coefficient in a sign-biased field.
func Encode(v int32, bias uint32) uint32 {
	if v >= 0 {
		return uint32(v)
	}
	return uint32(v + int32(bias))
}

// Decode recovers a coefficient stored by Encode.
func Decode(field, bias uint32) int32 {
	field &= bias - 1
	if field&(bias>>1) != 0 {
		return int32(field) - int32(bias)
	}
	return int32(field)
}

// Fits reports whether v survives an Encode/Decode round trip.
func Fits(v int32, bias uint32) bool {
	half := int32(bias >> 1)
	return v >= -half && v < half
}

// Colour rows and coefficient columns of a Matrix.
const (
	RowR = iota
	RowG
	RowB
)

const (
	ColY = iota
	ColU
	ColV
	ColConst
)

// Matrix is a YUV to RGB conversion: rows R, G, B, columns Y, U, V
// magnitudes scaled by 2^10 and a constant scaled by 2^4.
type Matrix [3][4]int32

// BT601 is ITU-R BT.601 studio swing.
// See https://en.wikipedia.org/wiki/YCbCr#ITU-R_BT.601_conversion
var BT601 = Matrix{
	//   Y      U      V   const
	{+1192, 0, +1634, -3567},
	{+1192, -401, -832, +2169},
	{+1192, +2066, 0, -4429},
}

func biasOf(col int) uint32 {
	if col == ColConst {
		return ConstantBias
	}
	return MagnitudeBias
}

// Fields returns the matrix encoded for the coefficient registers.
func (m Matrix) Fields() (out [3][4]uint32) {
	for i := range m {
		for j := range m[i] {
			out[i][j] = Encode(m[i][j], biasOf(j))
		}
	}
	return
}

// Valid reports whether every coefficient fits its field.
func (m Matrix) Valid() bool {
	for i := range m {
		for j := range m[i] {
			if !Fits(m[i][j], biasOf(j)) {
				return false
			}
		}
	}
	return true
}

// DecodeMatrix is the inverse of Fields.
func DecodeMatrix(fields [3][4]uint32) (m Matrix) {
	for i := range fields {
		for j := range fields[i] {
			m[i][j] = Decode(fields[i][j], biasOf(j))
		}
	}
	return
}
