// Package preview renders what a programmed front end would output, in
// software, from the registers it was programmed with.
package preview

import (
	"errors"
	"fmt"
	"image"

	"github.com/sunxi-defe/defe/pkg/defe"
	"github.com/sunxi-defe/defe/pkg/defe/regs"
	"golang.org/x/image/draw"
)

// ErrBypass means the converter is bypassed and there is nothing to model.
var ErrBypass = errors.New("preview: csc bypassed")

// Settings are the parts of a register snapshot the model uses.
type Settings struct {
	Matrix defe.Matrix
	Out    defe.Geometry
	Bypass bool
}

// ReadSettings reads the coefficient, output size and bypass registers.
func ReadSettings(r defe.RegisterReader) (s Settings, err error) {
	var fields [3][4]uint32
	for i := range regs.Coef {
		for j, off := range regs.Coef[i] {
			if fields[i][j], err = r.Read(off); err != nil {
				return s, err
			}
		}
	}
	s.Matrix = defe.DecodeMatrix(fields)

	off, err := regs.Channel(regs.OutSize, 0)
	if err != nil {
		return s, err
	}
	size, err := r.Read(off)
	if err != nil {
		return s, err
	}
	s.Out = defe.Geometry{Width: size & defe.MaxDimension, Height: size >> 16 & defe.MaxDimension}

	bypass, err := r.Read(regs.BypassReg)
	if err != nil {
		return s, err
	}
	s.Bypass = bypass&regs.CSCBypass != 0
	return s, nil
}

func clamp(v int32) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xff:
		return 0xff
	}
	return uint8(v)
}

// Convert applies the matrix to every pixel of src.
func Convert(src *image.YCbCr, m defe.Matrix) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.COffset(x, y)
			in := [3]int32{int32(src.Y[src.YOffset(x, y)]), int32(src.Cb[c]), int32(src.Cr[c])}
			i := dst.PixOffset(x, y)
			for row := range m {
				// magnitudes carry 10 fraction bits, constants 4
				acc := m[row][defe.ColY]*in[0] + m[row][defe.ColU]*in[1] + m[row][defe.ColV]*in[2] +
					m[row][defe.ColConst]<<6
				dst.Pix[i+row] = clamp((acc + 1<<9) >> 10)
			}
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}

// Render converts src and scales it to the programmed output size.
func Render(src *image.YCbCr, s Settings) (*image.RGBA, error) {
	if s.Bypass {
		return nil, ErrBypass
	}
	if s.Out.Width == 0 || s.Out.Height == 0 {
		return nil, fmt.Errorf("preview: output size %v", s.Out)
	}
	rgba := Convert(src, s.Matrix)
	dst := image.NewRGBA(image.Rect(0, 0, int(s.Out.Width), int(s.Out.Height)))
	draw.BiLinear.Scale(dst, dst.Bounds(), rgba, rgba.Bounds(), draw.Src, nil)
	return dst, nil
}

// Bars returns a w x h 4:2:0 frame of vertical colour bars, handy as a
// known input.
func Bars(w, h int) *image.YCbCr {
	// white, yellow, cyan, green, magenta, red, blue, black in studio swing
	bars := [][3]uint8{
		{235, 128, 128}, {210, 16, 146}, {170, 166, 16}, {145, 54, 34},
		{106, 202, 222}, {81, 90, 240}, {41, 240, 110}, {16, 128, 128},
	}
	img := image.NewYCbCr(image.Rect(0, 0, w, h), image.YCbCrSubsampleRatio420)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bar := bars[x*len(bars)/w]
			img.Y[img.YOffset(x, y)] = bar[0]
			c := img.COffset(x, y)
			img.Cb[c], img.Cr[c] = bar[1], bar[2]
		}
	}
	return img
}
