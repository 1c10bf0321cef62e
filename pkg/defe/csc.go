package defe

import (
	"fmt"

	"github.com/sunxi-defe/defe/pkg/defe/regs"
)

func inputFormatValue(f PixelFormat) (uint32, error) {
	switch f {
	case FormatYUV420TiledUVCombined:
		return regs.InputFormat(regs.ModTileUVCombined, regs.InYUV420, regs.PSU1V1U0V0), nil
	}
	return 0, fmt.Errorf("%w: csc input format %v", ErrUnsupported, f)
}

func outputFormatValue(f PixelFormat) (uint32, error) {
	switch f {
	case FormatARGB8888:
		return regs.OutputFormat(regs.OutInterleavedARGB8888), nil
	}
	return 0, fmt.Errorf("%w: csc output format %v", ErrUnsupported, f)
}

// setupCSC writes the conversion matrix and the formats, then clears the
// bypass bit. The bypass write is always the last one.
func (b bus) setupCSC(m Matrix, in, out PixelFormat) error {
	if !m.Valid() {
		return fmt.Errorf("%w: csc coefficients out of range", ErrUnsupported)
	}
	inFmt, err := inputFormatValue(in)
	if err != nil {
		return err
	}
	outFmt, err := outputFormatValue(out)
	if err != nil {
		return err
	}

	fields := m.Fields()
	for i := range fields {
		for j := range fields[i] {
			if err := b.write(StepCoefficient, i*len(fields[i])+j, regs.Coef[i][j], fields[i][j]); err != nil {
				return err
			}
		}
	}
	if err := b.write(StepInputFormat, -1, regs.InputFmtReg, inFmt); err != nil {
		return err
	}
	if err := b.write(StepOutputFormat, -1, regs.OutputFmtReg, outFmt); err != nil {
		return err
	}
	return b.write(StepBypass, -1, regs.BypassReg, 0)
}
