package defe

import (
	"fmt"

	"github.com/sunxi-defe/defe/pkg/logger"
)

// bus issues register writes for one operation and turns sink failures
// into IOError.
type bus struct {
	w   RegisterWriter
	log *logger.Logger
}

func (b bus) write(step Step, idx int, off, val uint32) error {
	if err := b.w.Write(off, val); err != nil {
		b.log.Error().Err(err).
			Str(logger.StepField, step.String()).
			Int(logger.IndexField, idx).
			Str(logger.OffsetField, fmt.Sprintf("%#x", off)).
			Msg("register write failed")
		return &IOError{Step: step, Index: idx, Offset: off, Err: err}
	}
	b.log.Debug().
		Str(logger.StepField, step.String()).
		Int(logger.IndexField, idx).
		Str(logger.OffsetField, fmt.Sprintf("%#x", off)).
		Str(logger.ValueField, fmt.Sprintf("%#x", val)).
		Msg("set")
	return nil
}
