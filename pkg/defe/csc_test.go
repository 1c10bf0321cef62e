package defe

import (
	"errors"
	"testing"

	"github.com/sunxi-defe/defe/pkg/defe/regs"
	"github.com/sunxi-defe/defe/pkg/logger"
	"github.com/sunxi-defe/defe/pkg/regio"
)

func newBus(mem *regio.Mem) bus { return bus{w: mem, log: logger.Default()} }

func TestSetupCSC(t *testing.T) {
	mem := regio.NewMem(regs.Size)
	if err := newBus(mem).setupCSC(BT601, FormatYUV420TiledUVCombined, FormatARGB8888); err != nil {
		t.Fatal(err)
	}
	writes := mem.Writes()
	if len(writes) != 15 {
		t.Fatalf("%v writes, want 15", len(writes))
	}
	last := writes[len(writes)-1]
	if last.Offset != regs.BypassReg || last.Value&regs.CSCBypass != 0 {
		t.Errorf("last write {%#x %#x}, want the bypass bit cleared", last.Offset, last.Value)
	}

	var fields [3][4]uint32
	for i := range regs.Coef {
		for j, off := range regs.Coef[i] {
			fields[i][j], _ = mem.Read(off)
		}
	}
	if m := DecodeMatrix(fields); m != BT601 {
		t.Errorf("registers decode to %v, want %v", m, BT601)
	}
}

func TestSetupCSCRejects(t *testing.T) {
	bad := BT601
	bad[RowR][ColConst] = -9000

	tests := []struct {
		name    string
		m       Matrix
		in, out PixelFormat
	}{
		{name: "coefficient range", m: bad, in: FormatYUV420TiledUVCombined, out: FormatARGB8888},
		{name: "input format", m: BT601, in: FormatARGB8888, out: FormatARGB8888},
		{name: "output format", m: BT601, in: FormatYUV420TiledUVCombined, out: FormatYUV420TiledUVCombined},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mem := regio.NewMem(regs.Size)
			if err := newBus(mem).setupCSC(test.m, test.in, test.out); !errors.Is(err, ErrUnsupported) {
				t.Errorf("error = %v, want %v", err, ErrUnsupported)
			}
			if n := len(mem.Writes()); n != 0 {
				t.Errorf("%v registers written", n)
			}
		})
	}
}

func TestSetupCSCBypassFailure(t *testing.T) {
	mem := regio.NewMem(regs.Size)
	mem.FailAt(14, errBus)
	err := newBus(mem).setupCSC(BT601, FormatYUV420TiledUVCombined, FormatARGB8888)
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Step != StepBypass || ioErr.Offset != regs.BypassReg {
		t.Errorf("error = %v, want a bypass IOError", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []PixelFormat{FormatYUV420TiledUVCombined, FormatARGB8888} {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFormat("nv12"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ParseFormat(nv12) = %v", err)
	}
}

func TestIOErrorMessage(t *testing.T) {
	err := &IOError{Step: StepCoefficient, Index: 2, Offset: 0x84, Err: errBus}
	if got, want := err.Error(), "register write failed: csc coefficient[2] @ 0x84: bus error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	err = &IOError{Step: StepBypass, Index: -1, Offset: 0x8, Err: errBus}
	if got, want := err.Error(), "register write failed: csc bypass @ 0x8: bus error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
