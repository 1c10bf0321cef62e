package regs

import "testing"

func TestChannel(t *testing.T) {
	tests := []struct {
		reg  Reg
		ch   int
		want uint32
	}{
		{reg: BufAddr, ch: 0, want: 0x20},
		{reg: BufAddr, ch: 1, want: 0x24},
		{reg: TileOffset, ch: 0, want: 0x30},
		{reg: TileOffset, ch: 1, want: 0x34},
		{reg: LineStride, ch: 0, want: 0x40},
		{reg: LineStride, ch: 1, want: 0x44},
		{reg: InSize, ch: 0, want: 0x100},
		{reg: InSize, ch: 1, want: 0x200},
		{reg: OutSize, ch: 0, want: 0x104},
		{reg: OutSize, ch: 1, want: 0x204},
		{reg: HorzFactor, ch: 1, want: 0x208},
		{reg: VertFactor, ch: 0, want: 0x10c},
		{reg: VertFactor, ch: 1, want: 0x20c},
	}
	for _, test := range tests {
		t.Run(test.reg.String(), func(t *testing.T) {
			got, err := Channel(test.reg, test.ch)
			if err != nil {
				t.Fatal(err)
			}
			if got != test.want {
				t.Errorf("Channel(%v, %v) = %#x, want %#x", test.reg, test.ch, got, test.want)
			}
		})
	}
}

func TestChannelOutOfRange(t *testing.T) {
	if _, err := Channel(InSize, Channels); err == nil {
		t.Errorf("no error for channel %v", Channels)
	}
	if _, err := Channel(InSize, -1); err == nil {
		t.Errorf("no error for channel -1")
	}
	if _, err := Channel(Reg(42), 0); err == nil {
		t.Errorf("no error for an unknown register")
	}
}

func TestCoefRegistersAreUnique(t *testing.T) {
	seen := map[uint32]bool{}
	for _, row := range Coef {
		for _, off := range row {
			if off < CSCCoef00Reg || off > CSCCoef23Reg {
				t.Errorf("%#x is outside the CSC block", off)
			}
			if seen[off] {
				t.Errorf("%#x is mapped twice", off)
			}
			seen[off] = true
		}
	}
}

func TestPacking(t *testing.T) {
	if got := TiledLineStride(1920, TileLen); got != 60448 {
		t.Errorf("TiledLineStride(1920) = %v, want 60448", got)
	}
	if got := TileOffsets(TileLen, 0, TileLen); got != 0 {
		t.Errorf("full tile offsets = %#x, want 0", got)
	}
	if got := TileOffsets(3, 2, 1); got != 0x030201 {
		t.Errorf("TileOffsets(3, 2, 1) = %#x, want 0x030201", got)
	}
	if got := FrameSize(1280, 720); got != 720<<16|1280 {
		t.Errorf("FrameSize(1280, 720) = %#x", got)
	}
	if got := FrameSize(0x2000, 0x2001); got != 1<<16 {
		t.Errorf("FrameSize masks 13 bits, got %#x", got)
	}
	if got := InputFormat(ModTileUVCombined, InYUV420, PSU1V1U0V0); got != 0x621 {
		t.Errorf("InputFormat = %#x, want 0x621", got)
	}
	if got := InputFormat(ModNonTilePlanar, InRGB888, PSARGB); got != 0x51 {
		t.Errorf("InputFormat(rgb888) = %#x, want 0x51", got)
	}
	if PSARGB != PSU1V1U0V0 {
		t.Errorf("ARGB and U1V1U0V0 sequences differ")
	}
	if got := OutputFormat(OutInterleavedARGB8888); got != 0x2 {
		t.Errorf("OutputFormat = %#x, want 0x2", got)
	}
}
