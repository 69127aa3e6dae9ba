package led

import "testing"

func TestBuildLUTKnownBytes(t *testing.T) {
	lut := buildLUT(false)
	cases := []struct {
		in   byte
		want [3]byte
	}{
		// 0b100 repeated eight times
		{0x00, [3]byte{0x92, 0x49, 0x24}},
		// 0b110 repeated eight times
		{0xFF, [3]byte{0xDB, 0x6D, 0xB6}},
		// MSB one, rest zero: 110 100 100 100 100 100 100 100
		{0x80, [3]byte{0xD2, 0x49, 0x24}},
		// LSB one: 100 100 100 100 100 100 100 110
		{0x01, [3]byte{0x92, 0x49, 0x26}},
	}
	for _, c := range cases {
		if lut[c.in] != c.want {
			t.Errorf("lut[%#02x] = %x, want %x", c.in, lut[c.in], c.want)
		}
	}
}

func TestBuildLUTInvert(t *testing.T) {
	norm := buildLUT(false)
	inv := buildLUT(true)
	for v := 0; v < 256; v++ {
		for i := 0; i < 3; i++ {
			if norm[v][i]^inv[v][i] != 0xFF {
				t.Fatalf("lut[%#02x][%d]: inverted table is not the bit complement", v, i)
			}
		}
	}
}

func TestIdleByte(t *testing.T) {
	if idleByte(false) != 0x00 {
		t.Errorf("idle line should rest low")
	}
	if idleByte(true) != 0xFF {
		t.Errorf("inverted idle line should rest high")
	}
}
