package led

// buildLUT precomputes the 3x bit expansion used to synthesize the WS2812B
// one-wire waveform on a plain SPI bus: each data bit becomes three SPI
// bits, 0b110 for a one (long high pulse) and 0b100 for a zero (short high
// pulse), MSB first. One payload byte expands to 24 SPI bits.
//
// invert flips every wire bit, for data lines driven through an inverting
// level shifter.
func buildLUT(invert bool) (lut [256][3]byte) {
	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			tri := uint32(0b100)
			if (v>>i)&1 == 1 {
				tri = 0b110
			}
			out = (out << 3) | tri
		}
		if invert {
			out = ^out & 0xFFFFFF
		}
		lut[v] = [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
	}
	return lut
}

// idleByte is the SPI byte that keeps the data line at its resting level
// during the latch gap.
func idleByte(invert bool) byte {
	if invert {
		return 0xFF
	}
	return 0x00
}
