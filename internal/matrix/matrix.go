package matrix

import (
	"image/color"

	"github.com/ASCCJR/Matriz5x5/internal/layout"
)

// Transmitter abstracts the one-wire LED transport. TxPut blocking-enqueues
// one 32-bit word; the 24 significant bits sit at the most-significant end
// and the low 8 bits are padding the transport discards.
type Transmitter interface {
	TxPut(word uint32) error
}

// PackRGB packs three 8-bit channels into the WS2812B wire-native GRB
// order within the 24 low bits of a uint32.
func PackRGB(r, g, b uint8) uint32 {
	return uint32(g)<<16 | uint32(r)<<8 | uint32(b)
}

// Matrix stages pixel colors in a buffer held in wire order and flushes it
// to a Transmitter on Render. Stage and flush are distinct phases: SetPixel
// and Clear touch only the buffer, Render is the only operation that
// performs I/O. Not safe for concurrent use; callers serialize access.
type Matrix struct {
	lay layout.Layout
	buf []uint32
	tx  Transmitter
}

func New(l layout.Layout, tx Transmitter) *Matrix {
	return &Matrix{
		lay: l,
		buf: make([]uint32, l.Count()),
		tx:  tx,
	}
}

// Layout returns the coordinate mapping in effect.
func (m *Matrix) Layout() layout.Layout { return m.lay }

// Clear turns every buffered pixel off. Does not transmit.
func (m *Matrix) Clear() {
	for i := range m.buf {
		m.buf[i] = 0
	}
}

// SetPixel stages one pixel. Out-of-range coordinates are rejected without
// touching the buffer; the return value reports whether the pixel was
// stored. Rejection is deliberate fail-safe behavior, not an error.
func (m *Matrix) SetPixel(x, y int, r, g, b uint8) bool {
	if !m.lay.InBounds(x, y) {
		return false
	}
	m.buf[m.lay.Index(x, y)] = PackRGB(r, g, b)
	return true
}

// SetColor stages one pixel from a color.Color. RGBA returns
// alpha-premultiplied channels, so a translucent color stages darkened;
// the alpha itself is not transmitted.
func (m *Matrix) SetColor(x, y int, c color.Color) bool {
	r16, g16, b16, _ := c.RGBA()
	return m.SetPixel(x, y, uint8(r16>>8), uint8(g16>>8), uint8(b16>>8))
}

// Fill stages the same color into every pixel.
func (m *Matrix) Fill(r, g, b uint8) {
	w := PackRGB(r, g, b)
	for i := range m.buf {
		m.buf[i] = w
	}
}

// Render flushes the staged buffer: every slot in wire order, MSB-aligned,
// blocking-enqueued on the transmitter. The whole grid is always pushed;
// there is no partial render. The first transport fault aborts the flush.
func (m *Matrix) Render() error {
	for _, w := range m.buf {
		if err := m.tx.TxPut(w << 8); err != nil {
			return err
		}
	}
	return nil
}
