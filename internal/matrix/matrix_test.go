package matrix

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ASCCJR/Matriz5x5/internal/layout"
)

// recordTx captures every word pushed to it, in order.
type recordTx struct {
	words []uint32
	fail  error
}

func (r *recordTx) TxPut(word uint32) error {
	if r.fail != nil {
		return r.fail
	}
	r.words = append(r.words, word)
	return nil
}

var packCases = []struct {
	R, G, B uint8
	Expect  uint32
}{
	{0xFF, 0x00, 0x80, 0x0000FF80},
	{0x00, 0x00, 0x00, 0x00000000},
	{0xFF, 0xFF, 0xFF, 0x00FFFFFF},
	{0x11, 0x22, 0x33, 0x00221133},
	{0x00, 0xFF, 0x00, 0x00FF0000},
	{0x00, 0x00, 0xFF, 0x000000FF},
}

func TestPackRGB(t *testing.T) {
	for _, v := range packCases {
		assert.Equal(t, v.Expect, PackRGB(v.R, v.G, v.B), "GRB packing mismatch")
	}
}

func TestSetPixelStoresPackedWord(t *testing.T) {
	m := New(layout.Default(), &recordTx{})
	ok := m.SetPixel(0, 0, 255, 0, 128)
	assert.True(t, ok)
	assert.Equal(t, uint32(0x0000FF80), m.buf[m.lay.Index(0, 0)])
}

func TestSetPixelOutOfRangeIsNoOp(t *testing.T) {
	m := New(layout.Default(), &recordTx{})
	m.Fill(1, 2, 3)
	want := append([]uint32(nil), m.buf...)

	for _, c := range []struct{ x, y int }{{5, 0}, {0, 5}, {-1, 0}, {0, -1}, {99, 99}} {
		ok := m.SetPixel(c.x, c.y, 255, 255, 255)
		assert.False(t, ok, "SetPixel(%d,%d) should be rejected", c.x, c.y)
	}
	assert.Equal(t, want, m.buf, "rejected writes must not touch the buffer")
}

func TestSetColor(t *testing.T) {
	m := New(layout.Default(), &recordTx{})
	ok := m.SetColor(2, 2, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xFF})
	assert.True(t, ok)
	assert.Equal(t, PackRGB(0x10, 0x20, 0x30), m.buf[m.lay.Index(2, 2)])
}

func TestSetColorPremultipliesAlpha(t *testing.T) {
	m := New(layout.Default(), &recordTx{})
	ok := m.SetColor(1, 1, color.NRGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0x80})
	assert.True(t, ok)
	// Half-transparent red stages as half-intensity red.
	assert.Equal(t, PackRGB(0x80, 0, 0), m.buf[m.lay.Index(1, 1)])
}

func TestClearThenRenderSendsZeros(t *testing.T) {
	tx := &recordTx{}
	m := New(layout.Default(), tx)
	m.Fill(255, 255, 255)
	m.Clear()

	if err := m.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(tx.words) != 25 {
		t.Fatalf("expected 25 words, got %d", len(tx.words))
	}
	for i, w := range tx.words {
		if w != 0 {
			t.Fatalf("slot %d: expected zero word, got %#08x", i, w)
		}
	}
}

func TestRenderWordOrderAndAlignment(t *testing.T) {
	tx := &recordTx{}
	l := layout.Default()
	m := New(l, tx)
	m.SetPixel(0, 4, 255, 0, 128) // wire slot 0
	m.SetPixel(4, 3, 1, 2, 3)     // wire slot 5

	if err := m.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(tx.words) != l.Count() {
		t.Fatalf("expected %d words, got %d", l.Count(), len(tx.words))
	}
	// Words arrive MSB-aligned: packed value shifted left 8 bits.
	assert.Equal(t, uint32(0x0000FF80<<8), tx.words[0])
	assert.Equal(t, PackRGB(1, 2, 3)<<8, tx.words[5])
	assert.Equal(t, uint32(0), tx.words[1])
}

func TestRenderAlwaysPushesWholeGrid(t *testing.T) {
	tx := &recordTx{}
	m := New(layout.Default(), tx)
	for i := 0; i < 3; i++ {
		if err := m.Render(); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
	}
	assert.Equal(t, 75, len(tx.words), "each render pushes exactly one full grid")
}

func TestRenderPropagatesTransportFault(t *testing.T) {
	sink := &recordTx{fail: errors.New("fifo stalled")}
	m := New(layout.Default(), sink)
	err := m.Render()
	assert.Error(t, err)
}
