package led

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"
)

func grbWord(r, g, b uint8) uint32 {
	return uint32(g)<<24 | uint32(r)<<16 | uint32(b)<<8
}

func TestNRZFrameSubmission(t *testing.T) {
	buf := bytes.Buffer{}
	opts := nrzled.Opts{NumPixels: 25, Channels: 3, Freq: 2500 * physic.KiloHertz}
	dev, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &opts)
	if err != nil {
		t.Fatal(err)
	}
	d := NewNRZWithDrawer(dev, 25)

	// 24 words stage pixels without touching the bus.
	for i := 0; i < 24; i++ {
		if err := d.TxPut(grbWord(0, 255, 0)); err != nil {
			t.Fatalf("word %d: %v", i, err)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("partial frame must not hit the bus, wrote %d bytes", buf.Len())
	}
	// The 25th word flushes the whole frame.
	if err := d.TxPut(grbWord(0, 255, 0)); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("completed frame was not written to the bus")
	}
}

func TestSimCountsFrames(t *testing.T) {
	s := NewSim(25)
	for f := 0; f < 2; f++ {
		for i := 0; i < 25; i++ {
			if err := s.TxPut(0); err != nil {
				t.Fatal(err)
			}
		}
	}
	if got := s.Frames(); got != 2 {
		t.Fatalf("expected 2 frames, got %d", got)
	}
}

type failTx struct{ err error }

func (f *failTx) TxPut(uint32) error { return f.err }
func (f *failTx) Close() error       { return nil }

func TestTeeFanOut(t *testing.T) {
	a := NewSim(1)
	b := NewSim(1)
	tee := NewTee(a, b)
	if err := tee.TxPut(0); err != nil {
		t.Fatal(err)
	}
	if a.Frames() != 1 || b.Frames() != 1 {
		t.Fatalf("expected both sinks to see the frame, got %d and %d", a.Frames(), b.Frames())
	}
}

func TestTeeAbortsOnFirstFault(t *testing.T) {
	boom := errors.New("boom")
	a := &failTx{err: boom}
	b := NewSim(1)
	tee := NewTee(a, b)
	if err := tee.TxPut(0); !errors.Is(err, boom) {
		t.Fatalf("expected fault to propagate, got %v", err)
	}
	if b.Frames() != 0 {
		t.Fatal("word must not reach sinks after a fault")
	}
}
