package led

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// WS2812B symbol rate on the data line.
const symbolRate = 800 * physic.KiloHertz

// NRZ drives the string through periph.io's nrzled device over SPI.
// Like the spidev driver it assembles count words into a frame and submits
// the frame as one image draw, which nrzled serializes in GRB wire order.
type NRZ struct {
	mu     sync.Mutex
	drawer display.Drawer
	count  int
	img    *image.NRGBA
	n      int
}

// NewNRZ initializes the host, opens the named SPI port ("" picks the
// first available) and attaches an nrzled device clocked for the WS2812B
// symbol rate. When no SPI port exists it falls back to rendering at the
// console, so the binary stays usable on a dev machine.
func NewNRZ(port string, count int) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(port)
	if err != nil {
		log.Warn().Err(err).Str("port", port).Msg("no SPI port; rendering at the console")
		return NewNRZWithDrawer(screen.New(count), count), nil
	}
	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      symbolRate*3 + 100*physic.KiloHertz,
	}
	d, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return NewNRZWithDrawer(d, count), nil
}

// NewNRZWithDrawer wires the driver to an explicit display; tests inject a
// recording SPI port through here.
func NewNRZWithDrawer(d display.Drawer, count int) *NRZ {
	return &NRZ{
		drawer: d,
		count:  count,
		img:    image.NewNRGBA(image.Rect(0, 0, count, 1)),
	}
}

// TxPut decodes the MSB-aligned GRB word back into channels and stages the
// pixel; the count-th word submits the frame to the device.
func (d *NRZ) TxPut(word uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.img.SetNRGBA(d.n, 0, color.NRGBA{
		R: uint8(word >> 16),
		G: uint8(word >> 24),
		B: uint8(word >> 8),
		A: 255,
	})
	d.n++
	if d.n < d.count {
		return nil
	}
	d.n = 0
	if err := d.drawer.Draw(d.drawer.Bounds(), d.img, image.Point{}); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

func (d *NRZ) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drawer.Halt()
}
