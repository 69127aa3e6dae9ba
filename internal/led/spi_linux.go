//go:build linux

package led

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"
)

// Minimal spidev ioctl bindings.
const (
	spiIOCWriteMode        = 0x40016b01
	spiIOCWriteBitsPerWord = 0x40016b03
	spiIOCWriteMaxSpeedHz  = 0x40046b04
)

// SPI synthesizes the WS2812B one-wire waveform over a spidev device.
// Words accumulate into a frame buffer; once count words have been
// enqueued the whole frame plus the latch tail is written in one blocking
// pass, so the timing-critical bitstream is never split mid-frame.
type SPI struct {
	mu      sync.Mutex
	f       *os.File
	count   int
	resetUs int
	lut     [256][3]byte
	idle    byte

	enc []byte // frame under assembly, 9 bytes per word
	n   int    // words accumulated
}

// NewSPI opens a spidev device (e.g. "/dev/spidev0.0") and prepares the
// one-wire encoder. speedHz in the 2.4–3.2 MHz range matches the 3x expand
// scheme at the WS2812B's 800 kHz symbol rate. resetUs is the latch gap
// (>= 280µs; 300–400 is safe). invert flips the line for inverting level
// shifters.
func NewSPI(dev string, count, speedHz, resetUs int, invert bool) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if speedHz <= 0 {
		speedHz = 2400000
	}
	if resetUs <= 0 {
		resetUs = 300
	}
	f, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open spidev: %w", err)
	}
	mode := byte(0)
	if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), spiIOCWriteMode, uintptr(unsafe.Pointer(&mode))); e != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set mode: %v", e)
	}
	bpw := byte(8)
	if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), spiIOCWriteBitsPerWord, uintptr(unsafe.Pointer(&bpw))); e != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set bits-per-word: %v", e)
	}
	if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), spiIOCWriteMaxSpeedHz, uintptr(unsafe.Pointer(&speedHz))); e != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set speed: %v", e)
	}

	return &SPI{
		f:       f,
		count:   count,
		resetUs: resetUs,
		lut:     buildLUT(invert),
		idle:    idleByte(invert),
		enc:     make([]byte, 0, count*9),
	}, nil
}

// TxPut encodes the 24 significant bits of word into the frame under
// assembly. Enqueueing the count-th word flushes the frame and the latch
// tail to the device, blocking until the kernel accepts the write.
func (s *SPI) TxPut(word uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return fmt.Errorf("SPI closed")
	}
	for _, v := range [3]byte{byte(word >> 24), byte(word >> 16), byte(word >> 8)} {
		s.enc = append(s.enc, s.lut[v][0], s.lut[v][1], s.lut[v][2])
	}
	s.n++
	if s.n < s.count {
		return nil
	}
	return s.flushLocked()
}

func (s *SPI) flushLocked() error {
	defer func() {
		s.enc = s.enc[:0]
		s.n = 0
	}()

	if _, err := s.f.Write(s.enc); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	// Latch: hold the line idle for resetUs. At 2.4MHz one byte spans
	// ~3.33µs; 128 idle bytes cover the worst case comfortably.
	resetBytes := (s.resetUs + 3) / 3
	if resetBytes < 128 {
		resetBytes = 128
	}
	tail := make([]byte, resetBytes)
	for i := range tail {
		tail[i] = s.idle
	}
	if _, err := s.f.Write(tail); err != nil {
		return fmt.Errorf("spi latch: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		return err
	}
	return nil
}
