//go:build !linux

package led

import "fmt"

type SPI struct{}

func NewSPI(dev string, count, speedHz, resetUs int, invert bool) (*SPI, error) {
	return nil, fmt.Errorf("spi driver not supported on this platform")
}

func (s *SPI) TxPut(word uint32) error {
	return fmt.Errorf("spi driver not supported on this platform")
}

func (s *SPI) Close() error { return nil }
