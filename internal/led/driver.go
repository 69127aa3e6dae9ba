// Package led holds the transmitter implementations that push packed GRB
// color words out to a WS2812B string: a spidev-based one-wire encoder, a
// periph.io nrzled device, and a simulation sink for headless runs.
package led

// Transmitter is the word sink every driver implements. TxPut
// blocking-enqueues one 32-bit word whose 24 significant bits are aligned
// to the most-significant end; the transport discards the low 8 bits.
type Transmitter interface {
	TxPut(word uint32) error
	Close() error
}

// Tee fans every word out to all sinks, typically real hardware plus the
// preview server. The first failing sink aborts the put.
type Tee []Transmitter

func NewTee(sinks ...Transmitter) Tee { return Tee(sinks) }

func (t Tee) TxPut(word uint32) error {
	for _, s := range t {
		if err := s.TxPut(word); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Close() error {
	var first error
	for _, s := range t {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
