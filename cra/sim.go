package cra

import "errors"

// ErrNoDevice is returned by Sim for an address with no register file
var ErrNoDevice = errors.New("cra: no device at address")

// Sim is an in-memory register file answering drivers.I2C transactions the
// way the chip does: the first written byte sets the register pointer, which
// auto-increments across the rest of the transfer. It backs host tests and
// the desktop simulator.
type Sim struct {
	regs map[uint16]*[256]uint8

	// OnWrite, when set, sees every register write after it lands.
	OnWrite func(dev uint16, reg, v uint8)
}

// NewSim returns a Sim answering the given 7-bit addresses
func NewSim(devices ...uint16) *Sim {
	s := &Sim{regs: make(map[uint16]*[256]uint8)}
	for _, dev := range devices {
		s.regs[dev] = new([256]uint8)
	}
	return s
}

// Tx implements drivers.I2C
func (s *Sim) Tx(addr uint16, w, r []byte) error {
	m, ok := s.regs[addr]
	if !ok {
		return ErrNoDevice
	}
	if len(w) == 0 {
		return nil
	}
	ptr := w[0]
	for _, v := range w[1:] {
		m[ptr] = v
		if s.OnWrite != nil {
			s.OnWrite(addr, ptr, v)
		}
		ptr++
	}
	for i := range r {
		r[i] = m[ptr]
		ptr++
	}
	return nil
}

// Peek returns a register without side effects
func (s *Sim) Peek(dev uint16, reg uint8) uint8 {
	if m, ok := s.regs[dev]; ok {
		return m[reg]
	}
	return 0
}

// Poke sets a register without side effects
func (s *Sim) Poke(dev uint16, reg, v uint8) {
	if m, ok := s.regs[dev]; ok {
		m[reg] = v
	}
}
