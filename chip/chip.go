// Package chip drives the transmitter, repeater and CEC blocks of the
// SiI953x through its paged registers. It supplies the hardware interfaces
// the repeater manager and the board need.
package chip

import (
	"log/slog"

	"sii953x/core"
	"sii953x/cra"
)

// Regs is the register space of one chip instance
type Regs interface {
	Read(a cra.Addr) (uint8, error)
	Write(a cra.Addr, v uint8) error
	ReadBlock(a cra.Addr, p []uint8) error
	WriteBlock(a cra.Addr, p []uint8) error
	Modify(a cra.Addr, mask, value uint8) error
	BitsSet(a cra.Addr, bits uint8, set bool) error
}

// Chip is one SiI953x
type Chip struct {
	regs Regs
	log  *slog.Logger

	// register failures since start
	errors uint32
}

// New returns a chip over regs
func New(regs Regs) *Chip {
	return &Chip{regs: regs, log: core.Logger("chip")}
}

// Errors returns the number of failed register accesses
func (c *Chip) Errors() uint32 { return c.errors }

// check counts and logs a failed access. The hardware callbacks cannot
// return errors, so this is where they end.
func (c *Chip) check(op string, err error) bool {
	if err == nil {
		return true
	}
	c.errors++
	c.log.Warn("register access", "op", op, "err", err)
	return false
}

func (c *Chip) read(op string, a cra.Addr) (uint8, bool) {
	v, err := c.regs.Read(a)
	return v, c.check(op, err)
}

func (c *Chip) write(op string, a cra.Addr, v uint8) {
	c.check(op, c.regs.Write(a, v))
}

func (c *Chip) bits(op string, a cra.Addr, bits uint8, set bool) {
	c.check(op, c.regs.BitsSet(a, bits, set))
}
