// Package cra implements the chip's paged register access. A register
// address carries a virtual page index in its high byte and the register
// offset in its low byte; a per-instance page map resolves the page to an
// I2C bus and device address.
package cra

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Page is a virtual register page index
type Page uint8

// Virtual pages
const (
	PagePP Page = iota
	pageReserved1
	PagePP2
	PageIPV
	PagePP4
	PagePP5
	PagePP6
	PagePP7
	PageCPI
	PagePP9
	PagePPA
	PagePPB
	PageCBUS
	PageHEAC
	PageOSD
	PageAudio
	PageTPI
	PageTxL0
	PageTxL1
	PageTx2
	PageDdcEdid
	PageDdcSegment

	PageCount
)

// Addr is a paged register address
type Addr uint16

// Reg builds the address of offset within page
func Reg(page Page, offset uint8) Addr {
	return Addr(page)<<8 | Addr(offset)
}

// Page returns the virtual page of the address
func (a Addr) Page() Page {
	return Page(a >> 8)
}

// Offset returns the register offset within the page
func (a Addr) Offset() uint8 {
	return uint8(a)
}

// PageConfig routes one virtual page: which bus, and the device address in
// the datasheet's 8-bit form. A zero Device means the page is not mapped.
type PageConfig struct {
	Bus    uint8 `json:"bus"`
	Device uint8 `json:"device"`
}

// PageMap routes every virtual page of one chip instance
type PageMap [PageCount]PageConfig

// DefaultPageMap returns the routing of the register pages used by this
// firmware for chip instance 0 or 1.
func DefaultPageMap(instance int) PageMap {
	var m PageMap
	m[PagePP] = PageConfig{Device: 0xB0}
	m[PagePP5] = PageConfig{Device: 0x50}
	m[PagePP6] = PageConfig{Device: 0x52}
	m[PagePP9] = PageConfig{Device: 0xE0}
	m[PageCPI] = PageConfig{Device: 0xC0}
	m[PageCBUS] = PageConfig{Device: 0xE6}
	m[PageTxL0] = PageConfig{Device: 0x70}
	m[PageTxL1] = PageConfig{Device: 0x78}
	if instance == 1 {
		m[PageCBUS] = PageConfig{Device: 0xE8}
	}
	return m
}

var (
	ErrUnmappedPage = errors.New("cra: register page not mapped")
	ErrNoBus        = errors.New("cra: bus not configured")
	ErrBlockSize    = errors.New("cra: block too large")
)

// MaxBlock is the largest block moved in one bus transaction
const MaxBlock = 32

// Device is one chip instance's register space.
type Device struct {
	buses []drivers.I2C
	pages PageMap
	wbuf  [1 + MaxBlock]byte
	rbuf  [1]byte
}

// New returns a register device over buses routed by pages
func New(buses []drivers.I2C, pages PageMap) *Device {
	return &Device{buses: buses, pages: pages}
}

func (d *Device) route(a Addr) (drivers.I2C, uint16, error) {
	p := a.Page()
	if p >= PageCount || d.pages[p].Device == 0 {
		return nil, 0, &Error{Op: "route", Addr: a, Err: ErrUnmappedPage}
	}
	cfg := d.pages[p]
	if int(cfg.Bus) >= len(d.buses) || d.buses[cfg.Bus] == nil {
		return nil, 0, &Error{Op: "route", Addr: a, Err: ErrNoBus}
	}
	return d.buses[cfg.Bus], uint16(cfg.Device >> 1), nil
}

// Read returns one register
func (d *Device) Read(a Addr) (uint8, error) {
	if err := d.ReadBlock(a, d.rbuf[:]); err != nil {
		return 0, err
	}
	return d.rbuf[0], nil
}

// Write sets one register
func (d *Device) Write(a Addr, v uint8) error {
	return d.WriteBlock(a, []uint8{v})
}

// ReadBlock reads len(p) consecutive registers starting at a
func (d *Device) ReadBlock(a Addr, p []uint8) error {
	if len(p) > MaxBlock {
		return &Error{Op: "read", Addr: a, Err: ErrBlockSize}
	}
	bus, dev, err := d.route(a)
	if err != nil {
		return err
	}
	d.wbuf[0] = a.Offset()
	if err := bus.Tx(dev, d.wbuf[:1], p); err != nil {
		return &Error{Op: "read", Addr: a, Err: err}
	}
	return nil
}

// WriteBlock writes p to consecutive registers starting at a
func (d *Device) WriteBlock(a Addr, p []uint8) error {
	if len(p) > MaxBlock {
		return &Error{Op: "write", Addr: a, Err: ErrBlockSize}
	}
	bus, dev, err := d.route(a)
	if err != nil {
		return err
	}
	d.wbuf[0] = a.Offset()
	n := copy(d.wbuf[1:], p)
	if err := bus.Tx(dev, d.wbuf[:1+n], nil); err != nil {
		return &Error{Op: "write", Addr: a, Err: err}
	}
	return nil
}

// Modify replaces the bits of mask with value
func (d *Device) Modify(a Addr, mask, value uint8) error {
	v, err := d.Read(a)
	if err != nil {
		return err
	}
	return d.Write(a, v&^mask|value&mask)
}

// BitsSet sets or clears bits
func (d *Device) BitsSet(a Addr, bits uint8, set bool) error {
	if set {
		return d.Modify(a, bits, bits)
	}
	return d.Modify(a, bits, 0)
}

// Error records the register and operation of a failed access
type Error struct {
	Op   string
	Addr Addr
	Err  error
}

func (e *Error) Error() string {
	const hex = "0123456789abcdef"
	a := [6]byte{'0', 'x'}
	for i := 0; i < 4; i++ {
		a[2+i] = hex[(e.Addr>>(12-4*uint(i)))&0xF]
	}
	return "cra: " + e.Op + " " + string(a[:]) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
