//go:build rp2040 || rp2350

package main

import (
	"machine"

	"sii953x/core"
)

// Board pins
const (
	pinRxHpd    = machine.GP15
	pinStandby  = machine.GP12
	pinPortSel0 = machine.GP10
	pinPortSel1 = machine.GP11
)

// port LEDs, one per input
var portLEDs = [...]machine.Pin{machine.GP16, machine.GP17, machine.GP18, machine.GP19}

// BoardPins is the GPIO side of the board: upstream HPD sense, the input
// mux select lines, the standby rail and the port LEDs
type BoardPins struct{}

// NewBoardPins configures the board GPIOs
func NewBoardPins() *BoardPins {
	pinRxHpd.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	for _, p := range []machine.Pin{pinStandby, pinPortSel0, pinPortSel1} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	for _, p := range portLEDs {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	return &BoardPins{}
}

// Standby implements cecswitch.Board
func (b *BoardPins) Standby(on bool) {
	pinStandby.Set(on)
}

// InputPortSet implements cecswitch.Board
func (b *BoardPins) InputPortSet(port uint8) {
	pinPortSel0.Set(port&1 != 0)
	pinPortSel1.Set(port&2 != 0)
	for i, p := range portLEDs {
		p.Set(i == int(port))
	}
}

// RxHpd implements cecswitch.Board
func (b *BoardPins) RxHpd() bool {
	return pinRxHpd.Get()
}

// RcpKey implements board.KeySink. The board has no key consumer, so keys
// only show up in the log.
func (b *BoardPins) RcpKey(port, key uint8) bool {
	core.Logger("keys").Info("rcp", "port", port, "key", key)
	return false
}

// Content implements board.KeySink
func (b *BoardPins) Content(port uint8, on bool) {
	pinStandby.Set(!on)
}
