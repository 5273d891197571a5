package board

import "sii953x/protocol/cec"

// CECBus transmits frames on the CEC line
type CECBus interface {
	Send(f *cec.Frame) error
}

// cecDevice is the switch's CEC identity and the network state it tracks
type cecDevice struct {
	pa      cec.PhysAddr
	la      cec.LogAddr
	devType uint8

	activeLA cec.LogAddr
	activePA cec.PhysAddr

	port        uint8
	pendingPort uint8
	portChange  bool

	bus  CECBus
	sent func(f *cec.Frame)
}

func (d *cecDevice) PhysicalAddress() cec.PhysAddr { return d.pa }
func (d *cecDevice) LogicalAddress() cec.LogAddr   { return d.la }
func (d *cecDevice) DeviceType() uint8             { return d.devType }
func (d *cecDevice) PortSelect() uint8             { return d.port }

// IsActiveSource reports whether the last ACTIVE_SOURCE named this device
func (d *cecDevice) IsActiveSource() bool {
	return d.activeLA == d.la && d.activePA == d.pa
}

func (d *cecDevice) SetActiveSource(la cec.LogAddr, pa cec.PhysAddr) {
	d.activeLA, d.activePA = la, pa
}

// claimActive makes this device the active source and broadcasts it
func (d *cecDevice) claimActive() error {
	d.activeLA, d.activePA = d.la, d.pa
	hi, lo := d.pa.Bytes()
	f := cec.NewFrame(d.la, cec.LaBroadcast, cec.OpActiveSource, hi, lo)
	return d.Send(&f)
}

// RequestPortChange records a port switch; the app applies it after the
// dispatch step
func (d *cecDevice) RequestPortChange(port uint8) {
	d.pendingPort = port
	d.portChange = true
}

func (d *cecDevice) takePortChange() (uint8, bool) {
	if !d.portChange {
		return 0, false
	}
	d.portChange = false
	return d.pendingPort, true
}

func (d *cecDevice) Send(f *cec.Frame) error {
	if d.sent != nil {
		d.sent(f)
	}
	if d.bus == nil {
		return nil
	}
	return d.bus.Send(f)
}

// frameQueue holds received frames until the next poll
type frameQueue struct {
	buf  [4]cec.Frame
	head int
	n    int
}

func (q *frameQueue) push(f cec.Frame) bool {
	if q.n == len(q.buf) {
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = f
	q.n++
	return true
}

func (q *frameQueue) pop() (cec.Frame, bool) {
	if q.n == 0 {
		return cec.Frame{}, false
	}
	f := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return f, true
}
