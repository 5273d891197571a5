package cbus

import (
	"testing"

	"tinygo.org/x/drivers"

	"sii953x/cra"
	"sii953x/protocol/mhl"
)

const cbusAddr = 0xE6 >> 1

// newSimDriver returns a driver over a simulated chip whose interrupt
// registers clear on write
func newSimDriver() (*Driver, *cra.Sim) {
	sim := cra.NewSim(cbusAddr)
	sim.OnWrite = func(dev uint16, reg, v uint8) {
		switch reg {
		case 0x20, 0x92, 0x94, 0x96, 0x98, 0x9A, 0x9C:
			sim.Poke(dev, reg, 0)
		}
	}
	dev := cra.New([]drivers.I2C{sim}, cra.DefaultPageMap(0))
	return NewDriver(dev), sim
}

func TestDriverInitialize(t *testing.T) {
	d, sim := newSimDriver()
	sim.Poke(cbusAddr, 0x91, busConnected)

	if err := d.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := sim.Peek(cbusAddr, mhl.DevCapFeatureFlag); got != mhl.LocalDevCap[mhl.DevCapFeatureFlag] {
		t.Errorf("Expected FEATURE_FLAG %#x, got %#x", mhl.LocalDevCap[mhl.DevCapFeatureFlag], got)
	}
	if sim.Peek(cbusAddr, 0x95)&intrXfrAbortT == 0 {
		t.Error("Expected transmit abort interrupt unmasked")
	}
	if !d.BusConnected() || d.Status()&StatusConnectionChg == 0 {
		t.Error("Expected connection change on a connected bus")
	}
	if v, err := d.DevCapRegister(mhl.DevCapLogDevMap); err != nil || v != mhl.LocalDevCap[mhl.DevCapLogDevMap] {
		t.Errorf("DevCapRegister: got %#x (%v)", v, err)
	}
}

func TestDriverNoChip(t *testing.T) {
	d, sim := newSimDriver()
	sim.Poke(cbusAddr, 0x91, 0xFF)
	if err := d.Initialize(); err != ErrNoChip {
		t.Errorf("Expected ErrNoChip, got %v", err)
	}
}

func TestDriverMscMsg(t *testing.T) {
	d, sim := newSimDriver()
	d.Initialize()

	sim.Poke(cbusAddr, 0x92, intrMscMsgRcvd)
	sim.Poke(cbusAddr, 0xBF, mhl.MsgRcp)
	sim.Poke(cbusAddr, 0xC0, mhl.KeyMute)
	if err := d.ProcessInterrupts(); err != nil {
		t.Fatalf("ProcessInterrupts failed: %v", err)
	}

	if d.Status()&StatusMscMsgRcvd == 0 {
		t.Error("Expected MSC_MSG flag")
	}
	if sub, code := d.VsData(); sub != mhl.MsgRcp || code != mhl.KeyMute {
		t.Errorf("Expected RCP MUTE, got %#x %#x", sub, code)
	}
	if sim.Peek(cbusAddr, 0x92) != 0 {
		t.Error("INTR_0 was not acknowledged")
	}
	if d.InterruptStatus() != intrMscMsgRcvd {
		t.Errorf("Expected INTR_0 %#x recorded, got %#x", intrMscMsgRcvd, d.InterruptStatus())
	}
}

func TestDriverSetInt(t *testing.T) {
	d, sim := newSimDriver()
	d.Initialize()

	sim.Poke(cbusAddr, 0x92, intrSetIntRcvd)
	sim.Poke(cbusAddr, 0x20, mhl.IntReqWrt|mhl.Int3DReq)
	d.ProcessInterrupts()

	if !d.ReqWrt() || !d.Req3D() {
		t.Error("Expected REQ_WRT and 3D_REQ")
	}
	if d.ReqWrt() {
		t.Error("REQ_WRT should clear once read")
	}
	if d.GrtWrt() {
		t.Error("Unexpected GRT_WRT")
	}
}

func TestDriverCmdDoneNack(t *testing.T) {
	d, sim := newSimDriver()
	d.Initialize()

	sim.Poke(cbusAddr, 0x92, intrMscCmdDone|intrCmdDoneNack)
	sim.Poke(cbusAddr, 0xBC, 0x42)
	d.ProcessInterrupts()

	if !d.NackFromPeer() {
		t.Error("Expected NACK")
	}
	if d.CmdRetData() != 0x42 {
		t.Errorf("Expected return data 0x42, got %#x", d.CmdRetData())
	}
}

func TestDriverAbortReason(t *testing.T) {
	d, sim := newSimDriver()
	d.Initialize()

	sim.Poke(cbusAddr, 0x94, intrXfrAbortT)
	sim.Poke(cbusAddr, 0x9A, 0x10)
	d.ProcessInterrupts()

	if d.Status()&StatusXfrAbortT == 0 {
		t.Error("Expected transmit abort flag")
	}
	if d.MscAbortTransReason() != 0x10 {
		t.Errorf("Expected reason 0x10, got %#x", d.MscAbortTransReason())
	}
}

func TestDriverWriteCommand(t *testing.T) {
	d, sim := newSimDriver()

	burst := Request{Command: mhl.CmdWriteBurst, Offset: 0x44, Length: 3, Data: [16]uint8{7, 8, 9}}
	if err := d.WriteCommand(&burst); err != nil {
		t.Fatalf("WRITE_BURST failed: %v", err)
	}
	if sim.Peek(cbusAddr, 0xB9) != 0x44 || sim.Peek(cbusAddr, 0xC6) != 2 {
		t.Errorf("Unexpected burst setup offset=%#x len=%d", sim.Peek(cbusAddr, 0xB9), sim.Peek(cbusAddr, 0xC6))
	}
	if sim.Peek(cbusAddr, 0x62) != 9 {
		t.Error("Burst data not in scratchpad")
	}
	if sim.Peek(cbusAddr, 0xB8) != startWriteBurst {
		t.Errorf("Expected write-burst start, got %#x", sim.Peek(cbusAddr, 0xB8))
	}

	m := Request{Command: mhl.CmdMscMsg, Length: 2, Data: [16]uint8{mhl.MsgRapk, 0}}
	d.WriteCommand(&m)
	if sim.Peek(cbusAddr, 0xBA) != mhl.MsgRapk || sim.Peek(cbusAddr, 0xB8) != startMscMsg {
		t.Error("MSC_MSG not set up")
	}

	if err := d.WriteCommand(&Request{Command: 0x01}); err != ErrBadCommand {
		t.Errorf("Expected ErrBadCommand, got %v", err)
	}
	long := Request{Command: mhl.CmdWriteBurst, Length: 17}
	if err := d.WriteCommand(&long); err != ErrBurstLength {
		t.Errorf("Expected ErrBurstLength, got %v", err)
	}
}

func TestDriverEventGetters(t *testing.T) {
	d, sim := newSimDriver()
	d.Initialize()
	d.ClearStatus(d.Status())

	sim.Poke(cbusAddr, 0x92, intrWriteStatRcvd|intrSetIntRcvd)
	sim.Poke(cbusAddr, 0x30, mhl.StatDcapRdy)
	sim.Poke(cbusAddr, 0x31, mhl.StatPathEn)
	sim.Poke(cbusAddr, 0x20, mhl.IntDcapChg|mhl.IntDscrChg)
	if err := d.ProcessInterrupts(); err != nil {
		t.Fatalf("ProcessInterrupts failed: %v", err)
	}

	if !d.IntrFlag() || d.IntrFlag() {
		t.Error("Expected the interrupt flag once")
	}
	if !d.DevCapReady() || !d.DevCapChanged() || !d.PathEnabled() || !d.ScratchpadWritten() {
		t.Error("Expected DCAP_RDY, DCAP_CHG, PATH_EN and DSCR_CHG")
	}
	if d.DevCapReady() || d.DevCapChanged() || d.PathEnabled() {
		t.Error("Flags should clear once read")
	}
	if d.InterruptStatus() != intrWriteStatRcvd|intrSetIntRcvd {
		t.Errorf("Expected INTR_0 %#x, got %#x", intrWriteStatRcvd|intrSetIntRcvd, d.InterruptStatus())
	}
	d.ClearInterruptStatus()
	if d.InterruptStatus() != 0 {
		t.Errorf("Expected INTR_0 cleared, got %#x", d.InterruptStatus())
	}
}

func TestDriverRegisterAccess(t *testing.T) {
	d, sim := newSimDriver()
	if err := d.RegisterSet(reg(0x50), 0x5A); err != nil {
		t.Fatalf("RegisterSet failed: %v", err)
	}
	if sim.Peek(cbusAddr, 0x50) != 0x5A {
		t.Errorf("Expected 0x5a in the chip, got %#x", sim.Peek(cbusAddr, 0x50))
	}
	sim.Poke(cbusAddr, 0x51, 0xA5)
	if v, err := d.RegisterGet(reg(0x51)); err != nil || v != 0xA5 {
		t.Errorf("RegisterGet: got %#x (%v)", v, err)
	}
}

func TestDriverScratchpad(t *testing.T) {
	d, sim := newSimDriver()
	if err := d.WriteLocalScratchpad(4, []uint8{1, 2, 3}); err != nil {
		t.Fatalf("WriteLocalScratchpad failed: %v", err)
	}
	if sim.Peek(cbusAddr, 0x64) != 1 || sim.Peek(cbusAddr, 0x66) != 3 {
		t.Error("Scratchpad data not at offset 4")
	}
	if err := d.WriteLocalScratchpad(14, []uint8{1, 2, 3}); err != ErrBurstLength {
		t.Errorf("Expected ErrBurstLength past the end, got %v", err)
	}

	// The peer's write lands in the same window
	sim.Poke(cbusAddr, 0x60, 0xC3)
	ch := NewChannel(0, 0, d, nil)
	buf := make([]uint8, 32)
	if err := ch.ReadScratchpad(buf); err != nil {
		t.Fatalf("ReadScratchpad failed: %v", err)
	}
	if buf[0] != 0xC3 || buf[5] != 2 {
		t.Errorf("Unexpected scratchpad % x", buf[:mhl.ScratchpadSize])
	}
}
