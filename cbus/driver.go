package cbus

import (
	"log/slog"

	"sii953x/core"
	"sii953x/cra"
	"sii953x/protocol/mhl"
)

// Registers is the register access a Driver needs; *cra.Device provides it.
type Registers interface {
	Read(a cra.Addr) (uint8, error)
	Write(a cra.Addr, v uint8) error
	ReadBlock(a cra.Addr, p []uint8) error
	WriteBlock(a cra.Addr, p []uint8) error
}

// Driver is the register layer of one CBUS channel. ProcessInterrupts
// harvests the chip's interrupt registers into event flags which the
// engine, or any other caller, consumes with the getters.
type Driver struct {
	regs Registers
	log  *slog.Logger

	status    Status
	intStatus uint8
	busStatus uint8
	vsCmd     uint8
	vsData    uint8
	retData   [2]uint8

	cecAbortReason  uint8
	ddcAbortReason  uint8
	xfrAbortReasonT uint8
	xfrAbortReasonR uint8
}

// NewDriver returns a driver over the chip instance's registers
func NewDriver(regs Registers) *Driver {
	return &Driver{regs: regs, log: core.Logger("cbus_drv")}
}

// Initialize publishes the local device capabilities, unmasks the CBUS
// interrupts and samples the bus state. A chip that reads back 0xFF is
// reported as missing.
func (d *Driver) Initialize() error {
	bs, err := d.regs.Read(regBusStatus)
	if err != nil {
		return err
	}
	if bs == 0xFF {
		return ErrNoChip
	}
	if err := d.regs.WriteBlock(regDevCap0, mhl.LocalDevCap[:]); err != nil {
		return err
	}

	err = d.writeRegs(
		regWrite{regIntr0, 0xFF},
		regWrite{regIntr1, 0xFF},
		regWrite{regSetInt0, 0xFF},
		regWrite{regIntr0Mask, 0xFF},
		regWrite{regIntr1Mask, intrHeartbeatTimeout | intrCecAbort | intrDdcAbort | intrXfrAbortR | intrXfrAbortT},
		regWrite{regSetInt0Mask, 0xFF},
	)
	if err != nil {
		return err
	}

	core.Critical(func() {
		d.status = 0
		d.intStatus = 0
		d.busStatus = bs
		if bs&busConnected != 0 {
			d.status |= StatusConnectionChg
		}
	})
	return nil
}

// ProcessInterrupts reads and acknowledges the CBUS interrupt registers and
// folds them into the event flags
func (d *Driver) ProcessInterrupts() error {
	intr0, err := d.ackRead(regIntr0)
	if err != nil {
		return err
	}
	intr1, err := d.ackRead(regIntr1)
	if err != nil {
		return err
	}
	if intr0 == 0 && intr1 == 0 {
		return nil
	}

	var s Status
	if intr0&intrConnectChg != 0 {
		bs, err := d.regs.Read(regBusStatus)
		if err != nil {
			return err
		}
		d.busStatus = bs
		s |= StatusConnectionChg
	}
	if intr0&(intrMscCmdDone|intrCmdDoneNack) != 0 {
		if err := d.regs.ReadBlock(regPriRdData1, d.retData[:]); err != nil {
			return err
		}
		s |= StatusMscCmdDone
		if intr0&intrCmdDoneNack != 0 {
			s |= StatusNack
		}
	}
	if intr0&intrMscMsgRcvd != 0 {
		if d.vsCmd, err = d.regs.Read(regPriVsCmd); err != nil {
			return err
		}
		if d.vsData, err = d.regs.Read(regPriVsData); err != nil {
			return err
		}
		s |= StatusMscMsgRcvd
	}
	if intr0&intrWriteStatRcvd != 0 {
		var ws [2]uint8
		if err := d.regs.ReadBlock(regWriteStat0, ws[:]); err != nil {
			return err
		}
		if ws[0]&mhl.StatDcapRdy != 0 {
			s |= StatusDcapRdy
		}
		if ws[1]&mhl.StatPathEn != 0 {
			s |= StatusPathEn
		}
	}
	if intr0&intrSetIntRcvd != 0 {
		si, err := d.ackRead(regSetInt0)
		if err != nil {
			return err
		}
		s |= setIntStatus(si)
	}
	if intr0&intrHpdRcvd != 0 {
		d.log.Debug("peer HPD changed")
	}

	reasons := []struct {
		bit    uint8
		reg    cra.Addr
		reason *uint8
		flag   Status
	}{
		{intrCecAbort, regCecAbort, &d.cecAbortReason, StatusCecAbort},
		{intrDdcAbort, regDdcAbort, &d.ddcAbortReason, StatusDdcAbort},
		{intrXfrAbortR, regXfrAbortR, &d.xfrAbortReasonR, StatusXfrAbortR},
		{intrXfrAbortT, regXfrAbortT, &d.xfrAbortReasonT, StatusXfrAbortT},
	}
	for _, r := range reasons {
		if intr1&r.bit == 0 {
			continue
		}
		v, err := d.ackRead(r.reg)
		if err != nil {
			return err
		}
		*r.reason = v
		s |= r.flag
	}
	if intr1&intrHeartbeatTimeout != 0 {
		d.log.Warn("CBUS heartbeat lost")
	}

	core.Critical(func() {
		d.status |= s | StatusInt
		d.intStatus = intr0
	})
	return nil
}

func setIntStatus(si uint8) Status {
	var s Status
	if si&mhl.IntDcapChg != 0 {
		s |= StatusDcapChg
	}
	if si&mhl.IntDscrChg != 0 {
		s |= StatusScratchpadWritten
	}
	if si&mhl.IntReqWrt != 0 {
		s |= StatusReqWrt
	}
	if si&mhl.IntGrtWrt != 0 {
		s |= StatusGrtWrt
	}
	if si&mhl.Int3DReq != 0 {
		s |= Status3DReq
	}
	return s
}

// ackRead reads a write-one-to-clear register and clears what it saw
func (d *Driver) ackRead(a cra.Addr) (uint8, error) {
	v, err := d.regs.Read(a)
	if err != nil || v == 0 {
		return v, err
	}
	return v, d.regs.Write(a, v)
}

// WriteCommand starts one MSC transaction
func (d *Driver) WriteCommand(req *Request) error {
	var start uint8
	var err error
	switch req.Command {
	case mhl.CmdWriteStat, mhl.CmdSetInt:
		err = d.writeRegs(regWrite{regPriAddrCmd, req.Offset}, regWrite{regPriWrData1, req.Data[0]})
		start = startSetIntWrStat
	case mhl.CmdReadDevCap:
		err = d.regs.Write(regPriAddrCmd, req.Offset)
		start = startReadDevCap
	case mhl.CmdMscMsg:
		err = d.writeRegs(
			regWrite{regPriAddrCmd, req.Command},
			regWrite{regPriWrData1, req.Data[0]},
			regWrite{regPriWrData2, req.Data[1]},
		)
		start = startMscMsg
	case mhl.CmdWriteBurst:
		if req.Length == 0 || req.Length > mhl.ScratchpadSize {
			return ErrBurstLength
		}
		err = d.writeRegs(regWrite{regPriAddrCmd, req.Offset}, regWrite{regWriteBurstLen, req.Length - 1})
		if err == nil {
			err = d.regs.WriteBlock(regScratchpad0, req.Data[:req.Length])
		}
		start = startWriteBurst
	case mhl.CmdSetHpd, mhl.CmdClrHpd, mhl.CmdGetState, mhl.CmdGetVendorID,
		mhl.CmdGetSc1Error, mhl.CmdGetDdcError, mhl.CmdGetMscError, mhl.CmdGetSc3Error:
		err = d.regs.Write(regPriAddrCmd, req.Command)
		start = startMscCmd
	default:
		return ErrBadCommand
	}
	if err != nil {
		return err
	}
	return d.regs.Write(regPriStart, start)
}

type regWrite struct {
	a cra.Addr
	v uint8
}

func (d *Driver) writeRegs(ws ...regWrite) error {
	for _, w := range ws {
		if err := d.regs.Write(w.a, w.v); err != nil {
			return err
		}
	}
	return nil
}

// Status returns the pending event flags
func (d *Driver) Status() Status {
	var s Status
	core.Critical(func() { s = d.status })
	return s
}

// ClearStatus drops the given event flags
func (d *Driver) ClearStatus(s Status) {
	core.Critical(func() { d.status &^= s })
}

func (d *Driver) take(s Status) bool {
	var set bool
	core.Critical(func() {
		set = d.status&s != 0
		d.status &^= s
	})
	return set
}

// IntrFlag reports and clears the any-interrupt flag
func (d *Driver) IntrFlag() bool { return d.take(StatusInt) }

// NackFromPeer reports and clears a NACK received for the last command
func (d *Driver) NackFromPeer() bool { return d.take(StatusNack) }

// DevCapReady reports and clears the peer's DCAP_RDY
func (d *Driver) DevCapReady() bool { return d.take(StatusDcapRdy) }

// DevCapChanged reports and clears the peer's DCAP_CHG
func (d *Driver) DevCapChanged() bool { return d.take(StatusDcapChg) }

// PathEnabled reports and clears the peer's PATH_EN
func (d *Driver) PathEnabled() bool { return d.take(StatusPathEn) }

// ScratchpadWritten reports and clears the peer's DSCR_CHG
func (d *Driver) ScratchpadWritten() bool { return d.take(StatusScratchpadWritten) }

// ReqWrt reports and clears a scratchpad write request from the peer
func (d *Driver) ReqWrt() bool { return d.take(StatusReqWrt) }

// GrtWrt reports and clears a scratchpad write grant from the peer
func (d *Driver) GrtWrt() bool { return d.take(StatusGrtWrt) }

// Req3D reports and clears the peer's 3D_REQ
func (d *Driver) Req3D() bool { return d.take(Status3DReq) }

// VsData returns the last MSC_MSG sub-command and operand
func (d *Driver) VsData() (cmd, data uint8) {
	return d.vsCmd, d.vsData
}

// CmdRetData returns the response byte of the last completed command
func (d *Driver) CmdRetData() uint8 {
	return d.retData[0]
}

// BusStatus returns the last sampled BUS_STATUS register
func (d *Driver) BusStatus() uint8 {
	return d.busStatus
}

// BusConnected reports whether the CBUS link is up
func (d *Driver) BusConnected() bool {
	return d.busStatus&busConnected != 0
}

// CecAbortReason returns the last CEC abort reason
func (d *Driver) CecAbortReason() uint8 { return d.cecAbortReason }

// DdcAbortReason returns the last DDC abort reason
func (d *Driver) DdcAbortReason() uint8 { return d.ddcAbortReason }

// MscAbortTransReason returns why our last MSC command was aborted
func (d *Driver) MscAbortTransReason() uint8 { return d.xfrAbortReasonT }

// MscAbortRcvrReason returns why a peer MSC command was aborted
func (d *Driver) MscAbortRcvrReason() uint8 { return d.xfrAbortReasonR }

// InterruptStatus returns the last INTR_0 value seen
func (d *Driver) InterruptStatus() uint8 {
	var v uint8
	core.Critical(func() { v = d.intStatus })
	return v
}

// ClearInterruptStatus forgets the last INTR_0 value
func (d *Driver) ClearInterruptStatus() {
	core.Critical(func() { d.intStatus = 0 })
}

// RegisterGet reads any chip register
func (d *Driver) RegisterGet(a cra.Addr) (uint8, error) {
	return d.regs.Read(a)
}

// RegisterSet writes any chip register
func (d *Driver) RegisterSet(a cra.Addr, v uint8) error {
	return d.regs.Write(a, v)
}

// DevCapRegister reads back one local device capability register
func (d *Driver) DevCapRegister(offset uint8) (uint8, error) {
	if offset >= mhl.DevCapSize {
		return 0, ErrBadCommand
	}
	return d.regs.Read(regDevCap0 + cra.Addr(offset))
}

// WriteLocalScratchpad stores data in the local scratchpad at offset
func (d *Driver) WriteLocalScratchpad(offset uint8, data []uint8) error {
	if int(offset)+len(data) > mhl.ScratchpadSize {
		return ErrBurstLength
	}
	return d.regs.WriteBlock(regScratchpad0+cra.Addr(offset), data)
}

// ReadLocalScratchpad returns what the peer last wrote to the scratchpad
func (d *Driver) ReadLocalScratchpad(p []uint8) error {
	if len(p) > mhl.ScratchpadSize {
		p = p[:mhl.ScratchpadSize]
	}
	return d.regs.ReadBlock(regScratchpad0, p)
}
