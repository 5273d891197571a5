package chip

import (
	"sii953x/core"
	"sii953x/repeater"
)

// Initialize implements repeater.Hardware
func (c *Chip) Initialize(enable, powerUp bool) {
	var v uint8
	if enable {
		v |= rptEnable
	}
	if powerUp {
		v |= rptPowerUp
	}
	c.write("rpt init", regRptCtrl, v)
	for p := range regHdcpState {
		c.write("rpt init", regHdcpState[p], 0)
	}
	c.write("rpt init", regRptIntr, 0xFF)
}

// SetSwitchMode implements repeater.Hardware
func (c *Chip) SetSwitchMode(m repeater.Mode) {
	c.check("rpt mode", c.regs.Modify(regRptCtrl, rptModeMsk, uint8(m)<<2))
}

// SetPipeConfig implements repeater.Hardware
func (c *Chip) SetPipeConfig(p repeater.Pipe, inputPort uint8, txMask uint8) {
	c.write("pipe config", regPipeCfg[p], inputPort&0x0F)
	c.write("pipe config", regPipeTx[p], txMask)
}

// SetActiveSource implements repeater.Hardware
func (c *Chip) SetActiveSource(p repeater.Pipe, port uint8) {
	c.check("pipe source", c.regs.Modify(regPipeCfg[p], 0x0F, port))
}

// SetPipeTxConnection implements repeater.Hardware
func (c *Chip) SetPipeTxConnection(p repeater.Pipe, tx int, on bool) {
	c.bits("pipe tx", regPipeTx[p], 1<<uint(tx), on)
}

// InterruptPending implements repeater.Hardware
func (c *Chip) InterruptPending(p repeater.Pipe) bool {
	v, ok := c.read("rpt intr", regRptIntr)
	return ok && v&(1<<uint(p)) != 0
}

// Handle implements repeater.Hardware. It acknowledges the pipe's
// interrupt; authentication progress is driven through the Hdcp calls.
func (c *Chip) Handle(p repeater.Pipe, elapsed core.Millis) {
	c.write("rpt intr", regRptIntr, 1<<uint(p))
}

// TxHpdChanged implements repeater.Hardware
func (c *Chip) TxHpdChanged(p repeater.Pipe, tx int, ev repeater.HpdEvent) {
	c.write("tx hpd", txReg(tx, offTxHpd), uint8(ev))
}

// TxHdcpDone implements repeater.Hardware
func (c *Chip) TxHdcpDone(p repeater.Pipe, tx int) {
	c.bits("tx hdcp done", txReg(tx, offTxHdcp), hdcpDone, true)
}

// UsOnlyAuthentication implements repeater.Hdcp
func (c *Chip) UsOnlyAuthentication(p repeater.Pipe, tx int) {
	c.bits("hdcp us only", regHdcpState[p], hsUsOnly, true)
}

// DsDdcAck implements repeater.Hdcp
func (c *Chip) DsDdcAck(p repeater.Pipe, tx int, ack bool) {
	c.bits("hdcp ddc ack", regHdcpState[p], hsDdcAck, ack)
}

// ProcessDsBstatus implements repeater.Hdcp. The status is passed upstream
// unchanged; a topology overflow downstream fails authentication.
func (c *Chip) ProcessDsBstatus(p repeater.Pipe, tx int, bstatus [2]uint8) bool {
	if !c.check("hdcp bstatus", c.regs.WriteBlock(regBstatus[p], bstatus[:])) {
		return false
	}
	return bstatus[0]&bstatusMaxDevs == 0 && bstatus[1]&bstatusMaxCascade == 0
}

// FinishUsPart2 implements repeater.Hdcp
func (c *Chip) FinishUsPart2(p repeater.Pipe, tx int, bksv [5]uint8) {
	c.bits("hdcp part2", regHdcpState[p], hsUsPart2, true)
}

// SetBcapsFifoReady implements repeater.Hdcp
func (c *Chip) SetBcapsFifoReady(p repeater.Pipe, ready bool) {
	c.bits("hdcp bcaps", regBcaps[p], bcapsFifoOK, ready)
}

// PrepareForKsvList implements repeater.Hdcp
func (c *Chip) PrepareForKsvList(p repeater.Pipe, tx int) bool {
	return c.check("hdcp ksv", c.regs.BitsSet(regHdcpState[p], hsKsvList, true))
}

// PrepareFor0KsvList implements repeater.Hdcp
func (c *Chip) PrepareFor0KsvList(p repeater.Pipe, tx int) bool {
	return c.check("hdcp ksv", c.regs.BitsSet(regHdcpState[p], hsZeroKsv, true))
}

// InformUsFailure implements repeater.Hdcp
func (c *Chip) InformUsFailure(p repeater.Pipe, tx int, fatal bool) {
	v := uint8(hsFailure)
	if fatal {
		v |= hsFatal
	}
	c.check("hdcp failure", c.regs.Modify(regHdcpState[p], hsFailure|hsFatal, v))
}

var (
	_ repeater.TxDriver = (*Chip)(nil)
	_ repeater.Hardware = (*Chip)(nil)
)
