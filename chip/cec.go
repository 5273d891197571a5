package chip

import (
	"errors"

	"sii953x/protocol/cec"
)

var ErrCECBusy = errors.New("chip: CEC transmitter busy")

// Send implements board.CECBus. The frame is queued in the CEC
// programming interface and sent by the chip.
func (c *Chip) Send(f *cec.Frame) error {
	var buf [2 + cec.MaxArgs]uint8
	n, err := f.Encode(buf[:])
	if err != nil {
		return err
	}
	count, err := c.regs.Read(regCecTxCount)
	if err != nil {
		return err
	}
	if count&cecTxStart != 0 {
		return ErrCECBusy
	}
	if err := c.regs.Write(regCecTxDest, buf[0]); err != nil {
		return err
	}
	if err := c.regs.WriteBlock(regCecTxBuf, buf[1:n]); err != nil {
		return err
	}
	return c.regs.Write(regCecTxCount, uint8(n-1)|cecTxStart)
}

// ReceiveCEC returns the frame waiting in the receive buffer, if any, and
// releases the buffer. Polling messages carry no opcode and are dropped.
func (c *Chip) ReceiveCEC() (cec.Frame, bool, error) {
	st, err := c.regs.Read(regCecRxCount)
	if err != nil || st&cecRxReady == 0 {
		return cec.Frame{}, false, err
	}
	n := min(int(st&cecRxLenMask), 1+cec.MaxArgs)

	var buf [2 + cec.MaxArgs]uint8
	err = c.regs.ReadBlock(regCecRxHdr, buf[:1+n])
	if werr := c.regs.Write(regCecRxCtrl, cecRxClear); err == nil {
		err = werr
	}
	if err != nil || n == 0 {
		return cec.Frame{}, false, err
	}
	f, err := cec.Decode(buf[:1+n])
	return f, err == nil, err
}
