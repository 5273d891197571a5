package chip

import (
	"sii953x/cra"
	"sii953x/repeater"
)

func txReg(tx int, off uint8) cra.Addr {
	return cra.Reg(txPage[tx], off)
}

// Status implements repeater.TxDriver
func (c *Chip) Status(tx int) repeater.TxStatus {
	v, ok := c.read("tx status", txReg(tx, offTxStat))
	if !ok {
		return repeater.TxStatus{}
	}
	return repeater.TxStatus{
		DsConnected: v&txStatHpd != 0,
		SinkReady:   v&txStatHpd != 0 && v&txStatRsen != 0,
	}
}

// Standby implements repeater.TxDriver
func (c *Chip) Standby(tx int) {
	c.check("tx standby", c.regs.Modify(txReg(tx, offTxCtrl), txPowerDown|txTmdsOn, txPowerDown))
}

// HdcpDisable implements repeater.TxDriver
func (c *Chip) HdcpDisable(tx int) {
	c.bits("tx hdcp off", txReg(tx, offTxHdcp), hdcpEnable|hdcpEncrypt, false)
}

// HdcpConfigure implements repeater.TxDriver
func (c *Chip) HdcpConfigure(tx int, on bool, keyIndex uint8, encrypt bool) {
	var v uint8
	if on {
		v = hdcpEnable | keyIndex<<4
		if encrypt {
			v |= hdcpEncrypt
		}
	}
	c.write("tx hdcp", txReg(tx, offTxHdcp), v)
}
