package chip

import (
	"sii953x/cra"
	"sii953x/repeater"
)

// Transmitter registers, one set per TX page
var txPage = [repeater.NumTx]cra.Page{cra.PageTxL0, cra.PageTxL1}

const (
	offTxCtrl = 0x08
	offTxStat = 0x09
	offTxHdcp = 0x0F
	offTxHpd  = 0x1A
)

// TX control bits
const (
	txPowerDown = 0x01
	txTmdsOn    = 0x10
)

// TX status bits
const (
	txStatHpd  = 0x02
	txStatRsen = 0x04
)

// TX HDCP control bits; the key index sits in the high nibble
const (
	hdcpEnable  = 0x01
	hdcpEncrypt = 0x02
	hdcpDone    = 0x08
)

// Repeater block, main pipe at offset, sub pipe at offset+1
var (
	regRptCtrl   = cra.Reg(cra.PagePP, 0x0C)
	regPipeCfg   = [repeater.NumPipe]cra.Addr{cra.Reg(cra.PagePP, 0x0A), cra.Reg(cra.PagePP, 0x0B)}
	regPipeTx    = [repeater.NumPipe]cra.Addr{cra.Reg(cra.PagePP, 0x0D), cra.Reg(cra.PagePP, 0x0E)}
	regRptIntr   = cra.Reg(cra.PagePP, 0x78)
	regBcaps     = [repeater.NumPipe]cra.Addr{cra.Reg(cra.PagePP5, 0x40), cra.Reg(cra.PagePP6, 0x40)}
	regBstatus   = [repeater.NumPipe]cra.Addr{cra.Reg(cra.PagePP5, 0x41), cra.Reg(cra.PagePP6, 0x41)}
	regHdcpState = [repeater.NumPipe]cra.Addr{cra.Reg(cra.PagePP5, 0x43), cra.Reg(cra.PagePP6, 0x43)}
)

// Repeater control bits; the switch mode sits in bits 2-3
const (
	rptEnable  = 0x01
	rptPowerUp = 0x02
	rptModeMsk = 0x0C
)

// Per-pipe HDCP state bits
const (
	hsUsOnly    = 0x01
	hsDdcAck    = 0x02
	hsKsvList   = 0x04
	hsZeroKsv   = 0x08
	hsUsPart2   = 0x10
	hsFailure   = 0x20
	hsFatal     = 0x40
	bcapsFifoOK = 0x20
)

// BSTATUS overflow bits, low byte and high byte
const (
	bstatusMaxDevs    = 0x80
	bstatusMaxCascade = 0x08
)

// CEC programming interface
var (
	regCecTxDest  = cra.Reg(cra.PageCPI, 0x88)
	regCecTxBuf   = cra.Reg(cra.PageCPI, 0x8F)
	regCecTxCount = cra.Reg(cra.PageCPI, 0x9F)
	regCecRxCount = cra.Reg(cra.PageCPI, 0xA3)
	regCecRxHdr   = cra.Reg(cra.PageCPI, 0xA4)
	regCecRxCtrl  = cra.Reg(cra.PageCPI, 0xC0)
)

const (
	cecTxStart   = 0x80
	cecRxReady   = 0x80
	cecRxLenMask = 0x1F
	cecRxClear   = 0x01
)
