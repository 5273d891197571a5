package cbus

import "sii953x/cra"

func reg(offset uint8) cra.Addr {
	return cra.Reg(cra.PageCBUS, offset)
}

// CBUS page registers
var (
	regDevCap0       = reg(0x00)
	regSetInt0       = reg(0x20)
	regWriteStat0    = reg(0x30)
	regWriteStat1    = reg(0x31)
	regScratchpad0   = reg(0x60)
	regSetInt0Mask   = reg(0x80)
	regBusStatus     = reg(0x91)
	regIntr0         = reg(0x92)
	regIntr0Mask     = reg(0x93)
	regIntr1         = reg(0x94)
	regIntr1Mask     = reg(0x95)
	regCecAbort      = reg(0x96)
	regDdcAbort      = reg(0x98)
	regXfrAbortT     = reg(0x9A)
	regXfrAbortR     = reg(0x9C)
	regPriStart      = reg(0xB8)
	regPriAddrCmd    = reg(0xB9)
	regPriWrData1    = reg(0xBA)
	regPriWrData2    = reg(0xBB)
	regPriRdData1    = reg(0xBC)
	regPriVsCmd      = reg(0xBF)
	regPriVsData     = reg(0xC0)
	regWriteBurstLen = reg(0xC6)
)

// INTR_0 bits
const (
	intrConnectChg     = 0x01
	intrMscCmdDone     = 0x02
	intrHpdRcvd        = 0x04
	intrWriteStatRcvd  = 0x08
	intrMscMsgRcvd     = 0x10
	intrWriteBurstRcvd = 0x20
	intrSetIntRcvd     = 0x40
	intrCmdDoneNack    = 0x80
)

// INTR_1 bits
const (
	intrHeartbeatTimeout = 0x01
	intrCecAbort         = 0x02
	intrDdcAbort         = 0x04
	intrXfrAbortR        = 0x08
	intrPktRcvd          = 0x20
	intrXfrAbortT        = 0x40
)

// PRI_START bits
const (
	startMscCmd       = 0x01
	startMscMsg       = 0x02
	startReadDevCap   = 0x04
	startSetIntWrStat = 0x08
	startWriteBurst   = 0x10
)

const busConnected = 0x01
