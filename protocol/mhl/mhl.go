// Package mhl holds the MHL sideband (CBUS) wire definitions: MSC commands,
// MSC_MSG sub-commands and the peer-visible register space.
package mhl

// MSC command opcodes
const (
	CmdNoRspRqd    = 0x00
	CmdAck         = 0x33
	CmdNack        = 0x34
	CmdAbort       = 0x35
	CmdWriteStat   = 0x60 | 0x80
	CmdSetInt      = 0x60
	CmdReadDevCap  = 0x61
	CmdGetState    = 0x62
	CmdGetVendorID = 0x63
	CmdSetHpd      = 0x64
	CmdClrHpd      = 0x65
	CmdMscMsg      = 0x68
	CmdGetSc1Error = 0x69
	CmdGetDdcError = 0x6A
	CmdGetMscError = 0x6B
	CmdWriteBurst  = 0x6C
	CmdGetSc3Error = 0x6D
)

// MSC_MSG sub-commands
const (
	MsgE    = 0x02
	MsgRcp  = 0x10
	MsgRcpk = 0x11
	MsgRcpe = 0x12
	MsgRap  = 0x20
	MsgRapk = 0x21
	MsgUcp  = 0x30
	MsgUcpk = 0x31
	MsgUcpe = 0x32
)

// MSGE status
const (
	MscNoError       = 0x00
	MscInvalidSubcmd = 0x01
)

// RCPK/RCPE status values
const (
	RcpNoError        = 0x00
	RcpIneffectiveKey = 0x01
	RcpResponderBusy  = 0x02
	RcpOtherError     = 0xFF
)

// RAPK status values
const (
	RapNoError         = 0x00
	RapUnrecognizedAct = 0x01
	RapUnsupportedAct  = 0x02
	RapResponderBusy   = 0x03
	RapOtherError      = 0xFF
)

// UCPK/UCPE status values
const (
	UcpNoError        = 0x00
	UcpIneffectiveKey = 0x01
)

// RAP action codes
const (
	RapPoll       = 0x00
	RapContentOn  = 0x10
	RapContentOff = 0x11
)

// IsAck reports whether sub is a reply to an earlier RCP, RAP or UCP
func IsAck(sub uint8) bool {
	switch sub {
	case MsgE, MsgRcpk, MsgRcpe, MsgRapk, MsgUcpk, MsgUcpe:
		return true
	}
	return false
}

// ScratchpadSize is the write-burst payload size in bytes
const ScratchpadSize = 16

// Peer register space offsets
const (
	DevCapStart     = 0x00
	DevCapSize      = 0x10
	RegRchangeInt   = 0x20
	RegDchangeInt   = 0x21
	RegConnectedRdy = 0x30
	RegLinkMode     = 0x31
	ScratchpadStart = 0x40
)

// Device capability register offsets
const (
	DevCapDevState       = 0x00
	DevCapMhlVersion     = 0x01
	DevCapDevCat         = 0x02
	DevCapAdopterIDH     = 0x03
	DevCapAdopterIDL     = 0x04
	DevCapVidLinkMode    = 0x05
	DevCapAudLinkMode    = 0x06
	DevCapVideoType      = 0x07
	DevCapLogDevMap      = 0x08
	DevCapBandwidth      = 0x09
	DevCapFeatureFlag    = 0x0A
	DevCapDeviceIDH      = 0x0B
	DevCapDeviceIDL      = 0x0C
	DevCapScratchpadSize = 0x0D
	DevCapIntStatSize    = 0x0E
)

// RCHANGE_INT bits
const (
	IntDcapChg = 0x01
	IntDscrChg = 0x02
	IntReqWrt  = 0x04
	IntGrtWrt  = 0x08
	Int3DReq   = 0x10
)

// DCHANGE_INT bits
const IntEdidChg = 0x02

// Status register bits
const (
	StatDcapRdy = 0x01 // CONNECTED_RDY
	StatPathEn  = 0x08 // LINK_MODE
	StatMuted   = 0x10 // LINK_MODE
)

// FEATURE_FLAG bits
const (
	FeatureRcp        = 0x01
	FeatureRap        = 0x02
	FeatureSp         = 0x04
	FeatureUcpSend    = 0x08
	FeatureUcpReceive = 0x10
)

// Logical device types of LOG_DEV_MAP
const (
	LdDisplay = 0x01
	LdVideo   = 0x02
	LdAudio   = 0x04
	LdMedia   = 0x08
	LdTuner   = 0x10
	LdRecord  = 0x20
	LdSpeaker = 0x40
	LdGUI     = 0x80
)

// LocalDevCap is the capability block this sink publishes to its peer.
var LocalDevCap = [DevCapSize]uint8{
	DevCapDevState:       0x00,
	DevCapMhlVersion:     0x20,
	DevCapDevCat:         0x03 | 0x10 | 0x20, // dongle, POW, 900 mA
	DevCapAdopterIDH:     0x01,
	DevCapAdopterIDL:     0x42,
	DevCapVidLinkMode:    0x3F,
	DevCapAudLinkMode:    0x03,
	DevCapVideoType:      0x8F,
	DevCapLogDevMap:      LdSpeaker | LdDisplay,
	DevCapBandwidth:      0x0F,
	DevCapFeatureFlag:    FeatureRcp | FeatureRap | FeatureSp | FeatureUcpSend | FeatureUcpReceive,
	DevCapDeviceIDH:      0x95,
	DevCapDeviceIDL:      0x35,
	DevCapScratchpadSize: ScratchpadSize,
	DevCapIntStatSize:    0x33,
}
