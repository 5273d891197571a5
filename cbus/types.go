// Package cbus implements the MHL sideband (CBUS) protocol engine: a
// bounded queue of MSC transactions per channel, device capability
// exchange, write bursts with the REQ_WRT/GRT_WRT handshake, 3D capability
// bursts and RCP/RAP/UCP remote-control messages with their replies.
package cbus

import (
	"errors"

	"sii953x/core"
	"sii953x/protocol/mhl"
)

// Timeouts in milliseconds
const (
	HpdWaitTimeout     core.Millis = 120
	AbortHoldTime      core.Millis = 2100
	MsgRspTimeout      core.Millis = 3200
	WriteReqTimeout    core.Millis = 1100
	InitDelay          core.Millis = 500
	RcpeRcpkGap        core.Millis = 300
	RcpRapAbortTimeout core.Millis = 1050
)

// QueueDepth is the number of caller requests a channel holds
const QueueDepth = 5

// ctlDepth is the number of engine-originated transactions a channel holds
const ctlDepth = 4

// NoPort marks a channel that is not bound to an input port
const NoPort = 0xFF

// State reports the outcome of the channel's last transaction
type State uint8

const (
	StateIdle     State = 0x00
	StateXfrDone  State = 0x01
	StateReceived State = 0x02
	StateFailed   State = 0x04
	StateSent     State = 0x08
)

// ReqStatus is the life cycle of one queue entry
type ReqStatus uint8

const (
	ReqIdle ReqStatus = iota
	ReqPending
	ReqSent
	ReqReceived
)

type reqTag uint8

const (
	tagNone reqTag = iota
	tag3DVic
	tag3DDtd
	tagHpdToggle
)

// Request is one MSC transaction. For MSC_MSG, Data[0] is the sub-command
// and Data[1] its operand; for WRITE_STAT and SET_INT, Offset is the peer
// register and Data[0] the value.
type Request struct {
	Status  ReqStatus
	Command uint8
	Offset  uint8
	Length  uint8
	Data    [mhl.ScratchpadSize]uint8

	tag reqTag
}

// Status holds the driver's event flags
type Status uint16

const (
	StatusInt               Status = 0x0001
	StatusNack              Status = 0x0002
	StatusDcapRdy           Status = 0x0004
	StatusPathEn            Status = 0x0008
	StatusDcapChg           Status = 0x0010
	StatusScratchpadWritten Status = 0x0020
	StatusReqWrt            Status = 0x0040
	StatusGrtWrt            Status = 0x0080
	Status3DReq             Status = 0x0100
	StatusCecAbort          Status = 0x0200
	StatusDdcAbort          Status = 0x0400
	StatusXfrAbortR         Status = 0x0800
	StatusXfrAbortT         Status = 0x1000
	StatusMscMsgRcvd        Status = 0x2000
	StatusMscCmdDone        Status = 0x4000
	StatusConnectionChg     Status = 0x8000
)

// MiscFlags track handshakes in progress
type MiscFlags uint16

const (
	MiscScratchpadBusy    MiscFlags = 0x0001
	MiscReqWrtPending     MiscFlags = 0x0002
	MiscWriteBurstPending MiscFlags = 0x0004
	MiscSentDcapRdy       MiscFlags = 0x0008
	MiscSentPathEn        MiscFlags = 0x0010
)

// Burst3DState is the progress of a 3D capability transfer
type Burst3DState uint8

const (
	Burst3DIdle Burst3DState = iota
	Burst3DSendingVic
	Burst3DSendingDtd
)

var (
	ErrQueueFull    = errors.New("cbus: command queue full")
	ErrNotConnected = errors.New("cbus: channel not connected")
	ErrNack         = errors.New("cbus: peer sent NACK")
	ErrAbort        = errors.New("cbus: transaction aborted")
	ErrTimeout      = errors.New("cbus: transaction timed out")
	ErrWriteTimeout = errors.New("cbus: write permission not granted")
	ErrMsgTimeout   = errors.New("cbus: no reply to MSC message")
	ErrBurstLength  = errors.New("cbus: write burst exceeds scratchpad")
	ErrUnsupported  = errors.New("cbus: peer does not support message")
	ErrBadCommand   = errors.New("cbus: unknown MSC command")
	ErrNoChip       = errors.New("cbus: no response from chip")
)
