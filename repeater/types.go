// Package repeater keeps the repeater topology: which input feeds each
// internal pipe and which pipe feeds each transmitter. Topology changes are
// applied in a fixed order so that a transmitter never carries protected
// content, or a half-configured picture, while it moves between pipes.
package repeater

import "sii953x/core"

// NumTx is the number of HDMI transmitters
const NumTx = 2

// NumPipe is the number of internal pipes
const NumPipe = 2

// Source is what a transmitter outputs
type Source uint8

const (
	SourceMain Source = iota
	SourceSub
	SourceTPG
	SourceDisabled
)

// Pipe returns the pipe behind s, PipeNone for the pattern generator,
// disabled or unknown values
func (s Source) Pipe() Pipe {
	switch s {
	case SourceMain:
		return PipeMain
	case SourceSub:
		return PipeSub
	}
	return PipeNone
}

func (s Source) String() string {
	switch s {
	case SourceMain:
		return "main"
	case SourceSub:
		return "sub"
	case SourceTPG:
		return "tpg"
	}
	return "disabled"
}

// ParseSource returns the source named by s, as printed by String
func ParseSource(s string) (Source, bool) {
	for src := SourceMain; src <= SourceDisabled; src++ {
		if src.String() == s {
			return src, true
		}
	}
	return SourceDisabled, false
}

// Pipe is an internal video path
type Pipe uint8

const (
	PipeMain Pipe = iota
	PipeSub
	PipeNone
)

func (p Pipe) String() string {
	switch p {
	case PipeMain:
		return "main"
	case PipeSub:
		return "sub"
	}
	return "none"
}

// Mode is the repeater switch mode
type Mode uint8

const (
	ModeInitial Mode = iota
	ModeSingle
)

// Topology is the pipe selection of every transmitter
type Topology struct {
	PipeSel [NumTx]Source
}

// TxStatus is the downstream state reported by a transmitter
type TxStatus struct {
	SinkReady   bool
	DsConnected bool
}

// HpdEvent is a hot-plug change forwarded to the repeater hardware
type HpdEvent uint8

const (
	HpdOff HpdEvent = iota
	HpdOn
	HpdToggle
)

// TxDriver controls the transmitters
type TxDriver interface {
	Status(tx int) TxStatus
	Standby(tx int)
	HdcpDisable(tx int)
	HdcpConfigure(tx int, on bool, keyIndex uint8, encrypt bool)
}

// Hdcp is the repeater side of downstream HDCP authentication
type Hdcp interface {
	UsOnlyAuthentication(p Pipe, tx int)
	DsDdcAck(p Pipe, tx int, ack bool)
	ProcessDsBstatus(p Pipe, tx int, bstatus [2]uint8) bool
	FinishUsPart2(p Pipe, tx int, bksv [5]uint8)
	SetBcapsFifoReady(p Pipe, ready bool)
	PrepareForKsvList(p Pipe, tx int) bool
	PrepareFor0KsvList(p Pipe, tx int) bool
	InformUsFailure(p Pipe, tx int, fatal bool)
}

// Hardware is the repeater block of the chip, addressed per pipe
type Hardware interface {
	Hdcp

	Initialize(enable, powerUp bool)
	SetSwitchMode(m Mode)
	SetPipeConfig(p Pipe, inputPort uint8, txMask uint8)
	SetActiveSource(p Pipe, port uint8)
	SetPipeTxConnection(p Pipe, tx int, on bool)
	InterruptPending(p Pipe) bool
	Handle(p Pipe, elapsed core.Millis)
	TxHpdChanged(p Pipe, tx int, ev HpdEvent)
	TxHdcpDone(p Pipe, tx int)
}

// Config holds the manager's timing
type Config struct {
	Enable bool `json:"enable"`

	// ServiceInterval is the period of the repeater handler
	ServiceInterval core.Millis `json:"service_interval_ms"`

	// SettleDelay postpones the HPD restore of a connected transmitter after
	// a topology change; some MHL sources lose video without it. Zero
	// restores at once.
	SettleDelay core.Millis `json:"settle_delay_ms"`
}

// DefaultConfig returns the stock timing
func DefaultConfig() Config {
	return Config{
		Enable:          true,
		ServiceInterval: 40,
		SettleDelay:     200,
	}
}
