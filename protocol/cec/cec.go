// Package cec holds the HDMI-CEC wire definitions used by the switch logic.
package cec

import "errors"

// LogAddr is a CEC logical address (0..15)
type LogAddr uint8

// Logical addresses
const (
	LaTV          LogAddr = 0x0
	LaRecorder1   LogAddr = 0x1
	LaRecorder2   LogAddr = 0x2
	LaTuner1      LogAddr = 0x3
	LaPlayback1   LogAddr = 0x4
	LaAudioSystem LogAddr = 0x5
	LaTuner2      LogAddr = 0x6
	LaTuner3      LogAddr = 0x7
	LaPlayback2   LogAddr = 0x8
	LaRecorder3   LogAddr = 0x9
	LaTuner4      LogAddr = 0xA
	LaPlayback3   LogAddr = 0xB
	LaFreeUse     LogAddr = 0xE
	LaBroadcast   LogAddr = 0xF
)

// Opcode is a CEC message opcode
type Opcode uint8

// Opcodes handled or emitted by the firmware
const (
	OpFeatureAbort          Opcode = 0x00
	OpImageViewOn           Opcode = 0x04
	OpTextViewOn            Opcode = 0x0D
	OpStandby               Opcode = 0x36
	OpUserControlPressed    Opcode = 0x44
	OpUserControlReleased   Opcode = 0x45
	OpGiveOsdName           Opcode = 0x46
	OpSetOsdName            Opcode = 0x47
	OpRoutingChange         Opcode = 0x80
	OpRoutingInformation    Opcode = 0x81
	OpActiveSource          Opcode = 0x82
	OpGivePhysicalAddress   Opcode = 0x83
	OpReportPhysicalAddress Opcode = 0x84
	OpRequestActiveSource   Opcode = 0x85
	OpSetStreamPath         Opcode = 0x86
	OpDeviceVendorID        Opcode = 0x87
	OpGiveDeviceVendorID    Opcode = 0x8C
	OpGiveDevicePowerStatus Opcode = 0x8F
	OpReportPowerStatus     Opcode = 0x90
	OpInactiveSource        Opcode = 0x9D
	OpCecVersion            Opcode = 0x9E
	OpGetCecVersion         Opcode = 0x9F
	OpAbort                 Opcode = 0xFF
)

// DeviceType values carried by Report Physical Address
const (
	DeviceTV             uint8 = 0
	DeviceRecorder       uint8 = 1
	DeviceTuner          uint8 = 3
	DevicePlayback       uint8 = 4
	DeviceAudioSystem    uint8 = 5
	DevicePureSwitch     uint8 = 6
	DeviceVideoProcessor uint8 = 7
)

// MaxArgs is the largest operand block of a CEC frame
const MaxArgs = 14

var (
	ErrShortFrame = errors.New("cec: frame has no opcode")
	ErrLongFrame  = errors.New("cec: frame exceeds 16 bytes")
	ErrBufferSize = errors.New("cec: buffer too small")
)

// Frame is one CEC message: header, opcode and operands.
type Frame struct {
	SrcDest  uint8
	Opcode   Opcode
	Args     [MaxArgs]uint8
	ArgCount int
}

// NewFrame builds a frame; operands past MaxArgs are dropped
func NewFrame(src, dest LogAddr, op Opcode, args ...uint8) Frame {
	f := Frame{
		SrcDest: uint8(src)<<4 | uint8(dest)&0x0F,
		Opcode:  op,
	}
	f.ArgCount = copy(f.Args[:], args)
	return f
}

// Source returns the initiator field of the header
func (f *Frame) Source() LogAddr {
	return LogAddr(f.SrcDest >> 4)
}

// Dest returns the destination field of the header
func (f *Frame) Dest() LogAddr {
	return LogAddr(f.SrcDest & 0x0F)
}

// IsBroadcast reports whether the frame was sent to all devices
func (f *Frame) IsBroadcast() bool {
	return f.Dest() == LaBroadcast
}

// PhysAddrArg reads a big-endian physical address at operand i
func (f *Frame) PhysAddrArg(i int) PhysAddr {
	if i < 0 || i+1 >= f.ArgCount {
		return PhysAddrInvalid
	}
	return PhysAddr(f.Args[i])<<8 | PhysAddr(f.Args[i+1])
}

// Encode writes the frame as it goes on the bus and returns the length
func (f *Frame) Encode(buf []byte) (int, error) {
	if f.ArgCount < 0 || f.ArgCount > MaxArgs {
		return 0, ErrLongFrame
	}
	n := 2 + f.ArgCount
	if len(buf) < n {
		return 0, ErrBufferSize
	}
	buf[0] = f.SrcDest
	buf[1] = uint8(f.Opcode)
	copy(buf[2:n], f.Args[:f.ArgCount])
	return n, nil
}

// Decode parses a bus message. A header-only poll is rejected with
// ErrShortFrame.
func Decode(b []byte) (Frame, error) {
	var f Frame
	if len(b) < 2 {
		return f, ErrShortFrame
	}
	if len(b) > 2+MaxArgs {
		return f, ErrLongFrame
	}
	f.SrcDest = b[0]
	f.Opcode = Opcode(b[1])
	f.ArgCount = copy(f.Args[:], b[2:])
	return f, nil
}
