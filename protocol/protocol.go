// Package protocol implements the bench link between the board and a host
// console: CRC-protected frames carrying VLQ-encoded commands, a command
// registry and the text dictionary the host reads with identify.
package protocol

import "errors"

// Version is reported in the link dictionary
const Version = "sii953x-0.3.0"

// Frame layout: [len][seq][payload...][crc-hi][crc-lo][sync]
const (
	HeaderSize  = 2
	TrailerSize = 3
	FrameMin    = HeaderSize + TrailerSize
	FrameMax    = 64
	PayloadMax  = FrameMax - FrameMin

	posLen = 0
	posSeq = 1

	SyncByte = 0x7E
	SeqDest  = 0x10
	SeqMask  = 0x0F
)

var (
	ErrInvalidVLQ     = errors.New("invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("buffer too small for VLQ")
	ErrFrameTooLong   = errors.New("frame too long")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotCommand     = errors.New("id is a response")
	ErrBadFormat      = errors.New("bad message format")
	ErrMissingArg     = errors.New("missing argument")
	ErrBadArg         = errors.New("bad argument value")
)

// nextSeq returns the sequence following seq, wrapping within the low nibble
func nextSeq(seq uint8) uint8 {
	return ((seq + 1) & SeqMask) | SeqDest
}
