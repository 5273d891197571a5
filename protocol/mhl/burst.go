package mhl

// Write-burst IDs of the 3D capability transfer
const (
	Burst3DVic = 0x0010
	Burst3DDtd = 0x0011
)

// Burst3DEntries is the number of VDI entries carried per 3D burst
const Burst3DEntries = 5

// 3D support bits of a VDI low byte
const (
	Vdi3DFrameSequential = 0x01
	Vdi3DTopBottom       = 0x02
	Vdi3DLeftRight       = 0x04
)

// VDI is one video descriptor of a 3D capability burst
type VDI struct {
	H, L uint8
}

// Build3DBurst formats burst number seq (1-based) of a 3D_VIC or 3D_DTD
// transfer of total entries. The checksum byte makes the 16 bytes sum to zero.
func Build3DBurst(id uint16, total, seq int, entries []VDI) [ScratchpadSize]uint8 {
	var b [ScratchpadSize]uint8
	if len(entries) > Burst3DEntries {
		entries = entries[:Burst3DEntries]
	}
	b[0] = uint8(id >> 8)
	b[1] = uint8(id)
	b[3] = uint8(total)
	b[4] = uint8(seq)
	b[5] = uint8(len(entries))
	for i, e := range entries {
		b[6+2*i] = e.H
		b[7+2*i] = e.L
	}
	b[2] = -Checksum(b[:])
	return b
}

// Checksum returns the byte sum of p
func Checksum(p []uint8) uint8 {
	var sum uint8
	for _, v := range p {
		sum += v
	}
	return sum
}

// Burst3DCount returns how many bursts a transfer of total entries needs;
// an empty list still takes one burst.
func Burst3DCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + Burst3DEntries - 1) / Burst3DEntries
}
