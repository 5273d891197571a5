package cec

// PhysAddr is a CEC physical address a.b.c.d, one nibble per tree level.
type PhysAddr uint16

// PhysAddrInvalid marks an unknown or unreachable address
const PhysAddrInvalid PhysAddr = 0xFFFF

// Nibble returns level i of the address, 0 being the root's child
func (pa PhysAddr) Nibble(i int) uint8 {
	if i < 0 || i > 3 {
		return 0
	}
	return uint8(pa>>(12-4*uint(i))) & 0x0F
}

// Depth returns how many leading levels are set
func (pa PhysAddr) Depth() int {
	for i := 0; i < 4; i++ {
		if pa.Nibble(i) == 0 {
			return i
		}
	}
	return 4
}

// Child returns the address of the device on input port (0-based) of pa.
// An address already four levels deep has no children.
func (pa PhysAddr) Child(port uint8) PhysAddr {
	d := pa.Depth()
	if d >= 4 || port > 14 {
		return PhysAddrInvalid
	}
	return pa | PhysAddr(port+1)<<(12-4*uint(d))
}

// Bytes splits the address into operand order
func (pa PhysAddr) Bytes() (hi, lo uint8) {
	return uint8(pa >> 8), uint8(pa)
}

// String formats the address as a.b.c.d
func (pa PhysAddr) String() string {
	const hex = "0123456789abcdef"
	b := [7]byte{}
	for i := 0; i < 4; i++ {
		b[2*i] = hex[pa.Nibble(i)]
		if i < 3 {
			b[2*i+1] = '.'
		}
	}
	return string(b[:])
}
