package cecswitch

import "sii953x/protocol/cec"

// InputPort returns the 0-based input port behind pa, or NoPort. Input ports
// sit at tree level depth; own must occupy the level above it.
func InputPort(own, pa cec.PhysAddr, depth int) uint8 {
	if depth < 1 || depth > 3 || own.Nibble(depth-1) == 0 {
		return NoPort
	}
	n := pa.Nibble(depth)
	if n == 0 {
		return NoPort
	}
	return n - 1
}

func (s *Switch) inputPort(pa cec.PhysAddr) uint8 {
	return InputPort(s.dev.PhysicalAddress(), pa, s.cfg.Depth)
}
