package cbus

import "sii953x/protocol/mhl"

// Set3DSupport sets the 3D video descriptors sent when the peer raises
// 3D_REQ: VIC entries first, then DTD entries.
func (c *Channel) Set3DSupport(vic, dtd []mhl.VDI) {
	c.vic = append(c.vic[:0], vic...)
	c.dtd = append(c.dtd[:0], dtd...)
}

// Burst3D returns the progress of the 3D transfer and its next sequence number
func (c *Channel) Burst3D() (Burst3DState, int) { return c.b3d.state, c.b3d.seq }

func (c *Channel) start3D() {
	if c.b3d.state != Burst3DIdle {
		c.log.Debug("3D request while transfer running")
		return
	}
	c.b3d = burst3D{state: Burst3DSendingVic, seq: 1}
}

// pump3D queues the next 3D burst once the previous one has completed
func (c *Channel) pump3D() {
	if c.b3d.state == Burst3DIdle || c.b3d.outstanding || c.queue.full() {
		return
	}
	list, id, tag := c.vic, uint16(mhl.Burst3DVic), tag3DVic
	if c.b3d.state == Burst3DSendingDtd {
		list, id, tag = c.dtd, mhl.Burst3DDtd, tag3DDtd
	}
	first := (c.b3d.seq - 1) * mhl.Burst3DEntries
	var entries []mhl.VDI
	if first < len(list) {
		entries = list[first:min(first+mhl.Burst3DEntries, len(list))]
	}
	b := mhl.Build3DBurst(id, len(list), c.b3d.seq, entries)

	r := Request{Command: mhl.CmdWriteBurst, Offset: mhl.ScratchpadStart, Length: mhl.ScratchpadSize, tag: tag}
	copy(r.Data[:], b[:])
	c.queue.push(r)
	c.b3d.outstanding = true
}

func (c *Channel) burst3DDone() {
	c.b3d.outstanding = false
	list := c.vic
	if c.b3d.state == Burst3DSendingDtd {
		list = c.dtd
	}
	if c.b3d.seq < mhl.Burst3DCount(len(list)) {
		c.b3d.seq++
		return
	}
	if c.b3d.state == Burst3DSendingVic {
		c.b3d = burst3D{state: Burst3DSendingDtd, seq: 1}
		return
	}
	c.b3d = burst3D{}
	c.log.Info("3D support sent", "vic", len(c.vic), "dtd", len(c.dtd))
}

func (c *Channel) abort3D(err error) {
	c.b3d = burst3D{}
	c.log.Warn("3D transfer abandoned", "err", err)
}
