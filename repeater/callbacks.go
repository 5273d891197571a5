package repeater

// pipeFor returns the pipe owning tx while the repeater is on
func (m *Manager) pipeFor(tx int) (Pipe, bool) {
	if !m.enabled {
		return PipeNone, false
	}
	p := m.PipeOf(tx)
	if p == PipeNone {
		m.log.Debug("tx not on a pipe", "tx", tx)
		return PipeNone, false
	}
	return p, true
}

// TxHpdConnection forwards a transmitter hot-plug change to its pipe
func (m *Manager) TxHpdConnection(tx int, ev HpdEvent) {
	if p, ok := m.pipeFor(tx); ok {
		m.hw.TxHpdChanged(p, tx, ev)
	}
}

// TxHdcpAuthDone reports finished downstream authentication on tx
func (m *Manager) TxHdcpAuthDone(tx int) {
	if p, ok := m.pipeFor(tx); ok {
		m.hw.TxHdcpDone(p, tx)
	}
}

// UsOnlyAuthentication reports that only the upstream side of tx needs
// authenticating
func (m *Manager) UsOnlyAuthentication(tx int) {
	if p, ok := m.pipeFor(tx); ok {
		m.hw.UsOnlyAuthentication(p, tx)
	}
}

// DsDdcAck reports whether the downstream HDCP port of tx answered
func (m *Manager) DsDdcAck(tx int, ack bool) {
	if p, ok := m.pipeFor(tx); ok {
		m.hw.DsDdcAck(p, tx, ack)
	}
}

// ProcessDsBstatus hands the downstream BSTATUS of tx to its pipe
func (m *Manager) ProcessDsBstatus(tx int, bstatus [2]uint8) bool {
	if p, ok := m.pipeFor(tx); ok {
		return m.hw.ProcessDsBstatus(p, tx, bstatus)
	}
	return false
}

// FinishUsPart2 hands the downstream BKSV of tx to its pipe
func (m *Manager) FinishUsPart2(tx int, bksv [5]uint8) {
	if p, ok := m.pipeFor(tx); ok {
		m.hw.FinishUsPart2(p, tx, bksv)
	}
}

// SetBcapsFifoReady reports the BCAPS FIFO state seen by tx
func (m *Manager) SetBcapsFifoReady(tx int, ready bool) {
	if p, ok := m.pipeFor(tx); ok {
		m.hw.SetBcapsFifoReady(p, ready)
	}
}

// PrepareForKsvList reports that tx is about to receive a KSV list
func (m *Manager) PrepareForKsvList(tx int) bool {
	if p, ok := m.pipeFor(tx); ok {
		return m.hw.PrepareForKsvList(p, tx)
	}
	return false
}

// PrepareFor0KsvList reports that tx is about to receive an empty KSV list
func (m *Manager) PrepareFor0KsvList(tx int) bool {
	if p, ok := m.pipeFor(tx); ok {
		return m.hw.PrepareFor0KsvList(p, tx)
	}
	return false
}

// InformUsFailure reports an HDCP failure on tx; fatal means no retry
func (m *Manager) InformUsFailure(tx int, fatal bool) {
	if p, ok := m.pipeFor(tx); ok {
		m.hw.InformUsFailure(p, tx, fatal)
	}
}
