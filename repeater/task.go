package repeater

import "sii953x/core"

// Task runs the repeater handlers: every pipe on each service interval, and
// a pipe with a pending interrupt at once while enabled. Deferred HPD
// restores fire here when due.
func (m *Manager) Task(now core.Millis) {
	elapsed := core.Since(m.lastService, now)
	timeout := !m.service.Running(now)
	if timeout {
		m.lastService = now
		m.service.Arm(now, m.cfg.ServiceInterval)
	}
	for p := Pipe(0); p < NumPipe; p++ {
		if timeout || (m.enabled && m.hw.InterruptPending(p)) {
			m.hw.Handle(p, elapsed)
		}
	}

	for tx := range m.deferred {
		d := &m.deferred[tx]
		if d.timer.Expired(now) {
			d.timer.Stop()
			m.hw.TxHpdChanged(d.pipe, tx, d.ev)
		}
	}
}

// NextService returns the milliseconds until Task has timed work to do
func (m *Manager) NextService(now core.Millis) core.Millis {
	var r core.Recall
	r.Limit(&m.service)
	for i := range m.deferred {
		r.Limit(&m.deferred[i].timer)
	}
	return r.Next(now)
}

// HpdPending reports whether tx has a deferred HPD restore outstanding
func (m *Manager) HpdPending(tx int) bool {
	if tx < 0 || tx >= NumTx {
		return false
	}
	return m.deferred[tx].timer.Armed()
}

func (m *Manager) restoreHpd(now core.Millis, p Pipe, tx int, ev HpdEvent, connected bool) {
	if connected && m.cfg.SettleDelay > 0 {
		d := &m.deferred[tx]
		d.pipe, d.ev = p, ev
		d.timer.Arm(now, m.cfg.SettleDelay)
		return
	}
	m.hw.TxHpdChanged(p, tx, ev)
}
