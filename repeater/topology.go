package repeater

// ConfigureTopology moves the transmitters to the pipes in topo and points
// each pipe at the input in sourceSel. sourceSel and hdcpRestart are indexed
// by transmitter; a pipe takes its input from the lowest transmitter routed
// to it. hdcpRestart re-asserts HPD on a transmitter whose pipe is
// otherwise unchanged. The call does nothing while the repeater is off, and
// a repeat of the current topology makes no hardware calls.
func (m *Manager) ConfigureTopology(sourceSel [NumTx]uint8, topo Topology, hdcpRestart [NumTx]bool) {
	if !m.enabled {
		return
	}

	modeChange := false
	if m.mode != ModeSingle {
		m.mode = ModeSingle
		m.repeaters = 1
		modeChange = true
	}

	var txChange [NumTx]bool
	var pipeChange [NumPipe]bool
	var inputOwner [NumPipe]int
	for p := range inputOwner {
		inputOwner[p] = -1
	}
	for tx := NumTx - 1; tx >= 0; tx-- {
		if p := topo.PipeSel[tx].Pipe(); p != PipeNone {
			inputOwner[p] = tx
		}
	}

	for tx := 0; tx < NumTx; tx++ {
		prev := m.PipeOf(tx)
		next := topo.PipeSel[tx].Pipe()

		if prev != next {
			txChange[tx] = true
			if prev != PipeNone {
				m.leavePipe(prev, tx)
			}
			if next != PipeNone {
				m.pipes[next].txOn[tx] = true
				pipeChange[next] = true
			}
		} else if modeChange && next != PipeNone {
			txChange[tx] = true
			pipeChange[next] = true
		}
	}

	for p, tx := range inputOwner {
		if tx < 0 || m.pipes[p].inputPort == sourceSel[tx] {
			continue
		}
		m.pipes[p].inputPort = sourceSel[tx]
		m.hw.SetActiveSource(Pipe(p), sourceSel[tx])
		for t := range m.pipes[p].txOn {
			if m.pipes[p].txOn[t] {
				txChange[t] = true
			}
		}
		pipeChange[p] = true
	}

	for p := range pipeChange {
		if !pipeChange[p] {
			continue
		}
		for tx := 0; tx < NumTx; tx++ {
			if !m.pipes[p].txOn[tx] {
				continue
			}
			m.tx.HdcpConfigure(tx, true, 0, true)
			if m.tx.Status(tx).SinkReady {
				m.tx.Standby(tx)
				m.tx.HdcpDisable(tx)
			}
		}
	}

	if modeChange {
		m.hw.SetSwitchMode(m.mode)
		for p := range m.pipes {
			m.configurePipe(Pipe(p))
		}
	} else {
		for p := range pipeChange {
			if pipeChange[p] {
				m.configurePipe(Pipe(p))
			}
		}
	}

	now := m.clock.ElapsedMs()
	for p := range pipeChange {
		for tx := 0; tx < NumTx; tx++ {
			if !m.pipes[p].txOn[tx] {
				continue
			}
			if pipeChange[p] {
				st := m.tx.Status(tx)
				ev := HpdOff
				if st.SinkReady {
					ev = HpdOn
				}
				m.restoreHpd(now, Pipe(p), tx, ev, st.DsConnected)
			} else if hdcpRestart[tx] && m.tx.Status(tx).SinkReady {
				m.TxHpdConnection(tx, HpdOn)
			}
		}
	}

	for tx, ch := range txChange {
		if ch {
			m.log.Info("tx routed", "tx", tx, "pipe", m.PipeOf(tx).String(), "source", topo.PipeSel[tx].String())
		}
	}
}

// leavePipe takes tx out of p, going standalone first when a sink is attached
func (m *Manager) leavePipe(p Pipe, tx int) {
	if m.tx.Status(tx).DsConnected {
		m.tx.Standby(tx)
		m.tx.HdcpDisable(tx)
		m.tx.HdcpConfigure(tx, false, 0, false)
	}
	m.hw.SetPipeTxConnection(p, tx, false)
	m.pipes[p].txOn[tx] = false
	m.deferred[tx].timer.Stop()
}
