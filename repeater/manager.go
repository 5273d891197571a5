package repeater

import (
	"log/slog"

	"sii953x/core"
)

type pipeState struct {
	inputPort uint8
	txOn      [NumTx]bool
}

type deferredHpd struct {
	timer core.Countdown
	pipe  Pipe
	ev    HpdEvent
}

// Manager owns the topology table and sequences every change through the
// transmitter and repeater hardware.
type Manager struct {
	cfg   Config
	tx    TxDriver
	hw    Hardware
	clock core.Clock
	log   *slog.Logger

	enabled    bool
	configured bool
	mode       Mode
	repeaters  int
	pipes      [NumPipe]pipeState

	service     core.Countdown
	lastService core.Millis
	deferred    [NumTx]deferredHpd
}

// New returns a manager with the repeater function off; call Configure to
// turn it on.
func New(cfg Config, tx TxDriver, hw Hardware, clock core.Clock) *Manager {
	if cfg.ServiceInterval == 0 {
		cfg.ServiceInterval = DefaultConfig().ServiceInterval
	}
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Manager{
		cfg:   cfg,
		tx:    tx,
		hw:    hw,
		clock: clock,
		log:   core.Logger("repeater"),
	}
}

// Init empties the topology table and re-initializes the repeater hardware
func (m *Manager) Init(powerUp bool) bool {
	m.pipes = [NumPipe]pipeState{}
	m.mode = ModeInitial
	m.repeaters = 0
	for i := range m.deferred {
		m.deferred[i].timer.Stop()
	}
	m.hw.Initialize(m.enabled, powerUp)
	return true
}

// Configure turns the repeater function on or off. Turning it off forces
// HDCP off on every transmitter. Repeating the current setting does nothing.
func (m *Manager) Configure(enable bool) bool {
	if m.configured == enable {
		return true
	}
	m.configured = enable
	m.enabled = enable
	m.Init(false)
	if !enable {
		for tx := 0; tx < NumTx; tx++ {
			m.tx.HdcpConfigure(tx, false, 0, false)
		}
	}
	m.log.Info("repeater", "enabled", enable)
	return true
}

// Enabled reports whether the repeater function is on
func (m *Manager) Enabled() bool { return m.enabled }

// Mode returns the current switch mode
func (m *Manager) Mode() Mode { return m.mode }

// Repeaters returns the number of active repeater instances
func (m *Manager) Repeaters() int { return m.repeaters }

// PipeOf returns the pipe driving tx, PipeNone if it is not on a pipe
func (m *Manager) PipeOf(tx int) Pipe {
	if tx < 0 || tx >= NumTx {
		return PipeNone
	}
	for p := range m.pipes {
		if m.pipes[p].txOn[tx] {
			return Pipe(p)
		}
	}
	return PipeNone
}

// InputPort returns the HDMI input feeding p
func (m *Manager) InputPort(p Pipe) uint8 {
	if p >= PipeNone {
		return 0
	}
	return m.pipes[p].inputPort
}

// TxOnPipe reports whether tx is bound to p
func (m *Manager) TxOnPipe(p Pipe, tx int) bool {
	if p >= PipeNone || tx < 0 || tx >= NumTx {
		return false
	}
	return m.pipes[p].txOn[tx]
}

func (m *Manager) txMask(p Pipe) uint8 {
	var mask uint8
	for tx, on := range m.pipes[p].txOn {
		if on {
			mask |= 1 << tx
		}
	}
	return mask
}

func (m *Manager) configurePipe(p Pipe) {
	m.hw.SetPipeConfig(p, m.pipes[p].inputPort, m.txMask(p))
}
