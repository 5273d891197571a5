// Package board owns one instance of every firmware component and runs the
// superloop pass that drives them: CBUS channels, the CEC switch dispatcher,
// the repeater topology manager and the bench link.
package board

import (
	"errors"
	"io"
	"log/slog"

	"tinygo.org/x/drivers"

	"sii953x/cbus"
	"sii953x/cecswitch"
	"sii953x/core"
	"sii953x/cra"
	"sii953x/protocol"
	"sii953x/protocol/cec"
	"sii953x/protocol/mhl"
	"sii953x/repeater"
)

// ErrMissingPeripheral is returned by New when a required peripheral is nil
var ErrMissingPeripheral = errors.New("board: missing peripheral")

// KeySink receives remote-control input arriving over MHL
type KeySink interface {
	// RcpKey handles a key code and reports whether it had an effect
	RcpKey(port, key uint8) bool

	// Content reports a RAP content on or off request
	Content(port uint8, on bool)
}

// Peripherals are the board parts the firmware core drives
type Peripherals struct {
	I2C      []drivers.I2C
	Tx       repeater.TxDriver
	Repeater repeater.Hardware
	Board    cecswitch.Board
	CEC      CECBus
	Keys     KeySink
	Link     io.Writer
	Clock    core.Clock
}

// App is the firmware of one board
type App struct {
	cfg   *Config
	p     Peripherals
	log   *slog.Logger
	clock core.Clock

	dev cecDevice
	sw  *cecswitch.Switch
	rep *repeater.Manager
	bus *cbus.Bus

	reg    *protocol.Registry
	link   *protocol.Transport
	linkIn *protocol.FifoBuffer

	rx      frameQueue
	sched   core.Scheduler
	cecTask core.Task

	sourceSel [repeater.NumTx]uint8
	topo      repeater.Topology
	sinkReady [repeater.NumTx]bool
	reinit    bool
	logging   bool
}

// New builds the components from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config, p Peripherals) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
		applyDefaults(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p.Tx == nil || p.Repeater == nil || p.Board == nil {
		return nil, ErrMissingPeripheral
	}
	if len(cfg.CBUS) > 0 && len(p.I2C) == 0 {
		return nil, ErrMissingPeripheral
	}
	if p.Clock == nil {
		p.Clock = core.SystemClock{}
	}
	if p.Link == nil {
		p.Link = io.Discard
	}

	a := &App{
		cfg:   cfg,
		p:     p,
		log:   core.Logger("board"),
		clock: p.Clock,
		dev: cecDevice{
			pa:       cec.PhysAddr(cfg.CEC.PhysicalAddress),
			la:       cec.LogAddr(cfg.CEC.LogicalAddress),
			devType:  cfg.CEC.DeviceType,
			activeLA: cec.LaBroadcast,
			port:     cfg.CEC.InputPort,
			bus:      p.CEC,
		},
		sourceSel: cfg.Topology.SourceSel,
	}
	a.dev.sent = a.reportSent
	a.topo, _ = cfg.Topology.Topology()

	a.sw = cecswitch.New(cfg.Switch, &a.dev, p.Board, p.Clock)
	a.rep = repeater.New(cfg.Repeater, p.Tx, p.Repeater, p.Clock)

	events := &cbusEvents{a: a}
	chs := make([]*cbus.Channel, 0, len(cfg.CBUS))
	for i, cc := range cfg.CBUS {
		regs := cra.New(p.I2C, cra.DefaultPageMap(cc.Instance))
		ch := cbus.NewChannel(i, cc.Port, cbus.NewDriver(regs), events)
		ch.Set3DSupport(vdis(cc.VIC), vdis(cc.DTD))
		chs = append(chs, ch)
	}
	a.bus = cbus.NewBus(chs...)

	a.reg = protocol.NewRegistry()
	a.link = protocol.NewTransport(a.reg, p.Link)
	a.linkIn = protocol.NewFifoBuffer(256)
	a.registerCommands()

	a.cecTask.Handler = a.runCECTask
	return a, nil
}

func vdis(flags []uint8) []mhl.VDI {
	out := make([]mhl.VDI, len(flags))
	for i, f := range flags {
		out[i] = mhl.VDI{L: f}
	}
	return out
}

// Init brings every component to its start state and applies the
// configured topology. A CBUS channel that fails to initialize is reported
// but does not stop the rest of the board.
func (a *App) Init() error {
	core.SetTimeoutHandler(a.timeout)

	a.rep.Configure(a.cfg.Repeater.Enable)
	a.rep.ConfigureTopology(a.sourceSel, a.topo, [repeater.NumTx]bool{})
	for tx := range a.sinkReady {
		a.sinkReady[tx] = a.p.Tx.Status(tx).SinkReady
	}

	a.sw.TaskInit()
	a.sw.SrvStart()
	a.sw.SendRouteInfo()

	a.cecTask.Wake = a.clock.ElapsedMs()
	a.sched.Add(&a.cecTask)

	err := a.bus.Initialize()
	if err != nil {
		a.log.Error("cbus init", "err", err)
	}
	a.log.Info("board up", "pa", a.dev.pa.String(), "channels", a.bus.Len())
	return err
}

// Poll runs one superloop pass
func (a *App) Poll() {
	now := a.clock.ElapsedMs()

	if a.reinit {
		a.reinit = false
		if err := a.bus.Initialize(); err != nil {
			a.log.Error("cbus reinit", "err", err)
		}
	}
	if a.linkIn.Available() > 0 {
		a.link.Receive(a.linkIn)
	}
	if err := a.bus.Handle(now); err != nil {
		a.log.Warn("cbus", "err", err)
	}
	if f, ok := a.rx.pop(); ok {
		a.runCEC(&f)
		a.sched.Remove(&a.cecTask)
		a.cecTask.Wake = now + a.sw.NextInvocation()
		a.sched.Add(&a.cecTask)
	}
	a.sched.Dispatch(now)
	a.watchTx()
	a.rep.Task(now)
}

// watchTx passes downstream hot-plug changes to the repeater
func (a *App) watchTx() {
	for tx := range a.sinkReady {
		ready := a.p.Tx.Status(tx).SinkReady
		if ready == a.sinkReady[tx] {
			continue
		}
		a.sinkReady[tx] = ready
		ev := repeater.HpdOff
		if ready {
			ev = repeater.HpdOn
		}
		a.log.Debug("tx hpd", "tx", tx, "ready", ready)
		a.rep.TxHpdConnection(tx, ev)
	}
}

// NextWake returns the milliseconds until Poll has timed work. Interrupts
// and received data need a poll regardless.
func (a *App) NextWake() core.Millis {
	now := a.clock.ElapsedMs()
	next := a.rep.NextService(now)
	if d, ok := a.sched.Next(now); ok && d < next {
		next = d
	}
	return next
}

func (a *App) runCECTask(t *core.Task, now core.Millis) uint8 {
	a.runCEC(nil)
	t.Wake = now + a.sw.NextInvocation()
	return core.SF_RESCHEDULE
}

func (a *App) runCEC(msg *cec.Frame) {
	fb := a.sw.TaskProcess(msg)
	switch fb {
	case cecswitch.FeedbackNone:
	case cecswitch.FeedbackRouteDone:
		a.log.Debug("route announced")
	case cecswitch.FeedbackNonSwitchCmd:
		a.log.Debug("not a switch message", "op", uint8(msg.Opcode))
	default:
		a.log.Info("cec", "feedback", fb.String())
	}
	if fb != cecswitch.FeedbackNone {
		a.sendEvent("cec_feedback", uint32(fb))
	}
	if port, ok := a.dev.takePortChange(); ok {
		a.selectInput(port)
	}
}

// selectInput moves the main pipe to port and announces the new route
func (a *App) selectInput(port uint8) {
	for tx, src := range a.topo.PipeSel {
		if src == repeater.SourceMain {
			a.sourceSel[tx] = port
		}
	}
	a.rep.ConfigureTopology(a.sourceSel, a.topo, [repeater.NumTx]bool{})
	a.sw.RoutingChangeSend(port)
	a.dev.port = port
}

// ReceiveCEC queues a frame from the CEC receiver for the next poll
func (a *App) ReceiveCEC(f cec.Frame) bool {
	if !a.rx.push(f) {
		a.log.Warn("CEC receive queue full", "op", uint8(f.Opcode))
		return false
	}
	return true
}

// BecomeActiveSource announces this board as the CEC active source. Later
// SET_STREAM_PATH requests are then answered with ACTIVE_SOURCE.
func (a *App) BecomeActiveSource() error {
	return a.dev.claimActive()
}

// SetTopology applies a new pipe mapping
func (a *App) SetTopology(sourceSel [repeater.NumTx]uint8, topo repeater.Topology, hdcpRestart [repeater.NumTx]bool) {
	a.sourceSel, a.topo = sourceSel, topo
	a.rep.ConfigureTopology(sourceSel, topo, hdcpRestart)
}

// Topology returns the requested pipe mapping
func (a *App) Topology() ([repeater.NumTx]uint8, repeater.Topology) {
	return a.sourceSel, a.topo
}

// LinkInput is where the link UART delivers received bytes
func (a *App) LinkInput() io.Writer { return a.linkIn }

// DebugWriter returns a log sink that sends text over the link
func (a *App) DebugWriter() core.DebugWriter {
	return func(s string) {
		if a.logging {
			return
		}
		a.logging = true
		defer func() { a.logging = false }()
		for len(s) > 0 {
			n := min(len(s), logChunk)
			chunk := []byte(s[:n])
			s = s[n:]
			a.link.SendResponse("log", func(out protocol.OutputBuffer) {
				protocol.EncodeVLQBytes(out, chunk)
			})
		}
	}
}

func (a *App) Switch() *cecswitch.Switch      { return a.sw }
func (a *App) Repeater() *repeater.Manager    { return a.rep }
func (a *App) Bus() *cbus.Bus                 { return a.bus }
func (a *App) Registry() *protocol.Registry   { return a.reg }
func (a *App) Transport() *protocol.Transport { return a.link }

func (a *App) timeout(component string) {
	a.log.Error("hardware timeout", "component", component)
	if component == "cbus" {
		a.reinit = true
	}
}

func (a *App) reportSent(f *cec.Frame) {
	var buf [2 + cec.MaxArgs]uint8
	n, err := f.Encode(buf[:])
	if err != nil {
		return
	}
	a.link.SendResponse("cec_tx", func(out protocol.OutputBuffer) {
		protocol.EncodeVLQBytes(out, buf[:n])
	})
}
