package repeater

import (
	"fmt"
	"testing"

	"sii953x/core"
)

type recorder struct {
	calls  []string
	status [NumTx]TxStatus
	irq    [NumPipe]bool
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Status(tx int) TxStatus { return r.status[tx] }
func (r *recorder) Standby(tx int)         { r.add("standby(%d)", tx) }
func (r *recorder) HdcpDisable(tx int)     { r.add("hdcp_disable(%d)", tx) }

func (r *recorder) HdcpConfigure(tx int, on bool, key uint8, encrypt bool) {
	r.add("hdcp_cfg(%d,%s)", tx, onOff(on))
}

func (r *recorder) Initialize(enable, powerUp bool) { r.add("init(%s)", onOff(enable)) }
func (r *recorder) SetSwitchMode(m Mode)            { r.add("switch_mode(%d)", m) }

func (r *recorder) SetPipeConfig(p Pipe, port uint8, mask uint8) {
	r.add("pipe_cfg(%s,%d,%#x)", p, port, mask)
}

func (r *recorder) SetActiveSource(p Pipe, port uint8) { r.add("active_src(%s,%d)", p, port) }

func (r *recorder) SetPipeTxConnection(p Pipe, tx int, on bool) {
	r.add("pipe_tx(%s,%d,%s)", p, tx, onOff(on))
}

func (r *recorder) InterruptPending(p Pipe) bool       { return r.irq[p] }
func (r *recorder) Handle(p Pipe, elapsed core.Millis) { r.add("handle(%s,%d)", p, elapsed) }

func (r *recorder) TxHpdChanged(p Pipe, tx int, ev HpdEvent) {
	r.add("hpd(%s,%d,%d)", p, tx, ev)
}

func (r *recorder) TxHdcpDone(p Pipe, tx int) { r.add("hdcp_done(%s,%d)", p, tx) }

func (r *recorder) UsOnlyAuthentication(p Pipe, tx int) { r.add("us_only(%s,%d)", p, tx) }
func (r *recorder) DsDdcAck(p Pipe, tx int, ack bool)   { r.add("ddc_ack(%s,%d)", p, tx) }

func (r *recorder) ProcessDsBstatus(p Pipe, tx int, b [2]uint8) bool {
	r.add("bstatus(%s,%d)", p, tx)
	return true
}

func (r *recorder) FinishUsPart2(p Pipe, tx int, bksv [5]uint8) { r.add("us_part2(%s,%d)", p, tx) }
func (r *recorder) SetBcapsFifoReady(p Pipe, ready bool)        { r.add("bcaps(%s)", p) }
func (r *recorder) PrepareForKsvList(p Pipe, tx int) bool       { return true }
func (r *recorder) PrepareFor0KsvList(p Pipe, tx int) bool      { return true }
func (r *recorder) InformUsFailure(p Pipe, tx int, fatal bool)  { r.add("us_fail(%s,%d)", p, tx) }

func newTestManager(settle core.Millis) (*Manager, *recorder, *core.ManualClock) {
	rec := &recorder{}
	clk := &core.ManualClock{}
	cfg := DefaultConfig()
	cfg.SettleDelay = settle
	m := New(cfg, rec, rec, clk)
	m.Configure(true)
	rec.calls = nil
	return m, rec, clk
}

func expectCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d calls %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestConfigureDisabledIsNoop(t *testing.T) {
	rec := &recorder{}
	m := New(DefaultConfig(), rec, rec, &core.ManualClock{})
	m.ConfigureTopology([NumTx]uint8{}, Topology{PipeSel: [NumTx]Source{SourceMain, SourceSub}}, [NumTx]bool{})
	if len(rec.calls) != 0 {
		t.Errorf("Expected no calls while disabled, got %v", rec.calls)
	}
}

func TestFirstTopologySetsMode(t *testing.T) {
	m, rec, _ := newTestManager(0)
	m.ConfigureTopology([NumTx]uint8{0, 1}, Topology{PipeSel: [NumTx]Source{SourceMain, SourceSub}}, [NumTx]bool{})

	expectCalls(t, rec.calls, []string{
		"active_src(sub,1)",
		"hdcp_cfg(0,on)",
		"hdcp_cfg(1,on)",
		"switch_mode(1)",
		"pipe_cfg(main,0,0x1)",
		"pipe_cfg(sub,1,0x2)",
		"hpd(main,0,0)",
		"hpd(sub,1,0)",
	})
	if m.Mode() != ModeSingle || m.Repeaters() != 1 {
		t.Errorf("Expected single repeater mode, got %d/%d", m.Mode(), m.Repeaters())
	}
	if m.PipeOf(0) != PipeMain || m.PipeOf(1) != PipeSub {
		t.Errorf("Unexpected pipes %s %s", m.PipeOf(0), m.PipeOf(1))
	}
}

func TestConfigureTopologyIdempotent(t *testing.T) {
	m, rec, _ := newTestManager(0)
	sel := [NumTx]uint8{2, 1}
	topo := Topology{PipeSel: [NumTx]Source{SourceMain, SourceSub}}
	m.ConfigureTopology(sel, topo, [NumTx]bool{})
	rec.calls = nil

	m.ConfigureTopology(sel, topo, [NumTx]bool{})
	if len(rec.calls) != 0 {
		t.Errorf("Expected zero calls on repeat, got %v", rec.calls)
	}
}

func TestMoveTxToSubPipe(t *testing.T) {
	m, rec, _ := newTestManager(0)
	rec.status[0] = TxStatus{SinkReady: true, DsConnected: true}
	m.ConfigureTopology([NumTx]uint8{0, 0}, Topology{PipeSel: [NumTx]Source{SourceMain, SourceDisabled}}, [NumTx]bool{})
	rec.calls = nil

	m.ConfigureTopology([NumTx]uint8{0, 0}, Topology{PipeSel: [NumTx]Source{SourceSub, SourceDisabled}}, [NumTx]bool{})

	expectCalls(t, rec.calls, []string{
		"standby(0)",
		"hdcp_disable(0)",
		"hdcp_cfg(0,off)",
		"pipe_tx(main,0,off)",
		"hdcp_cfg(0,on)",
		"standby(0)",
		"hdcp_disable(0)",
		"pipe_cfg(sub,0,0x1)",
		"hpd(sub,0,1)",
	})
	if m.TxOnPipe(PipeMain, 0) || !m.TxOnPipe(PipeSub, 0) {
		t.Error("Expected Tx0 on sub pipe only")
	}
}

func TestTxOnOnePipe(t *testing.T) {
	m, _, _ := newTestManager(0)
	seq := [][NumTx]Source{
		{SourceMain, SourceMain},
		{SourceSub, SourceMain},
		{SourceTPG, SourceSub},
		{SourceMain, SourceDisabled},
		{Source(9), SourceSub},
	}
	for i, sel := range seq {
		m.ConfigureTopology([NumTx]uint8{1, 1}, Topology{PipeSel: sel}, [NumTx]bool{})
		for tx := 0; tx < NumTx; tx++ {
			main, sub := m.TxOnPipe(PipeMain, tx), m.TxOnPipe(PipeSub, tx)
			if main && sub {
				t.Errorf("Step %d: tx %d on both pipes", i, tx)
			}
			if want := sel[tx].Pipe(); m.PipeOf(tx) != want {
				t.Errorf("Step %d: tx %d expected %s, got %s", i, tx, want, m.PipeOf(tx))
			}
		}
	}
}

func TestMoveToDisabledWithoutSink(t *testing.T) {
	m, rec, _ := newTestManager(0)
	m.ConfigureTopology([NumTx]uint8{}, Topology{PipeSel: [NumTx]Source{SourceMain, SourceDisabled}}, [NumTx]bool{})
	rec.calls = nil

	m.ConfigureTopology([NumTx]uint8{}, Topology{PipeSel: [NumTx]Source{SourceDisabled, SourceDisabled}}, [NumTx]bool{})
	expectCalls(t, rec.calls, []string{"pipe_tx(main,0,off)"})
	if m.PipeOf(0) != PipeNone {
		t.Errorf("Expected tx 0 off every pipe, got %s", m.PipeOf(0))
	}
}

func TestInputPortChange(t *testing.T) {
	m, rec, _ := newTestManager(0)
	topo := Topology{PipeSel: [NumTx]Source{SourceMain, SourceDisabled}}
	m.ConfigureTopology([NumTx]uint8{0, 0}, topo, [NumTx]bool{})
	rec.calls = nil

	m.ConfigureTopology([NumTx]uint8{3, 0}, topo, [NumTx]bool{})
	expectCalls(t, rec.calls, []string{
		"active_src(main,3)",
		"hdcp_cfg(0,on)",
		"pipe_cfg(main,3,0x1)",
		"hpd(main,0,0)",
	})
	if m.InputPort(PipeMain) != 3 {
		t.Errorf("Expected main input 3, got %d", m.InputPort(PipeMain))
	}
}

func TestSharedPipeTakesFirstTxInput(t *testing.T) {
	m, rec, _ := newTestManager(0)
	sel := [NumTx]uint8{1, 2}
	topo := Topology{PipeSel: [NumTx]Source{SourceMain, SourceMain}}
	m.ConfigureTopology(sel, topo, [NumTx]bool{})
	if m.InputPort(PipeMain) != 1 {
		t.Errorf("Expected main input from tx 0, got %d", m.InputPort(PipeMain))
	}
	rec.calls = nil

	m.ConfigureTopology(sel, topo, [NumTx]bool{})
	if len(rec.calls) != 0 {
		t.Errorf("Expected zero calls on repeat, got %v", rec.calls)
	}

	// With tx 0 gone the pipe follows tx 1
	m.ConfigureTopology(sel, Topology{PipeSel: [NumTx]Source{SourceDisabled, SourceMain}}, [NumTx]bool{})
	if m.InputPort(PipeMain) != 2 {
		t.Errorf("Expected main input from tx 1, got %d", m.InputPort(PipeMain))
	}
}

func TestSettleDelayDefersHpd(t *testing.T) {
	m, rec, clk := newTestManager(200)
	rec.status[0] = TxStatus{SinkReady: true, DsConnected: true}
	clk.Now = 1000
	m.ConfigureTopology([NumTx]uint8{}, Topology{PipeSel: [NumTx]Source{SourceMain, SourceDisabled}}, [NumTx]bool{})

	for _, c := range rec.calls {
		if c == "hpd(main,0,1)" {
			t.Fatal("HPD restored before the settle delay")
		}
	}
	if !m.HpdPending(0) {
		t.Fatal("Expected a deferred HPD restore")
	}

	rec.calls = nil
	m.Task(1199)
	for _, c := range rec.calls {
		if c == "hpd(main,0,1)" {
			t.Fatal("HPD restored early")
		}
	}
	m.Task(1200)
	if rec.calls[len(rec.calls)-1] != "hpd(main,0,1)" {
		t.Errorf("Expected HPD restore at the deadline, got %v", rec.calls)
	}
	if m.HpdPending(0) {
		t.Error("Deferred restore should be consumed")
	}
}

func TestHdcpRestartOnUnchangedPipe(t *testing.T) {
	m, rec, _ := newTestManager(0)
	rec.status[0] = TxStatus{SinkReady: true}
	topo := Topology{PipeSel: [NumTx]Source{SourceMain, SourceDisabled}}
	m.ConfigureTopology([NumTx]uint8{}, topo, [NumTx]bool{})
	rec.calls = nil

	m.ConfigureTopology([NumTx]uint8{}, topo, [NumTx]bool{true, true})
	expectCalls(t, rec.calls, []string{"hpd(main,0,1)"})
}

func TestConfigure(t *testing.T) {
	rec := &recorder{}
	m := New(DefaultConfig(), rec, rec, &core.ManualClock{})

	m.Configure(false)
	if len(rec.calls) != 0 {
		t.Errorf("Redundant disable should do nothing, got %v", rec.calls)
	}
	m.Configure(true)
	m.Configure(true)
	expectCalls(t, rec.calls, []string{"init(on)"})

	rec.calls = nil
	m.Configure(false)
	expectCalls(t, rec.calls, []string{"init(off)", "hdcp_cfg(0,off)", "hdcp_cfg(1,off)"})
	if m.Enabled() {
		t.Error("Expected repeater disabled")
	}
}

func TestTaskService(t *testing.T) {
	m, rec, _ := newTestManager(0)
	m.Task(0)
	expectCalls(t, rec.calls, []string{"handle(main,0)", "handle(sub,0)"})

	rec.calls = nil
	m.Task(10)
	if len(rec.calls) != 0 {
		t.Errorf("Expected no handler before the interval, got %v", rec.calls)
	}
	rec.irq[PipeSub] = true
	m.Task(20)
	expectCalls(t, rec.calls, []string{"handle(sub,20)"})

	rec.calls = nil
	rec.irq[PipeSub] = false
	m.Task(40)
	expectCalls(t, rec.calls, []string{"handle(main,40)", "handle(sub,40)"})
	if got := m.NextService(40); got != 40 {
		t.Errorf("Expected next service in 40 ms, got %d", got)
	}
}

func TestCallbacksFollowTxPipe(t *testing.T) {
	m, rec, _ := newTestManager(0)
	m.ConfigureTopology([NumTx]uint8{}, Topology{PipeSel: [NumTx]Source{SourceSub, SourceTPG}}, [NumTx]bool{})
	rec.calls = nil

	if !m.ProcessDsBstatus(0, [2]uint8{}) {
		t.Error("Expected BSTATUS accepted for tx 0")
	}
	if m.ProcessDsBstatus(1, [2]uint8{}) {
		t.Error("Tx 1 has no pipe; BSTATUS should be refused")
	}
	m.TxHdcpAuthDone(0)
	m.TxHpdConnection(1, HpdOn)
	expectCalls(t, rec.calls, []string{"bstatus(sub,0)", "hdcp_done(sub,0)"})
}

func TestParseSource(t *testing.T) {
	for _, src := range []Source{SourceMain, SourceSub, SourceTPG, SourceDisabled} {
		got, ok := ParseSource(src.String())
		if !ok || got != src {
			t.Errorf("Expected %s, got %s (%v)", src, got, ok)
		}
	}
	if _, ok := ParseSource("aux"); ok {
		t.Error("Expected aux rejected")
	}
}
