package board

import (
	"errors"
	"strconv"

	"sii953x/cecswitch"
	"sii953x/protocol"
	"sii953x/protocol/cec"
	"sii953x/repeater"
)

// logChunk keeps a log response inside one frame
const logChunk = 48

var (
	ErrNoChannel = errors.New("board: no such CBUS channel")
	ErrQueueFull = errors.New("board: CEC receive queue full")
)

// registerCommands publishes the bench commands and their responses
func (a *App) registerCommands() {
	r := a.reg
	r.Register("cec_inject", "frame=%*s", a.cmdCECInject)
	r.Register("topology", "sel0=%c sel1=%c pipe0=%c pipe1=%c restart=%c", a.cmdTopology)
	r.Register("repeater_enable", "enable=%c", a.cmdRepeaterEnable)
	r.Register("rcp_send", "ch=%c key=%c", a.cmdRcpSend)
	r.Register("rap_send", "ch=%c action=%c", a.cmdRapSend)
	r.Register("devcap", "ch=%c offset=%c", a.cmdDevCap)
	r.Register("route_info", "", a.cmdRouteInfo)
	r.Register("active_source", "", a.cmdActiveSource)
	r.Register("get_status", "", a.cmdGetStatus)

	r.Response("status", "enabled=%c mode=%c pipe0=%c pipe1=%c input=%c main=%c sub=%c route=%c")
	r.Response("devcap_value", "ch=%c offset=%c value=%c valid=%c")
	r.Response("cbus_link", "ch=%c on=%c")
	r.Response("cbus_msg", "ch=%c kind=%c sub=%c code=%c")
	r.Response("cec_tx", "frame=%*s")
	r.Response("cec_feedback", "fb=%c")
	r.Response("log", "msg=%*s")

	r.AddConstant("NUM_TX", strconv.Itoa(repeater.NumTx))
	r.AddConstant("NUM_PIPE", strconv.Itoa(repeater.NumPipe))
	r.AddConstant("CBUS_CHANNELS", strconv.Itoa(a.bus.Len()))
	r.AddEnumeration("source", []string{"main", "sub", "tpg", "disabled"})
	r.AddEnumeration("feedback", []string{
		cecswitch.FeedbackNone.String(),
		cecswitch.FeedbackRouteDone.String(),
		cecswitch.FeedbackStatusChanged.String(),
		cecswitch.FeedbackNonSwitchCmd.String(),
		cecswitch.FeedbackInvalidArgs.String(),
	})
}

func decodeArgs(data *[]byte, n int) ([]uint32, error) {
	vals := make([]uint32, n)
	for i := range vals {
		v, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// sendEvent sends response name with small integer arguments
func (a *App) sendEvent(name string, args ...uint32) {
	err := a.link.SendResponse(name, func(out protocol.OutputBuffer) {
		for _, v := range args {
			protocol.EncodeVLQUint(out, v)
		}
	})
	if err != nil && !a.logging {
		a.log.Debug("link event dropped", "name", name, "err", err)
	}
}

func (a *App) cmdCECInject(data *[]byte) error {
	raw, err := protocol.DecodeVLQBytes(data)
	if err != nil {
		return err
	}
	f, err := cec.Decode(raw)
	if err != nil {
		return err
	}
	if !a.ReceiveCEC(f) {
		return ErrQueueFull
	}
	return nil
}

func (a *App) cmdTopology(data *[]byte) error {
	v, err := decodeArgs(data, 5)
	if err != nil {
		return err
	}
	var sel [repeater.NumTx]uint8
	var topo repeater.Topology
	var restart [repeater.NumTx]bool
	for tx := 0; tx < repeater.NumTx; tx++ {
		sel[tx] = uint8(v[tx])
		topo.PipeSel[tx] = repeater.Source(v[2+tx])
		restart[tx] = v[4]&(1<<tx) != 0
		if v[tx] >= MaxChannels {
			return ErrBadPort
		}
	}
	if err := checkSourceSel(sel, topo); err != nil {
		return err
	}
	a.SetTopology(sel, topo, restart)
	return nil
}

func (a *App) cmdRepeaterEnable(data *[]byte) error {
	v, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	a.rep.Configure(v != 0)
	if v != 0 {
		a.rep.ConfigureTopology(a.sourceSel, a.topo, [repeater.NumTx]bool{})
	}
	return nil
}

func (a *App) cmdRcpSend(data *[]byte) error {
	v, err := decodeArgs(data, 2)
	if err != nil {
		return err
	}
	ch := a.bus.Channel(int(v[0]))
	if ch == nil {
		return ErrNoChannel
	}
	return ch.SendRcp(uint8(v[1]))
}

func (a *App) cmdRapSend(data *[]byte) error {
	v, err := decodeArgs(data, 2)
	if err != nil {
		return err
	}
	ch := a.bus.Channel(int(v[0]))
	if ch == nil {
		return ErrNoChannel
	}
	return ch.SendRap(uint8(v[1]))
}

func (a *App) cmdDevCap(data *[]byte) error {
	v, err := decodeArgs(data, 2)
	if err != nil {
		return err
	}
	ch := a.bus.Channel(int(v[0]))
	if ch == nil {
		return ErrNoChannel
	}
	val, ok := ch.PeerDevCap(uint8(v[1]))
	if !ok {
		// queue a read so a later request finds the value
		if err := ch.ReadDevCap(uint8(v[1])); err != nil {
			a.log.Debug("devcap read not queued", "err", err)
		}
	}
	valid := uint32(0)
	if ok {
		valid = 1
	}
	a.sendEvent("devcap_value", v[0], v[1], uint32(val), valid)
	return nil
}

func (a *App) cmdRouteInfo(*[]byte) error {
	a.sw.SendRouteInfo()
	return nil
}

func (a *App) cmdActiveSource(*[]byte) error {
	return a.BecomeActiveSource()
}

func (a *App) cmdGetStatus(*[]byte) error {
	enabled := uint32(0)
	if a.rep.Enabled() {
		enabled = 1
	}
	route := uint32(0)
	if a.sw.Task().Kind == cecswitch.TaskRouteAnnounce {
		route = 1
	}
	a.sendEvent("status",
		enabled,
		uint32(a.rep.Mode()),
		uint32(a.rep.PipeOf(0)),
		uint32(a.rep.PipeOf(1)),
		uint32(a.dev.port),
		uint32(a.rep.InputPort(repeater.PipeMain)),
		uint32(a.rep.InputPort(repeater.PipeSub)),
		route,
	)
	return nil
}
