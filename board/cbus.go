package board

import (
	"sii953x/cbus"
	"sii953x/protocol/mhl"
)

// cbus_msg kinds
const (
	msgRequest = iota
	msgResponse
	msgTimeout
)

// cbusEvents connects the CBUS channels to the key sink and the link
type cbusEvents struct {
	a *App
}

func (e *cbusEvents) Connected(ch *cbus.Channel, on bool) {
	e.a.log.Info("MHL link", "port", ch.Port(), "up", on)
	v := uint32(0)
	if on {
		v = 1
	}
	e.a.sendEvent("cbus_link", uint32(ch.Index()), v)
}

func (e *cbusEvents) MscRequest(ch *cbus.Channel, sub, code uint8) uint8 {
	e.a.sendEvent("cbus_msg", uint32(ch.Index()), msgRequest, uint32(sub), uint32(code))
	keys := e.a.p.Keys
	switch sub {
	case mhl.MsgRcp:
		if keys != nil && keys.RcpKey(ch.Port(), code) {
			return mhl.RcpNoError
		}
		return mhl.RcpIneffectiveKey
	case mhl.MsgRap:
		if keys != nil {
			keys.Content(ch.Port(), code == mhl.RapContentOn)
		}
		return mhl.RapNoError
	case mhl.MsgUcp:
		return mhl.UcpNoError
	}
	return 0
}

func (e *cbusEvents) MscResponse(ch *cbus.Channel, sub, code uint8) {
	e.a.sendEvent("cbus_msg", uint32(ch.Index()), msgResponse, uint32(sub), uint32(code))
}

func (e *cbusEvents) MscTimeout(ch *cbus.Channel, sub, code uint8) {
	e.a.log.Warn("MSC message unanswered", "port", ch.Port(), "sub", sub, "code", code)
	e.a.sendEvent("cbus_msg", uint32(ch.Index()), msgTimeout, uint32(sub), uint32(code))
}
