package cbus

import "sii953x/protocol/mhl"

// mscMsgReceived answers an incoming MSC_MSG. Every RCP, RAP and UCP gets
// an ack; a rejected key gets the error reply and then the ack after the
// RCPE/RCPK gap.
func (c *Channel) mscMsgReceived(sub, code uint8) {
	c.lastRcvdCmd, c.lastRcvdData = sub, code
	c.state |= StateReceived

	switch sub {
	case mhl.MsgRcp:
		status := uint8(mhl.RcpIneffectiveKey)
		if mhl.RcpKeySupported(code, c.supportMask) {
			status = c.h.MscRequest(c, sub, code)
		}
		c.reply(mhl.MsgRcpe, status, mhl.MsgRcpk, code)
	case mhl.MsgRap:
		var status uint8
		switch code {
		case mhl.RapPoll:
			status = mhl.RapNoError
		case mhl.RapContentOn, mhl.RapContentOff:
			status = c.h.MscRequest(c, sub, code)
		default:
			status = mhl.RapUnrecognizedAct
		}
		c.pushCtl(mscMsg(mhl.MsgRapk, status))
	case mhl.MsgUcp:
		status := uint8(mhl.UcpIneffectiveKey)
		if code < 0x80 {
			status = c.h.MscRequest(c, sub, code)
		}
		c.reply(mhl.MsgUcpe, status, mhl.MsgUcpk, code)
	case mhl.MsgRcpk, mhl.MsgRapk, mhl.MsgUcpk, mhl.MsgE:
		if c.awaitSub != 0 {
			c.rcpRapAbortTimer.Stop()
			c.awaitSub = 0
		}
		c.h.MscResponse(c, sub, code)
	case mhl.MsgRcpe, mhl.MsgUcpe:
		c.h.MscResponse(c, sub, code)
	default:
		c.log.Warn("unknown MSC_MSG sub-command", "sub", sub)
		c.pushCtl(mscMsg(mhl.MsgE, mhl.MscInvalidSubcmd))
	}
}

func (c *Channel) reply(errSub, status, ackSub, code uint8) {
	if status == 0 {
		c.pushCtl(mscMsg(ackSub, code))
		return
	}
	if c.pushCtl(mscMsg(errSub, status)) {
		c.followUp = followUp{sub: ackSub, code: code, valid: true}
	}
}

// SendRcp queues a remote-control key press or release
func (c *Channel) SendRcp(key uint8) error {
	return c.sendMsg(mhl.MsgRcp, key, mhl.FeatureRcp)
}

// SendRap queues a link-control action
func (c *Channel) SendRap(action uint8) error {
	return c.sendMsg(mhl.MsgRap, action, mhl.FeatureRap)
}

// SendUcp queues one UTF-8 character
func (c *Channel) SendUcp(char uint8) error {
	return c.sendMsg(mhl.MsgUcp, char, mhl.FeatureUcpReceive)
}

// SendMscMsg queues an arbitrary MSC_MSG sub-command
func (c *Channel) SendMscMsg(sub, code uint8) error {
	return c.enqueue(mscMsg(sub, code))
}

func (c *Channel) sendMsg(sub, code, feature uint8) error {
	if f, ok := c.PeerDevCap(mhl.DevCapFeatureFlag); ok && f&feature == 0 {
		c.lastErr = ErrUnsupported
		return ErrUnsupported
	}
	return c.enqueue(mscMsg(sub, code))
}
