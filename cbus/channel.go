package cbus

import (
	"log/slog"

	"sii953x/core"
	"sii953x/protocol/mhl"
)

// Transport is the register layer under a channel; *Driver implements it.
type Transport interface {
	Initialize() error
	ProcessInterrupts() error
	Status() Status
	ClearStatus(s Status)
	BusConnected() bool
	VsData() (cmd, data uint8)
	CmdRetData() uint8
	MscAbortTransReason() uint8
	MscAbortRcvrReason() uint8
	DdcAbortReason() uint8
	WriteCommand(req *Request) error
	ReadLocalScratchpad(p []uint8) error
}

// Handler receives a channel's upper-layer events.
type Handler interface {
	// Connected reports MHL link up or down
	Connected(ch *Channel, on bool)

	// MscRequest handles an incoming RCP key, RAP action or UCP character
	// and returns the status to acknowledge it with
	MscRequest(ch *Channel, sub, code uint8) uint8

	// MscResponse reports a reply from the peer to a message sent earlier
	MscResponse(ch *Channel, sub, code uint8)

	// MscTimeout reports a message the peer never answered
	MscTimeout(ch *Channel, sub, code uint8)
}

// ring is a fixed FIFO of requests over caller-provided storage
type ring struct {
	buf  []Request
	head int
	n    int
}

func (r *ring) full() bool { return r.n == len(r.buf) }

func (r *ring) push(req Request) bool {
	if r.full() {
		return false
	}
	i := (r.head + r.n) % len(r.buf)
	r.buf[i] = req
	r.buf[i].Status = ReqPending
	r.n++
	return true
}

func (r *ring) front() *Request {
	if r.n == 0 {
		return nil
	}
	return &r.buf[r.head]
}

func (r *ring) pop() {
	if r.n == 0 {
		return
	}
	r.buf[r.head] = Request{}
	r.head = (r.head + 1) % len(r.buf)
	r.n--
}

func (r *ring) reset() {
	for i := range r.buf {
		r.buf[i] = Request{}
	}
	r.head, r.n = 0, 0
}

type followUp struct {
	sub, code uint8
	valid     bool
}

type burst3D struct {
	state       Burst3DState
	seq         int
	outstanding bool
}

// Channel is one CBUS channel: its transaction queues, timers and
// handshake state. Channels are independent; a board may run several.
type Channel struct {
	index int
	port  uint8
	t     Transport
	h     Handler
	log   *slog.Logger

	connected   bool
	supportMask uint8
	state       State
	misc        MiscFlags
	lastErr     error

	queueBuf [QueueDepth]Request
	queue    ring
	ctlBuf   [ctlDepth]Request
	ctl      ring
	active   *ring

	lastSentCmd   uint8
	lastRcvdCmd   uint8
	lastRcvdData  uint8
	lastDevCap    uint8
	wbStartOffset uint8
	wbLength      uint8

	pathEnableSent    bool
	scratchpadWritten bool
	peerDevCap        [mhl.DevCapSize]uint8
	peerDevCapValid   uint16

	abortTimer       core.Countdown
	hpdWaitTimer     core.Countdown
	msgRspTimer      core.Countdown
	initTimer        core.Countdown
	reqWrtTimer      core.Countdown
	rcpRapAbortTimer core.Countdown
	rcpeRcpkGapTimer core.Countdown

	xfrAbortReason uint8
	fwrAbortReason uint8
	ddcAbortReason uint8

	awaitSub  uint8
	awaitCode uint8
	followUp  followUp

	b3d burst3D
	vic []mhl.VDI
	dtd []mhl.VDI
}

// NewChannel returns channel index bound to input port. A nil handler
// rejects every incoming key.
func NewChannel(index int, port uint8, t Transport, h Handler) *Channel {
	if h == nil {
		h = nopHandler{}
	}
	c := &Channel{
		index:       index,
		port:        port,
		t:           t,
		h:           h,
		log:         core.Logger("cbus").With("ch", index),
		supportMask: mhl.LocalDevCap[mhl.DevCapLogDevMap],
	}
	c.queue.buf = c.queueBuf[:]
	c.ctl.buf = c.ctlBuf[:]
	return c
}

// Index returns the channel number
func (c *Channel) Index() int { return c.index }

// Port returns the input port served by this channel
func (c *Channel) Port() uint8 { return c.port }

// IsConnected reports whether an MHL peer is attached
func (c *Channel) IsConnected() bool { return c.connected }

// State reports the last transaction outcome until the next one starts
func (c *Channel) State() State { return c.state }

// Misc returns the handshake flags
func (c *Channel) Misc() MiscFlags { return c.misc }

// LastError returns the most recent failure, nil if none
func (c *Channel) LastError() error { return c.lastErr }

// LastSentCommand returns the last MSC opcode put on the wire
func (c *Channel) LastSentCommand() uint8 { return c.lastSentCmd }

// LastReceived returns the last MSC_MSG sub-command and operand received
func (c *Channel) LastReceived() (cmd, data uint8) { return c.lastRcvdCmd, c.lastRcvdData }

// LastDevCap returns the value of the last completed READ_DEVCAP
func (c *Channel) LastDevCap() uint8 { return c.lastDevCap }

// PeerDevCap returns a peer capability register once it has been read
func (c *Channel) PeerDevCap(offset uint8) (uint8, bool) {
	if offset >= mhl.DevCapSize || c.peerDevCapValid&(1<<offset) == 0 {
		return 0, false
	}
	return c.peerDevCap[offset], true
}

// PeerFeatures returns the peer's FEATURE_FLAG, zero until read
func (c *Channel) PeerFeatures() uint8 {
	f, _ := c.PeerDevCap(mhl.DevCapFeatureFlag)
	return f
}

// AbortReasons returns the last transmit, receive and DDC abort reasons
func (c *Channel) AbortReasons() (xfr, fwr, ddc uint8) {
	return c.xfrAbortReason, c.fwrAbortReason, c.ddcAbortReason
}

// WriteBurstWindow returns the peer offset and length of the last burst queued
func (c *Channel) WriteBurstWindow() (offset, length uint8) {
	return c.wbStartOffset, c.wbLength
}

// PathEnableSent reports whether PATH_EN has been delivered to the peer
func (c *Channel) PathEnableSent() bool { return c.pathEnableSent }

// QueueLen returns the number of caller requests waiting or in flight
func (c *Channel) QueueLen() int { return c.queue.n }

// ScratchpadWritten reports and clears a scratchpad update from the peer
func (c *Channel) ScratchpadWritten() bool {
	w := c.scratchpadWritten
	c.scratchpadWritten = false
	return w
}

// ReadScratchpad copies the peer's last scratchpad write into p
func (c *Channel) ReadScratchpad(p []uint8) error {
	return c.t.ReadLocalScratchpad(p)
}

// Initialize drops all channel state and re-initializes the driver
func (c *Channel) Initialize() error {
	c.reset()
	c.connected = false
	return c.t.Initialize()
}

func (c *Channel) reset() {
	c.queue.reset()
	c.ctl.reset()
	c.active = nil
	c.state = StateIdle
	c.misc = 0
	c.pathEnableSent = false
	c.scratchpadWritten = false
	c.peerDevCapValid = 0
	c.awaitSub = 0
	c.followUp = followUp{}
	c.b3d = burst3D{}
	for _, t := range []*core.Countdown{
		&c.abortTimer, &c.hpdWaitTimer, &c.msgRspTimer, &c.initTimer,
		&c.reqWrtTimer, &c.rcpRapAbortTimer, &c.rcpeRcpkGapTimer,
	} {
		t.Stop()
	}
}

// Handle is the channel's process-interrupts entry: it consumes driver
// events, runs the timers and starts the next transaction.
func (c *Channel) Handle(now core.Millis) error {
	if err := c.t.ProcessInterrupts(); err != nil {
		c.log.Warn("interrupt processing failed", "err", err)
		return err
	}
	st := c.t.Status()
	c.t.ClearStatus(st)

	if st&StatusConnectionChg != 0 {
		c.connectionChanged(now)
	}
	if !c.connected {
		return nil
	}

	if st&StatusXfrAbortT != 0 {
		c.xfrAbortReason = c.t.MscAbortTransReason()
		c.log.Warn("MSC transfer aborted", "reason", c.xfrAbortReason)
		if c.active != nil {
			c.failActive(ErrAbort)
		}
		c.abortTimer.Arm(now, AbortHoldTime)
	}
	if st&StatusXfrAbortR != 0 {
		c.fwrAbortReason = c.t.MscAbortRcvrReason()
		c.log.Warn("peer MSC command aborted", "reason", c.fwrAbortReason)
		c.abortTimer.Arm(now, AbortHoldTime)
	}
	if st&StatusDdcAbort != 0 {
		c.ddcAbortReason = c.t.DdcAbortReason()
		c.log.Warn("DDC aborted", "reason", c.ddcAbortReason)
	}
	if st&StatusCecAbort != 0 {
		c.log.Debug("CEC over CBUS aborted")
	}
	if st&StatusMscCmdDone != 0 {
		c.commandDone(now, st&StatusNack != 0)
	}
	if st&StatusMscMsgRcvd != 0 {
		sub, code := c.t.VsData()
		c.mscMsgReceived(sub, code)
	}
	if st&(StatusDcapRdy|StatusDcapChg) != 0 {
		c.readPeerCaps()
	}
	if st&StatusPathEn != 0 {
		c.log.Debug("peer PATH_EN")
	}
	if st&StatusReqWrt != 0 {
		if c.pushCtl(setInt(mhl.IntGrtWrt)) {
			c.misc |= MiscScratchpadBusy
		}
	}
	if st&StatusGrtWrt != 0 {
		c.writeGranted()
	}
	if st&StatusScratchpadWritten != 0 {
		c.misc &^= MiscScratchpadBusy
		c.scratchpadWritten = true
	}
	if st&Status3DReq != 0 {
		c.start3D()
	}

	c.checkTimers(now)
	c.pump3D()
	c.sendNext(now)
	return nil
}

func (c *Channel) connectionChanged(now core.Millis) {
	on := c.t.BusConnected()
	if on == c.connected {
		return
	}
	c.reset()
	c.connected = on
	if on {
		c.log.Info("MHL connected", "port", c.port)
		c.initTimer.Arm(now, InitDelay)
	} else {
		c.log.Info("MHL disconnected", "port", c.port)
	}
	c.h.Connected(c, on)
}

func (c *Channel) checkTimers(now core.Millis) {
	if c.initTimer.Expired(now) {
		c.initTimer.Stop()
		c.pushCtl(writeStat(mhl.RegConnectedRdy, mhl.StatDcapRdy))
		c.pushCtl(writeStat(mhl.RegLinkMode, mhl.StatPathEn))
	}
	if c.abortTimer.Expired(now) {
		c.abortTimer.Stop()
	}
	if c.active != nil && c.msgRspTimer.Expired(now) {
		c.log.Error("MSC command timed out", "cmd", c.active.front().Command)
		core.Timeout("cbus")
		c.failActive(ErrTimeout)
	}
	if c.reqWrtTimer.Expired(now) {
		c.reqWrtTimer.Stop()
		c.misc &^= MiscReqWrtPending
		c.log.Warn("peer did not grant scratchpad write")
		c.dropWriteBurst(ErrWriteTimeout)
	}
	if c.rcpRapAbortTimer.Expired(now) {
		c.rcpRapAbortTimer.Stop()
		sub, code := c.awaitSub, c.awaitCode
		c.awaitSub = 0
		c.lastErr = ErrMsgTimeout
		c.h.MscTimeout(c, sub, code)
	}
	if c.followUp.valid && c.rcpeRcpkGapTimer.Expired(now) {
		c.rcpeRcpkGapTimer.Stop()
		c.followUp.valid = false
		c.pushCtl(mscMsg(c.followUp.sub, c.followUp.code))
	}
	if c.hpdWaitTimer.Expired(now) {
		c.hpdWaitTimer.Stop()
		c.pushCtl(Request{Command: mhl.CmdSetHpd})
	}
}

// sendNext starts the next transaction: engine replies first, then the
// caller queue. A write burst waits for the peer's GRT_WRT.
func (c *Channel) sendNext(now core.Millis) {
	if c.active != nil || !c.connected || c.abortTimer.Running(now) {
		return
	}
	if c.ctl.n > 0 {
		c.start(now, &c.ctl)
		return
	}
	req := c.queue.front()
	if req == nil {
		return
	}
	if req.Command == mhl.CmdWriteBurst && c.misc&MiscWriteBurstPending == 0 {
		if c.misc&MiscReqWrtPending == 0 && c.pushCtl(setInt(mhl.IntReqWrt)) {
			c.misc |= MiscReqWrtPending
			c.reqWrtTimer.Arm(now, WriteReqTimeout)
			c.start(now, &c.ctl)
		}
		return
	}
	c.start(now, &c.queue)
}

func (c *Channel) start(now core.Millis, r *ring) {
	req := r.front()
	if err := c.t.WriteCommand(req); err != nil {
		c.log.Warn("command not started", "cmd", req.Command, "err", err)
		failed := *req
		r.pop()
		c.state = StateFailed
		c.lastErr = err
		c.requestFailed(&failed, err)
		return
	}
	req.Status = ReqSent
	c.active = r
	c.state = StateSent
	c.lastSentCmd = req.Command
	c.msgRspTimer.Arm(now, MsgRspTimeout)
}

func (c *Channel) commandDone(now core.Millis, nack bool) {
	if c.active == nil {
		c.log.Debug("command done with nothing in flight")
		return
	}
	req := *c.active.front()
	c.active.pop()
	c.active = nil
	c.msgRspTimer.Stop()

	if nack {
		c.log.Warn("peer NACKed command", "cmd", req.Command)
		c.state = StateFailed
		c.lastErr = ErrNack
		c.requestFailed(&req, ErrNack)
		return
	}
	c.state = StateXfrDone

	switch req.Command {
	case mhl.CmdReadDevCap:
		v := c.t.CmdRetData()
		c.lastDevCap = v
		if req.Offset < mhl.DevCapSize {
			c.peerDevCap[req.Offset] = v
			c.peerDevCapValid |= 1 << req.Offset
		}
	case mhl.CmdWriteStat:
		if req.Offset == mhl.RegConnectedRdy && req.Data[0]&mhl.StatDcapRdy != 0 {
			c.misc |= MiscSentDcapRdy
		}
		if req.Offset == mhl.RegLinkMode && req.Data[0]&mhl.StatPathEn != 0 {
			c.misc |= MiscSentPathEn
			c.pathEnableSent = true
		}
	case mhl.CmdWriteBurst:
		c.misc &^= MiscWriteBurstPending
		c.pushCtl(setInt(mhl.IntDscrChg))
		if req.tag == tag3DVic || req.tag == tag3DDtd {
			c.burst3DDone()
		}
	case mhl.CmdMscMsg:
		switch req.Data[0] {
		case mhl.MsgRcp, mhl.MsgRap, mhl.MsgUcp:
			c.awaitSub, c.awaitCode = req.Data[0], req.Data[1]
			c.rcpRapAbortTimer.Arm(now, RcpRapAbortTimeout)
		case mhl.MsgRcpe, mhl.MsgUcpe:
			c.rcpeRcpkGapTimer.Arm(now, RcpeRcpkGap)
		}
	case mhl.CmdClrHpd:
		if req.tag == tagHpdToggle {
			c.hpdWaitTimer.Arm(now, HpdWaitTimeout)
		}
	case mhl.CmdGetState, mhl.CmdGetVendorID, mhl.CmdGetSc1Error,
		mhl.CmdGetDdcError, mhl.CmdGetMscError, mhl.CmdGetSc3Error:
		c.lastRcvdData = c.t.CmdRetData()
	}
}

// failActive ends the transaction in flight without a reply
func (c *Channel) failActive(err error) {
	req := *c.active.front()
	c.active.pop()
	c.active = nil
	c.msgRspTimer.Stop()
	c.state = StateFailed
	c.lastErr = err
	c.requestFailed(&req, err)
}

// requestFailed undoes the handshake state a failed request held
func (c *Channel) requestFailed(req *Request, err error) {
	switch req.Command {
	case mhl.CmdWriteBurst:
		c.misc &^= MiscWriteBurstPending
		if req.tag == tag3DVic || req.tag == tag3DDtd {
			c.abort3D(err)
		}
	case mhl.CmdSetInt:
		if req.Offset == mhl.RegRchangeInt && req.Data[0] == mhl.IntReqWrt {
			c.misc &^= MiscReqWrtPending
			c.reqWrtTimer.Stop()
			c.dropWriteBurst(err)
		}
	case mhl.CmdMscMsg:
		if (req.Data[0] == mhl.MsgRcpe || req.Data[0] == mhl.MsgUcpe) && c.followUp.valid {
			c.log.Warn("error reply failed, ack dropped", "sub", c.followUp.sub, "code", c.followUp.code)
			c.followUp = followUp{}
		}
	}
}

// dropWriteBurst discards a write burst still waiting for permission
func (c *Channel) dropWriteBurst(err error) {
	if c.active == &c.queue {
		return
	}
	req := c.queue.front()
	if req == nil || req.Command != mhl.CmdWriteBurst {
		return
	}
	failed := *req
	c.queue.pop()
	c.lastErr = err
	c.requestFailed(&failed, err)
}

func (c *Channel) writeGranted() {
	if c.misc&MiscReqWrtPending == 0 {
		c.log.Debug("unsolicited GRT_WRT")
		return
	}
	c.reqWrtTimer.Stop()
	c.misc &^= MiscReqWrtPending
	c.misc |= MiscWriteBurstPending
}

func (c *Channel) readPeerCaps() {
	c.peerDevCapValid = 0
	c.pushCtl(Request{Command: mhl.CmdReadDevCap, Offset: mhl.DevCapFeatureFlag})
	c.pushCtl(Request{Command: mhl.CmdReadDevCap, Offset: mhl.DevCapLogDevMap})
}

func (c *Channel) pushCtl(req Request) bool {
	if !c.ctl.push(req) {
		c.log.Error("control queue full", "cmd", req.Command)
		c.lastErr = ErrQueueFull
		return false
	}
	return true
}

func (c *Channel) enqueue(req Request) error {
	if !c.connected {
		return ErrNotConnected
	}
	if !c.queue.push(req) {
		c.log.Warn("command queue full", "cmd", req.Command)
		c.lastErr = ErrQueueFull
		return ErrQueueFull
	}
	return nil
}

func setInt(bits uint8) Request {
	r := Request{Command: mhl.CmdSetInt, Offset: mhl.RegRchangeInt, Length: 1}
	r.Data[0] = bits
	return r
}

func writeStat(offset, bits uint8) Request {
	r := Request{Command: mhl.CmdWriteStat, Offset: offset, Length: 1}
	r.Data[0] = bits
	return r
}

func mscMsg(sub, code uint8) Request {
	r := Request{Command: mhl.CmdMscMsg, Length: 2}
	r.Data[0], r.Data[1] = sub, code
	return r
}

// SendMscCommand queues a register-level MSC command. WRITE_STAT and
// SET_INT write value to the peer register offset; SET_HPD, CLR_HPD and the
// GET_* queries ignore both.
func (c *Channel) SendMscCommand(cmd, offset, value uint8) error {
	switch cmd {
	case mhl.CmdWriteStat, mhl.CmdSetInt:
		r := Request{Command: cmd, Offset: offset, Length: 1}
		r.Data[0] = value
		return c.enqueue(r)
	case mhl.CmdSetHpd, mhl.CmdClrHpd, mhl.CmdGetState, mhl.CmdGetVendorID,
		mhl.CmdGetSc1Error, mhl.CmdGetDdcError, mhl.CmdGetMscError, mhl.CmdGetSc3Error:
		return c.enqueue(Request{Command: cmd})
	}
	return ErrBadCommand
}

// ReadDevCap queues a read of one peer capability register
func (c *Channel) ReadDevCap(offset uint8) error {
	if offset >= mhl.DevCapSize {
		return ErrBadCommand
	}
	return c.enqueue(Request{Command: mhl.CmdReadDevCap, Offset: offset})
}

// ToggleHpd queues CLR_HPD; SET_HPD follows once the HPD wait has passed
func (c *Channel) ToggleHpd() error {
	return c.enqueue(Request{Command: mhl.CmdClrHpd, tag: tagHpdToggle})
}

// WriteBurst queues data for the peer scratchpad at offset. The transfer
// runs after the peer grants write permission.
func (c *Channel) WriteBurst(offset uint8, data []uint8) error {
	if len(data) == 0 || int(offset)+len(data) > mhl.ScratchpadSize {
		c.lastErr = ErrBurstLength
		return ErrBurstLength
	}
	r := Request{Command: mhl.CmdWriteBurst, Offset: mhl.ScratchpadStart + offset, Length: uint8(len(data))}
	copy(r.Data[:], data)
	if err := c.enqueue(r); err != nil {
		return err
	}
	c.wbStartOffset, c.wbLength = r.Offset, r.Length
	return nil
}

type nopHandler struct{}

func (nopHandler) Connected(*Channel, bool) {}

func (nopHandler) MscRequest(_ *Channel, sub, _ uint8) uint8 {
	if sub == mhl.MsgRap {
		return mhl.RapUnsupportedAct
	}
	return mhl.RcpIneffectiveKey
}

func (nopHandler) MscResponse(*Channel, uint8, uint8) {}

func (nopHandler) MscTimeout(*Channel, uint8, uint8) {}
