package protocol

import (
	"io"
	"log/slog"

	"sii953x/core"
)

// identifyChunkMax keeps an identify_response inside one frame
const identifyChunkMax = 40

// Transport is the board end of the link. It decodes host frames, runs
// their commands, acknowledges them and sends responses through w.
type Transport struct {
	reg     *Registry
	w       io.Writer
	log     *slog.Logger
	reader  frameReader
	seq     uint8
	scratch ScratchOutput
	onReset func()
}

// NewTransport returns a transport dispatching to reg. It installs the
// identify handler.
func NewTransport(reg *Registry, w io.Writer) *Transport {
	t := &Transport{
		reg:    reg,
		w:      w,
		log:    core.Logger("link"),
		reader: frameReader{synced: true, checkDest: true},
		seq:    SeqDest,
	}
	reg.Register("identify", "", t.handleIdentify)
	return t
}

// Receive decodes every complete frame in in and pops the consumed bytes
func (t *Transport) Receive(in InputBuffer) {
	n := t.reader.scan(in.Data(), t.frame, t.ack)
	if n > 0 {
		in.Pop(n)
	}
}

func (t *Transport) frame(seq uint8, payload []byte) {
	if seq == SeqDest && t.seq != SeqDest {
		t.seq = SeqDest
		t.log.Info("host reset")
		if t.onReset != nil {
			t.onReset()
		}
	}
	// A frame out of sequence is answered with the expected sequence
	if seq == t.seq {
		t.seq = nextSeq(seq)
		t.dispatch(payload)
	}
	t.ack()
}

func (t *Transport) dispatch(payload []byte) {
	for len(payload) > 0 {
		id, err := DecodeVLQUint(&payload)
		if err != nil {
			t.log.Error("bad command id", "err", err)
			return
		}
		if err := t.reg.Dispatch(uint16(id), &payload); err != nil {
			t.log.Error("command failed", "id", id, "err", err)
			return
		}
	}
}

func (t *Transport) ack() {
	if err := t.write(nil); err != nil {
		t.log.Error("ack failed", "err", err)
	}
}

func (t *Transport) write(body func(OutputBuffer)) error {
	frame, err := encodeFrame(&t.scratch, t.seq, body)
	if err != nil {
		return err
	}
	_, err = t.w.Write(frame)
	return err
}

// Send sends message id with the arguments written by args
func (t *Transport) Send(id uint16, args func(OutputBuffer)) error {
	return t.write(func(out OutputBuffer) {
		EncodeVLQUint(out, uint32(id))
		if args != nil {
			args(out)
		}
	})
}

// SendResponse sends the registered response name
func (t *Transport) SendResponse(name string, args func(OutputBuffer)) error {
	id, ok := t.reg.ID(name)
	if !ok {
		return ErrUnknownCommand
	}
	return t.Send(id, args)
}

// Sequence returns the next sequence expected from the host
func (t *Transport) Sequence() uint8 { return t.seq }

// Reset returns the transport to its power-up state
func (t *Transport) Reset() {
	t.reader.synced = true
	t.seq = SeqDest
	if t.onReset != nil {
		t.onReset()
	}
}

// SetResetCallback sets fn to run when the host restarts its sequence
func (t *Transport) SetResetCallback(fn func()) {
	t.onReset = fn
}

func (t *Transport) handleIdentify(data *[]byte) error {
	offset, err := DecodeVLQUint(data)
	if err != nil {
		return err
	}
	count, err := DecodeVLQUint(data)
	if err != nil {
		return err
	}
	chunk := t.reg.Chunk(offset, uint8(min(count, identifyChunkMax)))
	return t.Send(IDIdentifyResponse, func(out OutputBuffer) {
		EncodeVLQUint(out, offset)
		EncodeVLQBytes(out, chunk)
	})
}
