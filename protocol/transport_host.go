package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by a HostTransport after Close
var ErrClosed = errors.New("transport closed")

// Message is a frame received by the host
type Message struct {
	Sequence uint8
	ID       uint16
	Payload  []byte // arguments after the message id
}

// ResponseHandler sees every response as it arrives
type ResponseHandler func(msg *Message)

// HostTransport is the host end of the link. A background reader sorts
// incoming frames into acks and responses.
type HostTransport struct {
	port io.ReadWriteCloser

	seq     atomic.Uint32
	writeMu sync.Mutex
	scratch ScratchOutput

	acks      chan uint8
	responses chan *Message
	handler   atomic.Pointer[ResponseHandler]

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewHostTransport starts reading port
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:      port,
		acks:      make(chan uint8, 4),
		responses: make(chan *Message, 16),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	t.seq.Store(SeqDest)
	go t.readLoop()
	return t
}

// SendCommand sends command id and waits for its ack
func (t *HostTransport) SendCommand(ctx context.Context, id uint16, args func(OutputBuffer)) error {
	seq, err := t.writeCommand(id, args)
	if err != nil {
		return err
	}
	want := nextSeq(seq)
	for {
		select {
		case got := <-t.acks:
			if got != want {
				continue
			}
			t.seq.Store(uint32(want))
			return nil
		case <-ctx.Done():
			return fmt.Errorf("waiting for ack of seq %#02x: %w", seq, ctx.Err())
		case <-t.stop:
			return ErrClosed
		}
	}
}

func (t *HostTransport) writeCommand(id uint16, args func(OutputBuffer)) (uint8, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	seq := uint8(t.seq.Load())
	frame, err := encodeFrame(&t.scratch, seq, func(out OutputBuffer) {
		EncodeVLQUint(out, uint32(id))
		if args != nil {
			args(out)
		}
	})
	if err != nil {
		return seq, fmt.Errorf("command %d: %w", id, err)
	}
	if _, err := t.port.Write(frame); err != nil {
		return seq, fmt.Errorf("write command %d: %w", id, err)
	}
	return seq, nil
}

// Receive returns the next response
func (t *HostTransport) Receive(ctx context.Context) (*Message, error) {
	select {
	case m := <-t.responses:
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.stop:
		return nil, ErrClosed
	}
}

// ReceiveID returns the next response with the given id, dropping others
func (t *HostTransport) ReceiveID(ctx context.Context, id uint16) (*Message, error) {
	for {
		m, err := t.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if m.ID == id {
			return m, nil
		}
	}
}

// SetResponseHandler installs fn to see every response. Responses are
// still queued for Receive.
func (t *HostTransport) SetResponseHandler(fn ResponseHandler) {
	t.handler.Store(&fn)
}

// FetchDictionary reads the board dictionary with identify
func (t *HostTransport) FetchDictionary(ctx context.Context) (*Dictionary, error) {
	var raw []byte
	for {
		offset := uint32(len(raw))
		err := t.SendCommand(ctx, IDIdentify, func(out OutputBuffer) {
			EncodeVLQUint(out, offset)
			EncodeVLQUint(out, identifyChunkMax)
		})
		if err != nil {
			return nil, fmt.Errorf("identify at %d: %w", offset, err)
		}
		m, err := t.ReceiveID(ctx, IDIdentifyResponse)
		if err != nil {
			return nil, fmt.Errorf("identify at %d: %w", offset, err)
		}
		data := m.Payload
		got, err := DecodeVLQUint(&data)
		if err != nil {
			return nil, fmt.Errorf("identify response: %w", err)
		}
		chunk, err := DecodeVLQBytes(&data)
		if err != nil {
			return nil, fmt.Errorf("identify response: %w", err)
		}
		if got != offset {
			continue
		}
		if len(chunk) == 0 {
			break
		}
		raw = append(raw, chunk...)
	}
	d, err := ParseDictionary(raw)
	if err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	return d, nil
}

func (t *HostTransport) readLoop() {
	defer close(t.done)

	fifo := NewFifoBuffer(1024)
	reader := frameReader{synced: true}
	buf := make([]byte, 256)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			// The FIFO only fills if the board sends garbage without sync bytes
			if _, ferr := fifo.Write(buf[:n]); ferr != nil {
				fifo.Reset()
			}
			fifo.Pop(reader.scan(fifo.Data(), t.dispatch, nil))
		}
		if err != nil {
			select {
			case <-t.stop:
				return
			default:
			}
			if errors.Is(err, io.EOF) {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (t *HostTransport) dispatch(seq uint8, payload []byte) {
	if len(payload) == 0 {
		select {
		case t.acks <- seq:
		default:
		}
		return
	}
	data := append([]byte(nil), payload...)
	id, err := DecodeVLQUint(&data)
	if err != nil {
		return
	}
	m := &Message{Sequence: seq, ID: uint16(id), Payload: data}
	if fn := t.handler.Load(); fn != nil {
		(*fn)(m)
	}
	select {
	case t.responses <- m:
	default:
		// drop the oldest
		select {
		case <-t.responses:
		default:
		}
		t.responses <- m
	}
}

// Sequence returns the sequence of the next command
func (t *HostTransport) Sequence() uint8 {
	return uint8(t.seq.Load())
}

// Close stops the reader and closes the port
func (t *HostTransport) Close() error {
	var err error
	t.stopOnce.Do(func() {
		close(t.stop)
		err = t.port.Close()
		<-t.done
	})
	return err
}
