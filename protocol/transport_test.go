package protocol

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"
)

func hostFrame(t *testing.T, seq uint8, id uint16, args ...uint32) []byte {
	t.Helper()
	var s ScratchOutput
	f, err := encodeFrame(&s, seq, func(out OutputBuffer) {
		EncodeVLQUint(out, uint32(id))
		for _, a := range args {
			EncodeVLQUint(out, a)
		}
	})
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}
	return append([]byte(nil), f...)
}

func newEcho(t *testing.T) (*Transport, *bytes.Buffer, *[]uint32) {
	t.Helper()
	reg := NewRegistry()
	var got []uint32
	reg.Register("repeater_enable", "enable=%c", func(data *[]byte) error {
		v, err := DecodeVLQUint(data)
		got = append(got, v)
		return err
	})
	out := &bytes.Buffer{}
	return NewTransport(reg, out), out, &got
}

func TestTransportAck(t *testing.T) {
	tr, out, got := newEcho(t)

	tr.Receive(NewSliceInputBuffer(hostFrame(t, SeqDest, 2, 1)))

	if len(*got) != 1 || (*got)[0] != 1 {
		t.Errorf("Expected handler called with 1, got %v", *got)
	}
	ack := []byte{5, 0x11, 0x8F, 0x08, SyncByte}
	if !bytes.Equal(out.Bytes(), ack) {
		t.Errorf("Expected ack %x, got %x", ack, out.Bytes())
	}
	if tr.Sequence() != 0x11 {
		t.Errorf("Expected next sequence 0x11, got %#x", tr.Sequence())
	}
}

func TestTransportOutOfSequence(t *testing.T) {
	tr, out, got := newEcho(t)
	tr.Receive(NewSliceInputBuffer(hostFrame(t, SeqDest, 2, 1)))
	out.Reset()

	tr.Receive(NewSliceInputBuffer(hostFrame(t, SeqDest|5, 2, 0)))
	if len(*got) != 1 {
		t.Errorf("Expected out-of-sequence frame ignored, got %v", *got)
	}
	if out.Len() != FrameMin || out.Bytes()[posSeq] != 0x11 {
		t.Errorf("Expected a nak with sequence 0x11, got %x", out.Bytes())
	}
}

func TestTransportHostReset(t *testing.T) {
	tr, _, got := newEcho(t)
	resets := 0
	tr.SetResetCallback(func() { resets++ })

	tr.Receive(NewSliceInputBuffer(hostFrame(t, SeqDest, 2, 1)))
	tr.Receive(NewSliceInputBuffer(hostFrame(t, SeqDest, 2, 0)))

	if resets != 1 {
		t.Errorf("Expected 1 reset, got %d", resets)
	}
	if len(*got) != 2 {
		t.Errorf("Expected frame after reset processed, got %v", *got)
	}
}

func TestTransportResync(t *testing.T) {
	tr, out, got := newEcho(t)
	frame := hostFrame(t, SeqDest, 2, 1)
	bad := append([]byte(nil), frame...)
	bad[3] ^= 0xFF

	in := NewFifoBuffer(256)
	in.Write(bad)
	in.Write(frame)
	tr.Receive(in)

	if len(*got) != 1 {
		t.Errorf("Expected the good frame after resync, got %v", *got)
	}
	if !in.IsEmpty() {
		t.Errorf("Expected all input consumed, %d left", in.Available())
	}
	if out.Len() != 2*FrameMin {
		t.Errorf("Expected resync ack and frame ack, got %x", out.Bytes())
	}
}

func TestTransportPartialFrame(t *testing.T) {
	tr, _, got := newEcho(t)
	frame := hostFrame(t, SeqDest, 2, 1)

	in := NewFifoBuffer(256)
	in.Write(frame[:4])
	tr.Receive(in)
	if len(*got) != 0 || in.Available() != 4 {
		t.Errorf("Expected partial frame kept, got %v with %d buffered", *got, in.Available())
	}
	in.Write(frame[4:])
	tr.Receive(in)
	if len(*got) != 1 {
		t.Errorf("Expected frame completed, got %v", *got)
	}
}

func TestTransportResponseTooLong(t *testing.T) {
	tr, _, _ := newEcho(t)
	err := tr.Send(0, func(out OutputBuffer) {
		EncodeVLQBytes(out, make([]byte, PayloadMax))
	})
	if err != ErrFrameTooLong {
		t.Errorf("Expected ErrFrameTooLong, got %v", err)
	}
}

// mcuLoop runs a board transport on conn until it closes
func mcuLoop(tr *Transport, conn net.Conn) {
	fifo := NewFifoBuffer(512)
	buf := make([]byte, 64)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		fifo.Write(buf[:n])
		tr.Receive(fifo)
	}
}

func TestHostFetchDictionary(t *testing.T) {
	hostEnd, mcuEnd := net.Pipe()
	reg := NewRegistry()
	reg.Register("route_info", "", func(*[]byte) error { return nil })
	reg.Response("cbus_event", "ch=%c sub=%c code=%c")
	reg.AddConstant("NUM_TX", "2")
	go mcuLoop(NewTransport(reg, mcuEnd), mcuEnd)

	host := NewHostTransport(hostEnd)
	defer func() {
		host.Close()
		mcuEnd.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d, err := host.FetchDictionary(ctx)
	if err != nil {
		t.Fatalf("FetchDictionary: %v", err)
	}
	if d.Config["NUM_TX"] != "2" {
		t.Errorf("Expected NUM_TX 2, got %v", d.Config)
	}
	id, _, ok := d.Lookup("route_info")
	if !ok || id != 2 {
		t.Errorf("Expected route_info id 2, got %d %v", id, ok)
	}
	if host.Sequence() == SeqDest {
		t.Error("Expected the host sequence to advance")
	}
}

func TestHostReceivesResponses(t *testing.T) {
	hostEnd, mcuEnd := net.Pipe()
	reg := NewRegistry()
	var tr *Transport
	reg.Register("rcp_send", "ch=%c key=%c", func(data *[]byte) error {
		ch, _ := DecodeVLQUint(data)
		key, err := DecodeVLQUint(data)
		if err != nil {
			return err
		}
		return tr.SendResponse("cbus_event", func(out OutputBuffer) {
			EncodeVLQUint(out, ch)
			EncodeVLQUint(out, 0x10)
			EncodeVLQUint(out, key)
		})
	})
	event := reg.Response("cbus_event", "ch=%c sub=%c code=%c")
	tr = NewTransport(reg, mcuEnd)
	go mcuLoop(tr, mcuEnd)

	host := NewHostTransport(hostEnd)
	defer func() {
		host.Close()
		mcuEnd.Close()
	}()
	seen := make(chan uint16, 1)
	host.SetResponseHandler(func(m *Message) { seen <- m.ID })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := host.SendCommand(ctx, 2, func(out OutputBuffer) {
		EncodeVLQUint(out, 1)
		EncodeVLQUint(out, 0x44)
	})
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	m, err := host.ReceiveID(ctx, event)
	if err != nil {
		t.Fatalf("ReceiveID: %v", err)
	}
	_, params, _ := ParseMessage("cbus_event ch=%c sub=%c code=%c")
	data := m.Payload
	vals, err := DecodeArgs(params, &data)
	if err != nil || len(vals) != 3 || vals[2] != "code=68" {
		t.Errorf("Unexpected response %v (%v)", vals, err)
	}
	if id := <-seen; id != event {
		t.Errorf("Expected handler to see id %d, got %d", event, id)
	}
}
