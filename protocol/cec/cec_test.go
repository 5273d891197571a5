package cec

import "testing"

func TestFrameHeader(t *testing.T) {
	f := NewFrame(LaPlayback1, LaBroadcast, OpActiveSource, 0x12, 0x00)

	if f.SrcDest != 0x4F {
		t.Errorf("Expected header 0x4F, got %#x", f.SrcDest)
	}
	if f.Source() != LaPlayback1 || !f.IsBroadcast() {
		t.Errorf("Unexpected source/dest %d/%d", f.Source(), f.Dest())
	}
	if pa := f.PhysAddrArg(0); pa != 0x1200 {
		t.Errorf("Expected 0x1200, got %#x", pa)
	}
	if pa := f.PhysAddrArg(1); pa != PhysAddrInvalid {
		t.Errorf("Expected invalid address past operands, got %#x", pa)
	}
}

func TestEncodeDecode(t *testing.T) {
	f := NewFrame(LaTV, LaBroadcast, OpRoutingChange, 0x10, 0x00, 0x12, 0x00)
	var buf [16]byte

	n, err := f.Encode(buf[:])
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if n != 6 || buf[0] != 0x0F || buf[1] != 0x80 {
		t.Errorf("Unexpected encoding % x", buf[:n])
	}

	got, err := Decode(buf[:n])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != f {
		t.Errorf("Expected %+v, got %+v", f, got)
	}
}

func TestDecodeRejects(t *testing.T) {
	if _, err := Decode([]byte{0x40}); err != ErrShortFrame {
		t.Errorf("Expected ErrShortFrame for poll, got %v", err)
	}
	if _, err := Decode(make([]byte, 17)); err != ErrLongFrame {
		t.Errorf("Expected ErrLongFrame, got %v", err)
	}
	f := NewFrame(LaTV, LaTV, OpStandby)
	if _, err := f.Encode(make([]byte, 1)); err != ErrBufferSize {
		t.Errorf("Expected ErrBufferSize, got %v", err)
	}
}

func TestPhysAddrChild(t *testing.T) {
	tests := []struct {
		pa   PhysAddr
		port uint8
		want PhysAddr
	}{
		{0x0000, 0, 0x1000},
		{0x1000, 0, 0x1100},
		{0x1000, 2, 0x1300},
		{0x2100, 3, 0x2140},
		{0x1234, 0, PhysAddrInvalid},
	}
	for _, tt := range tests {
		if got := tt.pa.Child(tt.port); got != tt.want {
			t.Errorf("%v.Child(%d): expected %#04x, got %#04x", tt.pa, tt.port, tt.want, got)
		}
	}
}

func TestPhysAddrString(t *testing.T) {
	if s := PhysAddr(0x12a0).String(); s != "1.2.a.0" {
		t.Errorf("Expected 1.2.a.0, got %s", s)
	}
	if d := PhysAddr(0x1200).Depth(); d != 2 {
		t.Errorf("Expected depth 2, got %d", d)
	}
}
