package protocol

import "testing"

func TestVLQInt(t *testing.T) {
	testCases := []int32{0, 1, -1, 95, -32, 96, -33, 127, 128, -128, 1000, -1000, 65535, 1000000, -1000000, 1 << 30, -(1 << 30)}

	for _, expected := range testCases {
		out := NewScratchOutput()
		EncodeVLQInt(out, expected)
		data := out.Result()
		decoded, err := DecodeVLQInt(&data)
		if err != nil {
			t.Errorf("Decode %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("Expected %d, got %d", expected, decoded)
		}
		if len(data) != 0 {
			t.Errorf("Decode %d left %d bytes", expected, len(data))
		}
	}
}

func TestVLQLengths(t *testing.T) {
	testCases := []struct {
		v int32
		n int
	}{
		{0, 1},
		{95, 1},
		{-32, 1},
		{96, 2},
		{-33, 2},
		{12287, 2},
		{12288, 3},
		{-1 << 30, 5},
	}
	for _, tc := range testCases {
		out := NewScratchOutput()
		EncodeVLQInt(out, tc.v)
		if len(out.Result()) != tc.n {
			t.Errorf("Value %d: expected %d bytes, got %d", tc.v, tc.n, len(out.Result()))
		}
	}
}

func TestVLQUint(t *testing.T) {
	for _, expected := range []uint32{0, 127, 128, 255, 65535, 0xFFFFFFFF} {
		out := NewScratchOutput()
		EncodeVLQUint(out, expected)
		data := out.Result()
		decoded, err := DecodeVLQUint(&data)
		if err != nil || decoded != expected {
			t.Errorf("Expected %d, got %d (%v)", expected, decoded, err)
		}
	}
}

func TestVLQBytesAndString(t *testing.T) {
	out := NewScratchOutput()
	EncodeVLQBytes(out, []byte{0x04, 0x82, 0x10})
	EncodeVLQString(out, "sink")
	data := out.Result()

	b, err := DecodeVLQBytes(&data)
	if err != nil || len(b) != 3 || b[1] != 0x82 {
		t.Errorf("Expected [04 82 10], got %x (%v)", b, err)
	}
	s, err := DecodeVLQString(&data)
	if err != nil || s != "sink" {
		t.Errorf("Expected sink, got %q (%v)", s, err)
	}
}

func TestVLQTruncated(t *testing.T) {
	data := []byte{0x80}
	if _, err := DecodeVLQInt(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	data = []byte{0x03, 0xAA}
	if _, err := DecodeVLQBytes(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall for short bytes, got %v", err)
	}

	data = []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	if _, err := DecodeVLQInt(&data); err != ErrInvalidVLQ {
		t.Errorf("Expected ErrInvalidVLQ, got %v", err)
	}
}
