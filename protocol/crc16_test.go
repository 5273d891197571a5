package protocol

import "testing"

func TestCRC16(t *testing.T) {
	testCases := []struct {
		data     []byte
		expected uint16
	}{
		{[]byte{}, 0xFFFF},
		{[]byte("123456789"), 0x6F91},
		{[]byte{5, SeqDest}, 0x9E81},
		{[]byte{5, SeqDest | 1}, 0x8F08},
	}
	for i, tc := range testCases {
		if got := CRC16(tc.data); got != tc.expected {
			t.Errorf("Case %d: expected %#04x, got %#04x", i, tc.expected, got)
		}
	}
}

func TestCRC16Different(t *testing.T) {
	if CRC16([]byte{1, 2, 3}) == CRC16([]byte{1, 2, 4}) {
		t.Error("Expected different checksums for different data")
	}
}
