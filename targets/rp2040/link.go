//go:build rp2040 || rp2350

package main

import (
	"io"
	"machine"
	"time"
)

var linkUART = machine.UART0

// InitLink configures the bench link UART (TX=GP0 RX=GP1)
func InitLink() {
	linkUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
}

// linkReaderLoop moves received bytes into the link input
func linkReaderLoop(in io.Writer) {
	var buf [64]byte
	for {
		n := linkUART.Buffered()
		if n == 0 {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		n, _ = linkUART.Read(buf[:min(n, len(buf))])
		if _, err := in.Write(buf[:n]); err != nil {
			// input full; the host resends unacknowledged frames
			time.Sleep(time.Millisecond)
		}
	}
}
