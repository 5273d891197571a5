//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"sii953x/core"
)

// RP2040/RP2350 timer peripheral
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08
	timerTIMERAWL = timerBase + 0x0C
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// InitClock starts the millisecond counter from the hardware timer
func InitClock() {
	UpdateSystemTime()
}

// GetHardwareUptime reads the 64-bit microsecond timer
func GetHardwareUptime() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		// retry across a low-word rollover
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

// UpdateSystemTime copies the hardware timer into the core counter
func UpdateSystemTime() {
	core.SetTime(core.Millis(GetHardwareUptime() / 1000))
}
