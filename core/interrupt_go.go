//go:build !tinygo

package core

// IrqState is the saved interrupt mask; meaningless on a host build
type IrqState uintptr

func disableInterrupts() IrqState {
	return 0
}

func restoreInterrupts(IrqState) {}
