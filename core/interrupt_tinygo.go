//go:build tinygo

package core

import "runtime/interrupt"

// IrqState is the saved interrupt mask
type IrqState = interrupt.State

func disableInterrupts() IrqState {
	return interrupt.Disable()
}

func restoreInterrupts(state IrqState) {
	interrupt.Restore(state)
}
