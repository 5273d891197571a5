package core

// Critical runs fn with interrupts masked. Used for state shared with the
// chip interrupt line handler.
func Critical(fn func()) {
	state := disableInterrupts()
	fn()
	restoreInterrupts(state)
}
