package core

// TimeoutHandler is called when a hardware transaction never completes.
type TimeoutHandler func(component string)

var timeoutHandler TimeoutHandler

// SetTimeoutHandler installs the recovery hook for hardware timeouts; nil
// restores the default, which only logs.
func SetTimeoutHandler(h TimeoutHandler) {
	timeoutHandler = h
}

// Timeout reports a stuck hardware transaction for the named component
func Timeout(component string) {
	if timeoutHandler != nil {
		timeoutHandler(component)
		return
	}
	logger.Error("hardware timeout", "component", component)
}
