package core

import "golang.org/x/exp/constraints"

// Millis is a timestamp of the free-running millisecond counter.
type Millis uint32

// Clock supplies the elapsed-millisecond counter.
type Clock interface {
	ElapsedMs() Millis
}

var systemTicks uint32

// GetTime returns the system millisecond counter
func GetTime() Millis {
	return Millis(getSystemTicks())
}

// SetTime sets the system millisecond counter (for testing/hardware integration)
func SetTime(ms Millis) {
	setSystemTicks(uint32(ms))
}

// Tick advances the system counter; called from the board's 1 ms tick interrupt
func Tick(ms Millis) {
	addSystemTicks(uint32(ms))
}

// SystemClock reads the global counter maintained by Tick.
type SystemClock struct{}

// ElapsedMs implements Clock
func (SystemClock) ElapsedMs() Millis {
	return GetTime()
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	Now Millis
}

// ElapsedMs implements Clock
func (c *ManualClock) ElapsedMs() Millis {
	return c.Now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d Millis) {
	c.Now += d
}

// Since returns the ticks elapsed from start to now modulo the counter width.
func Since[T constraints.Unsigned](start, now T) T {
	return now - start
}

// Before reports whether a is earlier than b on a wrapping 32-bit counter.
// Valid while the two stamps are less than 2^31 ms apart.
func Before(a, b Millis) bool {
	return int32(uint32(a)-uint32(b)) < 0
}
