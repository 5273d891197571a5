package core

// Countdown is a one-shot deadline timer. A zero Countdown is stopped.
type Countdown struct {
	deadline Millis
	armed    bool
}

// Arm starts the countdown so that it expires d milliseconds after now
func (c *Countdown) Arm(now, d Millis) {
	c.deadline = now + d
	c.armed = true
}

// Stop disarms the countdown
func (c *Countdown) Stop() {
	c.armed = false
}

// Armed reports whether the countdown is running or has expired unobserved
func (c *Countdown) Armed() bool {
	return c.armed
}

// Expired reports whether an armed countdown has reached its deadline
func (c *Countdown) Expired(now Millis) bool {
	return c.armed && !Before(now, c.deadline)
}

// Running reports whether the countdown is armed and not yet expired
func (c *Countdown) Running(now Millis) bool {
	return c.armed && Before(now, c.deadline)
}

// Remaining returns the milliseconds left, zero when stopped or expired
func (c *Countdown) Remaining(now Millis) Millis {
	if !c.Running(now) {
		return 0
	}
	return c.deadline - now
}

// Deadline returns the expiry stamp of an armed countdown
func (c *Countdown) Deadline() Millis {
	return c.deadline
}

// Recall tracks when a polled task next needs the CPU.
type Recall struct {
	next Countdown
}

// Set places the next recall d milliseconds after now
func (r *Recall) Set(now, d Millis) {
	r.next.Arm(now, d)
}

// Limit pulls the recall in to the deadline of t when t fires sooner
func (r *Recall) Limit(t *Countdown) {
	if !t.armed {
		return
	}
	if !r.next.armed || Before(t.deadline, r.next.deadline) {
		r.next.deadline = t.deadline
		r.next.armed = true
	}
}

// Next returns the milliseconds until the task wants to run again
func (r *Recall) Next(now Millis) Millis {
	return r.next.Remaining(now)
}
