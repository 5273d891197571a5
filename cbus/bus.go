package cbus

import (
	"errors"

	"sii953x/core"
)

// Bus is the set of CBUS channels of one board
type Bus struct {
	channels []*Channel
}

// NewBus groups channels; channel i is reachable as Channel(i)
func NewBus(channels ...*Channel) *Bus {
	return &Bus{channels: channels}
}

// Len returns the number of channels
func (b *Bus) Len() int { return len(b.channels) }

// Channel returns channel i, nil when out of range
func (b *Bus) Channel(i int) *Channel {
	if i < 0 || i >= len(b.channels) {
		return nil
	}
	return b.channels[i]
}

// ChannelForPort returns the channel serving input port, nil if none
func (b *Bus) ChannelForPort(port uint8) *Channel {
	for _, c := range b.channels {
		if c.port == port {
			return c
		}
	}
	return nil
}

// Initialize initializes every channel
func (b *Bus) Initialize() error {
	var errs []error
	for _, c := range b.channels {
		if err := c.Initialize(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Handle runs one pass of every channel
func (b *Bus) Handle(now core.Millis) error {
	var errs []error
	for _, c := range b.channels {
		if err := c.Handle(now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
