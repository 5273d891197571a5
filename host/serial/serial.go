// Package serial opens the bench link UART of a board.
package serial

import (
	"io"
	"time"
)

// Port is an open link port
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output
	Flush() error
}

// Config selects the port and its line settings
type Config struct {
	Device string

	// Baud is ignored by USB CDC adapters
	Baud int

	// ReadTimeout bounds a single Read; zero blocks
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings the board firmware uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
