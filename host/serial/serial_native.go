//go:build !wasm

package serial

import (
	"errors"
	"fmt"

	"github.com/tarm/serial"
)

var ErrNoConfig = errors.New("serial: nil config")

type nativePort struct {
	*serial.Port
}

// Open opens the port described by cfg
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	return nativePort{p}, nil
}
