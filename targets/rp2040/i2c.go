//go:build rp2040 || rp2350

package main

import "machine"

// InitI2C configures bus on its default pins (I2C0: SDA=GP4 SCL=GP5,
// I2C1: SDA=GP6 SCL=GP7)
func InitI2C(bus *machine.I2C, frequencyHz uint32) (*machine.I2C, error) {
	if err := bus.Configure(machine.I2CConfig{Frequency: frequencyHz}); err != nil {
		return nil, err
	}
	return bus, nil
}
