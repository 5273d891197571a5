package board

import (
	"encoding/json"
	"errors"

	"sii953x/cecswitch"
	"sii953x/protocol/cec"
	"sii953x/repeater"
)

// MaxChannels is the number of MHL-capable inputs on the chip
const MaxChannels = 4

var (
	ErrBadPipe         = errors.New("board: unknown pipe source")
	ErrBadPort         = errors.New("board: input port out of range")
	ErrDuplicatePort   = errors.New("board: two CBUS channels on one port")
	ErrTooManyChannels = errors.New("board: too many CBUS channels")
	ErrInputConflict   = errors.New("board: transmitters on one pipe select different inputs")
)

// Config is the board configuration
type Config struct {
	CEC      CECConfig        `json:"cec"`
	Switch   cecswitch.Config `json:"cec_switch"`
	Repeater repeater.Config  `json:"repeater"`
	Topology TopologyConfig   `json:"topology"`
	CBUS     []ChannelConfig  `json:"cbus"`
}

// CECConfig is the identity of the switch on the CEC bus
type CECConfig struct {
	PhysicalAddress uint16 `json:"physical_address"`
	LogicalAddress  uint8  `json:"logical_address"`
	DeviceType      uint8  `json:"device_type"`
	InputPort       uint8  `json:"input_port"`
}

// TopologyConfig is the pipe mapping applied at start-up. PipeSel names a
// source per transmitter: main, sub, tpg or disabled.
type TopologyConfig struct {
	SourceSel [repeater.NumTx]uint8  `json:"source_sel"`
	PipeSel   [repeater.NumTx]string `json:"pipe_sel"`
}

// ChannelConfig is one MHL input with a CBUS channel. VIC and DTD list the
// 3D format flags advertised for each video code and detailed timing.
type ChannelConfig struct {
	Port     uint8   `json:"port"`
	Instance int     `json:"instance"`
	VIC      []uint8 `json:"vic_3d"`
	DTD      []uint8 `json:"dtd_3d"`
}

// DefaultConfig returns the configuration of the reference board
func DefaultConfig() *Config {
	return &Config{
		CEC: CECConfig{
			PhysicalAddress: 0x1000,
			LogicalAddress:  uint8(cec.LaBroadcast),
			DeviceType:      cec.DevicePureSwitch,
		},
		Switch:   cecswitch.DefaultConfig(),
		Repeater: repeater.DefaultConfig(),
		Topology: TopologyConfig{
			PipeSel: [repeater.NumTx]string{"main", "main"},
		},
	}
}

// LoadConfig parses a JSON configuration. Keys missing from the file keep
// their default values.
func LoadConfig(jsonData []byte) (*Config, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(jsonData, config); err != nil {
		return nil, err
	}
	applyDefaults(config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyDefaults fills in values that cannot be zero
func applyDefaults(config *Config) {
	def := DefaultConfig()
	if config.Switch.RouteDelay == 0 {
		config.Switch.RouteDelay = def.Switch.RouteDelay
	}
	if config.Switch.RecallMin == 0 {
		config.Switch.RecallMin = def.Switch.RecallMin
	}
	if config.Switch.RecallMax == 0 {
		config.Switch.RecallMax = def.Switch.RecallMax
	}
	if config.Switch.Depth == 0 {
		config.Switch.Depth = def.Switch.Depth
	}
	if config.Repeater.ServiceInterval == 0 {
		config.Repeater.ServiceInterval = def.Repeater.ServiceInterval
	}
	for i, p := range config.Topology.PipeSel {
		if p == "" {
			config.Topology.PipeSel[i] = "disabled"
		}
	}
	// Default to one channel on the first input
	if config.CBUS == nil {
		config.CBUS = []ChannelConfig{{
			Port: 0,
			VIC:  []uint8{0x07, 0x07, 0x01},
		}}
	}
}

// Validate checks the values the components cannot clamp themselves
func (c *Config) Validate() error {
	if err := c.Switch.Validate(); err != nil {
		return err
	}
	topo, err := c.Topology.Topology()
	if err != nil {
		return err
	}
	if c.CEC.InputPort >= MaxChannels {
		return ErrBadPort
	}
	if err := checkSourceSel(c.Topology.SourceSel, topo); err != nil {
		return err
	}
	if len(c.CBUS) > MaxChannels {
		return ErrTooManyChannels
	}
	var used [MaxChannels]bool
	for _, ch := range c.CBUS {
		if ch.Port >= MaxChannels {
			return ErrBadPort
		}
		if used[ch.Port] {
			return ErrDuplicatePort
		}
		used[ch.Port] = true
	}
	return nil
}

// checkSourceSel rejects out-of-range inputs and transmitters that share a
// pipe but ask for different inputs
func checkSourceSel(sel [repeater.NumTx]uint8, topo repeater.Topology) error {
	var want [repeater.NumPipe]int
	for p := range want {
		want[p] = -1
	}
	for tx, port := range sel {
		if port >= MaxChannels {
			return ErrBadPort
		}
		p := topo.PipeSel[tx].Pipe()
		if p == repeater.PipeNone {
			continue
		}
		if want[p] >= 0 && want[p] != int(port) {
			return ErrInputConflict
		}
		want[p] = int(port)
	}
	return nil
}

// Topology returns the pipe selection named by PipeSel
func (t TopologyConfig) Topology() (repeater.Topology, error) {
	var topo repeater.Topology
	for tx, name := range t.PipeSel {
		src, ok := repeater.ParseSource(name)
		if !ok {
			return topo, ErrBadPipe
		}
		topo.PipeSel[tx] = src
	}
	return topo, nil
}
