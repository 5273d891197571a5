// Package cecswitch handles the CEC messages that steer an HDMI switch
// (standby, routing change and information, active source, set stream path)
// and runs the route-announce task that reports the switch's physical
// address once the upstream hot-plug has settled.
package cecswitch

import (
	"errors"

	"sii953x/core"
	"sii953x/protocol/cec"
)

// Feedback is what one dispatch step reports to the caller
type Feedback uint8

const (
	FeedbackNone Feedback = iota
	FeedbackRouteDone
	FeedbackStatusChanged
	FeedbackNonSwitchCmd
	FeedbackInvalidArgs
)

func (f Feedback) String() string {
	switch f {
	case FeedbackNone:
		return "none"
	case FeedbackRouteDone:
		return "route_done"
	case FeedbackStatusChanged:
		return "status_changed"
	case FeedbackNonSwitchCmd:
		return "non_switch_cmd"
	case FeedbackInvalidArgs:
		return "invalid_args"
	}
	return "unknown"
}

// TaskKind selects the active background task
type TaskKind uint8

const (
	TaskIdle TaskKind = iota
	TaskRouteAnnounce
)

// RouteState is the progress of the route-announce task
type RouteState uint8

const (
	RouteEmpty RouteState = iota
	RouteCheckHpd
	RoutePause
	RouteReport
)

// Task is the background task slot: at most one task runs at a time and
// Route only has meaning while Kind is TaskRouteAnnounce.
type Task struct {
	Kind  TaskKind
	Route RouteState
}

// NoPort is returned for a physical address outside this switch
const NoPort = 0xFF

// Config holds the dispatcher's timing and topology parameters
type Config struct {
	// RouteDelay is how long HPD must stay high before the route report
	RouteDelay core.Millis `json:"route_delay_ms"`

	RecallMin core.Millis `json:"recall_min_ms"`
	RecallMax core.Millis `json:"recall_max_ms"`

	// Depth is the tree level of this switch's input ports: 1 when the
	// switch hangs directly off the display.
	Depth int `json:"nesting_depth"`
}

// DefaultConfig returns the stock timing
func DefaultConfig() Config {
	return Config{
		RouteDelay: 1000,
		RecallMin:  10,
		RecallMax:  5000,
		Depth:      1,
	}
}

var ErrBadDepth = errors.New("cecswitch: nesting depth must be 1..3")

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Depth < 1 || c.Depth > 3 {
		return ErrBadDepth
	}
	return nil
}

// Device is the CEC device layer the switch logic runs on.
type Device interface {
	PhysicalAddress() cec.PhysAddr
	LogicalAddress() cec.LogAddr
	DeviceType() uint8
	IsActiveSource() bool
	SetActiveSource(la cec.LogAddr, pa cec.PhysAddr)
	PortSelect() uint8
	// RequestPortChange selects port and flags the pending port change
	RequestPortChange(port uint8)
	Send(f *cec.Frame) error
}

// Board is the product glue the switch logic drives.
type Board interface {
	Standby(on bool)
	InputPortSet(port uint8)
	RxHpd() bool
}
