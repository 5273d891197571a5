package cecswitch

import (
	"log/slog"

	"sii953x/core"
	"sii953x/protocol/cec"
)

// Switch is one CEC switch instance.
type Switch struct {
	cfg   Config
	dev   Device
	board Board
	clock core.Clock
	log   *slog.Logger

	base bool
	task Task

	taskTimer core.Countdown
	recall    core.Recall
	now       core.Millis
	prev      core.Millis

	activeInputPort uint8
}

// New returns a dispatcher over dev and board. The zero fields of cfg take
// their defaults.
func New(cfg Config, dev Device, board Board, clock core.Clock) *Switch {
	def := DefaultConfig()
	if cfg.RouteDelay == 0 {
		cfg.RouteDelay = def.RouteDelay
	}
	if cfg.RecallMin == 0 {
		cfg.RecallMin = def.RecallMin
	}
	if cfg.RecallMax == 0 {
		cfg.RecallMax = def.RecallMax
	}
	if cfg.Depth == 0 {
		cfg.Depth = def.Depth
	}
	if clock == nil {
		clock = core.SystemClock{}
	}
	s := &Switch{
		cfg:   cfg,
		dev:   dev,
		board: board,
		clock: clock,
		log:   core.Logger("cec_sw"),
	}
	s.activeInputPort = dev.PortSelect()
	s.TaskInit()
	return s
}

// TaskInit drops any running task and resets the time counters
func (s *Switch) TaskInit() {
	s.task = Task{}
	s.taskTimer.Stop()
	s.now, s.prev = 0, 0
}

// SrvStart enables the base service; nothing runs without it
func (s *Switch) SrvStart() { s.base = true }

// SrvStop freezes the dispatcher
func (s *Switch) SrvStop() { s.base = false }

// Running reports whether the base service is enabled
func (s *Switch) Running() bool { return s.base }

// Task returns the background task slot
func (s *Switch) Task() Task { return s.task }

// ActiveInputPort returns the input last announced by RoutingChangeSend
func (s *Switch) ActiveInputPort() uint8 { return s.activeInputPort }

// SendRouteInfo schedules the route-announce task; a running one is kept
func (s *Switch) SendRouteInfo() {
	if s.task.Kind == TaskRouteAnnounce {
		return
	}
	s.task = Task{Kind: TaskRouteAnnounce, Route: RouteEmpty}
}

// TaskProcess runs one dispatch step. A pending message is always handled
// first; otherwise the active task advances. msg may be nil.
func (s *Switch) TaskProcess(msg *cec.Frame) Feedback {
	if !s.base {
		return FeedbackNone
	}
	now := s.clock.ElapsedMs()
	s.prev, s.now = s.now, now

	if s.task.Kind == TaskIdle && msg == nil {
		s.recall.Set(now, s.cfg.RecallMax)
	} else {
		s.recall.Set(now, s.cfg.RecallMin)
	}

	switch {
	case msg != nil:
		return s.baseTask(msg)
	case s.task.Kind == TaskRouteAnnounce:
		return s.routeTask(now)
	}
	return FeedbackNone
}

// NextInvocation returns the milliseconds until TaskProcess needs to run
// again when no message arrives
func (s *Switch) NextInvocation() core.Millis {
	return s.recall.Next(s.clock.ElapsedMs())
}

// Elapsed returns the milliseconds between the last two dispatch steps
func (s *Switch) Elapsed() core.Millis {
	return core.Since(s.prev, s.now)
}
