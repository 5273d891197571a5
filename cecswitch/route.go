package cecswitch

import (
	"sii953x/core"
	"sii953x/protocol/cec"
)

// routeTask reports the physical address once upstream HPD has been high
// for a full RouteDelay. A drop during the pause starts over.
func (s *Switch) routeTask(now core.Millis) Feedback {
	switch s.task.Route {
	case RouteEmpty:
		s.task.Route = RouteCheckHpd
		fallthrough
	case RouteCheckHpd:
		if s.board.RxHpd() {
			s.taskTimer.Arm(now, s.cfg.RouteDelay)
			s.task.Route = RoutePause
		}
	case RoutePause:
		s.recall.Set(now, s.cfg.RecallMax)
		s.recall.Limit(&s.taskTimer)
		if !s.board.RxHpd() {
			s.log.Debug("upstream HPD dropped during route pause")
			s.taskTimer.Stop()
			s.task.Route = RouteCheckHpd
			s.recall.Set(now, s.cfg.RecallMin)
			break
		}
		if s.taskTimer.Expired(now) {
			s.taskTimer.Stop()
			s.PhysicalAddressReportSend()
			s.log.Debug("broadcast physical address after delay")
			s.task.Route = RouteReport
		}
	case RouteReport:
		s.task = Task{}
		return FeedbackRouteDone
	}
	return FeedbackNone
}

func (s *Switch) send(f cec.Frame) {
	if err := s.dev.Send(&f); err != nil {
		s.log.Warn("CEC send failed", "op", uint8(f.Opcode), "err", err)
	}
}

// PhysicalAddressReportSend broadcasts REPORT_PHYSICAL_ADDRESS
func (s *Switch) PhysicalAddressReportSend() {
	hi, lo := s.dev.PhysicalAddress().Bytes()
	s.send(cec.NewFrame(s.dev.LogicalAddress(), cec.LaBroadcast, cec.OpReportPhysicalAddress, hi, lo, s.dev.DeviceType()))
}

// RoutingInformationSend broadcasts the address of the selected input
func (s *Switch) RoutingInformationSend() {
	hi, lo := s.dev.PhysicalAddress().Child(s.dev.PortSelect()).Bytes()
	s.send(cec.NewFrame(s.dev.LogicalAddress(), cec.LaBroadcast, cec.OpRoutingInformation, hi, lo))
}

// RoutingChangeSend broadcasts ROUTING_CHANGE from the last announced input
// to newPort; nothing is sent when the input is unchanged.
func (s *Switch) RoutingChangeSend(newPort uint8) {
	if newPort == s.activeInputPort {
		return
	}
	old := s.activeInputPort
	s.activeInputPort = newPort

	pa := s.dev.PhysicalAddress()
	oh, ol := pa.Child(old).Bytes()
	nh, nl := pa.Child(newPort).Bytes()
	s.send(cec.NewFrame(s.dev.LogicalAddress(), cec.LaBroadcast, cec.OpRoutingChange, oh, ol, nh, nl))
}
