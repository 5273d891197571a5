package cecswitch

import "sii953x/protocol/cec"

// baseTask handles one broadcast message of the switch group
func (s *Switch) baseTask(msg *cec.Frame) Feedback {
	if !msg.IsBroadcast() {
		return FeedbackNonSwitchCmd
	}

	switch msg.Opcode {
	case cec.OpStandby:
		if msg.ArgCount != 0 {
			return s.badArgs("Standby", msg)
		}
		s.log.Info("standby requested")
		s.board.Standby(true)

	case cec.OpRoutingChange:
		if msg.ArgCount != 4 {
			return s.badArgs("Routing Change", msg)
		}
		if msg.PhysAddrArg(2) == s.dev.PhysicalAddress() {
			s.log.Info("route info in response to routing change")
			s.RoutingInformationSend()
		}

	case cec.OpRoutingInformation:
		if msg.ArgCount != 2 {
			return s.badArgs("Routing Information", msg)
		}
		if msg.PhysAddrArg(0) == s.dev.PhysicalAddress() {
			s.log.Info("route info in response to routing information")
			s.RoutingInformationSend()
		}

	case cec.OpActiveSource:
		if msg.ArgCount != 2 {
			return s.badArgs("Active Source", msg)
		}
		if msg.Source() == cec.LaTV {
			break
		}
		pa := msg.PhysAddrArg(0)
		s.dev.SetActiveSource(msg.Source(), pa)
		if port := s.inputPort(pa); port != NoPort {
			s.log.Info("active source", "pa", pa.String(), "port", port)
			s.dev.RequestPortChange(port)
		}

	case cec.OpSetStreamPath:
		if msg.ArgCount != 2 {
			return s.badArgs("Set Stream Path", msg)
		}
		return s.setStreamPath(msg.PhysAddrArg(0))

	default:
		return FeedbackNonSwitchCmd
	}
	return FeedbackNone
}

func (s *Switch) setStreamPath(pa cec.PhysAddr) Feedback {
	fb := FeedbackNone
	if port := s.inputPort(pa); port != NoPort {
		s.board.Standby(false)
		if port != s.dev.PortSelect() {
			s.board.InputPortSet(port)
			s.log.Info("switched input", "port", port)
			fb = FeedbackStatusChanged
		}
		s.dev.RequestPortChange(port)
	}
	if s.dev.IsActiveSource() {
		hi, lo := pa.Bytes()
		s.send(cec.NewFrame(s.dev.LogicalAddress(), cec.LaBroadcast, cec.OpActiveSource, hi, lo))
	}
	return fb
}

func (s *Switch) badArgs(name string, msg *cec.Frame) Feedback {
	s.log.Warn("wrong length", "msg", name, "argc", msg.ArgCount)
	return FeedbackInvalidArgs
}
