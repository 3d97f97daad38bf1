package types

// Phase 从客户端观察到的问题阶段
type Phase int

const (
	PhaseUnknown Phase = iota // 链上不存在
	PhaseNotReady
	PhaseReady
	PhaseResolved
	PhaseEmergencyResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseNotReady:
		return "not_ready"
	case PhaseReady:
		return "ready"
	case PhaseResolved:
		return "resolved"
	case PhaseEmergencyResolved:
		return "emergency_resolved"
	default:
		return "unknown"
	}
}

// Terminal 是否为终态
func (p Phase) Terminal() bool {
	return p == PhaseResolved || p == PhaseEmergencyResolved
}

// QuestionState 阶段 + 正交标记。只是某一时刻的读取结果，链上状态才是权威
type QuestionState struct {
	Phase   Phase
	Paused  bool
	Flagged bool
	Reset   bool
}
