// engine/status.go
package engine

// Status 对局生命周期状态
type Status int

const (
	StatusWaiting Status = iota
	StatusRunning
	StatusPaused
	StatusStopping
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopping:
		return "stopping"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// transitions 状态图：waiting → running → {ended|paused|stopping}，
// ended 为终态。waiting 直接到 ended 对应开局前取消。
var transitions = map[Status][]Status{
	StatusWaiting:  {StatusRunning, StatusEnded},
	StatusRunning:  {StatusEnded, StatusPaused, StatusStopping},
	StatusPaused:   {StatusRunning, StatusEnded},
	StatusStopping: {StatusRunning, StatusEnded},
	StatusEnded:    {},
}

// CanTransition reports whether the status graph allows moving to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
