// engine/events.go
package engine

// 事件名即线协议上的事件名，原样保留混合命名
const (
	EventStarted          = "started"
	EventStopped          = "stopped"
	EventLooped           = "looped"
	EventBlockCreated     = "blockCreated"
	EventNextBlockCreated = "nextBlockCreated"
	EventLinesCompleted   = "linesCompleted"
	EventConfigUpdated    = "configUpdated"
	EventPlayerAdded      = "playerAdded"
	EventPlayerRemoved    = "playerRemoved"
	EventStatusChanged    = "statusChanged"
	EventRoundCompleted   = "roundCompleted"
)

// Event 引擎产生的一次状态变化通知
type Event struct {
	Name    string
	Payload any
}

// Listener receives engine events. Delivery order is subscription order,
// fire-and-forget; listeners must not block.
type Listener func(gameID string, ev Event)
