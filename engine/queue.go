// engine/queue.go
package engine

import "sync"

// Action 排队等待下个 tick 消费的玩家意图
type Action int

const (
	ActionLeft Action = iota
	ActionRight
	ActionDown
	ActionRotate
)

// inputQueue is the only structure shared between the command-handling
// path and an in-flight tick: handlers append, the tick drains.
type inputQueue struct {
	mutex sync.Mutex
	items []Action
}

func (q *inputQueue) push(a Action) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.items = append(q.items, a)
}

// drain removes and returns all queued actions in FIFO order.
func (q *inputQueue) drain() []Action {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *inputQueue) clear() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.items = nil
}
