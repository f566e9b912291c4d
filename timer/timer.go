// timer/timer.go
package timer

import (
	"sync"
	"time"
)

// Task 独立的循环任务：固定间隔回调，可单独取消。
// 每个对局持有自己的 Task，互不阻塞。
type Task struct {
	interval time.Duration
	callback func()
	done     chan struct{}
	once     sync.Once
}

// NewTask starts a recurring task invoking callback every interval until
// Stop is called. The callback runs on the task's own goroutine.
func NewTask(interval time.Duration, callback func()) *Task {
	t := &Task{
		interval: interval,
		callback: callback,
		done:     make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *Task) loop() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.callback()
		case <-t.done:
			return
		}
	}
}

// Stop cancels the task. Safe to call multiple times and from within the
// callback itself.
func (t *Task) Stop() {
	t.once.Do(func() {
		close(t.done)
	})
}
