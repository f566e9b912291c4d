package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTaskFiresRepeatedly(t *testing.T) {
	var count int64
	task := NewTask(5*time.Millisecond, func() {
		atomic.AddInt64(&count, 1)
	})
	defer task.Stop()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&count) < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 invocations, got %d", atomic.LoadInt64(&count))
		case <-time.After(time.Millisecond):
		}
	}
}

func TestTaskStop(t *testing.T) {
	var count int64
	task := NewTask(time.Millisecond, func() {
		atomic.AddInt64(&count, 1)
	})

	time.Sleep(10 * time.Millisecond)
	task.Stop()
	task.Stop() // idempotent

	after := atomic.LoadInt64(&count)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt64(&count); got != after {
		t.Errorf("task fired after Stop: %d -> %d", after, got)
	}
}

func TestTaskStopFromCallback(t *testing.T) {
	var task *Task
	ready := make(chan struct{})
	done := make(chan struct{})
	task = NewTask(time.Millisecond, func() {
		<-ready
		task.Stop()
		select {
		case <-done:
		default:
			close(done)
		}
	})
	close(ready)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
}
