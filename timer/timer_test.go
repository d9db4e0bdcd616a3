package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_AddTimer_FiresOnce(t *testing.T) {
	manager := NewTimerManager()
	defer manager.Stop()

	var fired int32
	manager.AddTimer(50*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&fired) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("Expected the callback to fire exactly once, got %d", got)
	}

	// No repeat firing.
	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("One-shot timer fired again, count %d", got)
	}
}

func TestManager_AddTimer_Ordering(t *testing.T) {
	manager := NewTimerManager()
	defer manager.Stop()

	var first, second int64
	manager.AddTimer(300*time.Millisecond, func() {
		atomic.StoreInt64(&second, time.Now().UnixNano())
	})
	manager.AddTimer(50*time.Millisecond, func() {
		atomic.StoreInt64(&first, time.Now().UnixNano())
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt64(&first) != 0 && atomic.LoadInt64(&second) != 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	f, s := atomic.LoadInt64(&first), atomic.LoadInt64(&second)
	if f == 0 || s == 0 {
		t.Fatal("Both timers should have fired")
	}
	if f > s {
		t.Error("The earlier deadline should fire first")
	}
}

func TestManager_Stop_DropsPending(t *testing.T) {
	manager := NewTimerManager()

	var fired int32
	manager.AddTimer(200*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	manager.Stop()

	time.Sleep(500 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("Timers pending at Stop must not fire")
	}
}
