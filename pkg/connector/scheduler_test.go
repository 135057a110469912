package connector

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestTimerSchedulerPreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	scheduler := NewTimerScheduler()

	var mu sync.Mutex
	var got []int
	record := func(i int) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, i)
		}
	}

	// A shorter delay scheduled later must still run after its predecessor.
	scheduler.Schedule(30*time.Millisecond, record(1))
	scheduler.Schedule(time.Millisecond, record(2))
	scheduler.Schedule(10*time.Millisecond, record(3))
	scheduler.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("emission order = %v, want [1 2 3]", got)
	}
}

func TestTimerSchedulerDoesNotBlockCaller(t *testing.T) {
	defer goleak.VerifyNone(t)

	scheduler := NewTimerScheduler()
	fired := make(chan struct{})

	start := time.Now()
	scheduler.Schedule(50*time.Millisecond, func() { close(fired) })
	if time.Since(start) > 20*time.Millisecond {
		t.Fatal("Schedule blocked the caller")
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled callback never fired")
	}
	scheduler.Wait()
}

func TestTimerSchedulerWaitWithoutWork(t *testing.T) {
	NewTimerScheduler().Wait()
}
