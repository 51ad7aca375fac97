package state

import (
	"sync"
	"testing"
)

func TestValue_GetReturnsInitial(t *testing.T) {
	v := NewValue(42)
	if got := v.Get(); got != 42 {
		t.Fatalf("Get() = %d, want 42", got)
	}
}

func TestValue_SetNotifiesSubscribersInOrder(t *testing.T) {
	v := NewValue("a")

	var seen []string
	v.Subscribe(func(s string) { seen = append(seen, "first:"+s) })
	v.Subscribe(func(s string) { seen = append(seen, "second:"+s) })

	v.Set("b")

	if len(seen) != 2 || seen[0] != "first:b" || seen[1] != "second:b" {
		t.Fatalf("notification order wrong: %v", seen)
	}
	if v.Get() != "b" {
		t.Fatalf("Get() = %q after Set", v.Get())
	}
}

func TestValue_UpdateIsReadModifyWrite(t *testing.T) {
	v := NewValue(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	if got := v.Get(); got != 50 {
		t.Fatalf("lost updates: got %d, want 50", got)
	}
}

func TestValue_CancelStopsNotifications(t *testing.T) {
	v := NewValue(0)

	calls := 0
	cancel := v.Subscribe(func(int) { calls++ })

	v.Set(1)
	cancel()
	cancel() // idempotent
	v.Set(2)

	if calls != 1 {
		t.Fatalf("subscriber called %d times, want 1", calls)
	}
}
