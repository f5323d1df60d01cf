package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	var fired []string

	c.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	stopped := c.AfterFunc(150*time.Millisecond, func() { fired = append(fired, "x") })

	if !stopped.Stop() {
		t.Error("Stop() = false on pending timer")
	}
	if stopped.Stop() {
		t.Error("Stop() = true on stopped timer")
	}

	c.Advance(150 * time.Millisecond)
	if len(fired) != 1 || fired[0] != "a" {
		t.Fatalf("fired = %v, want [a]", fired)
	}

	c.Advance(50 * time.Millisecond)
	if len(fired) != 2 || fired[1] != "b" {
		t.Errorf("fired = %v, want [a b]", fired)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestFakeChainedTimers(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(10*time.Millisecond, tick)
		}
	}
	c.AfterFunc(10*time.Millisecond, tick)

	c.Advance(time.Second)
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if got := c.Now(); !got.Equal(time.Unix(1, 0)) {
		t.Errorf("Now() = %v, want 1s", got)
	}
}

func TestFiredTimerStop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	timer := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)

	if timer.Stop() {
		t.Error("Stop() after firing = true, want false")
	}
}
