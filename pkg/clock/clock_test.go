package clock

import (
	"testing"
	"time"
)

func TestReal_Monotonic(t *testing.T) {
	c := Real()

	first := c.Now()
	second := c.Now()

	if second.Before(first) {
		t.Errorf("Expected real clock to be monotonic, got %v then %v", first, second)
	}
}

func TestMock_Advance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMock(start)

	if !m.Now().Equal(start) {
		t.Errorf("Expected start time %v, got %v", start, m.Now())
	}

	m.Advance(90 * time.Second)

	want := start.Add(90 * time.Second)
	if !m.Now().Equal(want) {
		t.Errorf("Expected %v after advance, got %v", want, m.Now())
	}
}

func TestMock_Set(t *testing.T) {
	m := NewMock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	target := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.Set(target)

	if !m.Now().Equal(target) {
		t.Errorf("Expected %v after set, got %v", target, m.Now())
	}
}

func TestMock_Since(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMock(start)

	m.Advance(2 * time.Minute)

	if got := m.Since(start); got != 2*time.Minute {
		t.Errorf("Expected 2m elapsed, got %v", got)
	}
}
