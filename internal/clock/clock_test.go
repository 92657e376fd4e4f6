package clock

import (
	"testing"
	"time"
)

func TestManual(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := NewManual(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}

	c.Advance(90 * time.Second)
	if got := c.Now().Unix(); got != 1_700_000_090 {
		t.Errorf("after Advance, Unix() = %d, want 1700000090", got)
	}

	c.Set(time.Unix(42, 0))
	if got := c.Now().Unix(); got != 42 {
		t.Errorf("after Set, Unix() = %d, want 42", got)
	}
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	if got.Before(before) {
		t.Errorf("System.Now() = %v is before %v", got, before)
	}
}
