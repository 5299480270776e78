package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameLimiter(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewFrameLimiter(60)

	assert.True(t, l.Ready(start), "first frame is always ready")
	assert.False(t, l.Ready(start.Add(10*time.Millisecond)))
	assert.Equal(t, time.Second/60-10*time.Millisecond, l.Remaining(start.Add(10*time.Millisecond)))

	next := start.Add(time.Second / 60)
	assert.True(t, l.Ready(next))
	assert.False(t, l.Ready(next.Add(time.Millisecond)))
	assert.Equal(t, time.Duration(0), l.Remaining(next.Add(time.Second)))
}

func TestFrameLimiterAtMostCapPerSecond(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewFrameLimiter(60)

	frames := 0
	for now := start; now.Before(start.Add(time.Second)); now = now.Add(time.Millisecond) {
		if l.Ready(now) {
			frames++
		}
	}
	assert.LessOrEqual(t, frames, 60)
	assert.GreaterOrEqual(t, frames, 55)
}

func TestFrameLimiterUncapped(t *testing.T) {
	now := time.Now()
	l := NewFrameLimiter(0)
	assert.True(t, l.Ready(now))
	assert.True(t, l.Ready(now))
	assert.Equal(t, time.Duration(0), l.Remaining(now))
}

func TestFPSCounter(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var c FPSCounter

	_, ok := c.Tick(start)
	assert.False(t, ok, "first tick starts the clock")

	for i := 0; i < 42; i++ {
		c.Frame()
	}
	_, ok = c.Tick(start.Add(999 * time.Millisecond))
	assert.False(t, ok)

	fps, ok := c.Tick(start.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, 42, fps)

	c.Frame()
	fps, ok = c.Tick(start.Add(2 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, 1, fps, "count resets after each report")
}
