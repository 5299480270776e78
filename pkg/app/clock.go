package app

import "time"

// FrameLimiter lets at most fps frames through per second
type FrameLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewFrameLimiter creates a limiter. fps <= 0 disables limiting.
func NewFrameLimiter(fps int) *FrameLimiter {
	l := &FrameLimiter{}
	if fps > 0 {
		l.interval = time.Second / time.Duration(fps)
	}
	return l
}

// Ready reports whether a frame may be rendered at now, and if so starts the next interval
func (l *FrameLimiter) Ready(now time.Time) bool {
	if l.interval > 0 && !l.last.IsZero() && now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	return true
}

// Remaining returns how long until the next frame is allowed
func (l *FrameLimiter) Remaining(now time.Time) time.Duration {
	if l.interval == 0 || l.last.IsZero() {
		return 0
	}
	return max(0, l.interval-now.Sub(l.last))
}

// FPSCounter counts frames and reports the total once per second
type FPSCounter struct {
	frames int
	last   time.Time
}

// Frame records one rendered frame
func (c *FPSCounter) Frame() {
	c.frames++
}

// Tick returns the frame count of the last second once a second has passed
// since the previous report. The first call only starts the clock.
func (c *FPSCounter) Tick(now time.Time) (fps int, ok bool) {
	if c.last.IsZero() {
		c.last = now
		return 0, false
	}
	if now.Sub(c.last) < time.Second {
		return 0, false
	}

	fps = c.frames
	c.frames = 0
	c.last = now
	return fps, true
}
