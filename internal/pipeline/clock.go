package pipeline

import "time"

// Clock tracks wall time since initialization and the animation phase. The
// phase integrates elapsed time scaled by the speed multiplier in effect at
// each step, so changing the speed bends the motion instead of jumping it.
type Clock struct {
	now   func() time.Time
	start time.Time
	last  time.Time

	Elapsed float64 // seconds since start
	Phase   float64
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Clock{now: now, start: t, last: t}
}

// Advance moves the clock to now and returns elapsed seconds and the phase.
func (c *Clock) Advance(speed float64) (elapsed, phase float64) {
	t := c.now()
	dt := t.Sub(c.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	c.last = t
	c.Elapsed = t.Sub(c.start).Seconds()
	c.Phase += dt * speed
	return c.Elapsed, c.Phase
}
