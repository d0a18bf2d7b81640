package theme

import "time"

// Tween eases a float from From to To over Duration. It is advanced by the
// frame tick and never reads the wall clock.
type Tween struct {
	From, To float64
	Duration time.Duration
	Ease     Ease

	elapsed time.Duration
}

func NewTween(from, to float64, d time.Duration, e Ease) *Tween {
	if e == nil {
		e = QuadInOut
	}
	return &Tween{From: from, To: to, Duration: d, Ease: e}
}

// Step advances the tween by dt and returns the value and whether it has
// reached the end. The final value is To exactly.
func (tw *Tween) Step(dt time.Duration) (float64, bool) {
	if dt > 0 {
		tw.elapsed += dt
	}
	if tw.Duration <= 0 || tw.elapsed >= tw.Duration {
		tw.elapsed = tw.Duration
		return tw.To, true
	}
	u := tw.Ease(float64(tw.elapsed) / float64(tw.Duration))
	return tw.From + (tw.To-tw.From)*u, false
}

// Progress is elapsed/duration in [0,1].
func (tw *Tween) Progress() float64 {
	if tw.Duration <= 0 {
		return 1
	}
	return clamp01(float64(tw.elapsed) / float64(tw.Duration))
}
