package sequence

import (
	"encoding/json"
	"sort"

	"github.com/coreman2200/funtimes-gradient/internal/theme"
)

// clamp01 clamps x in [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func easeApply(kind string, x float64) float64 {
	if kind == "" {
		return x
	}
	e, err := theme.EaseByName(kind)
	if err != nil {
		return x
	}
	return e(x)
}

// Eval returns the value of the envelope at time t (seconds).
// If there are no keys, returns 0; if one key, returns its value.
// Keys must be sorted by T ascending.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return e.Keys[0].V
	}
	// before first
	if t <= e.Keys[0].T {
		return e.Keys[0].V
	}
	// after last
	if t >= e.Keys[n-1].T {
		return e.Keys[n-1].V
	}
	// find segment
	for i := 0; i < n-1; i++ {
		a := e.Keys[i]
		b := e.Keys[i+1]
		if t >= a.T && t <= b.T {
			den := (b.T - a.T)
			if den <= 0 {
				return b.V
			}
			u := (t - a.T) / den
			u = clamp01(u)
			u = easeApply(a.Ease, u)
			return a.V + (b.V-a.V)*u
		}
	}
	return e.Keys[n-1].V
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Keys == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Keys)
}

// UnmarshalJSON reads a keyframe array and sorts it by time.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var keys []Keyframe
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].T < keys[j].T })
	e.Keys = keys
	return nil
}
