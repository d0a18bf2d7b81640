package sequence

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `json:"t"`
	V    float64 `json:"v"`
	Ease string  `json:"ease,omitempty"` // see theme.EaseNames; "" is linear
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
// In JSON it is the bare keyframe array.
type Envelope struct {
	Keys []Keyframe
}

// Cue is one segment of a theme program: it settles on a theme, optionally
// swaps the preset, holds for HoldS and automates scroll and params meanwhile.
type Cue struct {
	Name   string  `json:"name,omitempty"`
	Theme  string  `json:"theme,omitempty"`  // "light" | "dark" | "" (keep)
	Preset string  `json:"preset,omitempty"` // applied before the theme request
	HoldS  float64 `json:"holdS"`
	FadeS  float64 `json:"fadeS,omitempty"` // theme transition length at cue start
	// LeadS requests the NEXT cue's theme this many seconds before the cue
	// ends, so the transition lands on the boundary.
	LeadS  float64             `json:"leadS,omitempty"`
	Scroll *Envelope           `json:"scroll,omitempty"` // 0..1 progress over the cue
	Params map[string]Envelope `json:"params,omitempty"` // brightness, speed, darkMix
}

// Program is a full sequence of cues.
type Program struct {
	Version string `json:"version"` // "theme.v1"
	Loop    bool   `json:"loop,omitempty"`
	Cues    []Cue  `json:"cues"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into a background instance.
type Hooks struct {
	ApplyPreset    func(name string)
	RequestTheme   func(theme string, fadeS float64)
	ScrollProgress func(p float64)
	SetParam       func(name string, v float64)
}

// Player owns the current Program timeline and uses Hooks to drive a theme.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within program
	idx  int     // current cue index

	// lead bookkeeping
	armedIndex int  // cue whose theme was requested early (-1 means none)
	armed      bool // whether next is armed

	hooks Hooks
}
