package sequence

import (
	"math"
	"sync"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State:      Idle,
		hooks:      h,
		armedIndex: -1,
	}
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	p.armed = false
	p.armedIndex = -1
	return nil
}

// Start moves to Running and enters the current cue.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Cues) == 0 {
		return
	}
	p.State = Running
	p.enter(p.prog.Cues[p.idx])
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.idx = 0
	p.armed = false
	p.armedIndex = -1
}

// Position returns program time in seconds and the current cue index.
func (p *Player) Position() (float64, int) { return p.nowS, p.idx }

// Seek jumps to absolute program time t. Clamps into [0, totalDur).
func (p *Player) Seek(t float64) {
	if len(p.prog.Cues) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	total := p.prog.Duration()
	if total > 0 && t >= total {
		// Clamp to just before end
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := 0
	for i, c := range p.prog.Cues {
		if t < acc+c.HoldS {
			idx = i
			break
		}
		acc += c.HoldS
	}
	p.idx = idx
	p.nowS = t
	p.armed = false
	p.armedIndex = -1
	p.enter(p.prog.Cues[p.idx])
}

func (p *Player) enter(c Cue) {
	if c.Preset != "" && p.hooks.ApplyPreset != nil {
		p.hooks.ApplyPreset(c.Preset)
	}
	if c.Theme != "" && p.hooks.RequestTheme != nil {
		p.hooks.RequestTheme(c.Theme, c.FadeS)
	}
}

// Tick advances the sequencer by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Cues) == 0 {
		return
	}
	if dt <= 0 {
		return
	}
	p.nowS += dt

	cue, localT := p.currentCueAndLocalT()
	if cue.Scroll != nil && p.hooks.ScrollProgress != nil {
		p.hooks.ScrollProgress(clamp01(cue.Scroll.Eval(localT)))
	}
	if p.hooks.SetParam != nil {
		for name, env := range cue.Params {
			p.hooks.SetParam(name, env.Eval(localT))
		}
	}

	// Request the next theme early so the transition ends on the boundary.
	if cue.LeadS > 0 && !p.armed {
		remain := cue.HoldS - localT
		if remain <= cue.LeadS && remain > 0 {
			if next := p.nextIndex(); next != -1 {
				nc := p.prog.Cues[next]
				if nc.Theme != "" && p.hooks.RequestTheme != nil {
					p.hooks.RequestTheme(nc.Theme, remain)
				}
				p.armed = true
				p.armedIndex = next
			}
		}
	}

	// Cue end? A large dt may cross several cues.
	for localT >= cue.HoldS && p.State == Running {
		p.advanceCue()
		cue, localT = p.currentCueAndLocalT()
	}
}

func (p *Player) currentCueAndLocalT() (Cue, float64) {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.prog.Cues[i].HoldS
	}
	return p.prog.Cues[p.idx], p.nowS - acc
}

func (p *Player) nextIndex() int {
	if len(p.prog.Cues) == 0 {
		return -1
	}
	ni := p.idx + 1
	if ni >= len(p.prog.Cues) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceCue() {
	next := p.nextIndex()
	if next == -1 {
		// End of program
		p.State = Idle
		return
	}
	if next == 0 {
		// Looping: rebase time to the start of the program.
		p.nowS -= p.prog.Duration()
	}
	p.idx = next
	p.enter(p.prog.Cues[p.idx])
	p.armed = false
	p.armedIndex = -1
}

// --- Lightweight synchronization helpers (optional) ---

type SafePlayer struct {
	mu sync.Mutex
	P  *Player
}

func NewSafePlayer(h Hooks) *SafePlayer {
	return &SafePlayer{P: NewPlayer(h)}
}

func (s *SafePlayer) With(f func(p *Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.P)
}
