package sequence

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{Keys: []Keyframe{
		{T: 0, V: 0, Ease: "linear"},
		{T: 10, V: 10, Ease: "linear"},
	}}
	assert.Equal(t, 0.0, env.Eval(-1), "before start")
	assert.Equal(t, 0.0, env.Eval(0))
	assert.Equal(t, 5.0, env.Eval(5))
	assert.Equal(t, 10.0, env.Eval(10))
	assert.Equal(t, 10.0, env.Eval(11), "after end")
}

func TestEnvelopeEased(t *testing.T) {
	env := Envelope{Keys: []Keyframe{{T: 0, V: 0, Ease: "power2.inOut"}, {T: 1, V: 1}}}
	assert.InDelta(t, 0.125, env.Eval(0.25), 1e-12)
}

func TestEnvelopeJSONSorts(t *testing.T) {
	var env Envelope
	require.NoError(t, env.UnmarshalJSON([]byte(`[{"t":2,"v":1},{"t":0,"v":0}]`)))
	require.Len(t, env.Keys, 2)
	assert.Equal(t, 0.0, env.Keys[0].T)
	assert.Equal(t, 0.5, env.Eval(1))
}

func recorder(log *[]string) Hooks {
	return Hooks{
		ApplyPreset: func(name string) { *log = append(*log, "Preset:"+name) },
		RequestTheme: func(theme string, fadeS float64) {
			*log = append(*log, fmt.Sprintf("Theme:%s/%.1f", theme, fadeS))
		},
		ScrollProgress: func(p float64) {},
		SetParam:       func(name string, v float64) {},
	}
}

func TestPlayerLeadRequestsNextTheme(t *testing.T) {
	var log []string
	p := NewPlayer(recorder(&log))
	prog := Program{
		Version: Version,
		Cues: []Cue{
			{Name: "intro", Theme: "light", Preset: "site", HoldS: 4, FadeS: 2, LeadS: 2},
			{Name: "dark", Theme: "dark", HoldS: 4, FadeS: 1.5},
		},
	}
	require.NoError(t, p.Load(prog))
	p.Start()
	p.Tick(1.9) // t=1.9
	p.Tick(0.2) // t=2.1 -> lead window, requests dark early
	p.Tick(0.9) // t=3.0
	p.Tick(1.0) // t=4.0 -> enters cue 2

	assert.Equal(t, []string{
		"Preset:site",
		"Theme:light/2.0",
		"Theme:dark/1.9",
		"Theme:dark/1.5",
	}, log)
	_, idx := p.Position()
	assert.Equal(t, 1, idx)

	p.Tick(4)
	assert.Equal(t, Idle, p.State, "program ends without loop")
}

func TestPlayerScrollAndParams(t *testing.T) {
	var scroll []float64
	params := map[string]float64{}
	p := NewPlayer(Hooks{
		ScrollProgress: func(v float64) { scroll = append(scroll, v) },
		SetParam:       func(name string, v float64) { params[name] = v },
	})
	require.NoError(t, p.Load(Program{Cues: []Cue{{
		HoldS:  10,
		Scroll: &Envelope{Keys: []Keyframe{{T: 0, V: -1}, {T: 10, V: 2}}},
		Params: map[string]Envelope{"speed": {Keys: []Keyframe{{T: 0, V: 0}, {T: 10, V: 10}}}},
	}}}))
	p.Start()
	p.Tick(1)
	p.Tick(8)
	assert.Equal(t, []float64{0, 1}, scroll, "scroll is clamped to [0,1]")
	assert.InDelta(t, 9.0, params["speed"], 1e-9)
}

func TestPlayerPauseSeekLoop(t *testing.T) {
	var log []string
	p := NewPlayer(recorder(&log))
	require.NoError(t, p.Load(Program{Loop: true, Cues: []Cue{
		{Theme: "light", HoldS: 2},
		{Theme: "dark", HoldS: 2},
	}}))
	p.Start()
	p.Pause()
	p.Tick(3)
	now, _ := p.Position()
	assert.Equal(t, 0.0, now)

	p.Resume()
	p.Tick(5) // 5s: loops once, lands in cue 0 at t=1
	now, idx := p.Position()
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 1.0, now, 1e-9)
	assert.Equal(t, Running, p.State)

	p.Seek(3)
	_, idx = p.Position()
	assert.Equal(t, 1, idx)
	p.Stop()
	assert.Equal(t, Idle, p.State)
}

func TestDecodeProgram(t *testing.T) {
	src := `{"version":"theme.v1","cues":[
		{"theme":"dark","holdS":3,"fadeS":1.5,
		 "scroll":[{"t":0,"v":0},{"t":3,"v":1,"ease":"smooth"}],
		 "params":{"brightness":[{"t":0,"v":1}]}}]}`
	prog, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, prog.Cues, 1)
	assert.Equal(t, 3.0, prog.Duration())
	require.NotNil(t, prog.Cues[0].Scroll)
	assert.Len(t, prog.Cues[0].Scroll.Keys, 2)

	bad := []string{
		`{"cues":[]}`,
		`{"cues":[{"theme":"sepia","holdS":1}]}`,
		`{"cues":[{"holdS":0}]}`,
		`{"cues":[{"holdS":1,"params":{"hue":[]}}]}`,
		`{"cues":[{"holdS":1,"scroll":[{"t":0,"v":0,"ease":"bounce"}]}]}`,
		`{"version":"seq.v1","cues":[{"holdS":1}]}`,
		`{"cues":[{"holdS":1,"clips":[]}]}`,
	}
	for _, b := range bad {
		_, err := Decode(strings.NewReader(b))
		assert.Error(t, err, b)
	}
}
