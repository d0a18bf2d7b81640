package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-gradient/internal/sequence"
)

func TestDemoIsValid(t *testing.T) {
	require.NoError(t, demo.Validate())
	assert.InDelta(t, 8.0, demo.Duration(), 1e-9)
}

func TestRunPrintsSamples(t *testing.T) {
	var buf bytes.Buffer
	s := sim{fps: 10, every: 10, out: &buf, profile: termenv.Ascii}
	prog := sequence.Program{
		Version: sequence.Version,
		Cues: []sequence.Cue{
			{Theme: "dark", HoldS: 2, FadeS: 0.5},
			{Theme: "light", HoldS: 2, FadeS: 0.5},
		},
	}
	require.NoError(t, s.run(prog, ""))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "palette "))
	assert.Contains(t, lines[1], "t=  0.00s")
	assert.Contains(t, lines[2], "dark ")
	assert.Contains(t, lines[2], "brightness=0.200")
	assert.Contains(t, lines[4], "light")
	assert.Contains(t, lines[4], "brightness=0.800")
}
