package sequence

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/coreman2200/funtimes-gradient/internal/theme"
)

const Version = "theme.v1"

var knownParams = map[string]bool{"brightness": true, "speed": true, "darkMix": true}

// Validate checks cue themes, durations, eases and param names.
func (p Program) Validate() error {
	if len(p.Cues) == 0 {
		return fmt.Errorf("program has no cues")
	}
	for i, c := range p.Cues {
		if c.Theme != "" {
			if _, err := theme.ParseTheme(c.Theme); err != nil {
				return fmt.Errorf("cue %d: %w", i, err)
			}
		}
		if c.HoldS <= 0 {
			return fmt.Errorf("cue %d: holdS must be > 0", i)
		}
		if c.FadeS < 0 || c.LeadS < 0 || c.LeadS > c.HoldS {
			return fmt.Errorf("cue %d: fadeS/leadS out of range", i)
		}
		envs := map[string]Envelope{}
		for k, v := range c.Params {
			if !knownParams[k] {
				return fmt.Errorf("cue %d: unknown param %q", i, k)
			}
			envs[k] = v
		}
		if c.Scroll != nil {
			envs["scroll"] = *c.Scroll
		}
		for k, env := range envs {
			for _, kf := range env.Keys {
				if kf.Ease == "" {
					continue
				}
				if _, err := theme.EaseByName(kf.Ease); err != nil {
					return fmt.Errorf("cue %d: %s: %w", i, k, err)
				}
			}
		}
	}
	return nil
}

// Decode reads and validates a JSON program.
func Decode(r io.Reader) (Program, error) {
	var p Program
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Program{}, fmt.Errorf("decode program: %w", err)
	}
	if p.Version == "" {
		p.Version = Version
	}
	if p.Version != Version {
		return Program{}, fmt.Errorf("unsupported program version %q", p.Version)
	}
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

func LoadFile(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return Program{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Duration is the sum of cue holds in seconds.
func (p Program) Duration() float64 {
	total := 0.0
	for _, c := range p.Cues {
		total += c.HoldS
	}
	return total
}
