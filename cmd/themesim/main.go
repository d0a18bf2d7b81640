// Command themesim plays a theme program headless against a tiny software
// surface and prints the theme state with a colour swatch per sample.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/sequence"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

// demo alternates themes with a scroll sweep, used when no program is given.
var demo = sequence.Program{
	Version: sequence.Version,
	Cues: []sequence.Cue{
		{Name: "intro", Theme: "light", HoldS: 3, FadeS: 1.5},
		{Name: "night", Theme: "dark", HoldS: 3, FadeS: 1.5, LeadS: 0.5},
		{Name: "dawn", Theme: "light", Preset: "legacy", HoldS: 2, FadeS: 1},
	},
}

type sim struct {
	fps     int
	every   int
	seconds float64
	out     io.Writer
	profile termenv.Profile
}

func main() {
	var (
		programPath = flag.String("program", "", "theme program JSON (theme.v1); built-in demo if empty")
		fps         = flag.Int("fps", 30, "simulation frames per second")
		every       = flag.Int("every", 15, "print one line every N frames")
		seconds     = flag.Float64("seconds", 0, "run length; 0 = program duration")
		preset      = flag.String("preset", render.DefaultPreset, "starting preset")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	prog := demo
	if *programPath != "" {
		p, err := sequence.LoadFile(*programPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *programPath).Msg("load program")
		}
		prog = p
	}
	s := sim{fps: *fps, every: *every, seconds: *seconds, out: os.Stdout, profile: termenv.ColorProfile()}
	if err := s.run(prog, *preset); err != nil {
		log.Fatal().Err(err).Msg("simulation")
	}
}

func (s sim) run(prog sequence.Program, preset string) error {
	if s.fps <= 0 {
		s.fps = 30
	}
	if s.every <= 0 {
		s.every = 1
	}
	length := s.seconds
	if length <= 0 {
		length = prog.Duration()
	}
	surf := &soft.Surface{W: 8, H: 4, Opts: soft.Options{Workers: 1}}
	lg := zerolog.Nop()
	bg := widget.New("sim", surf, widget.Options{FPS: s.fps, Preset: preset, Settle: -1, Logger: &lg})
	defer bg.Teardown()
	if err := bg.Err(); err != nil {
		return err
	}
	if err := bg.LoadProgram(prog); err != nil {
		return err
	}

	s.palette(bg.Config().Palette)
	dt := time.Second / time.Duration(s.fps)
	frames := int(length * float64(s.fps))
	for i := 0; i <= frames; i++ {
		if err := bg.Tick(dt); err != nil {
			return err
		}
		if i%s.every != 0 {
			continue
		}
		st := bg.Stats()
		fmt.Fprintf(s.out, "t=%6.2fs %-5s brightness=%.3f speed=%.1f %s\n",
			float64(i)/float64(s.fps), st.Theme, st.Brightness, st.Speed, s.swatch(centre(surf.Device().Frame())))
	}
	return nil
}

func (s sim) palette(p render.Palette) {
	fmt.Fprintf(s.out, "palette %s%s %s%s\n",
		s.swatch(p.Dark1), s.swatch(p.Dark2), s.swatch(p.Light1), s.swatch(p.Light2))
}

func (s sim) swatch(c render.Color) string {
	hex := c.Hex()
	return termenv.String("  ").Background(s.profile.Color(hex)).String() + " " + hex
}

func centre(img *image.RGBA) render.Color {
	b := img.Bounds()
	p := img.RGBAAt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)
	return render.Color{R: float32(p.R) / 255, G: float32(p.G) / 255, B: float32(p.B) / 255}
}
