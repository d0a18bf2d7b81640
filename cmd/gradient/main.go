package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-gradient/internal/config"
	diag "github.com/coreman2200/funtimes-gradient/internal/diagnostics"
	"github.com/coreman2200/funtimes-gradient/internal/gpu/soft"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/sequence"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

type flags struct {
	surface    string
	configPath string
	preset     string
	fps        int
	addr       string
	w, h       int
	program    string
	outDir     string
	frames     int
	noise      string
	seed       int64
	watch      bool
	pattern    string
	debug      bool
}

func main() {
	var f flags
	flag.StringVar(&f.surface, "surface", "term", "surface: term | preview | led | snapshot | window")
	flag.StringVar(&f.configPath, "config", "config.yaml", "path to config.yaml (or .toml)")
	flag.StringVar(&f.preset, "preset", render.DefaultPreset, "starting preset")
	flag.IntVar(&f.fps, "fps", 60, "target frames per second")
	flag.StringVar(&f.addr, "addr", ":8080", "preview HTTP listen address")
	flag.IntVar(&f.w, "w", 160, "preview/snapshot width")
	flag.IntVar(&f.h, "h", 90, "preview/snapshot height")
	flag.StringVar(&f.program, "program", "", "theme program JSON to play")
	flag.StringVar(&f.outDir, "out", "frames", "snapshot output directory")
	flag.IntVar(&f.frames, "frames", 1, "snapshot frames to render")
	flag.StringVar(&f.noise, "noise", "simplex", "software noise field: simplex | opensimplex")
	flag.Int64Var(&f.seed, "seed", 0, "opensimplex seed")
	flag.BoolVar(&f.watch, "watch", false, "reload the config file on change")
	flag.StringVar(&f.pattern, "pattern", "", "led only: run a wiring test pattern (index_sweep | rgb_channels | panel_sweep) and exit")
	flag.BoolVar(&f.debug, "v", false, "debug logging")
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if f.debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	out := os.Stdout
	if f.surface == "term" {
		// the terminal belongs to the gradient
		out = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})

	// ---- Load config (optional) ----
	cfg := &config.Config{}
	if c, err := config.Load(f.configPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", f.configPath).Msg("config load failed; proceeding with flags")
		}
	} else {
		cfg = c
	}
	eff := effective(f, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case s := <-ch:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, eff, cfg); err != nil {
		diag.Log(&log.Logger, diag.FromError(err))
		os.Exit(1)
	}
}

// settings are the effective parameters after config overrides flags.
type settings struct {
	flags
	field  soft.Options
	widget widget.Options
}

func effective(f flags, cfg *config.Config) settings {
	if cfg.Surface != "" {
		f.surface = cfg.Surface
	}
	if cfg.FPS > 0 {
		f.fps = cfg.FPS
	}
	if cfg.Preset != "" {
		f.preset = cfg.Preset
	}
	if cfg.Program != "" {
		f.program = cfg.Program
	}
	if cfg.Preview.Addr != "" {
		f.addr = cfg.Preview.Addr
	}
	if cfg.Noise.Field != "" {
		f.noise = cfg.Noise.Field
	}
	if cfg.Noise.Seed != 0 {
		f.seed = cfg.Noise.Seed
	}
	if cfg.Snapshot.Dir != "" {
		f.outDir = cfg.Snapshot.Dir
	}
	if cfg.Snapshot.Frames > 0 {
		f.frames = cfg.Snapshot.Frames
	}
	cfg.Preset = f.preset
	cfg.Noise.Field = f.noise
	cfg.Noise.Seed = f.seed
	return settings{flags: f}
}

func run(ctx context.Context, s settings, cfg *config.Config) error {
	field, err := cfg.NoiseField()
	if err != nil {
		return err
	}
	s.field = soft.Options{Field: field, Workers: cfg.Noise.Workers}

	rc, err := cfg.RenderConfig(nil)
	if err != nil {
		return err
	}
	th, err := cfg.ThemeOptions()
	if err != nil {
		return err
	}
	s.widget = widget.Options{
		FPS:    s.fps,
		Config: &rc,
		Theme:  th,
		Settle: cfg.Settle(),
		FadeIn: cfg.FadeIn(),
	}

	var prog *sequence.Program
	if s.program != "" {
		path, err := config.Expand(s.program)
		if err != nil {
			return err
		}
		p, err := sequence.LoadFile(path)
		if err != nil {
			return err
		}
		prog = &p
	}

	log.Info().
		Str("surface", s.surface).
		Str("preset", s.preset).
		Int("fps", s.fps).
		Str("noise", s.noise).
		Msg("starting")

	start := func(bg *widget.Background) error {
		if err := bg.Err(); err != nil {
			return err
		}
		if prog != nil {
			if err := bg.LoadProgram(*prog); err != nil {
				return err
			}
		}
		if s.watch {
			go watchConfig(ctx, s.configPath, bg)
		}
		return nil
	}

	switch s.surface {
	case "term":
		return runTerm(ctx, s, start)
	case "preview":
		return runPreview(ctx, s, cfg, start)
	case "led":
		return runLED(ctx, s, cfg, start)
	case "snapshot":
		return runSnapshot(s, cfg, start)
	case "window":
		return runWindow(ctx, s, cfg, start)
	default:
		return errors.New("unknown surface " + s.surface)
	}
}

// watchConfig applies live config edits as queued edits.
func watchConfig(ctx context.Context, path string, bg *widget.Background) {
	err := config.Watch(ctx, path, func(c *config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("config reload rejected")
			return
		}
		next, err := c.RenderConfig(nil)
		if err != nil {
			log.Warn().Err(err).Msg("config reload rejected")
			return
		}
		bg.Submit(func(rc *render.Config, _ *theme.Controller) {
			rc.Palette = next.Palette
			rc.Curve = next.Curve
			rc.Shape = next.Shape
			if c.AnimationSpeed != nil {
				rc.AnimationSpeed = *c.AnimationSpeed
			}
			if c.Brightness != nil {
				rc.Brightness = *c.Brightness
			}
			if c.DarkMix != nil {
				rc.DarkMix = *c.DarkMix
			}
		})
		log.Info().Str("path", path).Msg("config reloaded")
	})
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("config watch")
	}
}
