package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-gradient/internal/config"
	diag "github.com/coreman2200/funtimes-gradient/internal/diagnostics"
	"github.com/coreman2200/funtimes-gradient/internal/layout"
	"github.com/coreman2200/funtimes-gradient/internal/render"
	"github.com/coreman2200/funtimes-gradient/internal/surface/led"
	"github.com/coreman2200/funtimes-gradient/internal/surface/preview"
	"github.com/coreman2200/funtimes-gradient/internal/surface/snapshot"
	"github.com/coreman2200/funtimes-gradient/internal/surface/term"
	"github.com/coreman2200/funtimes-gradient/internal/surface/window"
	"github.com/coreman2200/funtimes-gradient/internal/widget"
)

const instance = "main"

func runTerm(ctx context.Context, s settings, start func(*widget.Background) error) error {
	t, err := term.Open(s.field, &log.Logger)
	if err != nil {
		return err
	}
	defer t.Close()
	t.SetPresets(render.BuiltinPresets().List())

	bg := widget.New(instance, t, s.widget)
	defer bg.Teardown()
	if err := start(bg); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go t.Events(ctx, bg, cancel)
	return bg.Run(ctx)
}

func runPreview(ctx context.Context, s settings, cfg *config.Config, start func(*widget.Background) error) error {
	w, h := s.w, s.h
	if cfg.Preview.W > 0 && cfg.Preview.H > 0 {
		w, h = cfg.Preview.W, cfg.Preview.H
	}
	hub := preview.NewHub(preview.Options{
		W:        w,
		H:        h,
		Ratio:    cfg.Preview.Ratio,
		Throttle: time.Duration(cfg.Preview.ThrottleMS) * time.Millisecond,
		Soft:     s.field,
		Logger:   &log.Logger,
	})
	reg := widget.NewRegistry()
	defer reg.TeardownAll()

	bg := widget.New(instance, hub, s.widget)
	if err := reg.Register(bg); err != nil {
		return err
	}
	hub.Attach(bg, reg)
	if err := start(bg); err != nil {
		// keep serving so clients can read the diagnostic
		d := diag.FromError(err)
		diag.Log(&log.Logger, d)
		hub.PushDiag(d)
	}

	srv := &http.Server{
		Addr:         s.addr,
		Handler:      withCORS(hub.Handler()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", s.addr).Int("w", w).Int("h", h).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server crashed")
		}
	}()
	if bg.Err() == nil {
		go func() {
			if err := bg.Run(ctx); err != nil {
				d := diag.FromError(err)
				diag.Log(&log.Logger, d)
				hub.PushDiag(d)
			}
		}()
	}
	<-ctx.Done()
	return srv.Close()
}

func runLED(ctx context.Context, s settings, cfg *config.Config, start func(*widget.Background) error) error {
	m := cfg.LED.Matrix
	if m.W == 0 || m.H == 0 {
		m = layout.Matrix{W: 16, H: 16, Order: layout.Serpentine{XFlipEveryRow: true}}
	}
	surf, err := led.Open(led.Options{
		Matrix:      m,
		Limit:       cfg.LED.Limit,
		Gamma:       cfg.LED.Gamma,
		Supersample: cfg.LED.Supersample,
		Smoothing:   cfg.LED.Smoothing,
		Port:        cfg.LED.Port,
		Freq:        physic.Frequency(cfg.LED.FreqKHz) * physic.KiloHertz,
		Soft:        s.field,
	}, &log.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := surf.Close(); err != nil {
			log.Warn().Err(err).Msg("led close")
		}
	}()
	log.Info().Bool("hardware", surf.Hardware()).Int("leds", m.Count()).Msg("led surface ready")

	if s.pattern != "" {
		p, err := led.ParsePattern(s.pattern)
		if err != nil {
			return err
		}
		return surf.RunPattern(ctx, p, 200*time.Millisecond)
	}

	bg := widget.New(instance, surf, s.widget)
	defer bg.Teardown()
	if err := start(bg); err != nil {
		return err
	}
	return bg.Run(ctx)
}

// runSnapshot renders on a fixed timestep, so the files are reproducible.
func runSnapshot(s settings, cfg *config.Config, start func(*widget.Background) error) error {
	w, h := s.w, s.h
	if cfg.Snapshot.W > 0 && cfg.Snapshot.H > 0 {
		w, h = cfg.Snapshot.W, cfg.Snapshot.H
	}
	surf, err := snapshot.New(snapshot.Options{
		W:     w,
		H:     h,
		Dir:   s.outDir,
		Every: cfg.Snapshot.Every,
		Limit: cfg.Snapshot.Limit,
		Soft:  s.field,
	}, &log.Logger)
	if err != nil {
		return err
	}
	s.widget.Pipeline.Now = fixedClock(time.Second / time.Duration(s.fps))
	bg := widget.New(instance, surf, s.widget)
	defer bg.Teardown()
	if err := start(bg); err != nil {
		return err
	}
	if err := renderSnapshots(bg, surf, s.frames, time.Second/time.Duration(s.fps)); err != nil {
		return err
	}
	log.Info().Int("files", len(surf.Written)).Str("dir", s.outDir).Msg("snapshots written")
	return nil
}

// renderSnapshots ticks frames times, stopping early once the surface has
// written its file limit.
func renderSnapshots(bg *widget.Background, surf *snapshot.Surface, frames int, dt time.Duration) error {
	for i := 0; i < frames && !surf.Done(); i++ {
		if err := bg.Tick(dt); err != nil {
			return err
		}
	}
	return nil
}

// fixedClock advances by step on every call.
func fixedClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func runWindow(ctx context.Context, s settings, cfg *config.Config, start func(*widget.Background) error) error {
	win, err := window.Open(window.Options{
		W:     cfg.Window.W,
		H:     cfg.Window.H,
		Title: cfg.Window.Title,
		VSync: cfg.Window.VSync,
	}, &log.Logger)
	if err != nil {
		return err
	}
	defer win.Close()

	bg := widget.New(instance, win, s.widget)
	defer bg.Teardown()
	if err := start(bg); err != nil {
		return err
	}
	win.Bind(bg)

	// GL calls stay on this thread, so the loop is driven here instead of Run.
	frame := time.Second / time.Duration(s.fps)
	last := time.Now()
	for !win.ShouldClose() && ctx.Err() == nil {
		now := time.Now()
		if err := bg.Tick(now.Sub(last)); err != nil {
			return err
		}
		last = now
		win.PollEvents()
		if d := frame - time.Since(now); d > 0 {
			time.Sleep(d)
		}
	}
	return nil
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
