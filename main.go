package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/game"
	"github.com/pthm-cable/swirl/renderer"
	"github.com/pthm-cable/swirl/renderer/gpu"
	"github.com/pthm-cable/swirl/renderer/terminal"
	"github.com/pthm-cable/swirl/systems"
	"github.com/pthm-cable/swirl/telemetry"
	"github.com/pthm-cable/swirl/ui"
)

// options holds the parsed CLI flags shared by every host mode.
type options struct {
	seed          int64
	maxTicks      uint64
	logStats      bool
	snapshotEvery uint64
}

// session is the host-independent part of a run: config, noise, telemetry.
type session struct {
	cfg    *config.Config
	opts   options
	noise  systems.NoiseField3D
	output *telemetry.OutputManager
	perf   *telemetry.PerfCollector
	stats  *telemetry.StatsCollector
	hooks  *game.TelemetryHooks

	lastStats telemetry.WindowStats
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics on the software canvas")
	terminalMode := flag.Bool("terminal", false, "Render to the terminal with half-block cells")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in frames (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and snapshots")
	snapshotEvery := flag.Int("snapshot-every", -1, "Write a PNG every N frames (-1 = use config, 0 = off)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N frames (0 = unlimited)")
	logFile := flag.String("log-file", "swirl.log", "Log file in terminal mode")

	flag.Parse()

	if *terminalMode {
		// stdout is the screen, so logs go to a file
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
	} else {
		// Set up slog (JSON to stdout for structured logging)
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI overrides
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *snapshotEvery >= 0 {
		cfg.Telemetry.SnapshotEvery = *snapshotEvery
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := newSession(cfg, *outputDir, options{
		seed:          rngSeed,
		maxTicks:      *maxTicks,
		logStats:      *logStats,
		snapshotEvery: uint64(max(cfg.Telemetry.SnapshotEvery, 0)),
	})
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	switch {
	case *headless:
		err = s.runHeadless()
	case *terminalMode:
		err = s.runTerminal()
	default:
		err = s.runWindow()
	}
	if cerr := s.output.Close(); cerr != nil {
		slog.Error("failed to close output", "error", cerr)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func newSession(cfg *config.Config, outputDir string, opts options) (*session, error) {
	noiseSeed := cfg.Noise.Seed
	if noiseSeed == 0 {
		noiseSeed = opts.seed
	}
	noise, err := systems.NewNoiseField(cfg.Noise.Kind, noiseSeed)
	if err != nil {
		return nil, fmt.Errorf("creating noise field: %w", err)
	}

	output, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		opts:   opts,
		noise:  noise,
		output: output,
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		stats:  telemetry.NewStatsCollector(cfg.Telemetry.StatsWindow),
	}
	s.hooks = &game.TelemetryHooks{
		Output:        output,
		Perf:          s.perf,
		LogStats:      opts.logStats,
		SnapshotEvery: opts.snapshotEvery,
		StatsCallback: func(ws telemetry.WindowStats) { s.lastStats = ws },
	}

	slog.Info("session configured",
		"seed", opts.seed,
		"noise", cfg.Noise.Kind,
		"noise_seed", noiseSeed,
		"particles", cfg.Swirl.ParticleCount,
		"buffer_len", cfg.Derived.BufferLen,
		"frame_budget_ms", cfg.Derived.FrameBudgetMs,
		"stats_window", cfg.Telemetry.StatsWindow,
		"output_dir", output.Dir(),
	)
	return s, nil
}

// newAnimator wires an animator to the loop and the session telemetry.
// onFrame runs after the snapshot hook.
func (s *session) newAnimator(loop *game.Loop, primary, background renderer.Canvas, onFrame func(uint64)) (*game.Animator, error) {
	return game.NewAnimator(game.AnimatorOptions{
		Config:     s.cfg,
		Primary:    primary,
		Background: background,
		Noise:      s.noise,
		Rand:       rand.New(rand.NewSource(s.opts.seed)),
		Viewport:   loop.Watcher(),
		Scheduler:  loop.Scheduler(),
		Resize:     loop.Watcher(),
		Perf:       s.perf,
		Stats:      s.stats,
		OnStats:    s.hooks.HandleStats,
		OnFrame: func(frame uint64) {
			s.hooks.HandleFrame(frame)
			if onFrame != nil {
				onFrame(frame)
			}
		},
	})
}

// runHeadless renders on the software canvas at a fixed size, as fast as possible.
func (s *session) runHeadless() error {
	cfg := s.cfg
	primary := renderer.NewRasterCanvas(cfg.Screen.Width, cfg.Screen.Height)
	background := renderer.NewRasterCanvas(cfg.Screen.Width, cfg.Screen.Height)
	s.hooks.Snapshot = func() image.Image { return background.Image() }

	loop := game.NewLoop(game.NewFixedViewport(cfg.Screen.Width, cfg.Screen.Height))
	animator, err := s.newAnimator(loop, primary, background, nil)
	if err != nil {
		return err
	}

	slog.Info("starting headless animation",
		"seed", s.opts.seed,
		"width", cfg.Screen.Width,
		"height", cfg.Screen.Height,
		"max_ticks", s.opts.maxTicks,
	)

	if err := animator.Mount(); err != nil {
		return err
	}
	defer animator.Teardown()

	if s.opts.maxTicks == 0 {
		slog.Warn("headless run without -max-ticks runs until interrupted")
	}
	loop.Run(0, animator.FrameLimit(s.opts.maxTicks))

	slog.Info("max ticks reached", "tick", animator.Frame())
	s.hooks.SaveFinal(animator.Frame())
	return nil
}

// runTerminal renders on the software canvas and presents it with tcell.
func (s *session) runTerminal() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	presenter := terminal.NewPresenter(screen, s.cfg.Terminal.PixelsPerCell)
	v := presenter.Viewport()
	primary := renderer.NewRasterCanvas(v.Width, v.Height)
	background := renderer.NewRasterCanvas(v.Width, v.Height)
	s.hooks.Snapshot = func() image.Image { return background.Image() }

	loop := game.NewLoop(presenter)

	var host *terminal.Host
	animator, err := s.newAnimator(loop, primary, background, func(frame uint64) {
		host.Present(frame)
	})
	if err != nil {
		return err
	}

	host = terminal.NewHost(screen, presenter, background, loop, s.cfg.Terminal.TargetFPS,
		func(ev *tcell.EventKey) bool {
			if ev.Key() != tcell.KeyRune {
				return true
			}
			switch ev.Rune() {
			case ' ':
				animator.SetPaused(!animator.Paused())
			case 'r':
				animator.Reseed()
			}
			return true
		})

	if err := animator.Mount(); err != nil {
		return err
	}
	defer animator.Teardown()

	host.Run(animator.FrameLimit(s.opts.maxTicks))
	return nil
}

// runWindow renders on GPU textures in a raylib window with the HUD and
// tuning panel on top.
func (s *session) runWindow() error {
	cfg := s.cfg
	if cfg.Screen.Resizable {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	bloom := gpu.LoadBloomShader()
	defer bloom.Unload()
	primary := gpu.NewTextureCanvas(cfg.Screen.Width, cfg.Screen.Height, bloom)
	defer primary.Unload()
	background := gpu.NewTextureCanvas(cfg.Screen.Width, cfg.Screen.Height, bloom)
	defer background.Unload()
	s.hooks.Snapshot = func() image.Image { return background.Image() }

	loop := game.NewLoop(gpu.WindowViewport{})
	animator, err := s.newAnimator(loop, primary, background, nil)
	if err != nil {
		return err
	}
	if err := animator.Mount(); err != nil {
		return err
	}
	defer animator.Teardown()

	limitReached := animator.FrameLimit(s.opts.maxTicks)
	hud := ui.NewHUD()
	controls := ui.NewControlsPanel(int32(cfg.Screen.Width)-290, 10, 280)

	for !rl.WindowShouldClose() && !loop.Idle() {
		switch {
		case rl.IsKeyPressed(rl.KeyH):
			controls.Toggle()
		case rl.IsKeyPressed(rl.KeySpace):
			animator.SetPaused(!animator.Paused())
		case rl.IsKeyPressed(rl.KeyR):
			animator.Reseed()
		}

		loop.Frame()

		screenW := int32(rl.GetScreenWidth())
		screenH := int32(rl.GetScreenHeight())
		controls.SetPosition(screenW-290, 10)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		background.Present(0, 0)

		w, h := background.Size()
		hud.Draw(ui.HUDData{
			Title:     cfg.Screen.Title,
			Particles: animator.Pool().Count(),
			Frame:     animator.Frame(),
			FPS:       rl.GetFPS(),
			Respawns:  animator.LastStep().Respawned,
			Width:     w,
			Height:    h,
			LifeMean:  float32(s.lastStats.LifeMean),
			Paused:    animator.Paused(),
		})
		legend := "H: show tuning panel  Space: pause  R: reseed  Esc: quit"
		if controls.IsVisible() {
			legend = "H: hide tuning panel  Space: pause  R: reseed  Esc: quit"
		}
		hud.DrawControls(screenH, legend)

		actions := controls.Draw(cfg, animator.Paused())
		if actions.TogglePause {
			animator.SetPaused(!animator.Paused())
		}
		if actions.Reseed {
			animator.Reseed()
		}
		rl.EndDrawing()

		if limitReached() {
			slog.Info("max ticks reached", "tick", animator.Frame())
			break
		}
	}
	return nil
}
