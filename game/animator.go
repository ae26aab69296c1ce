// Package game drives the swirl animation: the animator state machine, the
// frame scheduler and viewport tracking used by every host environment.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/renderer"
	"github.com/pthm-cable/swirl/systems"
	"github.com/pthm-cable/swirl/telemetry"
)

// AnimatorState is the lifecycle state of an Animator.
type AnimatorState uint8

const (
	StateUninitialized AnimatorState = iota // Before Mount
	StateRunning                            // Frame loop active
	StateStopped                            // After Teardown
)

func (s AnimatorState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("AnimatorState(%d)", uint8(s))
	}
}

// ErrNotMountable is returned by Mount on an animator that already left
// the uninitialized state.
var ErrNotMountable = errors.New("animator already mounted or torn down")

// AnimatorOptions configures an Animator. Config, Primary, Background,
// Noise, Rand, Viewport and Scheduler are required.
type AnimatorOptions struct {
	Config     *config.Config
	Primary    renderer.Canvas
	Background renderer.Canvas
	Noise      systems.NoiseField3D
	Rand       systems.RandomSource
	Viewport   ViewportSource
	Scheduler  FrameScheduler

	// Optional
	Resize  ResizeNotifier
	Perf    *telemetry.PerfCollector
	Stats   *telemetry.StatsCollector
	OnStats func(telemetry.WindowStats)

	// OnFrame is called after every rendered frame with the frame count,
	// inside the present phase. Hosts use it to display or export the
	// background canvas.
	OnFrame func(frame uint64)
}

// Animator owns the particle pool, advancer and renderer and runs one
// frame per scheduler callback.
type Animator struct {
	cfg       *config.Config
	pool      *systems.SwirlPool
	advancer  *systems.SwirlAdvancer
	renderer  *renderer.SwirlRenderer
	viewport  ViewportSource
	scheduler FrameScheduler
	resize    ResizeNotifier
	perf      *telemetry.PerfCollector
	stats     *telemetry.StatsCollector
	onStats   func(telemetry.WindowStats)
	onFrame   func(frame uint64)

	state       AnimatorState
	paused      bool
	frame       uint64
	lastStep    systems.StepResult
	token       CancelToken
	scheduled   bool
	unsubscribe func()
}

// NewAnimator wires the components of an animator. Nothing is drawn or
// scheduled until Mount.
func NewAnimator(opts AnimatorOptions) (*Animator, error) {
	var missing []error
	if opts.Config == nil {
		missing = append(missing, errors.New("config is required"))
	}
	if opts.Primary == nil || opts.Background == nil {
		missing = append(missing, errors.New("primary and background canvases are required"))
	}
	if opts.Noise == nil {
		missing = append(missing, errors.New("noise field is required"))
	}
	if opts.Rand == nil {
		missing = append(missing, errors.New("random source is required"))
	}
	if opts.Viewport == nil {
		missing = append(missing, errors.New("viewport source is required"))
	}
	if opts.Scheduler == nil {
		missing = append(missing, errors.New("frame scheduler is required"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, fmt.Errorf("creating animator: %w", err)
	}

	cfg := opts.Config
	return &Animator{
		cfg:       cfg,
		pool:      systems.NewSwirlPool(&cfg.Swirl, opts.Rand),
		advancer:  systems.NewSwirlAdvancer(&cfg.Swirl, opts.Noise),
		renderer:  renderer.NewSwirlRenderer(cfg, opts.Primary, opts.Background),
		viewport:  SafeViewport{Source: opts.Viewport},
		scheduler: opts.Scheduler,
		resize:    opts.Resize,
		perf:      opts.Perf,
		stats:     opts.Stats,
		onStats:   opts.OnStats,
		onFrame:   opts.OnFrame,
	}, nil
}

// Mount sizes the surfaces, seeds the pool, subscribes to resize
// notifications and runs the first frame, which schedules the next.
func (a *Animator) Mount() error {
	if a.state != StateUninitialized {
		return ErrNotMountable
	}

	v := a.viewport.Viewport()
	a.Resize(v)
	a.pool.Initialize(a.cfg.Swirl.ParticleCount)
	a.advancer.Reset()

	if a.resize != nil {
		a.unsubscribe = a.resize.Listen(a.Resize)
	}
	a.state = StateRunning

	slog.Info("animator mounted",
		"particles", a.pool.Count(),
		"width", v.Width,
		"height", v.Height,
	)

	a.tick()
	return nil
}

// Teardown cancels the pending frame and drops the resize subscription.
// Safe to call in any state, including before Mount.
func (a *Animator) Teardown() {
	if a.scheduled {
		a.scheduler.CancelFrame(a.token)
		a.scheduled = false
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	if a.state == StateRunning {
		slog.Info("animator stopped", "frame", a.frame)
	}
	a.state = StateStopped
}

// tick is the scheduler callback: one frame, then request the next.
func (a *Animator) tick() {
	a.scheduled = false
	if a.state != StateRunning {
		return
	}

	a.renderFrame()

	// A frame hook may have torn the animator down
	if a.state != StateRunning {
		return
	}
	a.token = a.scheduler.RequestFrame(a.tick)
	a.scheduled = true
}

func (a *Animator) renderFrame() {
	a.perf.StartTick()
	defer a.perf.EndTick()

	if a.paused {
		a.perf.StartPhase(telemetry.PhasePresent)
		if a.onFrame != nil {
			a.onFrame(a.frame)
		}
		return
	}

	a.perf.StartPhase(telemetry.PhaseFade)
	a.renderer.BeginFrame()

	a.perf.StartPhase(telemetry.PhaseAdvance)
	a.lastStep = a.advancer.Step(a.pool, a.renderer)
	a.renderer.EndStrokes()

	a.perf.StartPhase(telemetry.PhaseBloom)
	a.renderer.Bloom()

	a.perf.StartPhase(telemetry.PhaseComposite)
	a.renderer.Composite()

	a.frame++

	a.perf.StartPhase(telemetry.PhaseTelemetry)
	a.recordStats()

	a.perf.StartPhase(telemetry.PhasePresent)
	if a.onFrame != nil {
		a.onFrame(a.frame)
	}
}

func (a *Animator) recordStats() {
	if a.stats == nil {
		return
	}
	a.stats.RecordStep(a.lastStep)
	if !a.stats.ShouldFlush(a.frame) {
		return
	}
	ws := a.stats.Flush(a.frame, a.pool)
	if a.onStats != nil {
		a.onStats(ws)
	}
}

// Resize resizes both canvases, keeping their content, and moves the pool's
// bounds and spawn centre. Particles are not reseeded.
func (a *Animator) Resize(v Viewport) {
	a.renderer.Resize(v.Width, v.Height)
	a.pool.SetBounds(float32(v.Width), float32(v.Height))
}

// Reseed re-initializes every particle in place using the current
// configuration and restarts the noise time axis.
func (a *Animator) Reseed() {
	a.pool.Initialize(a.cfg.Swirl.ParticleCount)
	a.advancer.Reset()
	slog.Info("particles reseeded", "particles", a.pool.Count(), "frame", a.frame)
}

// SetPaused stops or resumes stepping. The frame loop keeps running while
// paused so the last image stays presented.
func (a *Animator) SetPaused(paused bool) {
	a.paused = paused
}

// Paused reports whether stepping is paused.
func (a *Animator) Paused() bool {
	return a.paused
}

// State returns the lifecycle state.
func (a *Animator) State() AnimatorState {
	return a.state
}

// Scheduled reports whether a frame callback is pending.
func (a *Animator) Scheduled() bool {
	return a.scheduled
}

// Frame returns the number of frames rendered since Mount.
func (a *Animator) Frame() uint64 {
	return a.frame
}

// LastStep returns the respawn counts of the most recent frame.
func (a *Animator) LastStep() systems.StepResult {
	return a.lastStep
}

// FrameLimit returns a stop predicate for Loop.Run that reports true once
// n frames have rendered, counting the one rendered by Mount. n = 0 never stops.
func (a *Animator) FrameLimit(n uint64) func() bool {
	return func() bool {
		return n > 0 && a.frame >= n
	}
}

// Pool returns the particle pool.
func (a *Animator) Pool() *systems.SwirlPool {
	return a.pool
}

// Renderer returns the compositor.
func (a *Animator) Renderer() *renderer.SwirlRenderer {
	return a.renderer
}

// Config returns the live configuration. Changes to the swirl, background
// and bloom sections apply from the next frame.
func (a *Animator) Config() *config.Config {
	return a.cfg
}
