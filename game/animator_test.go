package game

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/renderer"
	"github.com/pthm-cable/swirl/systems"
	"github.com/pthm-cable/swirl/telemetry"
)

type testRig struct {
	cfg        *config.Config
	src        *FixedViewport
	loop       *Loop
	primary    *renderer.RasterCanvas
	background *renderer.RasterCanvas
}

func newTestRig(t *testing.T, particles, width, height int) *testRig {
	t.Helper()
	cfg := config.Default()
	cfg.Swirl.ParticleCount = particles
	src := NewFixedViewport(width, height)
	return &testRig{
		cfg:        cfg,
		src:        src,
		loop:       NewLoop(src),
		primary:    renderer.NewRasterCanvas(0, 0),
		background: renderer.NewRasterCanvas(0, 0),
	}
}

func (r *testRig) options() AnimatorOptions {
	return AnimatorOptions{
		Config:     r.cfg,
		Primary:    r.primary,
		Background: r.background,
		Noise:      systems.NewPerlinNoise(1),
		Rand:       rand.New(rand.NewSource(1)),
		Viewport:   r.src,
		Scheduler:  r.loop.Scheduler(),
		Resize:     r.loop.Watcher(),
	}
}

func (r *testRig) animator(t *testing.T, mutate func(*AnimatorOptions)) *Animator {
	t.Helper()
	opts := r.options()
	if mutate != nil {
		mutate(&opts)
	}
	a, err := NewAnimator(opts)
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	return a
}

func TestNewAnimatorRequiresOptions(t *testing.T) {
	if _, err := NewAnimator(AnimatorOptions{}); err == nil {
		t.Error("expected error for empty options")
	}
}

func TestTeardownBeforeMount(t *testing.T) {
	rig := newTestRig(t, 10, 100, 100)
	a := rig.animator(t, nil)

	a.Teardown()

	if a.State() != StateStopped {
		t.Errorf("state = %v, want stopped", a.State())
	}
	if a.Scheduled() || rig.loop.Scheduler().Pending() != 0 {
		t.Error("teardown before mount left a pending callback")
	}
	if err := a.Mount(); err != ErrNotMountable {
		t.Errorf("Mount after teardown = %v, want ErrNotMountable", err)
	}
	if rig.loop.Scheduler().Pending() != 0 {
		t.Error("rejected mount scheduled a frame")
	}
}

func TestMountRunsFirstFrame(t *testing.T) {
	rig := newTestRig(t, 25, 320, 200)
	a := rig.animator(t, nil)

	if a.State() != StateUninitialized {
		t.Fatalf("state = %v before mount", a.State())
	}
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if a.State() != StateRunning {
		t.Errorf("state = %v, want running", a.State())
	}
	if a.Frame() != 1 {
		t.Errorf("expected first frame drawn on mount, frame=%d", a.Frame())
	}
	if rig.loop.Scheduler().Pending() != 1 {
		t.Errorf("expected next frame scheduled, pending=%d", rig.loop.Scheduler().Pending())
	}
	if a.Pool().Count() != 25 {
		t.Errorf("pool count = %d, want 25", a.Pool().Count())
	}
	if w, h := rig.background.Size(); w != 320 || h != 200 {
		t.Errorf("canvas size = %dx%d, want 320x200", w, h)
	}
	if err := a.Mount(); err != ErrNotMountable {
		t.Errorf("second Mount = %v, want ErrNotMountable", err)
	}
}

func TestLoopAdvancesFrames(t *testing.T) {
	rig := newTestRig(t, 40, 200, 120)
	a := rig.animator(t, nil)
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	bufLen := a.Pool().Len()

	rig.loop.Run(10, nil)

	if a.Frame() != 11 {
		t.Errorf("frame = %d, want 11 (mount + 10 host frames)", a.Frame())
	}
	if a.Pool().Len() != bufLen {
		t.Errorf("buffer length changed from %d to %d", bufLen, a.Pool().Len())
	}
	if a.Renderer().Strokes() != 40 {
		t.Errorf("strokes = %d, want 40", a.Renderer().Strokes())
	}
}

func TestTeardownCancelsLoop(t *testing.T) {
	rig := newTestRig(t, 10, 100, 100)
	a := rig.animator(t, nil)
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	rig.loop.Frame()
	rig.loop.Frame()
	frame := a.Frame()

	a.Teardown()

	if rig.loop.Scheduler().Pending() != 0 {
		t.Error("teardown left the next frame scheduled")
	}
	if rig.loop.Watcher().Listeners() != 0 {
		t.Error("teardown left the resize subscription")
	}
	if !rig.loop.Idle() {
		t.Error("expected loop idle after teardown")
	}

	rig.loop.Frame()
	if a.Frame() != frame {
		t.Errorf("frames advanced after teardown: %d -> %d", frame, a.Frame())
	}

	// Repeated teardown is harmless
	a.Teardown()
}

func TestTeardownFromFrameHook(t *testing.T) {
	rig := newTestRig(t, 10, 100, 100)
	var a *Animator
	a = rig.animator(t, func(o *AnimatorOptions) {
		o.OnFrame = func(frame uint64) {
			if frame == 5 {
				a.Teardown()
			}
		}
	})
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	rig.loop.Run(100, nil)

	if a.Frame() != 5 {
		t.Errorf("frame = %d, want 5", a.Frame())
	}
	if rig.loop.Scheduler().Pending() != 0 || a.Scheduled() {
		t.Error("frame hook teardown still rescheduled")
	}
}

func TestResizeMovesCenter(t *testing.T) {
	rig := newTestRig(t, 30, 200, 100)
	a := rig.animator(t, nil)
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	before := make([]float32, a.Pool().Len())
	copy(before, a.Pool().Data())

	rig.src.Set(300, 160)
	rig.loop.Watcher().Poll()

	if cx, cy := a.Pool().Center(); cx != 150 || cy != 80 {
		t.Errorf("center = (%v, %v), want (150, 80)", cx, cy)
	}
	if w, h := a.Pool().Bounds(); w != 300 || h != 160 {
		t.Errorf("bounds = %vx%v, want 300x160", w, h)
	}
	if w, h := rig.primary.Size(); w != 300 || h != 160 {
		t.Errorf("primary size = %dx%d, want 300x160", w, h)
	}

	// Particles are not reseeded on resize
	for i, v := range a.Pool().Data() {
		if v != before[i] {
			t.Fatalf("particle buffer changed by resize at %d", i)
		}
	}
}

func TestResizePreservesPixels(t *testing.T) {
	rig := newTestRig(t, 200, 120, 80)
	a := rig.animator(t, nil)
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	rig.loop.Run(20, nil)

	img := rig.background.Image()
	before := append([]uint8(nil), img.Pix...)
	stride := img.Stride

	a.Resize(NewViewport(160, 100))

	after := rig.background.Image()
	for y := 0; y < 80; y++ {
		for x := 0; x < 120*4; x++ {
			if after.Pix[y*after.Stride+x] != before[y*stride+x] {
				t.Fatalf("pixel byte (%d, %d) changed by resize", x, y)
			}
		}
	}
}

func TestPausedKeepsLoopAlive(t *testing.T) {
	rig := newTestRig(t, 10, 100, 100)
	presented := 0
	a := rig.animator(t, func(o *AnimatorOptions) {
		o.OnFrame = func(uint64) { presented++ }
	})
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	a.SetPaused(true)
	writes := a.Pool().Writes()
	rig.loop.Run(5, nil)

	if a.Frame() != 1 {
		t.Errorf("paused animator advanced to frame %d", a.Frame())
	}
	if a.Pool().Writes() != writes {
		t.Error("paused animator wrote to the pool")
	}
	if presented != 6 {
		t.Errorf("expected every host frame presented, got %d", presented)
	}
	if !a.Scheduled() {
		t.Error("paused animator stopped scheduling")
	}

	a.SetPaused(false)
	rig.loop.Frame()
	if a.Frame() != 2 {
		t.Errorf("expected stepping to resume, frame=%d", a.Frame())
	}
}

func TestReseedResetsAges(t *testing.T) {
	rig := newTestRig(t, 20, 400, 300)
	a := rig.animator(t, nil)
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	rig.loop.Run(10, nil)

	rig.cfg.Swirl.ParticleCount = 35
	a.Reseed()

	if a.Pool().Count() != 35 {
		t.Errorf("pool count = %d, want 35", a.Pool().Count())
	}
	for i := 0; i < a.Pool().Count(); i++ {
		if age := a.Pool().Particle(i).Age; age != 0 {
			t.Fatalf("particle %d age = %v after reseed", i, age)
		}
	}
}

func TestStatsWindowsFlush(t *testing.T) {
	rig := newTestRig(t, 50, 200, 200)
	var windows []telemetry.WindowStats
	a := rig.animator(t, func(o *AnimatorOptions) {
		o.Perf = telemetry.NewPerfCollector(10)
		o.Stats = telemetry.NewStatsCollector(10)
		o.OnStats = func(s telemetry.WindowStats) { windows = append(windows, s) }
	})
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	rig.loop.Run(29, nil)

	if len(windows) != 3 {
		t.Fatalf("expected 3 stats windows over 30 frames, got %d", len(windows))
	}
	for i, w := range windows {
		if w.WindowEndFrame != uint64(10*(i+1)) {
			t.Errorf("window %d ends at %d", i, w.WindowEndFrame)
		}
		if w.Frames != 10 || w.Particles != 50 {
			t.Errorf("window %d: frames=%d particles=%d", i, w.Frames, w.Particles)
		}
	}
}

func TestZeroViewport(t *testing.T) {
	rig := newTestRig(t, 20, 0, 0)
	a := rig.animator(t, func(o *AnimatorOptions) {
		o.Viewport = ViewportFunc(func() Viewport { panic("detached") })
	})
	if err := a.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	rig.loop.Run(5, nil)

	if a.Frame() != 6 {
		t.Errorf("frame = %d, want 6", a.Frame())
	}
	if w, h := rig.background.Size(); w != 0 || h != 0 {
		t.Errorf("expected 0x0 canvas, got %dx%d", w, h)
	}
}

func TestFrameLimitCountsMountFrame(t *testing.T) {
	tests := []struct {
		limit uint64
		want  uint64
	}{
		{1, 1},
		{2, 2},
		{10, 10},
	}

	for _, tc := range tests {
		rig := newTestRig(t, 10, 100, 100)
		a := rig.animator(t, nil)
		if err := a.Mount(); err != nil {
			t.Fatalf("Mount: %v", err)
		}
		rig.loop.Run(0, a.FrameLimit(tc.limit))
		if a.Frame() != tc.want {
			t.Errorf("FrameLimit(%d): frame = %d, want %d", tc.limit, a.Frame(), tc.want)
		}
		a.Teardown()
	}

	rig := newTestRig(t, 10, 100, 100)
	if rig.animator(t, nil).FrameLimit(0)() {
		t.Error("FrameLimit(0) should never stop")
	}
}
