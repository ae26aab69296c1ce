package telemetry

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/swirl/config"
	"github.com/pthm-cable/swirl/systems"
)

func newTestPool(t *testing.T, count int) *systems.SwirlPool {
	t.Helper()
	cfg := config.Default()
	pool := systems.NewSwirlPool(&cfg.Swirl, rand.New(rand.NewSource(7)))
	pool.SetBounds(100, 80)
	pool.Initialize(count)
	return pool
}

func TestStatsCollectorFlush(t *testing.T) {
	pool := newTestPool(t, 10)
	c := NewStatsCollector(2)

	c.RecordStep(systems.StepResult{Respawned: 3, OutOfBounds: 2, Expired: 1})
	if c.ShouldFlush(1) {
		t.Error("should not flush after one frame of a two-frame window")
	}
	c.RecordStep(systems.StepResult{Respawned: 3, OutOfBounds: 2, Expired: 1})
	if !c.ShouldFlush(2) {
		t.Fatal("expected flush after two frames")
	}

	stats := c.Flush(2, pool)

	if stats.Frames != 2 {
		t.Errorf("frames = %d, want 2", stats.Frames)
	}
	if stats.Respawns != 6 || stats.OutOfBounds != 4 || stats.Expired != 2 {
		t.Errorf("unexpected respawn counts: %+v", stats)
	}
	if stats.RespawnRate != 0.3 {
		t.Errorf("respawn rate = %v, want 0.3", stats.RespawnRate)
	}
	if stats.Particles != 10 || stats.Width != 100 || stats.Height != 80 {
		t.Errorf("unexpected pool state: particles=%d size=%dx%d", stats.Particles, stats.Width, stats.Height)
	}

	// Freshly seeded pool: all ages and velocities are zero
	if stats.AgeMean != 0 || stats.AgeP90 != 0 || stats.LifeMean != 0 {
		t.Errorf("expected zero ages after seeding, got %+v", stats)
	}
	if stats.SpeedMean != 0 {
		t.Errorf("expected zero speed before the first step, got %v", stats.SpeedMean)
	}
	if stats.HueMean < 220 || stats.HueMean >= 320 {
		t.Errorf("hue mean %v outside seeded hue range", stats.HueMean)
	}
}

func TestStatsCollectorResetsAfterFlush(t *testing.T) {
	pool := newTestPool(t, 4)
	c := NewStatsCollector(3)

	for i := 0; i < 3; i++ {
		c.RecordStep(systems.StepResult{Respawned: 1, Expired: 1})
	}
	c.Flush(3, pool)

	if c.ShouldFlush(4) {
		t.Error("window should restart at the flush frame")
	}

	stats := c.Flush(4, pool)
	if stats.WindowStartFrame != 3 || stats.WindowEndFrame != 4 {
		t.Errorf("window = [%d, %d], want [3, 4]", stats.WindowStartFrame, stats.WindowEndFrame)
	}
	if stats.Frames != 0 || stats.Respawns != 0 || stats.RespawnRate != 0 {
		t.Errorf("expected counters reset, got %+v", stats)
	}
}

func TestStatsCollectorAfterSteps(t *testing.T) {
	cfg := config.Default()
	pool := systems.NewSwirlPool(&cfg.Swirl, rand.New(rand.NewSource(3)))
	pool.SetBounds(400, 300)
	pool.Initialize(50)
	adv := systems.NewSwirlAdvancer(&cfg.Swirl, systems.NewPerlinNoise(3))
	c := NewStatsCollector(20)

	for frame := uint64(1); frame <= 20; frame++ {
		c.RecordStep(adv.Step(pool, nil))
	}
	stats := c.Flush(20, pool)

	if stats.AgeMean <= 0 {
		t.Error("expected positive mean age after stepping")
	}
	if stats.AgeP10 > stats.AgeP50 || stats.AgeP50 > stats.AgeP90 {
		t.Errorf("percentiles out of order: p10=%v p50=%v p90=%v", stats.AgeP10, stats.AgeP50, stats.AgeP90)
	}
	if stats.SpeedMean <= 0 {
		t.Error("expected particles to be moving")
	}
	if stats.LifeMean <= 0 || stats.LifeMean > 1.1 {
		t.Errorf("life mean %v outside (0, 1.1]", stats.LifeMean)
	}
}

func TestStatsCollectorMinimumWindow(t *testing.T) {
	c := NewStatsCollector(0)
	if c.WindowFrames() != 1 {
		t.Errorf("expected window clamped to 1, got %d", c.WindowFrames())
	}
}
