package telemetry

import (
	"math"

	"github.com/pthm-cable/swirl/systems"
)

// StatsCollector accumulates respawn counts over a window of frames and
// samples the pool distribution when the window is flushed.
type StatsCollector struct {
	windowFrames uint64

	// Current window tracking
	windowStartFrame uint64
	frames           int

	// Event counters for current window
	respawns    int
	outOfBounds int
	expired     int

	// Scratch reused between flushes
	ages   []float64
	speeds []float64
}

// NewStatsCollector creates a collector that flushes every windowFrames frames.
func NewStatsCollector(windowFrames int) *StatsCollector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &StatsCollector{windowFrames: uint64(windowFrames)}
}

// RecordStep adds one frame's respawn counts.
func (c *StatsCollector) RecordStep(r systems.StepResult) {
	c.frames++
	c.respawns += r.Respawned
	c.outOfBounds += r.OutOfBounds
	c.expired += r.Expired
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *StatsCollector) ShouldFlush(frame uint64) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats from the counters and the current pool,
// then resets counters for the next window.
func (c *StatsCollector) Flush(frame uint64, pool *systems.SwirlPool) WindowStats {
	n := pool.Count()
	w, h := pool.Bounds()

	c.ages = c.ages[:0]
	c.speeds = c.speeds[:0]
	var lifeSum, hueSum float64
	for i := 0; i < n; i++ {
		p := pool.Particle(i)
		c.ages = append(c.ages, float64(p.Age))
		c.speeds = append(c.speeds, math.Hypot(float64(p.VX), float64(p.VY))*float64(p.Speed))
		if p.TTL > 0 {
			lifeSum += float64(p.Age / p.TTL)
		}
		hueSum += float64(p.Hue)
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		Frames:           c.frames,
		Particles:        n,
		Width:            int(w),
		Height:           int(h),
		Respawns:         c.respawns,
		OutOfBounds:      c.outOfBounds,
		Expired:          c.expired,
	}
	if c.frames > 0 && n > 0 {
		stats.RespawnRate = float64(c.respawns) / float64(c.frames*n)
	}
	if n > 0 {
		stats.LifeMean = lifeSum / float64(n)
		stats.HueMean = hueSum / float64(n)
	}
	stats.AgeMean, stats.AgeStd, stats.AgeP10, stats.AgeP50, stats.AgeP90 = ComputeDistribution(c.ages)
	stats.SpeedMean, stats.SpeedStd, _, _, _ = ComputeDistribution(c.speeds)

	// Reset for next window
	c.windowStartFrame = frame
	c.frames = 0
	c.respawns = 0
	c.outOfBounds = 0
	c.expired = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *StatsCollector) WindowFrames() int {
	return int(c.windowFrames)
}
