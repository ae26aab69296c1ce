package game

import (
	"image"
	"log/slog"

	"github.com/pthm-cable/swirl/telemetry"
)

// TelemetryHooks routes flushed stats windows and periodic frame snapshots
// to logs and the output directory. Zero-value fields disable each output.
type TelemetryHooks struct {
	Output        *telemetry.OutputManager
	Perf          *telemetry.PerfCollector
	LogStats      bool
	SnapshotEvery uint64

	// Snapshot returns the image to export, typically the background canvas.
	Snapshot func() image.Image

	// Optional callback for every flushed window
	StatsCallback func(telemetry.WindowStats)
}

// HandleStats is an Animator OnStats callback.
func (h *TelemetryHooks) HandleStats(stats telemetry.WindowStats) {
	perfStats := h.Perf.Stats()

	if h.StatsCallback != nil {
		h.StatsCallback(stats)
	}

	if h.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := h.Output.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := h.Output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// HandleFrame saves a snapshot every SnapshotEvery frames.
func (h *TelemetryHooks) HandleFrame(frame uint64) {
	if h.SnapshotEvery == 0 || h.Snapshot == nil || frame == 0 || frame%h.SnapshotEvery != 0 {
		return
	}
	h.SaveSnapshot(frame)
}

// SaveFinal writes the snapshot for the last frame of a run unless
// HandleFrame already wrote it.
func (h *TelemetryHooks) SaveFinal(frame uint64) {
	if h.SnapshotEvery > 0 && frame > 0 && frame%h.SnapshotEvery == 0 {
		return
	}
	h.SaveSnapshot(frame)
}

// SaveSnapshot writes the current snapshot image for frame.
func (h *TelemetryHooks) SaveSnapshot(frame uint64) {
	if h.Output == nil || h.Snapshot == nil {
		return
	}
	img := h.Snapshot()
	if img == nil {
		return
	}
	path, err := h.Output.WriteSnapshot(frame, img)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", frame)
}
