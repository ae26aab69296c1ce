package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated particle statistics for a frame window.
type WindowStats struct {
	WindowStartFrame uint64 `csv:"-"`
	WindowEndFrame   uint64 `csv:"window_end"`
	Frames           int    `csv:"frames"`

	// Pool state at window end
	Particles int `csv:"particles"`
	Width     int `csv:"width"`
	Height    int `csv:"height"`

	// Respawns during window
	Respawns    int     `csv:"respawns"`
	OutOfBounds int     `csv:"out_of_bounds"`
	Expired     int     `csv:"expired"`
	RespawnRate float64 `csv:"respawn_rate"` // Respawns per particle per frame

	// Age distribution (sampled at window end)
	AgeMean float64 `csv:"age_mean"`
	AgeStd  float64 `csv:"age_std"`
	AgeP10  float64 `csv:"age_p10"`
	AgeP50  float64 `csv:"age_p50"`
	AgeP90  float64 `csv:"age_p90"`

	// Mean age/ttl, 0.5 means the pool is on average half way through its life
	LifeMean float64 `csv:"life_mean"`

	// Distance moved per frame
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`

	HueMean float64 `csv:"hue_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Uses linear interpolation.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates population mean, std, and percentiles.
// values is sorted in place.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sort.Float64s(values)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartFrame),
		slog.Uint64("window_end", s.WindowEndFrame),
		slog.Int("frames", s.Frames),
		slog.Int("particles", s.Particles),
		slog.Int("width", s.Width),
		slog.Int("height", s.Height),
		slog.Int("respawns", s.Respawns),
		slog.Int("out_of_bounds", s.OutOfBounds),
		slog.Int("expired", s.Expired),
		slog.Float64("respawn_rate", s.RespawnRate),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("age_std", s.AgeStd),
		slog.Float64("age_p10", s.AgeP10),
		slog.Float64("age_p50", s.AgeP50),
		slog.Float64("age_p90", s.AgeP90),
		slog.Float64("life_mean", s.LifeMean),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("hue_mean", s.HueMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
