package telemetry

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/swirl/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// Nil manager is a no-op
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("WriteStats on nil: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Errorf("WritePerf on nil: %v", err)
	}
	if _, err := om.WriteSnapshot(0, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Errorf("WriteSnapshot on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("expected empty dir, got %q", om.Dir())
	}
}

func TestOutputManagerCSVHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := uint64(1); i <= 3; i++ {
		if err := om.WriteStats(WindowStats{WindowEndFrame: i * 60, Particles: 700}); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
		if err := om.WritePerf(PerfStats{AvgTickDuration: time.Millisecond}, i*60); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"swirl.csv", "perf.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Errorf("%s: expected header + 3 rows, got %d lines", name, len(lines))
		}
		if !strings.HasPrefix(lines[0], "window_end,") {
			t.Errorf("%s: unexpected header %q", name, lines[0])
		}
		if n := strings.Count(string(data), "window_end"); n != 1 {
			t.Errorf("%s: expected header once, found %d times", name, n)
		}
		if !strings.HasPrefix(lines[3], "180,") {
			t.Errorf("%s: unexpected last row %q", name, lines[3])
		}
	}
}

func TestOutputManagerWriteConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}

	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("loading written config: %v", err)
	}
	if loaded.Swirl.ParticleCount != config.Default().Swirl.ParticleCount {
		t.Errorf("particle count = %d after round trip", loaded.Swirl.ParticleCount)
	}
}

func TestOutputManagerWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	path, err := om.WriteSnapshot(42, img)
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if filepath.Base(path) != "frame_000042.png" {
		t.Errorf("unexpected snapshot name %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening snapshot: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("snapshot size = %v, want 4x3", b)
	}
	if r, _, _, _ := decoded.At(1, 1).RGBA(); r>>8 != 255 {
		t.Errorf("expected red pixel preserved, got r=%d", r>>8)
	}
}
