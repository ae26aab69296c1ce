package game

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/swirl/telemetry"
)

func TestTelemetryHooksFinalSnapshot(t *testing.T) {
	tests := []struct {
		name      string
		every     uint64
		limit     uint64
		wantSaves int
	}{
		{"final frame on the interval", 5, 10, 2},
		{"final frame off the interval", 4, 10, 3},
		{"periodic snapshots off", 0, 10, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			output, err := telemetry.NewOutputManager(dir)
			if err != nil {
				t.Fatalf("NewOutputManager: %v", err)
			}
			defer output.Close()

			rig := newTestRig(t, 10, 40, 30)
			saves := 0
			hooks := &TelemetryHooks{
				Output:        output,
				SnapshotEvery: tc.every,
				Snapshot: func() image.Image {
					saves++
					return rig.background.Image()
				},
			}
			a := rig.animator(t, func(o *AnimatorOptions) { o.OnFrame = hooks.HandleFrame })
			if err := a.Mount(); err != nil {
				t.Fatalf("Mount: %v", err)
			}
			rig.loop.Run(0, a.FrameLimit(tc.limit))
			hooks.SaveFinal(a.Frame())

			if saves != tc.wantSaves {
				t.Errorf("snapshots taken = %d, want %d", saves, tc.wantSaves)
			}
			if _, err := os.Stat(filepath.Join(dir, "frame_000010.png")); err != nil {
				t.Errorf("expected final snapshot: %v", err)
			}
		})
	}
}
