package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPerformSweepRemovesEverything(t *testing.T) {
	root := t.TempDir()

	// Ten arbitrary files across shard dirs and the root itself.
	var created []string
	for i := 0; i < 10; i++ {
		dir := root
		if i%2 == 0 {
			dir = filepath.Join(root, fmt.Sprintf("s%02d", i))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatalf("mkdir error: %v", err)
			}
		}
		path := filepath.Join(dir, fmt.Sprintf("file-%d", i))
		if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
			t.Fatalf("write error: %v", err)
		}
		created = append(created, path)
	}

	sweeper := NewSweeper(root)
	if err := sweeper.PerformSweep(); err != nil {
		t.Fatalf("sweep error: %v", err)
	}

	for _, path := range created {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be gone, stat err: %v", path, err)
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("readdir error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != MarkerFileName {
		t.Fatalf("expected only the marker to remain, got %v", entries)
	}
}

func TestPerformSweepWritesFreshMarker(t *testing.T) {
	root := t.TempDir()
	sweepTime := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)

	sweeper := NewSweeper(root)
	sweeper.now = func() time.Time { return sweepTime }
	if err := sweeper.PerformSweep(); err != nil {
		t.Fatalf("sweep error: %v", err)
	}

	scheduler := NewSweepScheduler(root, time.Hour)
	last, ok := scheduler.LastSweep()
	if !ok {
		t.Fatalf("marker should exist after sweep")
	}
	if !last.Equal(sweepTime) {
		t.Fatalf("marker time mismatch: %v", last)
	}
}

func TestPerformSweepIdempotentOnEmptyRoot(t *testing.T) {
	root := t.TempDir()
	sweeper := NewSweeper(root)

	if err := sweeper.PerformSweep(); err != nil {
		t.Fatalf("first sweep error: %v", err)
	}
	if err := sweeper.PerformSweep(); err != nil {
		t.Fatalf("second sweep error: %v", err)
	}
}
