package trigger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"dmworker/internal/logger"
)

func TestGuard(t *testing.T) {
	var g Guard

	if !g.TryLock() {
		t.Fatal("first TryLock failed")
	}

	if g.TryLock() {
		t.Error("second TryLock succeeded while running")
	}

	g.Unlock()

	if !g.TryLock() {
		t.Error("TryLock failed after Unlock")
	}
}

func TestSchedule_InvalidExpression(t *testing.T) {
	err := Schedule(context.Background(), "every now and then", func(context.Context) error { return nil }, logger.Discard())
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("err = %v, want ErrInvalidSchedule", err)
	}
}

func TestSchedule_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	var runs atomic.Int32

	err := Schedule(ctx, "@every 1s", func(context.Context) error {
		runs.Add(1)
		return nil
	}, logger.Discard())
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	if runs.Load() < 1 {
		t.Errorf("runs = %d, want at least 1", runs.Load())
	}
}

func TestSchedule_StopsOnRunError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := errors.New("boom")

	err := Schedule(ctx, "@every 1s", func(context.Context) error { return boom }, logger.Discard())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}

	if ctx.Err() != nil {
		t.Error("Schedule only returned after the deadline")
	}
}

func startWatch(t *testing.T, ctx context.Context, dir string, run RunFunc) <-chan error {
	t.Helper()

	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, dir, "drilling_machine*.json", 50*time.Millisecond, run, logger.Discard())
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	return done
}

func TestWatch_RunsOnMatchingFile(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 10)
	done := startWatch(t, ctx, dir, func(context.Context) error {
		ran <- struct{}{}
		return nil
	})

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-ran:
		t.Fatal("run triggered by a non-matching file")
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(filepath.Join(dir, "drilling_machine_1.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("run not triggered by a matching file")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v after cancel", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_StopsOnRunError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")

	done := startWatch(t, context.Background(), dir, func(context.Context) error { return boom })

	if err := os.WriteFile(filepath.Join(dir, "drilling_machine_2.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("err = %v, want %v", err, boom)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not stop on run error")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), "*.json", 0,
		func(context.Context) error { return nil }, logger.Discard())
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
