package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxPages != 200 {
		t.Errorf("MaxPages = %d, want 200", cfg.MaxPages)
	}
	if cfg.RotationCutoffDeg != 10 {
		t.Errorf("RotationCutoffDeg = %v, want 10", cfg.RotationCutoffDeg)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, ":8080")
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want 4", cfg.WorkerCount)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLayoutConfigConvertsDegreesToRadians(t *testing.T) {
	cfg := &Config{MaxPages: 50, RotationCutoffDeg: 10}
	lc := cfg.LayoutConfig()
	if lc.MaxPages != 50 {
		t.Errorf("MaxPages = %d, want 50", lc.MaxPages)
	}
	want := 10 * math.Pi / 180
	if lc.RotationCutoffRad != want {
		t.Errorf("RotationCutoffRad = %v, want %v", lc.RotationCutoffRad, want)
	}
}

func TestLayoutConfigZeroDegreesIsZeroRadians(t *testing.T) {
	cfg := &Config{RotationCutoffDeg: 0}
	if got := cfg.LayoutConfig().RotationCutoffRad; got != 0 {
		t.Errorf("RotationCutoffRad = %v, want 0", got)
	}
}

func TestWriteDefaultProducesLoadableYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("WriteDefault produced an empty file")
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	got := mgr.Get()
	want := DefaultConfig()
	if got.MaxPages != want.MaxPages || got.RotationCutoffDeg != want.RotationCutoffDeg ||
		got.ServerAddr != want.ServerAddr || got.WorkerCount != want.WorkerCount || got.LogLevel != want.LogLevel {
		t.Errorf("loaded config = %+v, want %+v", got, want)
	}
}

func TestNewManagerFallsBackToDefaultsWithoutConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent.yaml")
	mgr, err := NewManager(missing)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if mgr.Get().MaxPages != DefaultConfig().MaxPages {
		t.Errorf("expected defaults when the config file does not exist, got %+v", mgr.Get())
	}
}

func TestManagerOnChangeRegistersCallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	called := false
	mgr.OnChange(func(*Config) { called = true })
	// OnChange only registers the callback; WatchConfig is what wires the
	// fsnotify watcher. Registering alone must not invoke it.
	if called {
		t.Error("OnChange should not invoke the callback immediately")
	}
}
