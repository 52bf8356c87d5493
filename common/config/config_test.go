package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Surface.XMax != 200 || cfg.Surface.YMax != 200 || cfg.Surface.ZMax != 100 {
		t.Fatalf("unexpected default surface: %+v", cfg.Surface)
	}
	if len(cfg.ExtruderOutputs) != 4 || cfg.ExtruderOutputs[0] != 1 {
		t.Fatalf("unexpected default outputs: %v", cfg.ExtruderOutputs)
	}
	if !cfg.IOCard || cfg.ContinuousExtrusion {
		t.Fatalf("unexpected default modes: %+v", cfg)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Serial.Baud != 115200 {
		t.Fatalf("unexpected default baud: %d", cfg.Serial.Baud)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := "print_surface:\n" +
		"  z_max: 75\n" +
		"continuous_extrusion: true\n" +
		"serial:\n" +
		"  port: /dev/ttyACM1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Surface.ZMax != 75 {
		t.Fatalf("z_max not loaded: %v", cfg.Surface.ZMax)
	}
	if cfg.Surface.XMax != 200 {
		t.Fatalf("unset keys must keep defaults: %v", cfg.Surface.XMax)
	}
	if !cfg.ContinuousExtrusion {
		t.Fatalf("continuous_extrusion not loaded")
	}
	if cfg.Serial.Port != "/dev/ttyACM1" || cfg.Serial.Baud != 115200 {
		t.Fatalf("unexpected serial config: %+v", cfg.Serial)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")

	cfg := Defaults()
	cfg.Surface.ZMax = 80
	if err := Save(path, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Surface.ZMax != 80 {
		t.Fatalf("saved profile not readable: %+v", loaded.Surface)
	}
}
