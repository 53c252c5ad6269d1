package config

import "testing"

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DefaultTransferPenalty != 60 {
		t.Errorf("DefaultTransferPenalty = %d, want 60", cfg.DefaultTransferPenalty)
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("ISOCHRONE_PORT", "9090")
	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 from env", cfg.Port)
	}
}

func TestInBoundingBox_UnconfiguredAllowsEverything(t *testing.T) {
	cfg := &Config{}
	if !cfg.InBoundingBox(90, 180) {
		t.Errorf("InBoundingBox() with no box configured = false, want true")
	}
}

func TestInBoundingBox_RejectsOutsideConfiguredArea(t *testing.T) {
	cfg := &Config{MinLat: 44.0, MinLon: -94.0, MaxLat: 45.5, MaxLon: -92.5}
	if !cfg.InBoundingBox(44.9, -93.2) {
		t.Errorf("InBoundingBox() inside box = false, want true")
	}
	if cfg.InBoundingBox(10, 10) {
		t.Errorf("InBoundingBox() outside box = true, want false")
	}
}
