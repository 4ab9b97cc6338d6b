package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ReleaseInc != 1 {
		t.Errorf("expected default release increment 1, got %d", cfg.ReleaseInc)
	}
	if cfg.Parallel < 1 {
		t.Errorf("expected positive parallelism, got %d", cfg.Parallel)
	}
	if cfg.TagTemplate != DefaultTagTemplate {
		t.Errorf("unexpected default tag template %q", cfg.TagTemplate)
	}
	if !cfg.SkipDebug {
		t.Error("debug packages should be skipped by default")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DISTRO", "bookworm")
	t.Setenv("DEFAULT_REL_INC", "3")
	t.Setenv("SKIP_DEBUG", "false")

	cfg := DefaultConfig()
	if cfg.Distro != "bookworm" {
		t.Errorf("expected distro from env, got %q", cfg.Distro)
	}
	if cfg.ReleaseInc != 3 {
		t.Errorf("expected release increment from env, got %d", cfg.ReleaseInc)
	}
	if cfg.SkipDebug {
		t.Error("SKIP_DEBUG=false should disable skip-debug")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkgmill.yaml")
	content := "distro: trixie\nrelease_inc: 2\noutput_dir: /tmp/out\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Distro != "trixie" {
		t.Errorf("expected distro trixie, got %q", cfg.Distro)
	}
	if cfg.ReleaseInc != 2 {
		t.Errorf("expected release increment 2, got %d", cfg.ReleaseInc)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("expected output dir /tmp/out, got %q", cfg.OutputDir)
	}
	// Fields absent from the file keep their defaults.
	if cfg.BloomBin != "bloom-generate" {
		t.Errorf("unset field should keep default, got %q", cfg.BloomBin)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty output dir")
	}

	cfg = DefaultConfig()
	cfg.ReleaseInc = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero release increment")
	}

	cfg = DefaultConfig()
	cfg.Parallel = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero parallelism should be clamped, got %v", err)
	}
	if cfg.Parallel != 1 {
		t.Errorf("expected parallelism clamped to 1, got %d", cfg.Parallel)
	}
}
