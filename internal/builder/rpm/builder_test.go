package rpm

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lmartin/pkgmill/internal/models"
)

func TestCollectCopiesRPMs(t *testing.T) {
	topdir := t.TempDir()
	write(t, filepath.Join(topdir, "RPMS", "x86_64", "foo-1.0-1.x86_64.rpm"))
	write(t, filepath.Join(topdir, "SRPMS", "foo-1.0-1.src.rpm"))

	cfg := &models.Config{
		OutputDir: t.TempDir(),
		Arch:      "x86_64",
		RPMTopDir: topdir,
	}
	job := &models.PackageJob{Root: t.TempDir(), Name: "foo"}

	collected, err := New().Collect(context.Background(), cfg, job)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(collected) != 2 {
		t.Errorf("expected 2 collected artifacts, got %d: %v", len(collected), collected)
	}

	dest := filepath.Join(cfg.OutputDir, "x86_64", "foo")
	for _, name := range []string{"foo-1.0-1.x86_64.rpm", "foo-1.0-1.src.rpm"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("%s not collected: %v", name, err)
		}
	}
}

func TestCollectToleratesMissingBuildTree(t *testing.T) {
	cfg := &models.Config{
		OutputDir: t.TempDir(),
		Arch:      "x86_64",
		RPMTopDir: filepath.Join(t.TempDir(), "does-not-exist"),
	}
	job := &models.PackageJob{Root: t.TempDir(), Name: "foo"}

	collected, err := New().Collect(context.Background(), cfg, job)
	if err != nil {
		t.Fatalf("Collect with no build tree should not fail: %v", err)
	}
	if len(collected) != 0 {
		t.Errorf("expected no artifacts, got %v", collected)
	}
}

func TestGenerateSpecInvocation(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	envFile := filepath.Join(dir, "env")
	stub := filepath.Join(dir, "bloom-stub")
	script := "#!/bin/sh\n" +
		"echo \"$@\" > " + argsFile + "\n" +
		"printenv AGIROS_DISTRO ROS_OS_OVERRIDE > " + envFile + "\n"
	if err := os.WriteFile(stub, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := &models.Config{
		BloomBin:  stub,
		Distro:    "loong",
		OSName:    "openeuler",
		OSVersion: "24",
	}
	job := &models.PackageJob{Root: t.TempDir(), Name: "foo"}

	if err := New().generateSpec(context.Background(), cfg, job); err != nil {
		t.Fatalf("generateSpec failed: %v", err)
	}

	args := read(t, argsFile)
	want := "agirosrpm --ros-distro loong --os-name openeuler --os-version 24"
	if strings.TrimSpace(args) != want {
		t.Errorf("unexpected invocation %q, want %q", strings.TrimSpace(args), want)
	}

	env := read(t, envFile)
	if !strings.Contains(env, "loong") || !strings.Contains(env, "openeuler:24") {
		t.Errorf("generation environment not set:\n%s", env)
	}
}

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("rpm payload"), 0644); err != nil {
		t.Fatal(err)
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
