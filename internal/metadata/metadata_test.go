package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractFromChangelog(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "debian", "changelog"),
		"mypkg (1.2.3-1) unstable; urgency=medium\n\n  * Initial release\n")

	name, version, notes := Extract(root)
	if name != "mypkg" {
		t.Errorf("expected name mypkg, got %q", name)
	}
	if version != "1.2.3-1" {
		t.Errorf("expected version 1.2.3-1, got %q", version)
	}
	if len(notes) != 0 {
		t.Errorf("expected no degradation notes, got %v", notes)
	}
}

func TestExtractFromDescriptor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.xml"),
		"<?xml version=\"1.0\"?>\n<package>\n  <name>foo</name>\n  <version>2.3.1</version>\n</package>\n")

	name, version, notes := Extract(root)
	if name != filepath.Base(root) {
		t.Errorf("expected directory base name, got %q", name)
	}
	if version != "2.3.1" {
		t.Errorf("expected version 2.3.1, got %q", version)
	}
	if len(notes) != 0 {
		t.Errorf("expected no degradation notes, got %v", notes)
	}
}

func TestExtractDescriptorWhitespace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.xml"),
		"<package>< version > 0.9.0 </ version ></package>\n")

	if v := VersionFromDescriptor(root); v != "0.9.0" {
		t.Errorf("expected version 0.9.0, got %q", v)
	}
}

func TestExtractFallback(t *testing.T) {
	root := t.TempDir()

	name, version, notes := Extract(root)
	if name != filepath.Base(root) {
		t.Errorf("expected directory base name, got %q", name)
	}
	if version != FallbackVersion {
		t.Errorf("expected fallback version %s, got %q", FallbackVersion, version)
	}
	if len(notes) != 1 {
		t.Errorf("expected one degradation note, got %v", notes)
	}
}

func TestChangelogTakesPrecedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "debian", "changelog"),
		"mypkg (1.0-1) unstable; urgency=low\n")
	writeFile(t, filepath.Join(root, "package.xml"),
		"<package><version>9.9.9</version></package>\n")

	_, version, _ := Extract(root)
	if version != "1.0-1" {
		t.Errorf("changelog version should win, got %q", version)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
