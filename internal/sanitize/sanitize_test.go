package sanitize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanRemovesArtifacts(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"rpm/BUILD/x.o",
		"rpm/BUILDROOT/usr/bin/foo",
		"rpm/RPMS/x86_64/foo.rpm",
		"rpm/SRPMS/foo.src.rpm",
		"rpm/SOURCES/foo-1.0.tar.gz",
		"build/out.bin",
		"CMakeFiles/cache.txt",
	} {
		write(t, filepath.Join(root, rel), "stale")
	}
	write(t, filepath.Join(root, "rpm", "foo.spec"), "Name: foo\n")
	write(t, filepath.Join(root, "foo-0.9.tar.gz"), "stale archive")
	write(t, filepath.Join(root, "src", "main.c"), "int main(){}\n")

	Clean(root)

	for _, rel := range []string{"rpm/BUILD", "rpm/RPMS", "rpm/SRPMS", "rpm/SOURCES/foo-1.0.tar.gz", "build", "CMakeFiles", "foo-0.9.tar.gz"} {
		if _, err := os.Stat(filepath.Join(root, rel)); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", rel)
		}
	}

	// The spec file and real sources survive.
	if _, err := os.Stat(filepath.Join(root, "rpm", "foo.spec")); err != nil {
		t.Errorf("spec file should survive cleanup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "main.c")); err != nil {
		t.Errorf("source files should survive cleanup: %v", err)
	}
}

func TestCleanTwiceIsNoop(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "src", "main.c"), "int main(){}\n")

	Clean(root)
	Clean(root)

	if _, err := os.Stat(filepath.Join(root, "src", "main.c")); err != nil {
		t.Errorf("clean tree should be untouched: %v", err)
	}
}

func TestEnsureSourceOptionsIdempotent(t *testing.T) {
	root := t.TempDir()

	if err := EnsureSourceOptions(root); err != nil {
		t.Fatalf("EnsureSourceOptions failed: %v", err)
	}
	if err := EnsureSourceOptions(root); err != nil {
		t.Fatalf("EnsureSourceOptions rerun failed: %v", err)
	}

	format := read(t, filepath.Join(root, "debian", "source", "format"))
	if format != "3.0 (quilt)\n" {
		t.Errorf("unexpected source format %q", format)
	}

	options := read(t, filepath.Join(root, "debian", "source", "options"))
	if got := strings.Count(options, "extend-diff-ignore"); got != 1 {
		t.Errorf("extend-diff-ignore should appear exactly once, got %d", got)
	}
}

func TestEnsureSourceOptionsKeepsExistingFormat(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "debian", "source", "format"), "3.0 (native)\n")

	if err := EnsureSourceOptions(root); err != nil {
		t.Fatalf("EnsureSourceOptions failed: %v", err)
	}
	if got := read(t, filepath.Join(root, "debian", "source", "format")); got != "3.0 (native)\n" {
		t.Errorf("existing format should be preserved, got %q", got)
	}
}

func TestEnsureIgnoreEntriesIdempotent(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ".gitignore"), "rpm/\n*.log\n")

	if err := EnsureIgnoreEntries(root); err != nil {
		t.Fatalf("EnsureIgnoreEntries failed: %v", err)
	}
	first := read(t, filepath.Join(root, ".gitignore"))

	if err := EnsureIgnoreEntries(root); err != nil {
		t.Fatalf("EnsureIgnoreEntries rerun failed: %v", err)
	}
	second := read(t, filepath.Join(root, ".gitignore"))

	if first != second {
		t.Errorf("second run should not change .gitignore")
	}
	if strings.Count(second, "rpm/\n") != 1 {
		t.Errorf("pre-existing entry duplicated:\n%s", second)
	}
	if !strings.Contains(second, "*.tar.gz\n") {
		t.Errorf("missing pattern not appended:\n%s", second)
	}
	if !strings.Contains(second, "*.log\n") {
		t.Errorf("user entries should be preserved:\n%s", second)
	}
}

func TestEnsureGbpConf(t *testing.T) {
	root := t.TempDir()
	const template = "release/{distro}/{package}/{version}-{release_inc}"

	if err := EnsureGbpConf(root, template); err != nil {
		t.Fatalf("EnsureGbpConf failed: %v", err)
	}
	content := read(t, filepath.Join(root, "debian", "gbp.conf"))
	if !strings.Contains(content, "upstream-tag="+template) {
		t.Errorf("gbp.conf missing upstream-tag:\n%s", content)
	}

	// An existing gbp.conf is never clobbered.
	write(t, filepath.Join(root, "debian", "gbp.conf"), "custom\n")
	if err := EnsureGbpConf(root, template); err != nil {
		t.Fatalf("EnsureGbpConf rerun failed: %v", err)
	}
	if got := read(t, filepath.Join(root, "debian", "gbp.conf")); got != "custom\n" {
		t.Errorf("existing gbp.conf was overwritten: %q", got)
	}
}

func TestPythonPreClean(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "mypkg")

	for _, rel := range []string{
		".pybuild/stamp",
		"debian/.debhelper/log",
		"debian/files",
		"debian/mypkg.substvars",
		"dist/mypkg-1.0.tar.gz",
	} {
		write(t, filepath.Join(root, rel), "stale")
	}
	write(t, filepath.Join(parent, "mypkg_1.0_all.deb"), "old build")
	write(t, filepath.Join(parent, "mypkg_1.0.changes"), "old changes")
	write(t, filepath.Join(root, "setup.py"), "from setuptools import setup\n")

	PythonPreClean(root)

	for _, rel := range []string{".pybuild", "debian/.debhelper", "debian/files", "debian/mypkg.substvars", "dist"} {
		if _, err := os.Stat(filepath.Join(root, rel)); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", rel)
		}
	}
	for _, name := range []string{"mypkg_1.0_all.deb", "mypkg_1.0.changes"} {
		if _, err := os.Stat(filepath.Join(parent, name)); !os.IsNotExist(err) {
			t.Errorf("parent artifact %s should have been removed", name)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "setup.py")); err != nil {
		t.Errorf("project sources should survive: %v", err)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
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
