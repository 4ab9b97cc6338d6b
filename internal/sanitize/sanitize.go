// Package sanitize removes stale build byproducts and maintains the ignore
// configuration so the build tool always sees a representable source tree.
// Every function here is re-entrant and tolerates missing paths: sanitation
// must never fail the pipeline.
package sanitize

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Build-foreign artifact patterns kept out of version control.
var ignoreEntries = []string{
	"rpm/",
	"build/",
	".obj-*",
	"CMakeFiles/",
	"CMakeCache.txt",
	"*.tar",
	"*.tar.gz",
	"*.tar.xz",
	"*.tar.bz2",
	"*.bin",
	"*.out",
}

// extendDiffIgnore keeps re-appearing artifacts from making the Debian
// source tree unrepresentable.
const extendDiffIgnore = `extend-diff-ignore = "^(rpm/|rpm/SOURCES/|build/|CMakeFiles/|.*\.tar(\.gz|\.xz|\.bz2)?|.*\.(bin|out)|^\.obj-.*|CMakeCache\.txt)$"` + "\n"

// Clean removes prior build byproducts from a package root: stray source
// archives, compiled-build intermediates and caches, and the RPM output
// subtrees. Safe on an already-clean tree.
func Clean(root string) {
	removeRPMOutputs(root)

	// Source archives anywhere at the root, but never inside debian/.
	tars, _ := filepath.Glob(filepath.Join(root, "*.tar*"))
	for _, tar := range tars {
		remove(tar)
	}

	for _, pattern := range []string{"build", ".obj-*", "CMakeFiles", "CMakeCache.txt", "cmake_install.cmake"} {
		matches, _ := filepath.Glob(filepath.Join(root, pattern))
		for _, m := range matches {
			remove(m)
		}
	}
}

// removeRPMOutputs clears the RPM packaging subtrees from a prior run while
// preserving the spec file itself.
func removeRPMOutputs(root string) {
	rpmDir := filepath.Join(root, "rpm")
	if _, err := os.Stat(rpmDir); err != nil {
		return
	}
	for _, sub := range []string{"BUILD", "BUILDROOT", "RPMS", "SRPMS", "tmp"} {
		remove(filepath.Join(rpmDir, sub))
	}
	stale, _ := filepath.Glob(filepath.Join(rpmDir, "SOURCES", "*.tar*"))
	for _, tar := range stale {
		remove(tar)
	}
}

// EnsureSourceOptions guarantees the Debian source format declaration and
// the extend-diff-ignore pattern are in place. Appending is idempotent.
func EnsureSourceOptions(root string) error {
	sourceDir := filepath.Join(root, "debian", "source")
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return err
	}

	formatFile := filepath.Join(sourceDir, "format")
	if _, err := os.Stat(formatFile); os.IsNotExist(err) {
		if err := os.WriteFile(formatFile, []byte("3.0 (quilt)\n"), 0644); err != nil {
			return err
		}
	}

	optionsFile := filepath.Join(sourceDir, "options")
	if data, err := os.ReadFile(optionsFile); err == nil {
		if strings.Contains(string(data), "extend-diff-ignore") {
			return nil
		}
	}
	return appendLines(optionsFile, extendDiffIgnore)
}

// EnsureIgnoreEntries appends the artifact patterns to .gitignore, skipping
// entries already present.
func EnsureIgnoreEntries(root string) error {
	gitignore := filepath.Join(root, ".gitignore")

	existing := map[string]bool{}
	if data, err := os.ReadFile(gitignore); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			existing[strings.TrimSpace(line)] = true
		}
	}

	var missing strings.Builder
	for _, entry := range ignoreEntries {
		if !existing[entry] {
			missing.WriteString(entry)
			missing.WriteString("\n")
		}
	}
	if missing.Len() == 0 {
		return nil
	}
	return appendLines(gitignore, missing.String())
}

// EnsureGbpConf writes debian/gbp.conf carrying the upstream-tag template
// when the package does not already have one.
func EnsureGbpConf(root, tagTemplate string) error {
	debianDir := filepath.Join(root, "debian")
	if err := os.MkdirAll(debianDir, 0755); err != nil {
		return err
	}

	gbpConf := filepath.Join(debianDir, "gbp.conf")
	if _, err := os.Stat(gbpConf); err == nil {
		return nil
	}

	content := "[git-buildpackage]\n" +
		"upstream-tag=" + tagTemplate + "\n" +
		"upstream-tree=tag\n\n" +
		"[buildpackage]\n" +
		"upstream-tag=" + tagTemplate + "\n" +
		"upstream-tree=tag\n"
	if err := os.WriteFile(gbpConf, []byte(content), 0644); err != nil {
		return err
	}

	logrus.Infof("Created debian/gbp.conf in %s", root)
	return nil
}

// PythonPreClean removes the build state Python packaging leaves behind,
// both inside the tree and the build products dropped in the parent
// directory by a previous debuild run.
func PythonPreClean(root string) {
	for _, rel := range []string{
		".pc",
		".pybuild",
		".pytest_cache",
		".eggs",
		"build",
		"dist",
		"debian/.debhelper",
		"debian/debhelper-build-stamp",
		"debian/files",
	} {
		remove(filepath.Join(root, rel))
	}

	for _, pattern := range []string{"*.debhelper.log", "*.substvars"} {
		matches, _ := filepath.Glob(filepath.Join(root, "debian", pattern))
		for _, m := range matches {
			remove(m)
		}
	}

	parent := filepath.Dir(root)
	for _, pattern := range []string{"*.deb", "*.dsc", "*.changes", "*.build", "*.buildinfo", "*.orig.tar.*"} {
		matches, _ := filepath.Glob(filepath.Join(parent, pattern))
		for _, m := range matches {
			remove(m)
		}
	}

	for _, pattern := range []string{".obj-*", "__pycache__", "CMakeFiles", "CMakeCache.txt", "cmake_install.cmake"} {
		matches, _ := filepath.Glob(filepath.Join(root, pattern))
		for _, m := range matches {
			remove(m)
		}
	}
}

// remove deletes a file or directory tree, tolerating absence
func remove(path string) {
	if err := os.RemoveAll(path); err != nil {
		logrus.Debugf("failed to remove %s: %v", path, err)
	}
}

func appendLines(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}
