// Package classify decides which build backend a package directory requires.
package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lmartin/pkgmill/internal/models"
)

// Python packaging helpers referenced from debian/control.
var pythonControlMarker = regexp.MustCompile(`dh-python|python3-all|python3-.*-dev`)

// Python project descriptors at the package root.
var pythonProjectFiles = []string{"pyproject.toml", "setup.py", "setup.cfg"}

// Detect determines the packaging kind of a package directory. First match
// wins: Python markers take precedence over plain debian/, which takes
// precedence over RPM packaging. A directory with no recognizable packaging
// metadata is a fatal condition; the orchestrator never guesses.
func Detect(root string) (models.PackagingKind, error) {
	if IsPythonPackaging(root) {
		return models.KindDebianPython, nil
	}

	if isDir(filepath.Join(root, "debian")) {
		return models.KindDebianNative, nil
	}

	if isDir(filepath.Join(root, "rpm")) || hasSpecFile(root) || canGenerateSpec(root) {
		return models.KindRPMSpec, nil
	}

	return models.KindUnknown, fmt.Errorf("missing packaging metadata in %s", root)
}

// IsPythonPackaging reports whether the package uses Python build tooling:
// a pybuild marker in debian/rules, a Python project descriptor at the root,
// or Python packaging helpers in debian/control.
func IsPythonPackaging(root string) bool {
	if data, err := os.ReadFile(filepath.Join(root, "debian", "rules")); err == nil {
		if strings.Contains(string(data), "pybuild") {
			return true
		}
	}

	for _, name := range pythonProjectFiles {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "debian", "control")); err == nil {
		if pythonControlMarker.Match(data) {
			return true
		}
	}

	return false
}

// SpecPath returns the lexically first spec file under rpm/, or "" when the
// package carries none.
func SpecPath(root string) string {
	matches, err := filepath.Glob(filepath.Join(root, "rpm", "*.spec"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

func hasSpecFile(root string) bool {
	return SpecPath(root) != ""
}

// canGenerateSpec reports whether the spec-generation fallback has enough
// metadata to synthesize a spec file.
func canGenerateSpec(root string) bool {
	_, err := os.Stat(filepath.Join(root, "package.xml"))
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
