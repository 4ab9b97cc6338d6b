// Package metadata extracts a package's name and version from its packaging
// files. Extraction is read-only and never fails: missing metadata degrades
// to documented fallback values instead of aborting the pipeline.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	changelogVersion  = regexp.MustCompile(`\(([^)]+)\)`)
	descriptorVersion = regexp.MustCompile(`<\s*version\s*>\s*([^<]+)\s*<\s*/\s*version\s*>`)
)

// FallbackVersion is used when neither the changelog nor the package
// descriptor carries a version.
const FallbackVersion = "0.0.0"

// Extract resolves (name, version) for a package root. Degradations are
// returned as notes rather than errors.
func Extract(root string) (name, version string, notes []string) {
	name = Name(root)

	version = VersionFromChangelog(root)
	if version == "" {
		version = VersionFromDescriptor(root)
	}
	if version == "" {
		version = FallbackVersion
		notes = append(notes, fmt.Sprintf("no version found for %s, using %s", name, FallbackVersion))
	}
	return name, version, notes
}

// Name resolves the package name: the first token of the changelog's first
// line, falling back to the directory's base name.
func Name(root string) string {
	line := firstLine(filepath.Join(root, "debian", "changelog"))
	if line != "" {
		if fields := strings.Fields(line); len(fields) > 0 {
			return fields[0]
		}
	}
	return filepath.Base(root)
}

// VersionFromChangelog returns the text inside the first parenthesized group
// of the changelog's first line, or "" when absent.
func VersionFromChangelog(root string) string {
	line := firstLine(filepath.Join(root, "debian", "changelog"))
	if line == "" {
		return ""
	}
	if m := changelogVersion.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// VersionFromDescriptor returns the version element of the package.xml
// descriptor, or "" when absent.
func VersionFromDescriptor(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "package.xml"))
	if err != nil {
		return ""
	}
	if m := descriptorVersion.FindSubmatch(data); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

func firstLine(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return line
}
