// Package archive produces the canonical source archive for spec-based
// builds and rewrites the spec file so both sides of the archive/spec
// pairing agree: the archive is named <name>-<version>.tar.gz, its single
// top-level directory is <name>-<version>, and the spec's Source0 and
// %setup directives resolve to the same pair.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
)

var (
	specName  = regexp.MustCompile(`(?m)^Name:\s*(\S+)`)
	source0   = regexp.MustCompile(`(?m)^Source0:[^\n]*\n?`)
	setupName = regexp.MustCompile(`(%setup[^\n]*-n)[ \t]+[^\n]+`)
)

// Subtrees excluded from the source archive: packaging metadata and version
// control.
var excludedDirs = map[string]bool{
	"debian": true,
	"rpm":    true,
	".git":   true,
	".svn":   true,
	".hg":    true,
}

// SpecName returns the spec's Name: field, falling back to the package
// directory's base name.
func SpecName(specPath, root string) (string, error) {
	data, err := os.ReadFile(specPath)
	if err != nil {
		return "", fmt.Errorf("failed to read spec: %w", err)
	}
	if m := specName.FindSubmatch(data); m != nil {
		return string(m[1]), nil
	}
	return filepath.Base(root), nil
}

// RewriteSpec normalizes the spec's Source0 field and %setup unpack
// directory to the macro form resolving to <name>-<version>. Spec files
// frequently carry stale literal values from a previous run; this rewrite
// re-establishes the pairing invariant every time.
func RewriteSpec(specPath string) error {
	data, err := os.ReadFile(specPath)
	if err != nil {
		return fmt.Errorf("failed to read spec: %w", err)
	}
	content := string(data)

	const sourceLine = "Source0: %{name}-%{version}.tar.gz\n"
	if source0.MatchString(content) {
		replaced := false
		content = source0.ReplaceAllStringFunc(content, func(line string) string {
			if replaced {
				return line
			}
			replaced = true
			return sourceLine
		})
	} else {
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += "\n" + sourceLine
	}

	if loc := setupName.FindStringIndex(content); loc != nil {
		content = content[:loc[0]] + setupName.FindStringSubmatch(content)[1] + " %{name}-%{version}" + content[loc[1]:]
	}

	return os.WriteFile(specPath, []byte(content), 0644)
}

// Build creates rpm/SOURCES/<name>-<version>.tar.gz from the package tree
// at root, renaming the archive's top-level directory to <name>-<version>
// and excluding packaging metadata. A pre-existing archive at that path is
// always overwritten; stale archives are a correctness hazard, not a cache.
func Build(root, specPath, version string) (string, error) {
	name, err := SpecName(specPath, root)
	if err != nil {
		return "", err
	}

	if err := RewriteSpec(specPath); err != nil {
		return "", fmt.Errorf("failed to rewrite spec: %w", err)
	}

	sourcesDir := filepath.Join(root, "rpm", "SOURCES")
	if err := os.MkdirAll(sourcesDir, 0755); err != nil {
		return "", err
	}

	prefix := fmt.Sprintf("%s-%s", name, version)
	tarPath := filepath.Join(sourcesDir, prefix+".tar.gz")
	if err := writeTarball(root, tarPath, prefix); err != nil {
		os.Remove(tarPath)
		return "", fmt.Errorf("failed to create source archive: %w", err)
	}

	// Re-check the pairing invariant on the produced archive.
	top, err := TopDir(tarPath)
	if err != nil {
		return "", err
	}
	if top != prefix {
		return "", fmt.Errorf("archive top-level directory %q does not match %q", top, prefix)
	}

	logrus.Infof("Source archive created: %s", tarPath)
	return tarPath, nil
}

func writeTarball(root, tarPath, prefix string) error {
	out, err := os.Create(tarPath)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	rootInfo, err := os.Stat(root)
	if err != nil {
		return err
	}
	// The top-level directory is always present, even when every file in
	// the tree sits under an excluded subtree.
	topHdr, err := tar.FileInfoHeader(rootInfo, "")
	if err != nil {
		return err
	}
	topHdr.Name = prefix + "/"
	if err := tw.WriteHeader(topHdr); err != nil {
		return err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		top := strings.Split(filepath.ToSlash(rel), "/")[0]
		if excludedDirs[top] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		link := ""
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		} else if !info.Mode().IsRegular() && !info.IsDir() {
			// Sockets, devices and the like have no place in a
			// source archive.
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = prefix + "/" + filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			_, err = io.Copy(tw, f)
			f.Close()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return out.Sync()
}
