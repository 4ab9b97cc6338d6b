package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// TopDir returns the single top-level directory of a tar archive. Gzip and
// xz compression are detected from the filename. An archive with more than
// one top-level entry (or none) is an error: the spec-based build tool
// expects exactly one unpack directory.
func TopDir(tarPath string) (string, error) {
	f, err := os.Open(tarPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(tarPath, ".gz") || strings.HasSuffix(tarPath, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	case strings.HasSuffix(tarPath, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("failed to open xz stream: %w", err)
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	top := ""
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read archive: %w", err)
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		entry := strings.Split(strings.TrimSuffix(name, "/"), "/")[0]
		if entry == "" {
			continue
		}
		if top == "" {
			top = entry
			continue
		}
		if entry != top {
			return "", fmt.Errorf("archive has multiple top-level entries: %s, %s", top, entry)
		}
	}

	if top == "" {
		return "", fmt.Errorf("archive %s is empty", tarPath)
	}
	return top, nil
}
