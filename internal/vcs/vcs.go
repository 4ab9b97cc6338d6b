// Package vcs bootstraps per-package git repositories and resolves release
// tags. Tag resolution is deterministic and tag creation is idempotent, so
// rebuilding an already-tagged tree never creates new history.
package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/lmartin/pkgmill/internal/run"
	"github.com/sirupsen/logrus"
)

// colonPlaceholder tolerates the ":{var}" spelling some gbp.conf files use.
var colonPlaceholder = regexp.MustCompile(`:\{(\w+)\}`)

// RenderTag substitutes the tag template's placeholders. The placeholder set
// is closed: {distro}, {package} (alias {pkg}), {version}, {release_inc}.
// Substitution is literal, so identical inputs always yield identical tags.
func RenderTag(template, distro, pkg, version string, releaseInc int) string {
	tag := colonPlaceholder.ReplaceAllString(template, "{$1}")

	replacer := strings.NewReplacer(
		"{distro}", distro,
		"{package}", pkg,
		"{pkg}", pkg,
		"{version}", version,
		"{release_inc}", strconv.Itoa(releaseInc),
	)
	return replacer.Replace(tag)
}

// TemplateFor returns the tag template for a package: the upstream-tag line
// of its debian/gbp.conf when present, otherwise the given default.
func TemplateFor(root, fallback string) string {
	data, err := os.ReadFile(filepath.Join(root, "debian", "gbp.conf"))
	if err != nil {
		return fallback
	}
	for _, line := range strings.Split(string(data), "\n") {
		if after, ok := strings.CutPrefix(strings.TrimSpace(line), "upstream-tag="); ok {
			return after
		}
	}
	return fallback
}

// EnsureRepo guarantees root is a git repository with the given author
// identity. A fresh repository gets its entire tree committed as the initial
// revision so that tags always have something to point at.
func EnsureRepo(ctx context.Context, root, userName, userEmail string) error {
	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		run.BestEffort(ctx, root, "git", "config", "user.name", userName)
		run.BestEffort(ctx, root, "git", "config", "user.email", userEmail)
		return nil
	}

	if err := run.Run(ctx, root, "git", "init"); err != nil {
		return fmt.Errorf("git init failed: %w", err)
	}
	if err := run.Run(ctx, root, "git", "config", "user.name", userName); err != nil {
		return err
	}
	if err := run.Run(ctx, root, "git", "config", "user.email", userEmail); err != nil {
		return err
	}
	if err := run.Run(ctx, root, "git", "add", "-A"); err != nil {
		return err
	}
	if err := run.Run(ctx, root, "git", "commit", "-m", "Initial import"); err != nil {
		return fmt.Errorf("initial commit failed: %w", err)
	}

	logrus.Infof("Initialized git repository in %s", root)
	return nil
}

// TagExists reports whether tag already references a tree in the repository
// at root.
func TagExists(ctx context.Context, root, tag string) bool {
	_, err := run.Output(ctx, root, "git", "rev-parse", tag+"^{tree}")
	return err == nil
}

// EnsureTag guarantees the annotated tag exists, committing the current tree
// state first when needed. Re-running against an already-tagged tree is a
// no-op.
func EnsureTag(ctx context.Context, root, tag string) error {
	if TagExists(ctx, root, tag) {
		logrus.Infof("Tag exists: %s", tag)
		return nil
	}

	// The add/commit pair is best-effort: a clean tree makes the commit
	// exit non-zero with nothing to do.
	run.BestEffort(ctx, root, "git", "add", "-A")
	run.BestEffort(ctx, root, "git", "commit", "-m", "Prepare for "+tag)

	if err := run.Run(ctx, root, "git", "tag", "-a", tag, "-m", tag); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}

	logrus.Infof("Created tag: %s", tag)
	return nil
}

// CurrentBranch returns the checked-out branch name at root
func CurrentBranch(ctx context.Context, root string) (string, error) {
	return run.Output(ctx, root, "git", "rev-parse", "--abbrev-ref", "HEAD")
}
