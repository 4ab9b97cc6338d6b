// Package deb builds Debian packages through git-buildpackage, covering
// both native debhelper packaging and the Python/pybuild flow.
package deb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lmartin/pkgmill/internal/models"
	"github.com/lmartin/pkgmill/internal/run"
	"github.com/lmartin/pkgmill/internal/sanitize"
	"github.com/lmartin/pkgmill/internal/utils"
	"github.com/lmartin/pkgmill/internal/vcs"
	"github.com/sirupsen/logrus"
)

// Packages the Python flow installs before resolving control dependencies.
var pythonToolchain = []string{
	"devscripts",
	"debhelper",
	"dh-python",
	"python3-all",
	"python3-setuptools",
	"python3-wheel",
	"python3-pip",
	"python3-pytest",
	"python3-flake8",
	"fakeroot",
	"git-buildpackage",
}

// Builder implements the builder.Builder interface for Debian packaging
type Builder struct {
	python bool
}

// New creates a Debian builder. kind selects between the native debhelper
// flow and the Python/pybuild flow.
func New(kind models.PackagingKind) *Builder {
	return &Builder{python: kind == models.KindDebianPython}
}

// Kind returns the packaging kind this builder supports
func (b *Builder) Kind() models.PackagingKind {
	if b.python {
		return models.KindDebianPython
	}
	return models.KindDebianNative
}

// Build installs build dependencies best-effort and runs gbp buildpackage.
// The build runs with history rewriting disabled and untracked-file
// tolerance enabled: the orchestrator does not require a pristine tree.
func (b *Builder) Build(ctx context.Context, cfg *models.Config, job *models.PackageJob) error {
	buildEnv := []string{fmt.Sprintf("DEB_BUILD_OPTIONS=parallel=%d", cfg.Parallel)}

	if b.python {
		logrus.Info("Detected Python packaging, using pybuild flow")
		sanitize.PythonPreClean(job.Root)
		b.installPythonDeps(ctx, job)

		return run.RunEnv(ctx, job.Root, buildEnv, "gbp", "buildpackage",
			"--git-ignore-branch",
			"--git-ignore-new",
			"--git-no-pristine-tar",
			"--git-upstream-tree=HEAD",
			"--git-builder=debuild -us -uc",
		)
	}

	b.installDeps(ctx, job)

	branch, err := vcs.CurrentBranch(ctx, job.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve current branch: %w", err)
	}

	return run.RunEnv(ctx, job.Root, buildEnv, "gbp", "buildpackage",
		"--git-ignore-branch",
		"--git-ignore-new",
		"--git-no-pristine-tar",
		"--git-debian-branch="+branch,
		"-us", "-uc",
	)
}

// installDeps installs build-time dependencies declared in debian/control.
// Failures are warnings, not aborts: they frequently indicate an already
// satisfied environment.
func (b *Builder) installDeps(ctx context.Context, job *models.PackageJob) {
	run.BestEffort(ctx, job.Root, "sudo", "apt-get", "update")
	run.BestEffort(ctx, job.Root, "sudo", "apt-get", "install", "-y", "devscripts", "equivs")

	b.installControlDeps(ctx, job)
}

func (b *Builder) installPythonDeps(ctx context.Context, job *models.PackageJob) {
	args := append([]string{"apt-get", "install", "-y"}, pythonToolchain...)
	run.BestEffort(ctx, job.Root, "sudo", args...)
	b.installControlDeps(ctx, job)
}

// installControlDeps resolves the Build-Depends of debian/control through
// mk-build-deps.
func (b *Builder) installControlDeps(ctx context.Context, job *models.PackageJob) {
	control := filepath.Join(job.Root, "debian", "control")
	if !utils.Exists(control) {
		return
	}
	if !run.BestEffort(ctx, job.Root, "sudo", "mk-build-deps", "-i", "-r", "-t", "apt-get -y", control) {
		job.Degrade("build dependency installation failed")
	}
}

// Collect copies the build products gbp leaves in the package's parent
// directory into <output>/<distro>/<name>/.
func (b *Builder) Collect(ctx context.Context, cfg *models.Config, job *models.PackageJob) ([]string, error) {
	dest := filepath.Join(cfg.OutputDir, cfg.Distro, job.Name)
	if err := utils.EnsureDir(dest); err != nil {
		return nil, err
	}

	parent := filepath.Dir(job.Root)
	patterns := []string{
		job.Name + "_*",
		job.Name + "-dbgsym_*",
		"*.build",
		"*.changes",
	}

	// The patterns overlap (a .changes file matches both <name>_* and
	// *.changes), so collected paths are deduplicated.
	seen := map[string]bool{}
	var collected []string
	for _, pattern := range patterns {
		copied, err := utils.CopyGlob(parent, pattern, dest)
		if err != nil {
			return collected, fmt.Errorf("failed to collect %s: %w", pattern, err)
		}
		for _, path := range copied {
			if !seen[path] {
				seen[path] = true
				collected = append(collected, path)
			}
		}
	}

	logrus.Infof("Artifacts => %s (%d files)", dest, len(collected))
	return collected, nil
}
