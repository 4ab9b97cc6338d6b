// Package rpm builds RPM packages through rpmbuild. When a package carries
// no spec file, one is synthesized from its descriptor metadata through the
// spec-generation fallback tool before building.
package rpm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lmartin/pkgmill/internal/archive"
	"github.com/lmartin/pkgmill/internal/classify"
	"github.com/lmartin/pkgmill/internal/models"
	"github.com/lmartin/pkgmill/internal/run"
	"github.com/lmartin/pkgmill/internal/utils"
	"github.com/sassoftware/go-rpmutils"
	"github.com/sirupsen/logrus"
)

// Builder implements the builder.Builder interface for spec-based packaging
type Builder struct{}

// New creates an RPM builder
func New() *Builder {
	return &Builder{}
}

// Kind returns the packaging kind this builder supports
func (b *Builder) Kind() models.PackagingKind {
	return models.KindRPMSpec
}

// Build produces the source archive, resolves build dependencies
// best-effort, and runs rpmbuild with all intermediate and output
// directories directed into the configured build tree.
func (b *Builder) Build(ctx context.Context, cfg *models.Config, job *models.PackageJob) error {
	spec := classify.SpecPath(job.Root)
	if spec == "" {
		logrus.Info("No spec file found, generating one from the package descriptor")
		if err := b.generateSpec(ctx, cfg, job); err != nil {
			return err
		}
		if spec = classify.SpecPath(job.Root); spec == "" {
			return fmt.Errorf("spec still missing after generation in %s", job.Root)
		}
	}

	if _, err := archive.Build(job.Root, spec, job.Version); err != nil {
		return models.StageError(models.StageArchive, job.Name, err)
	}

	if !run.BestEffort(ctx, job.Root, "dnf", "builddep", "-y", spec) {
		job.Degrade("build dependency resolution failed")
	}

	args := []string{
		"-ba", spec,
		"--define", fmt.Sprintf("_topdir %s", cfg.RPMTopDir),
		"--define", fmt.Sprintf("_sourcedir %s", filepath.Join(job.Root, "rpm", "SOURCES")),
		"--define", fmt.Sprintf("_specdir %s", filepath.Join(job.Root, "rpm")),
		"--define", fmt.Sprintf("_builddir %s", filepath.Join(cfg.RPMTopDir, "BUILD")),
		"--define", fmt.Sprintf("_srcrpmdir %s", filepath.Join(cfg.RPMTopDir, "SRPMS")),
		"--define", fmt.Sprintf("_rpmdir %s", filepath.Join(cfg.RPMTopDir, "RPMS")),
	}
	if cfg.SkipDebug {
		args = append(args,
			"--define", "debug_package %{nil}",
			"--define", "_enable_debug_packages 0",
			"--define", "_debuginfo_packages 0",
			"--define", "_debugsource_packages 0",
		)
	}

	return run.Run(ctx, job.Root, "rpmbuild", args...)
}

// generateSpec synthesizes a spec file from the package descriptor
func (b *Builder) generateSpec(ctx context.Context, cfg *models.Config, job *models.PackageJob) error {
	env := []string{
		fmt.Sprintf("ROS_OS_OVERRIDE=%s:%s", cfg.OSName, cfg.OSVersion),
	}
	// An AGIROS_DISTRO already present in the environment takes precedence.
	if os.Getenv("AGIROS_DISTRO") == "" {
		env = append(env, fmt.Sprintf("AGIROS_DISTRO=%s", cfg.Distro))
	}
	err := run.RunEnv(ctx, job.Root, env, cfg.BloomBin, "agirosrpm",
		"--ros-distro", cfg.Distro,
		"--os-name", cfg.OSName,
		"--os-version", cfg.OSVersion,
	)
	if err != nil {
		return fmt.Errorf("spec generation failed: %w", err)
	}
	return nil
}

// Collect copies the binary and source RPMs from the build tree into
// <output>/<arch>/<name>/ and logs the identity of every collected RPM.
func (b *Builder) Collect(ctx context.Context, cfg *models.Config, job *models.PackageJob) ([]string, error) {
	dest := filepath.Join(cfg.OutputDir, cfg.Arch, job.Name)
	if err := utils.EnsureDir(dest); err != nil {
		return nil, err
	}

	var collected []string
	binaries, err := utils.CopyGlob(filepath.Join(cfg.RPMTopDir, "RPMS", cfg.Arch), "*.rpm", dest)
	if err != nil {
		return collected, fmt.Errorf("failed to collect RPMs: %w", err)
	}
	collected = append(collected, binaries...)

	sources, err := utils.CopyGlob(filepath.Join(cfg.RPMTopDir, "SRPMS"), "*.src.rpm", dest)
	if err != nil {
		return collected, fmt.Errorf("failed to collect SRPMs: %w", err)
	}
	collected = append(collected, sources...)

	for _, path := range collected {
		logCollected(path)
	}

	logrus.Infof("Artifacts => %s (%d files)", dest, len(collected))
	return collected, nil
}

// logCollected reads the RPM header of a collected artifact and logs its
// identity. Unreadable files are only warned about; the copy already
// succeeded.
func logCollected(path string) {
	f, err := os.Open(path)
	if err != nil {
		logrus.Warnf("cannot open collected artifact %s: %v", path, err)
		return
	}
	defer f.Close()

	pkg, err := rpmutils.ReadRpm(f)
	if err != nil {
		logrus.Warnf("cannot read RPM header of %s: %v", path, err)
		return
	}
	nevra, err := pkg.Header.GetNEVRA()
	if err != nil {
		logrus.Warnf("cannot read NEVRA of %s: %v", path, err)
		return
	}
	logrus.Infof("Collected %s", nevra.String())
}
