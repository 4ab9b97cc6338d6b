// Package pipeline drives the single-package build sequence: sanitation,
// classification, metadata extraction, version-control bootstrap, build and
// artifact collection. Each stage operates on an explicit job value; no
// stage depends on the process working directory.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/lmartin/pkgmill/internal/builder"
	"github.com/lmartin/pkgmill/internal/builder/deb"
	"github.com/lmartin/pkgmill/internal/builder/rpm"
	"github.com/lmartin/pkgmill/internal/classify"
	"github.com/lmartin/pkgmill/internal/metadata"
	"github.com/lmartin/pkgmill/internal/models"
	"github.com/lmartin/pkgmill/internal/sanitize"
	"github.com/lmartin/pkgmill/internal/vcs"
	"github.com/sirupsen/logrus"
)

// Run executes the full build pipeline for one package directory. The
// returned job carries the outcome either way: on error its status is
// StatusFailed and the error identifies the failing stage.
func Run(ctx context.Context, cfg *models.Config, root string) (*models.PackageJob, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	job := &models.PackageJob{
		Root:       abs,
		ReleaseInc: cfg.ReleaseInc,
		Status:     models.StatusPending,
	}

	logrus.Infof("==== Build: %s ====", abs)

	if err := runStages(ctx, cfg, job); err != nil {
		job.Status = models.StatusFailed
		return job, err
	}

	job.Status = models.StatusSuccess
	return job, nil
}

func runStages(ctx context.Context, cfg *models.Config, job *models.PackageJob) error {
	// Sanitation is defensive and never fatal.
	sanitize.Clean(job.Root)

	kind, err := classify.Detect(job.Root)
	if err != nil {
		return models.StageError(models.StageClassify, filepath.Base(job.Root), err)
	}
	job.Kind = kind
	logrus.Infof("Packaging kind: %s", kind)

	name, version, notes := metadata.Extract(job.Root)
	job.Name = name
	job.Version = version
	for _, note := range notes {
		logrus.Warn(note)
		job.Degrade(note)
	}

	if kind == models.KindDebianNative || kind == models.KindDebianPython {
		ensureDebianConfig(cfg, job)
	} else {
		if err := sanitize.EnsureIgnoreEntries(job.Root); err != nil {
			logrus.Warnf("failed to update .gitignore: %v", err)
			job.Degrade("ignore-list update failed")
		}
	}

	if err := vcs.EnsureRepo(ctx, job.Root, cfg.GitUserName, cfg.GitUserEmail); err != nil {
		return models.StageError(models.StageVCS, job.Name, err)
	}

	template := vcs.TemplateFor(job.Root, cfg.TagTemplate)
	job.Tag = vcs.RenderTag(template, cfg.Distro, job.Name, job.Version, job.ReleaseInc)
	if err := vcs.EnsureTag(ctx, job.Root, job.Tag); err != nil {
		return models.StageError(models.StageVCS, job.Name, err)
	}

	b := builderFor(kind)

	if err := b.Build(ctx, cfg, job); err != nil {
		return stageError(models.StageBuild, job.Name, err)
	}

	artifacts, err := b.Collect(ctx, cfg, job)
	job.Artifacts = artifacts
	if err != nil {
		return stageError(models.StageCollect, job.Name, err)
	}

	return nil
}

// ensureDebianConfig prepares the gbp/source-options/ignore configuration
// for Debian-family builds. These writes keep re-appearing artifacts from
// making the tree unrepresentable; failures degrade the job but never abort
// it.
func ensureDebianConfig(cfg *models.Config, job *models.PackageJob) {
	if err := sanitize.EnsureGbpConf(job.Root, cfg.TagTemplate); err != nil {
		logrus.Warnf("failed to write gbp.conf: %v", err)
		job.Degrade("gbp.conf setup failed")
	}
	if err := sanitize.EnsureSourceOptions(job.Root); err != nil {
		logrus.Warnf("failed to update debian/source options: %v", err)
		job.Degrade("source options setup failed")
	}
	if err := sanitize.EnsureIgnoreEntries(job.Root); err != nil {
		logrus.Warnf("failed to update .gitignore: %v", err)
		job.Degrade("ignore-list update failed")
	}
}

// builderFor selects the build backend for a packaging kind
func builderFor(kind models.PackagingKind) builder.Builder {
	switch kind {
	case models.KindRPMSpec:
		return rpm.New()
	default:
		return deb.New(kind)
	}
}

// stageError wraps err with a stage tag unless a deeper stage already
// tagged it.
func stageError(stage models.Stage, pkg string, err error) error {
	var be *models.BuildError
	if errors.As(err, &be) {
		return err
	}
	return models.StageError(stage, pkg, err)
}
