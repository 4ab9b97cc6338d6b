// Package batch discovers package roots under a directory tree and drives
// the single-package pipeline over each of them, isolating per-package
// failure: one package's failure never prevents the rest from building.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/lmartin/pkgmill/internal/models"
	"github.com/lmartin/pkgmill/internal/utils"
	"github.com/sirupsen/logrus"
)

// FailListName is the file under the output root recording failed package
// paths, one per line.
const FailListName = "fail.list"

// PipelineFunc runs the single-package pipeline for one root
type PipelineFunc func(ctx context.Context, cfg *models.Config, root string) (*models.PackageJob, error)

// Runner executes the build pipeline over every discovered package
type Runner struct {
	cfg      *models.Config
	pipeline PipelineFunc
}

// NewRunner creates a batch runner driving the given pipeline
func NewRunner(cfg *models.Config, pipeline PipelineFunc) *Runner {
	return &Runner{cfg: cfg, pipeline: pipeline}
}

// Discover walks root for package markers (a debian/ directory or a
// package.xml descriptor) and returns the deduplicated, sorted list of
// absolute package roots. Sorting makes the processing order deterministic.
func (r *Runner) Discover(root string) ([]string, error) {
	seen := map[string]bool{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		var pkgRoot string
		switch {
		case d.IsDir() && d.Name() == "debian":
			pkgRoot = filepath.Dir(path)
		case !d.IsDir() && d.Name() == "package.xml":
			pkgRoot = filepath.Dir(path)
		default:
			return nil
		}

		abs, err := filepath.Abs(pkgRoot)
		if err != nil {
			return err
		}
		seen[abs] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover packages under %s: %w", root, err)
	}

	roots := make([]string, 0, len(seen))
	for path := range seen {
		roots = append(roots, path)
	}
	sort.Strings(roots)
	return roots, nil
}

// Run discovers every package under the configured code directory and
// builds each in turn. The returned report carries the tally and the
// ordered list of failed roots; the failure list is persisted under the
// output root.
func (r *Runner) Run(ctx context.Context) (*models.BatchReport, error) {
	roots, err := r.Discover(r.cfg.CodeDir)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Discovered %d package(s) under %s", len(roots), r.cfg.CodeDir)

	report := &models.BatchReport{
		FailListPath: filepath.Join(r.cfg.OutputDir, FailListName),
	}

	// Truncate any prior failure list before the first job runs.
	if err := utils.WriteFile(report.FailListPath, nil, 0644); err != nil {
		return nil, fmt.Errorf("failed to initialize failure list: %w", err)
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		job, err := r.pipeline(ctx, r.cfg, root)
		if err != nil {
			logrus.Errorf("Build failed: %v", err)
			report.Record(root, false)
			if err := appendLine(report.FailListPath, root); err != nil {
				logrus.Warnf("failed to record failure for %s: %v", root, err)
			}
			continue
		}

		logrus.Infof("Build succeeded: %s %s", job.Name, job.Version)
		report.Record(root, true)
	}

	logrus.Infof("Done. success=%d failed=%d", report.OK, report.Failed)
	if report.Failed > 0 {
		logrus.Warnf("Failed list => %s", report.FailListPath)
	}
	return report, nil
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}
