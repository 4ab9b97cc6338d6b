package cli

import (
	"github.com/lmartin/pkgmill/internal/classify"
	"github.com/lmartin/pkgmill/internal/models"
	"github.com/lmartin/pkgmill/internal/pipeline"
	"github.com/lmartin/pkgmill/internal/run"
	"github.com/lmartin/pkgmill/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewBuildCmd creates the single-package build command
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build one package directory",
		Long: `Runs the full build pipeline against a single package directory,
defaulting to the current directory. Exits non-zero with a
stage-identifying message on failure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			kind, err := classify.Detect(root)
			if err != nil {
				return models.StageError(models.StageClassify, root, err)
			}
			if err := run.Require(toolsFor(kind)...); err != nil {
				return models.StageError(models.StageConfig, "", err)
			}
			if err := utils.EnsureDir(cfg.OutputDir); err != nil {
				return models.StageError(models.StageConfig, "", err)
			}

			job, err := pipeline.Run(cmd.Context(), cfg, root)
			if err != nil {
				return err
			}

			logrus.Infof("Build succeeded: %s %s (%s)", job.Name, job.Version, job.Kind)
			for _, note := range job.Notes {
				logrus.Warnf("Degraded: %s", note)
			}
			return nil
		},
	}

	registerConfigFlags(cmd, models.DefaultConfig())
	return cmd
}

// toolsFor returns the external commands a backend family cannot run
// without. A missing tool aborts before any job runs.
func toolsFor(kind models.PackagingKind) []string {
	switch kind {
	case models.KindRPMSpec:
		return []string{"git", "rpmbuild", "dnf"}
	default:
		return []string{"git", "gbp", "mk-build-deps", "dpkg-buildpackage"}
	}
}
