package cli

import (
	"fmt"

	"github.com/lmartin/pkgmill/internal/batch"
	"github.com/lmartin/pkgmill/internal/classify"
	"github.com/lmartin/pkgmill/internal/models"
	"github.com/lmartin/pkgmill/internal/pipeline"
	"github.com/lmartin/pkgmill/internal/run"
	"github.com/lmartin/pkgmill/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch build command
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Discover and build every package under the code directory",
		Long: `Walks the code directory for package roots, builds each one in turn,
and writes the list of failed package paths to fail.list under the
output root. Every discovered package is attempted; the exit status is
non-zero only if at least one package failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			runner := batch.NewRunner(cfg, pipeline.Run)

			// Verify the toolchains for every backend present before
			// the first job runs: a missing required tool means no
			// job of that family could succeed.
			roots, err := runner.Discover(cfg.CodeDir)
			if err != nil {
				return err
			}
			if err := run.Require(toolsForRoots(roots)...); err != nil {
				return models.StageError(models.StageConfig, "", err)
			}
			if err := utils.EnsureDir(cfg.OutputDir); err != nil {
				return models.StageError(models.StageConfig, "", err)
			}

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if report.Failed > 0 {
				return fmt.Errorf("%d of %d package(s) failed, see %s",
					report.Failed, report.OK+report.Failed, report.FailListPath)
			}
			return nil
		},
	}

	registerConfigFlags(cmd, models.DefaultConfig())
	return cmd
}

// toolsForRoots returns the union of required tools across the packaging
// kinds present in the discovered roots.
func toolsForRoots(roots []string) []string {
	seen := map[string]bool{}
	var tools []string
	add := func(names []string) {
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				tools = append(tools, name)
			}
		}
	}

	for _, root := range roots {
		kind, err := classify.Detect(root)
		if err != nil {
			// Unclassifiable roots are reported per job by the
			// pipeline itself.
			logrus.Debugf("skipping tool check for %s: %v", root, err)
			continue
		}
		add(toolsFor(kind))
	}
	return tools
}
