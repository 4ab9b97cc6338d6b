package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgmill",
		Short: "Build Debian and RPM packages into a structured output tree",
		Long: `Pkgmill turns source trees carrying Debian or RPM packaging metadata
into built packages, placed in a distro/architecture-keyed output tree.

It classifies each package directory, derives its version and release
tag, cleans stale build artifacts, and invokes the matching build
backend:
  - debian-native  (git-buildpackage)
  - debian-python  (git-buildpackage with pybuild)
  - rpm-spec       (rpmbuild, with spec generation fallback)`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewBatchCmd())

	return rootCmd
}
