package cli

import (
	"github.com/lmartin/pkgmill/internal/models"
	"github.com/spf13/cobra"
)

// registerConfigFlags declares the shared configuration flags on a command.
// Flag defaults come from the environment-aware built-in defaults, so help
// output shows the values that would actually apply.
func registerConfigFlags(cmd *cobra.Command, defaults *models.Config) {
	cmd.Flags().String("config", "", "Path to a YAML config file")
	cmd.Flags().StringP("out", "o", defaults.OutputDir, "Output tree root")
	cmd.Flags().String("code-dir", defaults.CodeDir, "Directory scanned for packages in batch mode")
	cmd.Flags().String("distro", defaults.Distro, "Distribution identifier")
	cmd.Flags().Int("release-inc", defaults.ReleaseInc, "Release increment for version tags")
	cmd.Flags().IntP("parallel", "j", defaults.Parallel, "Parallelism hint for the build tool")
	cmd.Flags().String("git-name", defaults.GitUserName, "Author name for bootstrap commits")
	cmd.Flags().String("git-email", defaults.GitUserEmail, "Author email for bootstrap commits")
	cmd.Flags().String("os-name", defaults.OSName, "Target OS name for spec generation")
	cmd.Flags().String("os-version", defaults.OSVersion, "Target OS version for spec generation")
	cmd.Flags().String("arch", defaults.Arch, "Architecture keying the RPM output layout")
	cmd.Flags().String("rpm-topdir", defaults.RPMTopDir, "RPM build tree (_topdir)")
	cmd.Flags().Bool("skip-debug", defaults.SkipDebug, "Disable debug-package generation on the RPM path")
	cmd.Flags().String("bloom-bin", defaults.BloomBin, "Spec-generation fallback binary")
	cmd.Flags().String("tag-template", defaults.TagTemplate, "Tag template (placeholders: {distro} {package} {version} {release_inc})")
}

// resolveConfig layers the configuration sources: built-in defaults with
// environment overrides, then the optional YAML file, then any flag the
// user set explicitly.
func resolveConfig(cmd *cobra.Command) (*models.Config, error) {
	cfg := models.DefaultConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutputDir, _ = flags.GetString("out")
	}
	if flags.Changed("code-dir") {
		cfg.CodeDir, _ = flags.GetString("code-dir")
	}
	if flags.Changed("distro") {
		cfg.Distro, _ = flags.GetString("distro")
	}
	if flags.Changed("release-inc") {
		cfg.ReleaseInc, _ = flags.GetInt("release-inc")
	}
	if flags.Changed("parallel") {
		cfg.Parallel, _ = flags.GetInt("parallel")
	}
	if flags.Changed("git-name") {
		cfg.GitUserName, _ = flags.GetString("git-name")
	}
	if flags.Changed("git-email") {
		cfg.GitUserEmail, _ = flags.GetString("git-email")
	}
	if flags.Changed("os-name") {
		cfg.OSName, _ = flags.GetString("os-name")
	}
	if flags.Changed("os-version") {
		cfg.OSVersion, _ = flags.GetString("os-version")
	}
	if flags.Changed("arch") {
		cfg.Arch, _ = flags.GetString("arch")
	}
	if flags.Changed("rpm-topdir") {
		cfg.RPMTopDir, _ = flags.GetString("rpm-topdir")
	}
	if flags.Changed("skip-debug") {
		cfg.SkipDebug, _ = flags.GetBool("skip-debug")
	}
	if flags.Changed("bloom-bin") {
		cfg.BloomBin, _ = flags.GetString("bloom-bin")
	}
	if flags.Changed("tag-template") {
		cfg.TagTemplate, _ = flags.GetString("tag-template")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
