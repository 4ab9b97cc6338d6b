package models

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains all orchestrator settings. Every field has a documented
// default, may be overridden by environment variables, an optional YAML
// config file, and finally command line flags (highest precedence).
type Config struct {
	// Directory scanned for package roots in batch mode.
	CodeDir string `yaml:"code_dir"`

	// Root of the output tree artifacts are collected into.
	OutputDir string `yaml:"output_dir"`

	// Distribution identifier used in tags and the Debian output layout.
	Distro string `yaml:"distro"`

	// Release increment appended to version tags.
	ReleaseInc int `yaml:"release_inc"`

	// Parallelism hint passed to the underlying build tool.
	Parallel int `yaml:"parallel"`

	// Author identity for version-control bootstrap commits.
	GitUserName  string `yaml:"git_user_name"`
	GitUserEmail string `yaml:"git_user_email"`

	// Target OS identity for the spec-generation fallback.
	OSName    string `yaml:"os_name"`
	OSVersion string `yaml:"os_version"`

	// Machine architecture keying the RPM output layout.
	Arch string `yaml:"arch"`

	// RPM build tree (the rpmbuild _topdir).
	RPMTopDir string `yaml:"rpm_topdir"`

	// Disable debug-package generation on the RPM path.
	SkipDebug bool `yaml:"skip_debug"`

	// Spec-generation fallback binary.
	BloomBin string `yaml:"bloom_bin"`

	// Tag template with {distro}, {package}, {version}, {release_inc}
	// placeholders.
	TagTemplate string `yaml:"tag_template"`
}

// DefaultTagTemplate is the tag pattern used when a package carries no
// gbp.conf of its own.
const DefaultTagTemplate = "release/{distro}/{package}/{version}-{release_inc}"

// DefaultConfig returns the built-in defaults with environment overrides
// applied.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg := &Config{
		CodeDir:      envString("CODE_DIR", filepath.Join(home, "code_dir")),
		OutputDir:    envString("PKG_OUT", filepath.Join(home, "pkg_out")),
		Distro:       envString("DISTRO", "loong"),
		ReleaseInc:   envInt("DEFAULT_REL_INC", 1),
		Parallel:     envInt("PARALLEL", runtime.NumCPU()),
		GitUserName:  envString("GIT_USER_NAME", "Package Builder"),
		GitUserEmail: envString("GIT_USER_EMAIL", "builder@localhost"),
		OSName:       envString("OS_NAME", "openeuler"),
		OSVersion:    envString("OS_VERSION", "24"),
		Arch:         envString("ARCH", hostArch()),
		RPMTopDir:    envString("RPM_TOPDIR", filepath.Join(home, "rpmbuild")),
		SkipDebug:    envBool("SKIP_DEBUG", true),
		BloomBin:     envString("BLOOM_BIN", "bloom-generate"),
		TagTemplate:  envString("TAG_TEMPLATE", DefaultTagTemplate),
	}
	return cfg
}

// LoadFile merges settings from a YAML config file on top of cfg. Unset
// fields in the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks invariants that would otherwise surface deep inside a job
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return &BuildError{Stage: StageConfig, Err: fmt.Errorf("output directory is required")}
	}
	if c.ReleaseInc < 1 {
		return &BuildError{Stage: StageConfig, Err: fmt.Errorf("release increment must be >= 1, got %d", c.ReleaseInc)}
	}
	if c.Parallel < 1 {
		c.Parallel = 1
	}
	return nil
}

// hostArch maps the Go architecture name to the package-manager convention
func hostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	case "loong64":
		return "loongarch64"
	default:
		return runtime.GOARCH
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
