// Package builder defines the backend abstraction for invoking external
// package build tools.
package builder

import (
	"context"

	"github.com/lmartin/pkgmill/internal/models"
)

// Builder invokes the external build tooling for one packaging kind.
// Implementations shell out to the ecosystem's own tools; the orchestrator
// only prepares their inputs and collects their outputs.
type Builder interface {
	// Build prepares build-time dependencies (best-effort) and runs the
	// external build tool. A non-zero exit from the tool is returned as
	// an error and is never retried.
	Build(ctx context.Context, cfg *models.Config, job *models.PackageJob) error

	// Collect copies the build outputs matching the job's package name
	// into the structured output tree and returns the copied paths.
	// Missing expected artifacts are tolerated.
	Collect(ctx context.Context, cfg *models.Config, job *models.PackageJob) ([]string, error)

	// Kind returns the packaging kind this builder supports.
	Kind() models.PackagingKind
}
