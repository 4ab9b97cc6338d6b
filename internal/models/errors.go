package models

import "fmt"

// Stage identifies the pipeline stage an error originated from
type Stage int

const (
	StageConfig Stage = iota
	StageSanitize
	StageClassify
	StageMetadata
	StageVCS
	StageArchive
	StageBuild
	StageCollect
)

// String returns the string representation of Stage
func (s Stage) String() string {
	switch s {
	case StageConfig:
		return "Config"
	case StageSanitize:
		return "Sanitize"
	case StageClassify:
		return "Classify"
	case StageMetadata:
		return "Metadata"
	case StageVCS:
		return "VCS"
	case StageArchive:
		return "Archive"
	case StageBuild:
		return "Build"
	case StageCollect:
		return "Collect"
	default:
		return "Unknown"
	}
}

// BuildError represents a fatal error during a package build pipeline
type BuildError struct {
	Stage   Stage
	Package string
	Err     error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error
func (e *BuildError) Unwrap() error {
	return e.Err
}

// StageError wraps an error with its originating stage and package name
func StageError(stage Stage, pkg string, err error) *BuildError {
	return &BuildError{Stage: stage, Package: pkg, Err: err}
}
