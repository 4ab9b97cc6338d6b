package models

// PackagingKind classifies which build backend a package directory requires
type PackagingKind int

const (
	KindUnknown PackagingKind = iota
	KindDebianNative
	KindDebianPython
	KindRPMSpec
)

// String returns the string representation of PackagingKind
func (k PackagingKind) String() string {
	switch k {
	case KindDebianNative:
		return "debian-native"
	case KindDebianPython:
		return "debian-python"
	case KindRPMSpec:
		return "rpm-spec"
	default:
		return "unknown"
	}
}

// BuildStatus tracks a job's lifecycle state
type BuildStatus int

const (
	StatusPending BuildStatus = iota
	StatusSuccess
	StatusFailed
)

// String returns the string representation of BuildStatus
func (s BuildStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// PackageJob represents one package directory's build attempt. It is created
// when a root is discovered (or targeted directly) and mutated by each
// pipeline stage.
type PackageJob struct {
	// Root is the absolute path of the package directory.
	Root string

	// Extracted metadata
	Name       string
	Version    string
	ReleaseInc int

	Kind   PackagingKind
	Tag    string
	Status BuildStatus

	// Notes records non-fatal degradations (fallback version, failed
	// dependency installs) for observability.
	Notes []string

	// Artifacts lists the files copied into the output tree.
	Artifacts []string
}

// Degrade records a non-fatal degradation on the job
func (j *PackageJob) Degrade(note string) {
	j.Notes = append(j.Notes, note)
}
