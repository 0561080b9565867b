package model

// State is the lifecycle state of a managed unit.
type State int

const (
	// StateInstalled means the unit's archive is known to the runtime but
	// its declared requirements have not been satisfied yet.
	StateInstalled State = iota + 1
	// StateResolved means the unit's requirements are wired to providers.
	StateResolved
	// StateStarting means the unit's activation is in progress.
	StateStarting
	// StateActive means the unit is running.
	StateActive
	// StateStopping means the unit's deactivation is in progress.
	StateStopping
	// StateUninstalled means the unit has been removed from the runtime.
	StateUninstalled
)

func (s State) String() string {
	switch s {
	case StateInstalled:
		return "INSTALLED"
	case StateResolved:
		return "RESOLVED"
	case StateStarting:
		return "STARTING"
	case StateActive:
		return "ACTIVE"
	case StateStopping:
		return "STOPPING"
	case StateUninstalled:
		return "UNINSTALLED"
	}
	return "UNKNOWN"
}

// ParseState maps the string form back to a State. Unknown strings yield
// the zero State.
func ParseState(s string) State {
	for st := StateInstalled; st <= StateUninstalled; st++ {
		if st.String() == s {
			return st
		}
	}
	return 0
}

// Manifest is the raw key/value metadata declared by one revision of a
// unit. Once a revision is created its manifest never changes.
type Manifest map[string]string

// Clone returns an independent copy of the manifest.
func (m Manifest) Clone() Manifest {
	if m == nil {
		return nil
	}
	out := make(Manifest, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Manifest keys understood by the core and the default parser.
const (
	// SymbolicNameHeader declares the unit's symbolic name, optionally
	// followed by ;-separated directives which the core ignores.
	SymbolicNameHeader = "Unit-SymbolicName"

	// VersionHeader declares the unit's version (semver).
	VersionHeader = "Unit-Version"

	// NameHeader is the human readable unit name, localizable.
	NameHeader = "Unit-Name"

	// DescriptionHeader is the human readable description, localizable.
	DescriptionHeader = "Unit-Description"

	// LocalizationHeader overrides the base name of the localization
	// resources shipped in the unit's content.
	LocalizationHeader = "Unit-Localization"

	// CapabilityHeader lists the capabilities offered by a revision.
	CapabilityHeader = "Unit-Capability"

	// RequirementHeader lists the requirements of a revision.
	RequirementHeader = "Unit-Requirement"

	// NativeCodeHeader lists native libraries bundled with a revision.
	NativeCodeHeader = "Unit-NativeCode"
)

const (
	// LocalizationMarker prefixes manifest values that are lookup keys
	// into locale resources rather than literal text.
	LocalizationMarker = "%"

	// DefaultLocalizationBasename is the resource base name probed when
	// the manifest declares no LocalizationHeader.
	DefaultLocalizationBasename = "META-INF/l10n/unit"

	// LocalizationResourceSuffix is appended to every probe name.
	LocalizationResourceSuffix = ".properties"
)
