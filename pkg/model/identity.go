package model

import (
	"github.com/Masterminds/semver/v3"
)

// Identity is the symbolic name and version pair declared by a revision.
// Together they must be unique across all live units in a runtime.
type Identity struct {
	Name    string
	Version *semver.Version
}

// IsZero reports whether no symbolic name was declared.
func (i Identity) IsZero() bool {
	return i.Name == ""
}

// Equal compares name and version. Two nil versions are equal.
func (i Identity) Equal(o Identity) bool {
	if i.Name != o.Name {
		return false
	}
	if i.Version == nil || o.Version == nil {
		return i.Version == o.Version
	}
	return i.Version.Equal(o.Version)
}

func (i Identity) String() string {
	if i.Version == nil {
		return i.Name
	}
	return i.Name + ":" + i.Version.String()
}
