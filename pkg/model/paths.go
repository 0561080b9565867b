package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Key layout used by archive stores for one unit:
//
//	unit.yaml
//	revisions/<index>/revision.yaml
//	revisions/<index>/manifest.yaml
//	revisions/<index>/resources/<name>

// ArchivePathToUnitInfo returns the key of the unit bookkeeping record.
func ArchivePathToUnitInfo() string {
	return "unit.yaml"
}

// ArchivePathToRevisionInfo returns the key of a revision's bookkeeping
// record.
func ArchivePathToRevisionInfo(index int) string {
	return fmt.Sprint(archivePathToRevision(index), "revision.yaml")
}

// ArchivePathToManifest returns the key of a revision's raw manifest.
func ArchivePathToManifest(index int) string {
	return fmt.Sprint(archivePathToRevision(index), "manifest.yaml")
}

// ArchivePathToResource returns the key of a named resource inside a
// revision's content.
func ArchivePathToResource(index int, name string) string {
	return fmt.Sprint(archivePathToRevision(index), "resources/", name)
}

// ArchivePathPrefixToResources returns the key prefix under which all of
// a revision's resources live.
func ArchivePathPrefixToResources(index int) string {
	return fmt.Sprint(archivePathToRevision(index), "resources/")
}

func archivePathToRevision(index int) string {
	return fmt.Sprint("revisions/", index, "/")
}

// RevisionIndexFromPath extracts the revision index from an archive key,
// or -1 when the key does not belong to a revision.
func RevisionIndexFromPath(path string) int {
	cs := strings.SplitN(path, "/", 3)
	if len(cs) < 3 || cs[0] != "revisions" {
		return -1
	}
	idx, err := strconv.Atoi(cs[1])
	if err != nil {
		return -1
	}
	return idx
}
