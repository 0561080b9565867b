package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArchivePathToManifest(t *testing.T) {
	pathToManifest := "revisions/3/manifest.yaml"
	require.Equal(t, pathToManifest,
		ArchivePathToManifest(3))
}

func TestArchivePathToResource(t *testing.T) {
	pathToResource := "revisions/0/resources/l10n/unit_en.properties"
	require.Equal(t, pathToResource,
		ArchivePathToResource(0, "l10n/unit_en.properties"))
}

func TestArchivePathPrefixToResources(t *testing.T) {
	prefix := "revisions/1/resources/"
	require.Equal(t, prefix,
		ArchivePathPrefixToResources(1))
}

func TestRevisionIndexFromPath(t *testing.T) {
	require.Equal(t, 2, RevisionIndexFromPath("revisions/2/manifest.yaml"))
	require.Equal(t, 0, RevisionIndexFromPath("revisions/0/resources/a"))
	require.Equal(t, -1, RevisionIndexFromPath("unit.yaml"))
	require.Equal(t, -1, RevisionIndexFromPath("revisions/x/manifest.yaml"))
	require.Equal(t, -1, RevisionIndexFromPath("revisions/2"))
}
