package manifest

import (
	"testing"

	"github.com/modrunio/modrun/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentity(t *testing.T) {
	p := New()

	parsed, err := p.Parse(model.Manifest{
		model.SymbolicNameHeader: "com.example.demo;singleton=true",
		model.VersionHeader:      "1.2.3",
	})
	require.NoError(t, err)
	assert.Equal(t, "com.example.demo", parsed.Identity.Name)
	require.NotNil(t, parsed.Identity.Version)
	assert.Equal(t, "1.2.3", parsed.Identity.Version.String())
}

func TestParseAnonymous(t *testing.T) {
	p := New()

	parsed, err := p.Parse(model.Manifest{model.NameHeader: "just a name"})
	require.NoError(t, err)
	assert.True(t, parsed.Identity.IsZero())
	assert.Nil(t, parsed.Identity.Version)
}

func TestParseBadVersion(t *testing.T) {
	p := New()

	_, err := p.Parse(model.Manifest{
		model.SymbolicNameHeader: "demo",
		model.VersionHeader:      "one.two",
	})
	require.ErrorIs(t, err, ErrInvalidVersion)
}

func TestParseClauses(t *testing.T) {
	p := New()

	parsed, err := p.Parse(model.Manifest{
		model.SymbolicNameHeader: "demo",
		model.CapabilityHeader:   "service.http;port=8080, service.tls",
		model.RequirementHeader:  "service.db;vendor=postgres",
	})
	require.NoError(t, err)
	require.Len(t, parsed.Capabilities, 2)
	assert.Equal(t, "service.http", parsed.Capabilities[0].Namespace)
	assert.Equal(t, "8080", parsed.Capabilities[0].Attributes["port"])
	assert.Equal(t, "service.tls", parsed.Capabilities[1].Namespace)
	assert.Nil(t, parsed.Capabilities[1].Attributes)
	require.Len(t, parsed.Requirements, 1)
	assert.Equal(t, "postgres", parsed.Requirements[0].Attributes["vendor"])
}

func TestParseNativeCode(t *testing.T) {
	p := New()

	parsed, err := p.Parse(model.Manifest{
		model.SymbolicNameHeader: "demo",
		model.NativeCodeHeader:   "lib/libdemo.so;osname=linux;processor=x86_64, lib/libdemo.dylib;osname=darwin",
	})
	require.NoError(t, err)
	require.Len(t, parsed.NativeLibraries, 2)
	assert.Equal(t, "lib/libdemo.so", parsed.NativeLibraries[0].EntryName)
	assert.Equal(t, "linux", parsed.NativeLibraries[0].OSName)
	assert.Equal(t, "x86_64", parsed.NativeLibraries[0].Processor)
	assert.Equal(t, "darwin", parsed.NativeLibraries[1].OSName)
}

func TestParseEmptyClause(t *testing.T) {
	p := New()

	_, err := p.Parse(model.Manifest{
		model.SymbolicNameHeader: "demo",
		model.CapabilityHeader:   "service.http,,service.tls",
	})
	require.ErrorIs(t, err, ErrEmptyClause)
}
