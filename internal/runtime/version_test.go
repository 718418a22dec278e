package runtime

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuildInfo(t *testing.T, version string, ok bool) {
	t.Helper()
	prev := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: version}}, ok
	}
	t.Cleanup(func() { readBuildInfo = prev })
}

func TestResolvedVersion(t *testing.T) {
	stubBuildInfo(t, "v1.2.3", true)
	assert.Equal(t, "v1.2.3", ResolvedVersion())

	stubBuildInfo(t, "(devel)", true)
	assert.Equal(t, "0.0.0-dev", ResolvedVersion())

	stubBuildInfo(t, "v1.2.3", false)
	assert.Equal(t, "0.0.0-dev", ResolvedVersion())

	prev := Version
	Version = "2.0.0"
	t.Cleanup(func() { Version = prev })
	assert.Equal(t, "2.0.0", ResolvedVersion())
}

func TestVersionString(t *testing.T) {
	stubBuildInfo(t, "", false)
	assert.Equal(t, "nix-options-doc version 0.0.0-dev (dev) built unknown", VersionString())
}
