// Package runtime holds build metadata injected at link time.
package runtime

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version (set via -ldflags)
	Version = "0.0.0-dev"

	// GitCommit is the short git commit hash (set via -ldflags)
	GitCommit = "dev"

	// BuildTime is the UTC build timestamp (set via -ldflags)
	BuildTime = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// ResolvedVersion returns Version, or the module version recorded by
// `go install` when no version was linked in.
func ResolvedVersion() string {
	if Version != "0.0.0-dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// VersionString returns the formatted version string for display.
func VersionString() string {
	return fmt.Sprintf("nix-options-doc version %s (%s) built %s", ResolvedVersion(), GitCommit, BuildTime)
}
