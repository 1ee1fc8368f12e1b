package version

import "fmt"

var (
	// Version is the semantic version of the build, overridden via ldflags
	// on release builds.
	Version = "0.1.0"
	// Commit is the short git SHA recorded at build time ("none" for local builds).
	Commit = "none"
	// BuildTime is the UTC timestamp recorded at build time.
	BuildTime = "unknown"
)

// Short returns just the semantic version.
func Short() string {
	return Version
}

// Full returns the version together with the commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
