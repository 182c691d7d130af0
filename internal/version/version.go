package version

import "fmt"

// Version is set via ldflags at build time
var Version = "dev"

// Commit is set via ldflags at build time
var Commit = "unknown"

// Full returns the version string with commit.
func Full() string {
	return fmt.Sprintf("trackdeck %s (%s)", Version, Commit)
}
