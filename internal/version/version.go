// Package version holds build metadata, set at link time with
// -ldflags "-X github.com/MrSnakeDoc/clipflow/internal/version.Version=v1.2.0".
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"     // ex: v0.1.0
	Commit    = "none"    // ex: abcd123
	BuildDate = "unknown" // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()
)

// String is the one-line form shown by --version and the start-up log.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)", Version, Commit, BuildDate, GoVersion)
}
